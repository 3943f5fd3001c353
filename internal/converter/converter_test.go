// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package converter

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"utf8conv.app/internal/detector"
	"utf8conv.app/internal/encoding"
)

const utf8Text = "Привет, мир! Это обычный текст в кодировке UTF-8. " +
	"Здесь достаточно многобайтовых символов, чтобы не ошибиться.\n"

func writeSource(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func defaultDetector() detector.Detector {
	return detector.NewChain(detector.NewBOM(), detector.NewChardet())
}

func readOutput(t *testing.T, r *Result) []byte {
	t.Helper()
	require.NotNil(t, r)
	b, err := os.ReadFile(r.Output)
	require.NoError(t, err)
	return b
}

func assertNoOutput(t *testing.T, c *Converter, source string) {
	t.Helper()
	_, err := os.Stat(c.OutputPath(source))
	require.ErrorIs(t, err, fs.ErrNotExist)

	entries, err := os.ReadDir(filepath.Dir(source))
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, filepath.Base(source), e.Name(), "unexpected file left")
	}
}

func TestConvert_utf8Identical(t *testing.T) {
	tests := []struct {
		name     string
		detector detector.Detector
		data     []byte
	}{
		{
			name:     "fixed",
			detector: detector.NewFixed("UTF-8"),
			data:     []byte("Café crème\n"),
		},
		{
			name:     "chardet",
			detector: defaultDetector(),
			data:     []byte(utf8Text),
		},
		{
			name:     "bom",
			detector: defaultDetector(),
			data:     []byte("\xEF\xBB\xBF" + utf8Text),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := writeSource(t, "data.txt", tt.data)
			r, err := New(tt.detector).Convert(t.Context(), source)
			require.NoError(t, err)

			assert.Equal(t, "UTF-8", r.Detected.Charset)
			assert.Equal(t, tt.data, readOutput(t, r))
			assert.Equal(t, source, r.Source)
			assert.Equal(t, len(tt.data), r.BytesIn)
			assert.Equal(t, len(tt.data), r.BytesOut)
			assert.Equal(t, xxhash.Sum64(tt.data), r.Checksum)
		})
	}
}

func TestConvert_latin1(t *testing.T) {
	source := writeSource(t, "latin1.tsv", []byte{0xE9, 0xE8})
	c := New(detector.NewFixed("ISO-8859-1"))

	r, err := c.Convert(t.Context(), source)
	require.NoError(t, err)
	assert.Equal(t, source+".conv.tsv", r.Output)
	assert.Equal(t, 2, r.BytesIn)
	assert.Equal(t, 4, r.BytesOut)

	b := readOutput(t, r)
	assert.Equal(t, []byte{0xC3, 0xA9, 0xC3, 0xA8}, b)
	assert.Equal(t, "éè", string(b))
}

func TestConvert_latin1Detected(t *testing.T) {
	source := writeSource(t, "latin1.tsv", []byte{0xE9, 0xE8})

	r, err := New(defaultDetector()).Convert(t.Context(), source)
	require.NoError(t, err)
	assert.Equal(t, "ISO-8859-1", r.Detected.Charset)
	assert.Equal(t, []byte{0xC3, 0xA9, 0xC3, 0xA8}, readOutput(t, r))
}

func TestConvert_roundTrip(t *testing.T) {
	want := "Café crème brûlée, à bientôt!\n"
	enc, err := encoding.Lookup("ISO-8859-1")
	require.NoError(t, err)
	latin1, err := enc.NewEncoder().Bytes([]byte(want))
	require.NoError(t, err)

	source := writeSource(t, "fr.txt", latin1)
	r, err := New(detector.NewFixed("ISO-8859-1")).Convert(t.Context(), source)
	require.NoError(t, err)

	decoded, err := encoding.Decode(enc, latin1)
	require.NoError(t, err)
	assert.Equal(t, decoded, readOutput(t, r))
	assert.Equal(t, want, string(readOutput(t, r)))
}

func TestConvert_idempotent(t *testing.T) {
	source := writeSource(t, "latin1.txt", []byte(
		"Caf\xE9 cr\xE8me br\xFBl\xE9e, \xE0 bient\xF4t, na\xEFve fa\xE7ade.\n"))

	first, err := New(detector.NewFixed("ISO-8859-1")).Convert(t.Context(),
		source)
	require.NoError(t, err)

	second, err := New(defaultDetector()).Convert(t.Context(), first.Output)
	require.NoError(t, err)
	assert.NotEqual(t, first.Output, second.Output)
	assert.Equal(t, readOutput(t, first), readOutput(t, second))
	assert.Equal(t, first.Checksum, second.Checksum)
}

func TestConvert_empty(t *testing.T) {
	source := writeSource(t, "empty.txt", []byte{})

	r, err := New(defaultDetector()).Convert(t.Context(), source)
	require.NoError(t, err)
	assert.Equal(t, detector.Empty(), r.Detected)
	assert.Empty(t, readOutput(t, r))
	assert.Zero(t, r.BytesOut)
}

func TestConvert_decodeError(t *testing.T) {
	tests := []struct {
		name    string
		charset string
		data    []byte
		cause   any
	}{
		{
			name:    "truncated utf8",
			charset: "UTF-8",
			data:    []byte("abc\xC3"),
			cause:   new(*encoding.InvalidSequenceError),
		},
		{
			name:    "truncated shift_jis",
			charset: "Shift_JIS",
			data:    []byte("abc\x81"),
			cause:   new(*encoding.InvalidSequenceError),
		},
		{
			name:    "unsupported charset",
			charset: "x-no-such-charset",
			data:    []byte("abc"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := writeSource(t, "bad.txt", tt.data)
			c := New(detector.NewFixed(tt.charset))

			r, err := c.Convert(t.Context(), source)
			t.Log(err)
			require.ErrorIs(t, err, ErrDecode)
			assert.Nil(t, r)
			assert.Equal(t, KindDecode, KindOf(err))
			assert.False(t, errors.Is(err, ErrEncode))
			assert.False(t, errors.Is(err, ErrIO))
			if tt.cause != nil {
				require.ErrorAs(t, err, tt.cause)
			} else {
				require.ErrorIs(t, err, encoding.ErrUnsupportedEncoding)
			}
			assertNoOutput(t, c, source)
		})
	}
}

func TestConvert_decodeErrorKeepsOldOutput(t *testing.T) {
	source := writeSource(t, "bad.txt", []byte("abc\xC3"))
	c := New(detector.NewFixed("UTF-8"))
	require.NoError(t, os.WriteFile(c.OutputPath(source), []byte("old"), 0o644))

	_, err := c.Convert(t.Context(), source)
	require.ErrorIs(t, err, ErrDecode)

	b, err := os.ReadFile(c.OutputPath(source))
	require.NoError(t, err)
	assert.Equal(t, "old", string(b))
}

func TestConvert_ioError(t *testing.T) {
	c := New(defaultDetector())
	source := filepath.Join(t.TempDir(), "notfound.txt")

	r, err := c.Convert(t.Context(), source)
	t.Log(err)
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Nil(t, r)
	assert.Equal(t, KindIO, KindOf(err))

	var convErr *Error
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, source, convErr.Path)
}

func TestConvert_writeError(t *testing.T) {
	source := writeSource(t, "data.txt", []byte("abc"))
	c := New(detector.NewFixed("UTF-8"))
	require.NoError(t, os.Mkdir(c.OutputPath(source), 0o755))

	_, err := c.Convert(t.Context(), source)
	t.Log(err)
	require.ErrorIs(t, err, ErrIO)

	entries, err := os.ReadDir(filepath.Dir(source))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp file left")
}

func TestConvert_detectError(t *testing.T) {
	source := writeSource(t, "data.txt", []byte("abc"))
	c := New(detector.DetectorFunc(func([]byte) (detector.Result, error) {
		return detector.Result{}, detector.ErrNotDetected
	}))

	_, err := c.Convert(t.Context(), source)
	require.ErrorIs(t, err, ErrDetect)
	require.ErrorIs(t, err, detector.ErrNotDetected)
	assertNoOutput(t, c, source)
}

func TestConvert_canceled(t *testing.T) {
	source := writeSource(t, "data.txt", []byte("abc"))
	c := New(detector.NewFixed("UTF-8"))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := c.Convert(ctx, source)
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, context.Canceled)
	assertNoOutput(t, c, source)
}

func TestConvert_textGuard(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
	source := writeSource(t, "image.png", png)

	c := New(detector.NewFixed("ISO-8859-1"), WithTextGuard(true))
	_, err := c.Convert(t.Context(), source)
	t.Log(err)
	require.ErrorIs(t, err, ErrDecode)
	require.ErrorIs(t, err, ErrBinaryContent)
	assertNoOutput(t, c, source)

	c = New(detector.NewFixed("ISO-8859-1"), WithTextGuard(false))
	_, err = c.Convert(t.Context(), source)
	require.NoError(t, err)

	source = writeSource(t, "latin1.txt", []byte("caf\xE9\n"))
	c = New(detector.NewFixed("ISO-8859-1"), WithTextGuard(true))
	r, err := c.Convert(t.Context(), source)
	require.NoError(t, err)
	assert.Equal(t, "café\n", string(readOutput(t, r)))
}

func TestConvert_stripBOM(t *testing.T) {
	data := []byte("\xEF\xBB\xBFabc")
	source := writeSource(t, "bom.txt", data)

	r, err := New(defaultDetector(), WithStripBOM(true)).Convert(t.Context(),
		source)
	require.NoError(t, err)
	assert.Equal(t, detector.SourceBOM, r.Detected.Source)
	assert.Equal(t, "abc", string(readOutput(t, r)))

	r, err = New(defaultDetector()).Convert(t.Context(), source)
	require.NoError(t, err)
	assert.Equal(t, data, readOutput(t, r))
}

func TestConvert_textGuardUTF8(t *testing.T) {
	const tail = " пишут в начале файла, но это обычный текст\n"
	tests := []struct {
		name string
		data string
	}{
		{name: "pdf magic", data: "%PDF-1.4" + tail},
		{name: "pe magic", data: "MZ" + tail},
		{name: "zip magic", data: "PK\x03\x04" + tail},
		{name: "vertical tab", data: "x\x0by" + tail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := writeSource(t, "data.txt", []byte(tt.data))
			r, err := New(defaultDetector(), WithTextGuard(true)).Convert(
				t.Context(), source)
			require.NoError(t, err)
			assert.Equal(t, "UTF-8", r.Detected.Charset)
			assert.Equal(t, tt.data, string(readOutput(t, r)))
		})
	}
}

func TestConvert_utf16(t *testing.T) {
	data := []byte{0xFF, 0xFE, 'C', 0, 'a', 0, 'f', 0, 0xE9, 0}
	source := writeSource(t, "utf16.txt", data)

	r, err := New(defaultDetector(), WithTextGuard(true)).Convert(t.Context(),
		source)
	require.NoError(t, err)
	assert.Equal(t, "UTF-16LE", r.Detected.Charset)
	assert.Equal(t, "\uFEFFCafé", string(readOutput(t, r)))

	r, err = New(defaultDetector(), WithStripBOM(true)).Convert(t.Context(),
		source)
	require.NoError(t, err)
	assert.Equal(t, "Café", string(readOutput(t, r)))
}

func TestConvert_utf32(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		charset string
	}{
		{
			name:    "little endian",
			data:    []byte{0xFF, 0xFE, 0, 0, 'C', 0, 0, 0, 0xE9, 0, 0, 0},
			charset: "UTF-32LE",
		},
		{
			name:    "big endian",
			data:    []byte{0, 0, 0xFE, 0xFF, 0, 0, 0, 'C', 0, 0, 0, 0xE9},
			charset: "UTF-32BE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := writeSource(t, "utf32.txt", tt.data)

			r, err := New(defaultDetector(), WithTextGuard(true)).Convert(
				t.Context(), source)
			require.NoError(t, err)
			assert.Equal(t, tt.charset, r.Detected.Charset)
			assert.Equal(t, tt.charset, r.Encoding)
			assert.Equal(t, "\uFEFFCé", string(readOutput(t, r)))

			r, err = New(defaultDetector(), WithStripBOM(true)).Convert(
				t.Context(), source)
			require.NoError(t, err)
			assert.Equal(t, "Cé", string(readOutput(t, r)))
		})
	}
}

func TestConvert_aliases(t *testing.T) {
	source := writeSource(t, "cp1252.txt", []byte{0x80})
	aliases := map[string]string{"ISO-8859-1": "windows-1252"}
	c := New(detector.NewFixed("ISO-8859-1"),
		WithAliases(func(charset string) string {
			if to, ok := aliases[charset]; ok {
				return to
			}
			return charset
		}))

	r, err := c.Convert(t.Context(), source)
	require.NoError(t, err)
	assert.Equal(t, "ISO-8859-1", r.Detected.Charset)
	assert.Equal(t, "€", string(readOutput(t, r)))
}

func TestConvert_fileMode(t *testing.T) {
	source := writeSource(t, "data.txt", []byte("abc"))

	r, err := New(detector.NewFixed("UTF-8"), WithFileMode(0o600)).Convert(
		t.Context(), source)
	require.NoError(t, err)

	fi, err := os.Stat(r.Output)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestConvert_overwrite(t *testing.T) {
	source := writeSource(t, "data.txt", []byte("new"))
	c := New(detector.NewFixed("UTF-8"))
	require.NoError(t, os.WriteFile(c.OutputPath(source),
		[]byte("old and longer"), 0o644))

	r, err := c.Convert(t.Context(), source)
	require.NoError(t, err)
	assert.Equal(t, "new", string(readOutput(t, r)))
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		source string
		want   string
	}{
		{
			name:   "default",
			source: "/tmp/data.tsv",
			want:   "/tmp/data.tsv.conv.tsv",
		},
		{
			name:   "no extension",
			source: "/tmp/README",
			want:   "/tmp/README.conv",
		},
		{
			name:   "without extension",
			opts:   []Option{WithKeepExtension(false)},
			source: "/tmp/data.tsv",
			want:   "/tmp/data.tsv.conv",
		},
		{
			name:   "custom suffix",
			opts:   []Option{WithSuffix("conv")},
			source: "brf_sum_text.tsv",
			want:   "brf_sum_text.tsvconv.tsv",
		},
		{
			name:   "empty suffix ignored",
			opts:   []Option{WithSuffix(""), WithKeepExtension(false)},
			source: "a.txt",
			want:   "a.txt.conv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(detector.NewFixed("UTF-8"), tt.opts...)
			assert.Equal(t, tt.want, c.OutputPath(tt.source))
		})
	}
}
