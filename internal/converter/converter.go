// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package converter // import "utf8conv.app/internal/converter"

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/gabriel-vasile/mimetype"

	"utf8conv.app/internal/detector"
	"utf8conv.app/internal/encoding"
	"utf8conv.app/internal/logging"
)

const defaultSuffix = ".conv"

// Result describes a successful conversion.
type Result struct {
	Source   string
	Output   string
	Detected detector.Result
	// Encoding is the canonical name of the encoding used for decoding.
	Encoding string
	BytesIn  int
	BytesOut int
	// Checksum is xxhash64 of the output content.
	Checksum uint64
	Duration time.Duration
}

// New returns a Converter, which uses d for charset detection.
func New(d detector.Detector, opts ...Option) *Converter {
	self := &Converter{
		detector: d,
		suffix:   defaultSuffix,
		keepExt:  true,
		fileMode: 0o644,
	}
	for _, fn := range opts {
		fn(self)
	}
	return self
}

type Option func(self *Converter)

// WithSuffix sets the suffix appended to the source path.
func WithSuffix(suffix string) Option {
	return func(self *Converter) {
		if suffix != "" {
			self.suffix = suffix
		}
	}
}

// WithKeepExtension repeats the source extension after the suffix, so
// data.tsv becomes data.tsv.conv.tsv.
func WithKeepExtension(keep bool) Option {
	return func(self *Converter) { self.keepExt = keep }
}

// WithStripBOM removes UTF-8 BOM from the output.
func WithStripBOM(strip bool) Option {
	return func(self *Converter) { self.stripBOM = strip }
}

// WithTextGuard rejects content which doesn't look like text.
func WithTextGuard(enabled bool) Option {
	return func(self *Converter) { self.textGuard = enabled }
}

// WithFileMode sets permissions of the output file.
func WithFileMode(mode os.FileMode) Option {
	return func(self *Converter) { self.fileMode = mode }
}

// WithAliases sets a function, which maps detected labels to labels used for
// decoding.
func WithAliases(fn func(charset string) string) Option {
	return func(self *Converter) { self.alias = fn }
}

type Converter struct {
	detector  detector.Detector
	suffix    string
	keepExt   bool
	stripBOM  bool
	textGuard bool
	fileMode  os.FileMode
	alias     func(string) string
}

// OutputPath returns the path of the file Convert creates for source.
func (self *Converter) OutputPath(source string) string {
	output := source + self.suffix
	if self.keepExt {
		output += filepath.Ext(source)
	}
	return output
}

// Convert reads the file at path, detects its charset and writes its text
// as UTF-8 into OutputPath(path).
//
// The output file appears only if everything succeeded. Returned errors are
// *Error.
func (self *Converter) Convert(ctx context.Context, path string,
) (*Result, error) {
	startTime := time.Now()
	ctx = logging.With(ctx, slog.String("source", path))
	log := logging.FromContext(ctx)

	output := self.OutputPath(path)
	if filepath.Clean(output) == filepath.Clean(path) {
		return nil, newError(KindIO, path, "",
			errors.New("converter: output path equals source path"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(KindIO, path, "",
			fmt.Errorf("converter: read source: %w", err))
	}

	if err := self.checkText(data); err != nil {
		return nil, newError(KindDecode, path, "", err)
	}

	detected, err := self.detector.Detect(data)
	if err != nil {
		return nil, newError(KindDetect, path, "",
			fmt.Errorf("converter: detect charset: %w", err))
	}
	log.Debug("charset detected",
		slog.String("charset", detected.Charset),
		slog.String("language", detected.Language),
		slog.Int("confidence", detected.Confidence),
		slog.String("detector", string(detected.Source)))

	text, enc, err := self.decode(detected.Charset, data)
	if err != nil {
		return nil, newError(KindDecode, path, detected.Charset, err)
	}

	b, err := encoding.EncodeUTF8(text)
	if err != nil {
		return nil, newError(KindEncode, path, enc.Name(), err)
	}
	if self.stripBOM && encoding.HasBOM(b) {
		b = encoding.StripBOM(b)
		log.Debug("UTF-8 BOM removed")
	}

	if err := ctx.Err(); err != nil {
		return nil, newError(KindIO, path, "",
			fmt.Errorf("converter: canceled before write: %w", err))
	}

	if err := writeFile(output, b, self.fileMode); err != nil {
		return nil, newError(KindIO, path, "", err)
	}

	r := &Result{
		Source:   path,
		Output:   output,
		Detected: detected,
		Encoding: enc.Name(),
		BytesIn:  len(data),
		BytesOut: len(b),
		Checksum: xxhash.Sum64(b),
		Duration: time.Since(startTime),
	}
	log.Info("File converted",
		slog.String("output", r.Output),
		slog.String("encoding", r.Encoding),
		slog.Int("bytes_in", r.BytesIn),
		slog.Int("bytes_out", r.BytesOut),
		slog.String("checksum", fmt.Sprintf("%016x", r.Checksum)),
		slog.Duration("duration", r.Duration))
	return r, nil
}

// checkText rejects content, which isn't valid UTF-8, has no BOM and looks
// binary to mimetype. Valid UTF-8 is text whatever it starts with, like "%PDF"
// or "MZ".
func (self *Converter) checkText(data []byte) error {
	if !self.textGuard || len(data) == 0 || utf8.Valid(data) {
		return nil
	} else if _, err := detector.NewBOM().Detect(data); err == nil {
		return nil
	}

	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return nil
		}
	}
	return fmt.Errorf("%w: detected %s", ErrBinaryContent, mtype.String())
}

func (self *Converter) decode(charset string, data []byte,
) ([]byte, *encoding.Encoding, error) {
	label := charset
	if self.alias != nil {
		label = self.alias(charset)
	}

	enc, err := encoding.Lookup(label)
	if err != nil {
		return nil, nil, fmt.Errorf("converter: %w", err)
	}

	text, err := encoding.Decode(enc, data)
	if err != nil {
		return nil, enc, fmt.Errorf("converter: %w", err)
	}
	return text, enc, nil
}
