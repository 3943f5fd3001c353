// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package encoding // import "utf8conv.app/internal/encoding"

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// InvalidSequenceError reports bytes which can't be decoded using an
// encoding.
type InvalidSequenceError struct {
	Encoding string
	// Offset of the first invalid byte in the source, or -1 if unknown.
	Offset int
	Err    error
}

var _ error = (*InvalidSequenceError)(nil)

func (self *InvalidSequenceError) Error() string {
	s := "encoding: invalid " + self.Encoding + " byte sequence"
	if self.Offset >= 0 {
		s += fmt.Sprintf(" at offset %d", self.Offset)
	}
	if self.Err != nil {
		s += ": " + self.Err.Error()
	}
	return s
}

func (self *InvalidSequenceError) Unwrap() error { return self.Err }

// UnrepresentableError reports text which can't be stored as UTF-8.
type UnrepresentableError struct {
	Offset int
}

var _ error = (*UnrepresentableError)(nil)

func (self *UnrepresentableError) Error() string {
	return fmt.Sprintf(
		"encoding: text at offset %d is not representable in UTF-8", self.Offset)
}

// Decode strictly decodes data using enc and returns UTF-8 text.
//
// Decoders from x/text replace invalid input with U+FFFD instead of failing.
// Any U+FFFD in the decoded text is accepted only if it re-encodes back to the
// original bytes, which means the source really contains that character.
//
// UTF-8 input is validated and returned as is, including its BOM.
func Decode(enc *Encoding, data []byte) ([]byte, error) {
	if enc.IsUTF8() {
		if off := invalidUTF8(data); off >= 0 {
			return nil, &InvalidSequenceError{Encoding: enc.Name(), Offset: off}
		}
		return data, nil
	}

	text, n, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, &InvalidSequenceError{
			Encoding: enc.Name(),
			Offset:   n,
			Err:      err,
		}
	}

	if !bytes.ContainsRune(text, utf8.RuneError) {
		return text, nil
	}

	back, err := enc.NewEncoder().Bytes(text)
	if err != nil || !bytes.Equal(back, data) {
		return nil, &InvalidSequenceError{
			Encoding: enc.Name(),
			Offset:   -1,
			Err:      err,
		}
	}
	return text, nil
}

// EncodeUTF8 returns text as UTF-8 bytes. It fails if text contains anything
// UTF-8 can't carry: malformed sequences or surrogate halves.
func EncodeUTF8(text []byte) ([]byte, error) {
	if off := invalidUTF8(text); off >= 0 {
		return nil, &UnrepresentableError{Offset: off}
	}
	return text, nil
}

// HasBOM returns true if data starts with UTF-8 BOM.
func HasBOM(data []byte) bool { return bytes.HasPrefix(data, utf8BOM) }

// StripBOM removes leading UTF-8 BOM from data.
func StripBOM(data []byte) []byte { return bytes.TrimPrefix(data, utf8BOM) }

func invalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		if b[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
