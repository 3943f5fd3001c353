// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package converter // import "utf8conv.app/internal/converter"

import (
	"errors"
	"fmt"
)

// Kind classifies conversion failures.
type Kind int

const (
	KindUnknown Kind = iota
	// KindIO is any filesystem failure: missing source, permissions, full
	// disk, failed rename.
	KindIO
	// KindDetect means the detector couldn't produce a charset label.
	KindDetect
	// KindDecode means the source bytes aren't valid under the detected
	// charset, the charset isn't supported or the content isn't text.
	KindDecode
	// KindEncode means the decoded text can't be represented in UTF-8.
	KindEncode
)

var (
	ErrIO     = errors.New("I/O error")
	ErrDetect = errors.New("detect error")
	ErrDecode = errors.New("decode error")
	ErrEncode = errors.New("encode error")

	// ErrBinaryContent is the cause of KindDecode errors for content, which
	// doesn't look like text at all.
	ErrBinaryContent = errors.New("converter: binary content")
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindDetect:
		return "detect"
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	}
	return "unknown"
}

func (k Kind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindDetect:
		return ErrDetect
	case KindDecode:
		return ErrDecode
	case KindEncode:
		return ErrEncode
	}
	return nil
}

// Error is returned by Converter.Convert. Use errors.Is with ErrIO, ErrDetect,
// ErrDecode or ErrEncode, or KindOf, to tell failures apart.
type Error struct {
	Kind    Kind
	Path    string
	Charset string
	Err     error
}

var _ error = (*Error)(nil)

func newError(kind Kind, path, charset string, err error) *Error {
	return &Error{Kind: kind, Path: path, Charset: charset, Err: err}
}

func (self *Error) Error() string {
	prefix := "conversion failed"
	if err := self.Kind.sentinel(); err != nil {
		prefix = err.Error()
	}

	if self.Charset != "" {
		return fmt.Sprintf("%s: %q as %s: %v", prefix, self.Path, self.Charset,
			self.Err)
	}
	return fmt.Sprintf("%s: %q: %v", prefix, self.Path, self.Err)
}

func (self *Error) Unwrap() error { return self.Err }

func (self *Error) Is(target error) bool {
	return target != nil && target == self.Kind.sentinel()
}

// KindOf returns the Kind of err, or KindUnknown if err didn't come from
// Converter.
func KindOf(err error) Kind {
	var convErr *Error
	if errors.As(err, &convErr) {
		return convErr.Kind
	}
	return KindUnknown
}
