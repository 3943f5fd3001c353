// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package encoding // import "utf8conv.app/internal/encoding"

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// ErrUnsupportedEncoding is returned by Lookup when a label doesn't map to an
// encoding we are able to decode.
var ErrUnsupportedEncoding = errors.New("encoding: unsupported encoding")

// UTF8 is the label of the only target encoding.
const UTF8 = "UTF-8"

// chardet reports a few charsets with names which aren't registered labels.
var aliases = map[string]string{
	"gb-18030":   "GB18030",
	"ibm420_ltr": "IBM420",
	"ibm420_rtl": "IBM420",
	"ibm424_ltr": "IBM424",
	"ibm424_rtl": "IBM424",
	"utf8":       UTF8,
}

// Neither IANA index nor WHATWG know UTF-32, which BOM sniffing and chardet
// report. Like UTF-16 from the IANA index, explicit byte order keeps a BOM as
// U+FEFF.
var utf32Encodings = map[string]*Encoding{
	"utf-32": {
		Encoding: utf32.UTF32(utf32.BigEndian, utf32.UseBOM),
		name:     "UTF-32",
	},
	"utf-32be": {
		Encoding: utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM),
		name:     "UTF-32BE",
	},
	"utf-32le": {
		Encoding: utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM),
		name:     "UTF-32LE",
	},
}

// Encoding is a resolved charset label.
type Encoding struct {
	encoding.Encoding

	name string
}

// Name returns the canonical name of the encoding.
func (self *Encoding) Name() string { return self.name }

// IsUTF8 returns true if the encoding is UTF-8.
func (self *Encoding) IsUTF8() bool {
	return self.Encoding == unicode.UTF8 || strings.EqualFold(self.name, UTF8)
}

func (self *Encoding) String() string { return self.name }

// Lookup resolves label into an Encoding.
//
// IANA names are tried before WHATWG labels, because WHATWG maps
// "ISO-8859-1" and "US-ASCII" to windows-1252, which decodes 0x80-0x9F
// differently.
func Lookup(label string) (*Encoding, error) {
	name := strings.TrimSpace(label)
	if name == "" {
		return nil, fmt.Errorf("%w: empty label", ErrUnsupportedEncoding)
	}
	if alias, ok := aliases[strings.ToLower(name)]; ok {
		name = alias
	}

	if enc, ok := utf32Encodings[strings.ToLower(name)]; ok {
		return enc, nil
	}

	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return newEncoding(enc, ianaName(enc, name)), nil
	}

	if enc, canonical := charset.Lookup(name); enc != nil {
		if enc == encoding.Replacement {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, label)
		}
		return newEncoding(enc, canonical), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, label)
}

func newEncoding(enc encoding.Encoding, name string) *Encoding {
	return &Encoding{Encoding: enc, name: name}
}

func ianaName(enc encoding.Encoding, fallback string) string {
	if name, err := ianaindex.IANA.Name(enc); err == nil && name != "" {
		return name
	}
	return fallback
}
