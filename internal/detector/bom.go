// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package detector // import "utf8conv.app/internal/detector"

import "bytes"

// Longer marks go first: UTF-32LE BOM starts with UTF-16LE one.
var boms = [...]struct {
	mark    []byte
	charset string
}{
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, "UTF-32BE"},
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, "UTF-32LE"},
	{[]byte{0xEF, 0xBB, 0xBF}, "UTF-8"},
	{[]byte{0xFE, 0xFF}, "UTF-16BE"},
	{[]byte{0xFF, 0xFE}, "UTF-16LE"},
}

// NewBOM returns a Detector, which recognizes Unicode byte order marks.
func NewBOM() *BOM { return &BOM{} }

type BOM struct{}

var _ Detector = (*BOM)(nil)

func (*BOM) Detect(data []byte) (Result, error) {
	for _, bom := range boms {
		if bytes.HasPrefix(data, bom.mark) {
			return Result{
				Charset:    bom.charset,
				Confidence: 100,
				Source:     SourceBOM,
			}, nil
		}
	}
	return Result{}, ErrNotDetected
}
