// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package detector // import "utf8conv.app/internal/detector"

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gogs/chardet"

	"utf8conv.app/internal/encoding"
)

// LastResortCharset is returned when neither the fallback charset nor chardet
// guesses can decode the input. Every byte sequence is valid ISO-8859-1.
const LastResortCharset = "ISO-8859-1"

// NewChardet returns a statistical Detector. It never fails: when chardet
// gives up or isn't confident enough, the fallback charset is returned, if
// the input decodes with it.
func NewChardet(opts ...ChardetOption) *Chardet {
	self := &Chardet{
		detector: chardet.NewTextDetector(),
		fallback: DefaultCharset,
	}
	for _, fn := range opts {
		fn(self)
	}
	return self
}

type ChardetOption func(self *Chardet)

// WithFallback sets the charset returned when detection fails.
func WithFallback(charset string) ChardetOption {
	return func(self *Chardet) {
		if charset != "" {
			self.fallback = charset
		}
	}
}

// WithMinConfidence sets the confidence (0-100) below which the fallback
// charset is returned instead.
func WithMinConfidence(confidence int) ChardetOption {
	return func(self *Chardet) { self.minConfidence = confidence }
}

type Chardet struct {
	detector      *chardet.Detector
	fallback      string
	minConfidence int
}

var _ Detector = (*Chardet)(nil)

func (self *Chardet) Detect(data []byte) (Result, error) {
	if len(data) == 0 {
		return Empty(), nil
	}

	best, err := self.detector.DetectBest(data)
	if err != nil || best == nil || best.Charset == "" {
		return self.fallbackResult(data, nil), nil
	} else if best.Confidence < self.minConfidence {
		return self.fallbackResult(data, best), nil
	}
	return fromChardet(best), nil
}

// fallbackResult returns the fallback charset, then the best chardet guess
// and then LastResortCharset, whichever decodes data first.
func (self *Chardet) fallbackResult(data []byte, best *chardet.Result) Result {
	r := Result{Charset: self.fallback, Source: SourceFallback}
	if best != nil {
		r.Confidence = best.Confidence
	}

	switch {
	case decodes(self.fallback, data):
	case best != nil && decodes(best.Charset, data):
		r.Charset, r.Language = best.Charset, best.Language
	default:
		r.Charset = LastResortCharset
	}
	return r
}

func decodes(charset string, data []byte) bool {
	enc, err := encoding.Lookup(charset)
	if err != nil {
		return false
	}
	_, err = encoding.Decode(enc, data)
	return err == nil
}

func fromChardet(r *chardet.Result) Result {
	return Result{
		Charset:    r.Charset,
		Language:   r.Language,
		Confidence: r.Confidence,
		Source:     SourceChardet,
	}
}

// Candidates returns every charset chardet considers possible for data, most
// confident first.
func (self *Chardet) Candidates(data []byte) ([]Result, error) {
	if len(data) == 0 {
		return []Result{Empty()}, nil
	}

	all, err := self.detector.DetectAll(data)
	if err != nil {
		return nil, fmt.Errorf("detector: chardet: %w", err)
	}

	results := make([]Result, 0, len(all))
	for i := range all {
		results = append(results, fromChardet(&all[i]))
	}
	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	return results, nil
}
