// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package detector // import "utf8conv.app/internal/detector"

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrNotDetected is returned by a Detector which has no opinion about the
// given bytes. Chain moves on to the next detector when it sees it.
var ErrNotDetected = errors.New("detector: charset not detected")

// DefaultCharset is returned for empty input.
const DefaultCharset = "UTF-8"

// Source tells which strategy produced a Result.
type Source string

const (
	SourceBOM      Source = "bom"
	SourceChardet  Source = "chardet"
	SourceFallback Source = "fallback"
	SourceFixed    Source = "fixed"
	SourceEmpty    Source = "empty"
)

// Result is a best-effort guess of the charset used to produce some bytes.
type Result struct {
	Charset    string
	Language   string
	Confidence int
	Source     Source
}

func (self *Result) String() string {
	s := self.Charset + " (" + string(self.Source) + ", confidence " +
		strconv.Itoa(self.Confidence)
	if self.Language != "" {
		s += ", language " + self.Language
	}
	return s + ")"
}

// Detector guesses the charset of raw bytes.
type Detector interface {
	Detect(data []byte) (Result, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(data []byte) (Result, error)

func (fn DetectorFunc) Detect(data []byte) (Result, error) { return fn(data) }

// Empty returns the result used for empty input.
func Empty() Result {
	return Result{Charset: DefaultCharset, Confidence: 100, Source: SourceEmpty}
}

// NewChain returns a Detector, which asks detectors in order and returns the
// first result. A detector returning ErrNotDetected passes its turn to the
// next one.
func NewChain(detectors ...Detector) *Chain {
	return &Chain{detectors: detectors}
}

type Chain struct {
	detectors []Detector
}

var _ Detector = (*Chain)(nil)

func (self *Chain) Detect(data []byte) (Result, error) {
	if len(data) == 0 {
		return Empty(), nil
	}

	for _, d := range self.detectors {
		r, err := d.Detect(data)
		switch {
		case errors.Is(err, ErrNotDetected):
			continue
		case err != nil:
			return Result{}, fmt.Errorf("detector: chain: %w", err)
		}
		return r, nil
	}
	return Result{}, ErrNotDetected
}

// NewFixed returns a Detector, which always reports charset. It's used when
// the user knows better.
func NewFixed(charset string) *Fixed { return &Fixed{charset: charset} }

type Fixed struct {
	charset string
}

var _ Detector = (*Fixed)(nil)

func (self *Fixed) Detect([]byte) (Result, error) {
	return Result{
		Charset:    self.charset,
		Confidence: 100,
		Source:     SourceFixed,
	}, nil
}
