// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

const humanTimeLayout = "2006/01/02 15:04:05"

// NewHumanHandler returns a handler, which writes lines like
//
//	[2006/01/02 15:04:05 ]INFO File converted output=data.tsv.conv.tsv
//
// Attributes are formatted by slog.TextHandler.
func NewHumanHandler(w io.Writer, opts *slog.HandlerOptions, logTime bool,
) *HumanHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	out := &lineWriter{w: w, logTime: logTime}
	textOpts := *opts
	textOpts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 {
			switch a.Key {
			case slog.TimeKey, slog.LevelKey, slog.MessageKey:
				return slog.Attr{}
			}
		}
		if opts.ReplaceAttr != nil {
			return opts.ReplaceAttr(groups, a)
		}
		return a
	}
	return &HumanHandler{h: slog.NewTextHandler(out, &textOpts), out: out}
}

type HumanHandler struct {
	h   slog.Handler
	out *lineWriter
}

var _ slog.Handler = (*HumanHandler)(nil)

func (self *HumanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return self.h.Enabled(ctx, level)
}

func (self *HumanHandler) Handle(ctx context.Context, r slog.Record) error {
	self.out.mu.Lock()
	defer self.out.mu.Unlock()

	self.out.begin(r)
	if err := self.h.Handle(ctx, r); err != nil {
		return fmt.Errorf("logger: failed slog handler: %w", err)
	}
	return nil
}

func (self *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &HumanHandler{h: self.h.WithAttrs(attrs), out: self.out}
}

func (self *HumanHandler) WithGroup(name string) slog.Handler {
	return &HumanHandler{h: self.h.WithGroup(name), out: self.out}
}

// lineWriter receives formatted attributes from slog.TextHandler, one Write
// per record, and prepends them with the head of the record.
type lineWriter struct {
	mu      sync.Mutex
	w       io.Writer
	logTime bool
	buf     []byte
}

func (self *lineWriter) begin(r slog.Record) {
	self.buf = self.buf[:0]
	if self.logTime {
		self.buf = r.Time.AppendFormat(self.buf, humanTimeLayout)
		self.buf = append(self.buf, ' ')
	}
	self.buf = append(self.buf, r.Level.String()...)
	self.buf = append(self.buf, ' ')
	self.buf = append(self.buf, r.Message...)
}

func (self *lineWriter) Write(p []byte) (int, error) {
	if attrs := bytes.TrimSpace(p); len(attrs) > 0 {
		self.buf = append(self.buf, ' ')
		self.buf = append(self.buf, attrs...)
	}
	self.buf = append(self.buf, '\n')

	if _, err := self.w.Write(self.buf); err != nil {
		return 0, fmt.Errorf("logger: failed write formatted entry: %w", err)
	}
	return len(p), nil
}
