// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// NewFanoutHandler returns a handler, which passes every record to all added
// handlers.
func NewFanoutHandler() *FanoutHandler { return &FanoutHandler{} }

type FanoutHandler struct {
	handlers []slog.Handler
	closers  []io.Closer
}

var (
	_ slog.Handler = (*FanoutHandler)(nil)
	_ io.Closer    = (*FanoutHandler)(nil)
)

// Add appends h. If closer isn't nil, it will be closed by Close.
func (self *FanoutHandler) Add(h slog.Handler, closer io.Closer,
) *FanoutHandler {
	self.handlers = append(self.handlers, h)
	if closer != nil {
		self.closers = append(self.closers, closer)
	}
	return self
}

func (self *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range self.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (self *FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range self.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	err := fmt.Errorf("logger: one of handlers failed: %w", errors.Join(errs...))
	self.logInternalErr(ctx, err)
	return err
}

func (self *FanoutHandler) logInternalErr(ctx context.Context, err error) {
	h0 := self.handlers[0]
	if !h0.Enabled(ctx, slog.LevelError) {
		return
	}

	r := slog.NewRecord(time.Now(), slog.LevelError, "unable log message", 0)
	r.AddAttrs(slog.Any("error", err))
	_ = h0.Handle(ctx, r)
}

func (self *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return self.clone(func(h slog.Handler) slog.Handler {
		return h.WithAttrs(attrs)
	})
}

func (self *FanoutHandler) WithGroup(name string) slog.Handler {
	return self.clone(func(h slog.Handler) slog.Handler {
		return h.WithGroup(name)
	})
}

func (self *FanoutHandler) clone(fn func(h slog.Handler) slog.Handler,
) *FanoutHandler {
	handlers := make([]slog.Handler, len(self.handlers))
	for i, h := range self.handlers {
		handlers[i] = fn(h)
	}
	return &FanoutHandler{handlers: handlers, closers: self.closers}
}

func (self *FanoutHandler) Close() error {
	var errs []error
	for _, closer := range self.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
