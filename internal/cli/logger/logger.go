// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"utf8conv.app/internal/config"
)

// InitializeDefaultLogger configures slog.Default according to logs. Returned
// io.Closer closes opened log files and must be called before exit.
func InitializeDefaultLogger(logs []config.Log) (io.Closer, error) {
	if len(logs) == 0 {
		return nopCloser{}, nil
	}

	h := NewFanoutHandler()
	for i := range logs {
		w, closer, err := openLogFile(logs[i].LogFile)
		if err != nil {
			_ = h.Close()
			return nil, err
		}
		h.Add(newHandler(w, &logs[i]), closer)
	}

	if len(logs) == 1 {
		slog.SetDefault(slog.New(h.handlers[0]))
	} else {
		slog.SetDefault(slog.New(h))
	}
	return h, nil
}

func openLogFile(logFile string) (io.Writer, io.Closer, error) {
	switch logFile {
	case "stdout":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: unable to open log file %q: %w",
			logFile, err)
	}
	return f, f, nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func newHandler(w io.Writer, c *config.Log) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}
	if !c.LogDateTime {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		}
	}

	switch c.LogFormat {
	case "human":
		return NewHumanHandler(w, opts, c.LogDateTime)
	case "json":
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
