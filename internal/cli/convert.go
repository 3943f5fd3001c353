// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cli // import "utf8conv.app/internal/cli"

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"utf8conv.app/internal/config"
	"utf8conv.app/internal/converter"
	"utf8conv.app/internal/detector"
	"utf8conv.app/internal/logging"
	"utf8conv.app/internal/metric"
)

func convertFile(ctx context.Context, w io.Writer, path string) error {
	log := logging.FromContext(ctx)

	startTime := time.Now()
	r, err := newConverter(config.Opts).Convert(ctx, path)
	writeMetrics(ctx, r, err, time.Since(startTime))
	if err != nil {
		log.Debug("conversion failed",
			slog.String("source", path),
			slog.String("kind", converter.KindOf(err).String()),
			logging.Err(err))
		return err
	}

	fmt.Fprintln(w, r.Output)
	return nil
}

func newConverter(opts *config.Options) *converter.Converter {
	return converter.New(newDetector(opts),
		converter.WithSuffix(opts.OutputSuffix()),
		converter.WithKeepExtension(opts.KeepExtension()),
		converter.WithStripBOM(opts.StripBOM()),
		converter.WithTextGuard(opts.TextGuard()),
		converter.WithFileMode(opts.FileMode()),
		converter.WithAliases(opts.CharsetAlias))
}

func newDetector(opts *config.Options) detector.Detector {
	if charset := opts.Charset(); charset != "" {
		return detector.NewFixed(charset)
	}
	return detector.NewChain(
		detector.NewBOM(),
		detector.NewChardet(
			detector.WithFallback(opts.FallbackCharset()),
			detector.WithMinConfidence(opts.MinConfidence())))
}

func writeMetrics(ctx context.Context, r *converter.Result, err error,
	d time.Duration,
) {
	filename := config.Opts.MetricsTextfile()
	if filename == "" {
		return
	}

	m := metric.New()
	if err != nil {
		m.Observe(converter.KindOf(err).String(), d, 0, 0)
	} else {
		m.Observe(metric.StatusOK, d, r.BytesIn, r.BytesOut)
	}

	if err := m.WriteTextfile(filename); err != nil {
		logging.FromContext(ctx).Warn("unable write metrics",
			slog.String("filename", filename), logging.Err(err))
	}
}
