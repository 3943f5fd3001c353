// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package metric // import "utf8conv.app/internal/metric"

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "utf8conv"

const (
	StatusOK = "ok"

	directionIn  = "in"
	directionOut = "out"
)

// New returns Metrics registered in their own registry, ready to be written
// for node_exporter textfile collector.
func New() *Metrics {
	self := &Metrics{
		registry: prometheus.NewRegistry(),

		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Number of conversions by status",
			},
			[]string{"status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Conversion duration",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"status"},
		),

		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "converted_bytes_total",
				Help:      "Bytes read from sources and written to outputs",
			},
			[]string{"direction"},
		),

		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful conversion",
			},
		),
	}

	self.registry.MustRegister(self.conversions, self.duration, self.bytes,
		self.lastSuccess)
	return self
}

type Metrics struct {
	registry *prometheus.Registry

	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	bytes       *prometheus.CounterVec
	lastSuccess prometheus.Gauge
}

// Observe records one conversion. Byte counters are updated only for
// successful conversions.
func (self *Metrics) Observe(status string, d time.Duration, bytesIn,
	bytesOut int,
) {
	self.conversions.WithLabelValues(status).Inc()
	self.duration.WithLabelValues(status).Observe(d.Seconds())
	if status != StatusOK {
		return
	}
	self.bytes.WithLabelValues(directionIn).Add(float64(bytesIn))
	self.bytes.WithLabelValues(directionOut).Add(float64(bytesOut))
	self.lastSuccess.SetToCurrentTime()
}

// WriteTextfile atomically writes all metrics into filename using Prometheus
// text format.
func (self *Metrics) WriteTextfile(filename string) error {
	if err := prometheus.WriteToTextfile(filename, self.registry); err != nil {
		return fmt.Errorf("metric: write %q: %w", filename, err)
	}
	return nil
}
