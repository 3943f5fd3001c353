// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package config // import "utf8conv.app/internal/config"

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
)

const (
	defaultOutputSuffix = ".conv"
	defaultFileMode     = "0644"
)

// Option contains a key to value map of a single option. It may be used to
// output debug strings.
type Option struct {
	Key   string
	Value any
}

// Options contains configuration options.
type Options struct {
	// CharsetAliases maps detected charset labels to labels used for decoding,
	// like ISO-8859-1 to windows-1252.
	CharsetAliases map[string]string `yaml:"charset_aliases" validate:"dive,keys,required,endkeys,required,charset"`

	env EnvOptions

	fileMode os.FileMode
}

type EnvOptions struct {
	LogFile         string `env:"LOG_FILE" validate:"required"`
	LogDateTime     bool   `env:"LOG_DATE_TIME"`
	LogFormat       string `env:"LOG_FORMAT" validate:"required,oneof=human json text"`
	LogLevel        string `env:"LOG_LEVEL" validate:"required,oneof=debug info warning error"`
	Logging         []Log  `envPrefix:"LOG" validate:"dive,required"`
	Charset         string `env:"CHARSET" validate:"omitempty,charset"`
	FallbackCharset string `env:"FALLBACK_CHARSET" validate:"required,charset"`
	MinConfidence   int    `env:"MIN_CONFIDENCE" validate:"min=0,max=100"`
	OutputSuffix    string `env:"OUTPUT_SUFFIX" validate:"required,excludesall=/"`
	KeepExtension   bool   `env:"KEEP_EXTENSION"`
	StripBOM        bool   `env:"STRIP_BOM"`
	TextGuard       bool   `env:"TEXT_GUARD"`
	FileMode        string `env:"FILE_MODE" validate:"required,numeric"`
	MetricsTextfile string `env:"METRICS_TEXTFILE" validate:"omitempty,filepath"`
}

type Log struct {
	LogFile     string `env:"FILE" validate:"required"`
	LogDateTime bool   `env:"DATE_TIME"`
	LogFormat   string `env:"FORMAT" validate:"required,oneof=human json text"`
	LogLevel    string `env:"LEVEL" validate:"required,oneof=debug info warning error"`
}

// NewOptions returns Options with default values.
func NewOptions() *Options {
	return &Options{
		CharsetAliases: map[string]string{},

		env: EnvOptions{
			LogFile:         "stderr",
			LogFormat:       "text",
			LogLevel:        "info",
			FallbackCharset: "UTF-8",
			OutputSuffix:    defaultOutputSuffix,
			KeepExtension:   true,
			TextGuard:       true,
			FileMode:        defaultFileMode,
		},

		fileMode: 0o644,
	}
}

func (o *Options) init() error {
	if err := o.validate(); err != nil {
		return err
	}

	mode, err := strconv.ParseUint(o.env.FileMode, 8, 32)
	if err != nil {
		return fmt.Errorf("config: invalid FILE_MODE %q: %w", o.env.FileMode, err)
	} else if mode > 0o777 {
		return fmt.Errorf("config: invalid FILE_MODE %q: only permission bits allowed",
			o.env.FileMode)
	}
	o.fileMode = os.FileMode(mode)
	return nil
}

func (o *Options) validate() error {
	if err := Validator().Struct(&o.env); err != nil {
		return fmt.Errorf("config: failed validate: %w", err)
	}
	return nil
}

func (o *Options) LogFile() string { return o.env.LogFile }

// LogDateTime returns true if the date/time should be displayed in log
// messages.
func (o *Options) LogDateTime() bool { return o.env.LogDateTime }

// LogFormat returns the log format.
func (o *Options) LogFormat() string { return o.env.LogFormat }

// LogLevel returns the log level.
func (o *Options) LogLevel() string { return o.env.LogLevel }

// SetLogLevel sets the log level.
func (o *Options) SetLogLevel(level string) { o.env.LogLevel = level }

func (o *Options) Logging() []Log {
	if len(o.env.Logging) == 0 {
		return []Log{{
			LogFile:     o.LogFile(),
			LogDateTime: o.LogDateTime(),
			LogFormat:   o.LogFormat(),
			LogLevel:    o.LogLevel(),
		}}
	}
	return slices.Clone(o.env.Logging)
}

// Charset returns the charset which overrides detection, if any.
func (o *Options) Charset() string { return o.env.Charset }

// SetCharset overrides detection with given charset.
func (o *Options) SetCharset(charset string) { o.env.Charset = charset }

// FallbackCharset returns the charset used when detection isn't confident.
func (o *Options) FallbackCharset() string { return o.env.FallbackCharset }

// MinConfidence returns the minimal accepted detection confidence.
func (o *Options) MinConfidence() int { return o.env.MinConfidence }

// OutputSuffix returns the suffix appended to the source path.
func (o *Options) OutputSuffix() string { return o.env.OutputSuffix }

// SetOutputSuffix sets the suffix appended to the source path.
func (o *Options) SetOutputSuffix(suffix string) { o.env.OutputSuffix = suffix }

// KeepExtension returns true if the source extension must be repeated after
// the output suffix.
func (o *Options) KeepExtension() bool { return o.env.KeepExtension }

// StripBOM returns true if UTF-8 BOM must be removed from the output.
func (o *Options) StripBOM() bool { return o.env.StripBOM }

// EnableStripBOM turns on BOM removal.
func (o *Options) EnableStripBOM() { o.env.StripBOM = true }

// TextGuard returns true if binary content must be rejected.
func (o *Options) TextGuard() bool { return o.env.TextGuard }

// DisableTextGuard turns off the binary content check.
func (o *Options) DisableTextGuard() { o.env.TextGuard = false }

// FileMode returns permissions of the output file.
func (o *Options) FileMode() os.FileMode { return o.fileMode }

// MetricsTextfile returns the path for metrics in Prometheus text format.
func (o *Options) MetricsTextfile() string { return o.env.MetricsTextfile }

// CharsetAlias returns the label used to decode charset.
func (o *Options) CharsetAlias(charset string) string {
	for from, to := range o.CharsetAliases {
		if strings.EqualFold(from, charset) {
			return to
		}
	}
	return charset
}

// SortedOptions returns options as a list of key value pairs, sorted by keys.
func (o *Options) SortedOptions() []Option {
	keyValues := map[string]any{
		"CHARSET":          o.Charset(),
		"FALLBACK_CHARSET": o.FallbackCharset(),
		"FILE_MODE":        fmt.Sprintf("%#o", uint32(o.FileMode())),
		"KEEP_EXTENSION":   o.KeepExtension(),
		"LOG_DATE_TIME":    o.LogDateTime(),
		"LOG_FILE":         o.LogFile(),
		"LOG_FORMAT":       o.LogFormat(),
		"LOG_LEVEL":        o.LogLevel(),
		"METRICS_TEXTFILE": o.MetricsTextfile(),
		"MIN_CONFIDENCE":   o.MinConfidence(),
		"OUTPUT_SUFFIX":    o.OutputSuffix(),
		"STRIP_BOM":        o.StripBOM(),
		"TEXT_GUARD":       o.TextGuard(),
	}

	for _, from := range slices.Sorted(maps.Keys(o.CharsetAliases)) {
		keyValues["CHARSET_ALIAS["+from+"]"] = o.CharsetAliases[from]
	}

	sortedKeys := slices.Sorted(maps.Keys(keyValues))
	sortedOptions := make([]Option, len(sortedKeys))
	for i, key := range sortedKeys {
		sortedOptions[i] = Option{Key: key, Value: keyValues[key]}
	}
	return sortedOptions
}

func (o *Options) String() string {
	var builder strings.Builder
	for _, option := range o.SortedOptions() {
		fmt.Fprintf(&builder, "%s=%v\n", option.Key, option.Value)
	}
	return builder.String()
}
