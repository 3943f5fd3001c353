// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package config // import "utf8conv.app/internal/config"

// Opts holds parsed configuration options.
var Opts *Options

// LoadYAML loads configuration values from envFile (if it isn't empty) and
// from environment variables after that, then from yamlFile, if it isn't
// empty.
func LoadYAML(yamlFile, envFile string) error {
	cfg := NewParser()
	var err error
	if envFile != "" {
		_, err = cfg.ParseEnvFile(envFile)
	} else {
		_, err = cfg.ParseEnvironmentVariables()
	}
	if err != nil {
		return err
	}

	if yamlFile != "" {
		if _, err := cfg.ParseYAML(yamlFile); err != nil {
			return err
		}
	}
	Opts = cfg.opts
	return nil
}
