// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cli // import "utf8conv.app/internal/cli"

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"utf8conv.app/internal/cli/logger"
	"utf8conv.app/internal/config"
	"utf8conv.app/internal/converter"
	"utf8conv.app/internal/version"
)

const (
	exitFailure = 1
	exitDecode  = 2
	exitEncode  = 3
	exitDetect  = 4
)

var (
	flagConfigFile string
	flagConfigYAML string
	flagDebugMode  bool

	flagCharset     string
	flagSuffix      string
	flagStripBOM    bool
	flagNoTextGuard bool

	logCloser io.Closer
)

var Cmd = cobra.Command{
	Use:   "utf8conv [flags] FILE",
	Short: "Convert a text file of any charset to UTF-8",
	Long: `Detect the charset of FILE and write its content, re-encoded as UTF-8,
next to it as FILE<suffix><ext>, like data.tsv.conv.tsv.`,
	Version: version.Version,
	Args:    cobra.ExactArgs(1),

	SilenceErrors:     true,
	PersistentPreRunE: persistentPreRunE,

	RunE: func(cmd *cobra.Command, args []string) error {
		return convertFile(cmd.Context(), cmd.OutOrStdout(), args[0])
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
			logCloser = nil
		}
	},
}

var configDumpCmd = cobra.Command{
	Use:   "config-dump",
	Short: "Print parsed configuration values",
	Args:  cobra.ExactArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), config.Opts)
	},
}

func init() {
	Cmd.PersistentFlags().StringVarP(&flagConfigFile, "config-file", "c", "",
		"Path to .env configuration file")
	Cmd.PersistentFlags().StringVarP(&flagConfigYAML, "config-yaml", "", "",
		"Path to YAML configuration file")
	Cmd.PersistentFlags().BoolVarP(&flagDebugMode, "debug", "d", false,
		"Show debug logs")

	Cmd.Flags().StringVar(&flagCharset, "charset", "",
		"Don't detect, decode FILE using this charset")
	Cmd.Flags().StringVar(&flagSuffix, "suffix", "",
		"Suffix of the output file (default from OUTPUT_SUFFIX)")
	Cmd.Flags().BoolVar(&flagStripBOM, "strip-bom", false,
		"Remove UTF-8 BOM from the output")
	Cmd.Flags().BoolVar(&flagNoTextGuard, "no-text-guard", false,
		"Convert FILE even if it doesn't look like text")

	Cmd.AddCommand(&configDumpCmd)
	Cmd.AddCommand(&detectCmd)
	Cmd.AddCommand(&infoCmd)
}

func persistentPreRunE(cmd *cobra.Command, args []string) error {
	// Don't show usage on app errors.
	// https://github.com/spf13/cobra/issues/340#issuecomment-378726225
	cmd.SilenceUsage = true

	if err := config.LoadYAML(flagConfigYAML, flagConfigFile); err != nil {
		return err
	}
	applyFlags(config.Opts)

	closer, err := logger.InitializeDefaultLogger(config.Opts.Logging())
	if err != nil {
		return err
	}
	logCloser = closer
	return nil
}

func applyFlags(opts *config.Options) {
	if flagDebugMode {
		opts.SetLogLevel("debug")
	}
	if flagCharset != "" {
		opts.SetCharset(flagCharset)
	}
	if flagSuffix != "" {
		opts.SetOutputSuffix(flagSuffix)
	}
	if flagStripBOM {
		opts.EnableStripBOM()
	}
	if flagNoTextGuard {
		opts.DisableTextGuard()
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	err := Cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "utf8conv: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch converter.KindOf(err) {
	case converter.KindDecode:
		return exitDecode
	case converter.KindEncode:
		return exitEncode
	case converter.KindDetect:
		return exitDetect
	}
	return exitFailure
}
