// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cli // import "utf8conv.app/internal/cli"

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"utf8conv.app/internal/version"
)

var infoCmd = cobra.Command{
	Use:   "info",
	Short: "Show build information",
	Args:  cobra.ExactArgs(0),
	Run:   func(cmd *cobra.Command, args []string) { info(cmd.OutOrStdout()) },
}

func info(w io.Writer) {
	fmt.Fprintln(w, "Version:", version.Version)
	if u := version.ReleaseURL(version.Version); u != "" {
		fmt.Fprintln(w, "Release:", u)
	}
	fmt.Fprintln(w, "Commit:", version.Commit)
	if u := version.CommitURL(version.Commit); u != "" {
		fmt.Fprintln(w, "Commit URL:", u)
	}
	fmt.Fprintln(w, "Build Date:", version.BuildDate)
	fmt.Fprintln(w, "Go Version:", runtime.Version())
	fmt.Fprintln(w, "Compiler:", runtime.Compiler)
	fmt.Fprintln(w, "Arch:", runtime.GOARCH)
	fmt.Fprintln(w, "OS:", runtime.GOOS)
}
