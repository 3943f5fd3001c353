// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cli // import "utf8conv.app/internal/cli"

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"utf8conv.app/internal/detector"
	"utf8conv.app/internal/encoding"
)

var detectCmd = cobra.Command{
	Use:   "detect FILE",
	Short: "Show charsets FILE may be encoded with, most probable first",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return detect(cmd.OutOrStdout(), args[0], isTerminal(os.Stdout))
	},
}

func isTerminal(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }

// detect prints a table of charset candidates for the file at path. Without
// pretty the table is CSV.
func detect(w io.Writer, path string, pretty bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}

	candidates, err := detector.NewChardet().Candidates(data)
	if err != nil {
		return err
	}
	if r, err := detector.NewBOM().Detect(data); err == nil {
		candidates = append([]detector.Result{r}, candidates...)
	}

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{
		"#", "Charset", "Language", "Confidence", "Source", "Decodes",
	})
	for i := range candidates {
		r := &candidates[i]
		tw.AppendRow(table.Row{
			i + 1, r.Charset, r.Language, r.Confidence, string(r.Source),
			decodes(r.Charset, data),
		})
	}

	if !pretty {
		fmt.Fprintln(w, tw.RenderCSV())
		return nil
	}

	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	tw.SetCaption("MIME type: %s", mimetype.Detect(data).String())
	fmt.Fprintln(w, tw.Render())
	return nil
}

// decodes reports whether data is valid in charset.
func decodes(charset string, data []byte) string {
	enc, err := encoding.Lookup(charset)
	if err != nil {
		return "unsupported"
	}
	_, err = encoding.Decode(enc, data)
	return strconv.FormatBool(err == nil)
}
