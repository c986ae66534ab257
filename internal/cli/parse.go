package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
)

type parseOptions struct {
	template string
	strict   bool
	encoding string
	format   string
}

func newParseCmd() *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Print the rows of a CSV or XLSX file",
		Long: `Parse reads FILE ("-" for stdin, read as CSV) and prints one object per
data row keyed by the file's headers. With --template the rows are re-keyed
to the given header list the same way uploads are.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return checkFormat(opts.format)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.template, "template", "", "Comma separated template headers to normalize to")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail on a line that ends inside quotes")
	cmd.Flags().StringVar(&opts.encoding, "encoding", "utf-8", "Text encoding: utf-8, windows-1252 or iso-8859-1")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json or yaml")
	return cmd
}

func runParse(cmd *cobra.Command, path string, opts parseOptions) error {
	up := csvimport.Upload{Name: path, Body: cmd.InOrStdin()}
	if path == "-" {
		up.Name = "stdin.csv"
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		up.Body = f
	}

	adapter := csvimport.NewAdapter(csvimport.ReadOptions{
		Encoding: opts.encoding,
		Strict:   opts.strict,
	})
	batch, err := adapter.Load(cmd.Context(), up, splitList(opts.template))
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	slog.Info("parsed file", "file", up.Name, "rows", batch.Len(), "normalized", batch.IsNormalized())
	return writeRows(cmd.OutOrStdout(), opts.format, batch.Rows())
}
