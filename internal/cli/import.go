package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/timetable-admin/internal/api"
	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/core"
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
	"github.com/JonMunkholm/timetable-admin/internal/store"
)

const defaultBackendURL = "http://localhost:8000"

type importOptions struct {
	backend  string
	timeout  time.Duration
	strict   bool
	encoding string
	format   string
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import PANEL FILE",
		Short: "Create backend records from a CSV or XLSX file",
		Long: `Import reads FILE, builds one record per row for PANEL and creates them in
the timetable backend one at a time, in file order. Rows that fail are
listed in the result; they do not stop the import.

Only panels with a backend resource can be imported (see "csvtool panels").`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return checkFormat(opts.format)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], args[1], opts)
		},
	}

	backend := os.Getenv("BACKEND_URL")
	if backend == "" {
		backend = defaultBackendURL
	}

	cmd.Flags().StringVar(&opts.backend, "backend", backend, "Timetable backend base URL (default $BACKEND_URL)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Per-request backend timeout")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail on a line that ends inside quotes")
	cmd.Flags().StringVar(&opts.encoding, "encoding", "utf-8", "Text encoding: utf-8, windows-1252 or iso-8859-1")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json or yaml")
	return cmd
}

// importSummary is the printed result of an import.
type importSummary struct {
	ImportID   string           `json:"import_id" yaml:"import_id"`
	Panel      string           `json:"panel" yaml:"panel"`
	File       string           `json:"file" yaml:"file"`
	TotalRows  int              `json:"total_rows" yaml:"total_rows"`
	Created    int              `json:"created" yaml:"created"`
	Skipped    int              `json:"skipped" yaml:"skipped"`
	Duration   string           `json:"duration" yaml:"duration"`
	FailedRows []core.FailedRow `json:"failed_rows" yaml:"failed_rows"`
}

func runImport(cmd *cobra.Command, panel, path string, opts importOptions) error {
	def, ok := core.Get(panel)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownPanel, panel)
	}
	if def.Info.Resource == "" {
		return fmt.Errorf("panel %s has no backend resource; it can only be imported through the server", panel)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	client := api.New(opts.backend, api.WithTimeout(opts.timeout))
	service, err := core.NewService(core.Options{
		// Every importable panel is synced, so nothing lands here.
		Local:   store.NewMemory(),
		Backend: client,
		Read: csvimport.ReadOptions{
			Encoding: opts.encoding,
			Strict:   opts.strict,
		},
		MaxConcurrent: 1,
	})
	if err != nil {
		return err
	}

	ctx := core.ContextWithActor(cmd.Context(), "csvtool")
	res, err := service.Import(ctx, auth.RoleAdmin, panel, csvimport.Upload{Name: path, Body: f})
	if res == nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	summary := importSummary{
		ImportID:   res.ImportID,
		Panel:      res.Panel,
		File:       res.FileName,
		TotalRows:  res.TotalRows,
		Created:    res.Created,
		Skipped:    res.Skipped,
		Duration:   res.Duration.Round(time.Millisecond).String(),
		FailedRows: res.FailedRows,
	}

	out := cmd.OutOrStdout()
	var werr error
	if opts.format == "yaml" {
		werr = writeYAML(out, summary)
	} else {
		werr = writeJSON(out, summary)
	}
	if err != nil {
		return fmt.Errorf("import stopped after %d of %d rows: %w", res.Created+res.Skipped, res.TotalRows, err)
	}
	return werr
}
