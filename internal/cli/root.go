// Package cli implements csvtool, a command line companion to the admin
// server for inspecting upload files and bulk-importing them into the
// timetable backend.
//
// Commands:
//
//	csvtool parse FILE      print the rows of a CSV or XLSX file
//	csvtool template PANEL  print a panel's header-only CSV
//	csvtool panels          list the registered panels
//	csvtool import PANEL FILE
//	                        create backend records from a file
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	_ "github.com/JonMunkholm/timetable-admin/internal/core/panels" // Register all panels
	"github.com/JonMunkholm/timetable-admin/internal/logging"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

// NewRootCmd builds the csvtool command tree.
func NewRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "csvtool",
		Short:         "Inspect and import timetable upload files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logs go to stderr so stdout stays pipeable.
			logging.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	cmd.AddCommand(
		newParseCmd(),
		newTemplateCmd(),
		newPanelsCmd(),
		newImportCmd(),
	)
	return cmd
}

// Execute runs csvtool with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// splitList parses a comma separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func checkFormat(format string) error {
	switch format {
	case "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
