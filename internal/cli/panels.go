package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/timetable-admin/internal/core"
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
)

func newTemplateCmd() *cobra.Command {
	var headers string

	cmd := &cobra.Command{
		Use:   "template [PANEL]",
		Short: "Print the header-only CSV for a panel or a header list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []string
			switch {
			case len(args) == 1 && headers != "":
				return errors.New("give either a panel or --headers, not both")
			case len(args) == 1:
				def, ok := core.Get(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", core.ErrUnknownPanel, args[0])
				}
				list = def.Info.Headers
			case headers != "":
				list = splitList(headers)
			default:
				return errors.New("a panel or --headers is required")
			}

			_, err := fmt.Fprint(cmd.OutOrStdout(), csvimport.SerializeTemplate(list))
			return err
		},
	}

	cmd.Flags().StringVar(&headers, "headers", "", "Comma separated headers")
	return cmd
}

func newPanelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "panels",
		Short: "List the registered panels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tROLES\tRESOURCE\tHEADERS")
			for _, def := range core.All() {
				roles := make([]string, len(def.Info.Roles))
				for i, r := range def.Info.Roles {
					roles[i] = string(r)
				}
				resource := def.Info.Resource
				if resource == "" {
					resource = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					def.Info.Key,
					strings.Join(roles, ","),
					resource,
					strings.Join(def.Info.Headers, ","),
				)
			}
			return tw.Flush()
		},
	}
}
