package main

import (
	"context"
	"fmt"

	"github.com/sadopc/lifeos/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(o *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:       "export <csv|json>",
		Short:     "Export every daily check-in",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"csv", "json"},
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			format := args[0]
			if format != "csv" && format != "json" {
				return fmt.Errorf("format %q: want csv or json", format)
			}
			userID, err := e.user()
			if err != nil {
				return err
			}
			logs, err := e.store.AllDailyLogs(context.Background(), userID)
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = fmt.Sprintf("lifeos-export-%s.%s", e.now().Format("2006-01-02"), format)
			}
			if format == "csv" {
				err = export.ToCSV(logs, path)
			} else {
				err = export.ToJSON(logs, path)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d check-ins to %s\n", len(logs), path)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default lifeos-export-<date>.<format>)")
	return cmd
}
