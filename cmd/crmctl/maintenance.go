package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newMaintenanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "maintenance clean|integrity|optimize",
		Short:     "Clean, check or optimize the enquiry database",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"clean", "integrity", "optimize"},
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client.Maintenance(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Message)
			var details struct {
				Issues []string `json:"issues"`
			}
			if len(result.Details) > 0 && json.Unmarshal(result.Details, &details) == nil {
				for _, issue := range details.Issues {
					fmt.Fprintf(out, "  - %s\n", issue)
				}
			}
			return nil
		},
	}
}
