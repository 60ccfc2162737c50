package main

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDuplicatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "duplicates",
		Aliases: []string{"dupes"},
		Short:   "Find and remove duplicate enquiries",
	}
	cmd.AddCommand(newDuplicatesScanCmd(a), newDuplicatesRemoveCmd(a))
	return cmd
}

func newDuplicatesScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List duplicate groups and the records recommended for removal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scan, err := a.client.ScanDuplicates(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			s := scan.Summary
			fmt.Fprintf(out, "%d enquiries, %d groups, %d duplicates, %d unique, %d removable\n",
				s.TotalEnquiries, s.DuplicateGroups, s.TotalDuplicates, s.UniqueRecords, s.PotentialSavings)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, g := range scan.Groups {
				fmt.Fprintf(tw, "\n%s\t%s\t(%d)\n", g.Type, g.Criteria, g.Count)
				for i, e := range g.Enquiries {
					action := "remove"
					if i == 0 {
						action = "keep"
					}
					fmt.Fprintf(tw, "  %d\t%s %s\t%s\t%s\t%s\n", e.ID, e.FirstName, e.LastName, e.Email,
						e.CreatedAt.Format("2006-01-02 15:04"), action)
				}
			}
			return tw.Flush()
		},
	}
}

func newDuplicatesRemoveCmd(a *app) *cobra.Command {
	var recommended bool

	cmd := &cobra.Command{
		Use:   "remove [ID...]",
		Short: "Delete the given enquiry ids, or every recommended one",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if recommended {
				if len(ids) > 0 {
					return errors.New("pass either ids or --recommended, not both")
				}
				scan, err := a.client.ScanDuplicates(cmd.Context())
				if err != nil {
					return err
				}
				for _, g := range scan.Groups {
					for _, e := range g.Recommended {
						ids = append(ids, e.ID)
					}
				}
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to remove")
				return nil
			}

			result, err := a.client.RemoveDuplicates(cmd.Context(), ids)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			if !result.BackupCreated {
				fmt.Fprintln(cmd.OutOrStdout(), "Warning: no snapshot was taken before removal")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&recommended, "recommended", false, "Remove every record the scan recommends")
	return cmd
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid enquiry id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
