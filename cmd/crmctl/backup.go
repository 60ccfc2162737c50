package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/spf13/cobra"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backup",
		Aliases: []string{"backups"},
		Short:   "Create, list, download and restore snapshots",
	}
	cmd.AddCommand(
		newBackupCreateCmd(a),
		newBackupListCmd(a),
		newBackupDownloadCmd(a),
		newBackupRestoreCmd(a),
	)
	return cmd
}

func newBackupCreateCmd(a *app) *cobra.Command {
	var trigger string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Take a manual snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.client.CreateBackup(cmd.Context(), trigger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup #%d created: %d enquiries, %s\n",
				snap.ID, snap.EnquiryCount, snap.SizeDescriptor())
			return nil
		},
	}
	cmd.Flags().StringVarP(&trigger, "trigger", "t", "", "Reason recorded with the snapshot")
	return cmd
}

func newBackupListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := a.client.ListBackups(cmd.Context())
			if err != nil {
				return err
			}
			printSnapshots(cmd, snaps)
			return nil
		},
	}
}

func printSnapshots(cmd *cobra.Command, snaps []domain.Snapshot) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tTYPE\tENQUIRIES\tSIZE\tTRIGGER")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Type, s.EnquiryCount, s.SizeDescriptor(), s.Trigger)
	}
	tw.Flush()
}

func newBackupDownloadCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "download ID",
		Short: "Save a snapshot payload to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBackupID(args[0])
			if err != nil {
				return err
			}
			data, err := a.client.DownloadBackup(cmd.Context(), id)
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("backup_%d.json", id)
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved backup #%d to %s\n", id, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default backup_<id>.json)")
	return cmd
}

func newBackupRestoreCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore ID",
		Short: "Replace every enquiry with the contents of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBackupID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("restore replaces every enquiry; rerun with --yes to confirm")
			}
			n, err := a.client.RestoreBackup(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d enquiries from backup #%d\n", n, id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the restore")
	return cmd
}

func parseBackupID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid backup id %q", arg)
	}
	return id, nil
}
