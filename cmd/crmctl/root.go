package main

import (
	"os"

	"github.com/ignite/enquiry-crm/internal/client"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

// app carries the state shared by every subcommand.
type app struct {
	server string
	client *client.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Administer the enquiry CRM",
		Long:          "crmctl imports enquiry spreadsheets, cleans up duplicates and manages snapshots through the admin API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.client = client.New(a.server)
		},
	}

	_ = godotenv.Load()
	server := os.Getenv("CRM_API_URL")
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVarP(&a.server, "server", "s", server, "Admin API base URL (env CRM_API_URL)")

	root.AddCommand(newImportCmd(a))
	root.AddCommand(newDuplicatesCmd(a))
	root.AddCommand(newBackupCmd(a))
	root.AddCommand(newMaintenanceCmd(a))
	return root
}
