package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		maps     []string
		required []string
		custom   []string
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a CSV or JSON file of enquiries",
		Long: `Import a CSV or JSON file of enquiries.

Columns are mapped with --map "Source Column=targetField". Without any --map
flags the server's suggested mapping is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			filename := filepath.Base(args[0])

			customFields, err := parseCustomFields(custom)
			if err != nil {
				return err
			}

			var mappings []domain.FieldMapping
			if len(maps) == 0 {
				preview, err := a.client.Preview(cmd.Context(), filename, data)
				if err != nil {
					return err
				}
				for _, m := range preview.SuggestedMappings {
					if m.Active() {
						mappings = append(mappings, m)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Using %d suggested mappings\n", len(mappings))
			} else if mappings, err = parseMappings(maps); err != nil {
				return err
			}
			markRequired(mappings, required)

			report, err := a.client.Import(cmd.Context(), filename, data, mappings, customFields)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Message)
			fmt.Fprintf(out, "  total: %d  imported: %d  skipped: %d  errors: %d\n",
				report.TotalRecords, report.Imported, report.Skipped, report.Errors)
			for _, d := range report.ErrorDetails {
				fmt.Fprintf(out, "  %s\n", d)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&maps, "map", "m", nil, `Column mapping "Source=target" (repeatable)`)
	cmd.Flags().StringSliceVarP(&required, "require", "r", nil, "Target fields that must be non-blank")
	cmd.Flags().StringArrayVar(&custom, "custom", nil, `Custom field "key=Label" (repeatable)`)

	cmd.AddCommand(newImportPreviewCmd(a))
	return cmd
}

func newImportPreviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preview FILE",
		Short: "Show the columns of a file and the suggested mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			preview, err := a.client.Preview(cmd.Context(), filepath.Base(args[0]), data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d records\n\n", preview.TotalRecords)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COLUMN\tTARGET\tREQUIRED")
			for _, m := range preview.SuggestedMappings {
				target := m.TargetField
				if target == "" {
					target = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%v\n", m.SourceField, target, m.IsRequired)
			}
			return tw.Flush()
		},
	}
}

// parseMappings turns "Source=target" pairs into mappings. The source may
// itself contain '='; the last one splits.
func parseMappings(pairs []string) ([]domain.FieldMapping, error) {
	out := make([]domain.FieldMapping, 0, len(pairs))
	for _, p := range pairs {
		i := strings.LastIndex(p, "=")
		if i <= 0 || i == len(p)-1 {
			return nil, fmt.Errorf("invalid mapping %q, want Source=target", p)
		}
		out = append(out, domain.FieldMapping{
			SourceField: strings.TrimSpace(p[:i]),
			TargetField: strings.TrimSpace(p[i+1:]),
		})
	}
	return out, nil
}

func parseCustomFields(pairs []string) ([]domain.CustomField, error) {
	var out []domain.CustomField
	for _, p := range pairs {
		key, label, ok := strings.Cut(p, "=")
		key, label = strings.TrimSpace(key), strings.TrimSpace(label)
		if !ok || key == "" || label == "" {
			return nil, fmt.Errorf("invalid custom field %q, want key=Label", p)
		}
		out = append(out, domain.CustomField{Key: key, Label: label})
	}
	return out, nil
}

func markRequired(mappings []domain.FieldMapping, required []string) {
	for _, r := range required {
		for i := range mappings {
			if mappings[i].TargetField == r {
				mappings[i].IsRequired = true
			}
		}
	}
}
