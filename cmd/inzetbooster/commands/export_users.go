package commands

import (
	"fmt"
	"inzetbooster/cmd/inzetbooster/utils"
	"inzetbooster/lib/roster"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var exportUsersOpts struct {
	includeInactive bool
	format          string
}

func init() {
	flags := exportUsersCmd.Flags()
	flags.BoolVar(&exportUsersOpts.includeInactive, "include-inactive", false, "Also export users that are no longer active.")
	flags.StringVar(&exportUsersOpts.format, "format", formatCSV, "Output format, csv or table.")
	rootCmd.AddCommand(exportUsersCmd)
}

var exportUsersCmd = &cobra.Command{
	Use:   "export-users [--include-inactive] [--format csv|table]",
	Short: "Exports the users of the organisation.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := checkFormat(exportUsersOpts.format)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client, err := login(ctx)
		if err != nil {
			return err
		}
		csv, err := client.ExportUsers(ctx, exportUsersOpts.includeInactive)
		if err != nil {
			return fmt.Errorf("export users: %w", err)
		}

		if exportUsersOpts.format == formatCSV {
			fmt.Fprint(cmd.OutOrStdout(), csv)
			return nil
		}

		persons, err := roster.ParsePersons(strings.NewReader(csv))
		if err != nil {
			return err
		}
		t := utils.NewTable()
		t.AppendHeader(table.Row{"ID", "Name", "Email", "Username", "Role", "Active from", "Inactive from", "Last login"})
		for _, p := range persons {
			t.AppendRow(table.Row{
				p.ID,
				p.FullName(),
				p.Email,
				p.Username,
				p.Role,
				formatDate(p.ActiveFrom, "2006-01-02"),
				formatDate(p.InactiveFrom, "2006-01-02"),
				formatDate(p.LastLogin, "2006-01-02 15:04"),
			})
		}
		t.AppendFooter(table.Row{"", "", "", "", "", "", "Users", len(persons)})
		t.Render()
		return nil
	},
}
