package commands

import (
	"fmt"
	"inzetbooster/cmd/inzetbooster/utils"
	"inzetbooster/lib/platforms/inzetrooster"
	"inzetbooster/lib/roster"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var exportShiftsOpts struct {
	from   string
	to     string
	format string
}

func init() {
	flags := exportShiftsCmd.Flags()
	flags.StringVar(&exportShiftsOpts.from, "from", "", "First day to export (YYYY-MM-DD), defaults to today.")
	flags.StringVar(&exportShiftsOpts.to, "to", "", "Last day to export (YYYY-MM-DD), defaults to 52 weeks after --from.")
	flags.StringVar(&exportShiftsOpts.format, "format", formatCSV, "Output format, csv or table.")
	rootCmd.AddCommand(exportShiftsCmd)
}

var exportShiftsCmd = &cobra.Command{
	Use:   "export-shifts [--from YYYY-MM-DD] [--to YYYY-MM-DD] [--format csv|table]",
	Short: "Exports the shifts of every group.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := checkFormat(exportShiftsOpts.format)
		if err != nil {
			return err
		}
		var dates inzetrooster.DateRange
		dates.From, err = parseDateFlag("from", exportShiftsOpts.from)
		if err != nil {
			return err
		}
		dates.To, err = parseDateFlag("to", exportShiftsOpts.to)
		if err != nil {
			return err
		}
		if !dates.From.IsZero() && !dates.To.IsZero() && dates.To.Before(dates.From) {
			return fmt.Errorf("--to is before --from")
		}

		ctx := cmd.Context()
		client, err := login(ctx)
		if err != nil {
			return err
		}
		csv, err := client.ExportShifts(ctx, dates)
		if err != nil {
			return fmt.Errorf("export shifts: %w", err)
		}

		if exportShiftsOpts.format == formatCSV {
			fmt.Fprint(cmd.OutOrStdout(), csv)
			return nil
		}

		shifts, err := roster.ParseShiftsString(csv)
		if err != nil {
			return err
		}
		t := utils.NewTable()
		t.AppendHeader(table.Row{"ID", "Group", "Date", "Time", "Name", "Email", "Comments"})
		for _, s := range shifts {
			t.AppendRow(table.Row{
				s.ID,
				s.GroupName,
				s.Date.Format("Mon 02-01-2006"),
				fmt.Sprintf("%s - %s", s.Start, s.End),
				s.UserName,
				s.UserEmail,
				s.Comments,
			})
		}
		t.AppendFooter(table.Row{"", "", "", "", "", "Shifts", len(shifts)})
		t.Render()
		return nil
	},
}
