package commands

import (
	"inzetbooster/cmd/inzetbooster/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var notificationsOpts struct {
	auditLog string
	limit    int
}

func init() {
	addAuditLogFlag(notificationsCmd, &notificationsOpts.auditLog)
	notificationsCmd.Flags().IntVar(&notificationsOpts.limit, "limit", 50, "Number of notifications to show.")
	rootCmd.AddCommand(notificationsCmd)
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications [--audit-log <path|url>] [--limit N]",
	Short: "Lists the most recent notifications from the audit log.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, database, err := openAuditLog(ctx, cmd, notificationsOpts.auditLog)
		if err != nil {
			return err
		}
		defer database.Close()

		entries, err := store.List(ctx, notificationsOpts.limit)
		if err != nil {
			return err
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Time", "Shift", "Template", "Email", "Message-Id"})
		for _, e := range entries {
			t.AppendRow(table.Row{
				e.Time.Format("2006-01-02 15:04"),
				e.ShiftID,
				e.ContentID,
				e.Email,
				e.MessageID,
			})
		}
		t.Render()
		return nil
	},
}
