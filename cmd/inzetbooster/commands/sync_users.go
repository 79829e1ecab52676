package commands

import (
	"fmt"
	"inzetbooster/cmd/inzetbooster/utils"
	"inzetbooster/lib/manegeplan"
	"inzetbooster/lib/roster"
	"inzetbooster/lib/usersync"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var syncUsersOpts struct {
	dryRun   bool
	idPrefix string
}

func init() {
	flags := syncUsersCmd.Flags()
	flags.BoolVar(&syncUsersOpts.dryRun, "dry-run", false, "Only report what would change.")
	flags.StringVar(&syncUsersOpts.idPrefix, "id-prefix", roster.DefaultIDPrefix, "Id prefix of users created from Manegeplan.")
	rootCmd.AddCommand(syncUsersCmd)
}

func renderPersons(title string, persons []roster.Person) {
	if len(persons) == 0 {
		return
	}
	t := utils.NewTable()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"ID", "Name", "Email"})
	for _, p := range persons {
		t.AppendRow(table.Row{p.ID, p.FullName(), p.Email})
	}
	t.Render()
}

func renderPlan(plan usersync.Plan) {
	renderPersons("Added", plan.Added)
	renderPersons("Removed", plan.Removed)
	renderPersons("Reactivated (not from Manegeplan)", plan.Reactivated)
	renderPersons("Skipped, missing name or email", plan.Invalid)

	if len(plan.Duplicates) > 0 {
		t := utils.NewTable()
		t.SetTitle("Possible duplicates")
		t.AppendHeader(table.Row{"New", "Existing", "Similarity"})
		for _, d := range plan.Duplicates {
			t.AppendRow(table.Row{
				fmt.Sprintf("%s %s <%s>", d.Incoming.ID, d.Incoming.FullName(), d.Incoming.Email),
				fmt.Sprintf("%s %s <%s>", d.Existing.ID, d.Existing.FullName(), d.Existing.Email),
				fmt.Sprintf("%.2f", d.Similarity),
			})
		}
		t.Render()
	}
}

var syncUsersCmd = &cobra.Command{
	Use:   "sync-users-from-manegeplan <export.xlsx> [--dry-run]",
	Short: "Makes the active roster users match a Manegeplan member export.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		prefix := syncUsersOpts.idPrefix
		resolveString(cmd, "id-prefix", &prefix, "", config.IDPrefix)

		incoming, err := manegeplan.ReadExportFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		client, err := login(ctx)
		if err != nil {
			return err
		}
		csv, err := client.ExportUsers(ctx, false)
		if err != nil {
			return fmt.Errorf("export users: %w", err)
		}
		existing, err := roster.ParsePersons(strings.NewReader(csv))
		if err != nil {
			return err
		}

		syncer := usersync.Syncer{
			Prefix: prefix,
			Logger: slog.Default().With("org", globals.org),
		}
		plan := syncer.Plan(existing, incoming)
		renderPlan(plan)

		if syncUsersOpts.dryRun {
			fmt.Fprintf(
				cmd.OutOrStdout(),
				"dry run: %d to add, %d to remove, %d users would be uploaded\n",
				len(plan.Added), len(plan.Removed), len(plan.Upload),
			)
			return nil
		}
		err = syncer.Apply(ctx, client, plan)
		if err != nil {
			return fmt.Errorf("sync users: %w", err)
		}
		return nil
	},
}
