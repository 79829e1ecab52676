package commands

import (
	"context"
	"database/sql"
	"fmt"
	"inzetbooster/lib/auditlog"
	configlibsql "inzetbooster/lib/configutil/libsql"
	"log/slog"

	"github.com/spf13/cobra"
)

const defaultAuditLog = "inzetbooster.db"

func addAuditLogFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "audit-log", defaultAuditLog, "Sqlite file or libsql URL of the notification audit log.")
}

// openAuditLog returns the store and the database the caller has to close.
func openAuditLog(ctx context.Context, cmd *cobra.Command, location string) (auditlog.Store, *sql.DB, error) {
	resolveString(cmd, "audit-log", &location, "", config.AuditLog.File)
	source := configlibsql.Struct{
		File:      location,
		AuthToken: config.AuditLog.AuthToken,
	}

	database, err := source.OpenDB()
	if err != nil {
		return auditlog.Store{}, nil, fmt.Errorf("open audit log %s: %w", location, err)
	}
	store, err := auditlog.Open(ctx, database)
	if err != nil {
		database.Close()
		return auditlog.Store{}, nil, fmt.Errorf("open audit log %s: %w", location, err)
	}
	slog.DebugContext(ctx, "opened audit log", "location", location, "remote", source.IsRemote())
	return store, database, nil
}
