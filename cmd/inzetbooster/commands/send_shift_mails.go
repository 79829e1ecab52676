package commands

import (
	"fmt"
	"inzetbooster/lib/mailer"
	"inzetbooster/lib/notify"
	"inzetbooster/lib/platforms/inzetrooster"
	"inzetbooster/lib/roster"
	"log/slog"

	"github.com/spf13/cobra"
)

var sendShiftMailsOpts struct {
	templates string
	auditLog  string
	locale    string
	mail      mailer.Config
}

func init() {
	flags := sendShiftMailsCmd.Flags()
	flags.StringVar(&sendShiftMailsOpts.templates, "templates", "templates", "Directory with shift-<group id>.md templates.")
	addAuditLogFlag(sendShiftMailsCmd, &sendShiftMailsOpts.auditLog)
	flags.StringVar(&sendShiftMailsOpts.locale, "locale", string(notify.DefaultLocale), "Locale used for dates in the mails.")

	mail := &sendShiftMailsOpts.mail
	flags.StringVar(&mail.Server, "smtp-server", "localhost", "SMTP server.")
	flags.IntVar(&mail.Port, "smtp-port", 25, "SMTP port.")
	flags.BoolVar(&mail.UseSSL, "smtp-ssl", false, "Connect with implicit TLS instead of STARTTLS.")
	flags.StringVar(&mail.Username, "smtp-user", "", "SMTP username.")
	flags.StringVar(&mail.Password, "smtp-password", "", "SMTP password (env SMTP_PASSWORD).")
	flags.StringVar(&mail.FromAddress, "from-address", "", "Sender address of the mails.")
	flags.StringVar(&mail.FromName, "from-name", "", "Sender display name of the mails.")

	rootCmd.AddCommand(sendShiftMailsCmd)
}

func resolveMailConfig(cmd *cobra.Command) mailer.Config {
	mail := sendShiftMailsOpts.mail
	resolveString(cmd, "smtp-server", &mail.Server, "SMTP_SERVER", config.Mail.Server)
	resolveInt(cmd, "smtp-port", &mail.Port, config.Mail.Port)
	resolveBool(cmd, "smtp-ssl", &mail.UseSSL, config.Mail.UseSSL)
	resolveString(cmd, "smtp-user", &mail.Username, "SMTP_USER", config.Mail.Username)
	resolveString(cmd, "smtp-password", &mail.Password, "SMTP_PASSWORD", config.Mail.Password)
	resolveString(cmd, "from-address", &mail.FromAddress, "", config.Mail.FromAddress)
	resolveString(cmd, "from-name", &mail.FromName, "", config.Mail.FromName)
	return mail
}

var sendShiftMailsCmd = &cobra.Command{
	Use:   "send-shift-mails --templates <dir> [--audit-log <path|url>] [--smtp-server <host>] ...",
	Short: "Mails every assigned user about their upcoming shifts, once per shift and template.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		opts := sendShiftMailsOpts
		resolveString(cmd, "templates", &opts.templates, "", config.Templates)
		resolveString(cmd, "locale", &opts.locale, "", config.Locale)
		mailConfig := resolveMailConfig(cmd)
		if mailConfig.FromAddress == "" {
			return fmt.Errorf("--from-address is required")
		}

		locale, err := notify.ParseLocale(opts.locale)
		if err != nil {
			return err
		}
		templates, err := notify.LoadTemplates(opts.templates, locale)
		if err != nil {
			return fmt.Errorf("load templates: %w", err)
		}
		store, database, err := openAuditLog(ctx, cmd, opts.auditLog)
		if err != nil {
			return err
		}
		defer database.Close()

		client, err := login(ctx)
		if err != nil {
			return err
		}
		csv, err := client.ExportShifts(ctx, inzetrooster.DateRange{})
		if err != nil {
			return fmt.Errorf("export shifts: %w", err)
		}
		shifts, err := roster.ParseShiftsString(csv)
		if err != nil {
			return err
		}

		logger := slog.Default().With("org", globals.org)
		notifier := notify.NewNotifier(
			store,
			mailer.New(mailConfig, logger),
			templates,
			logger,
		)
		summary, err := notifier.NotifyShifts(ctx, shifts)
		if err != nil {
			return fmt.Errorf("send shift mails (%d sent before failing): %w", summary.Sent, err)
		}

		fmt.Fprintf(
			cmd.OutOrStdout(),
			"sent %d, skipped %d (%d uncovered, %d already notified, %d without template)\n",
			summary.Sent, summary.Skipped(),
			summary.Uncovered, summary.AlreadyNotified, summary.MissingTemplate,
		)
		return nil
	},
}
