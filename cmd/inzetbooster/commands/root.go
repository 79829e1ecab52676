package commands

import (
	"context"
	"errors"
	"fmt"
	"inzetbooster/lib/configutil"
	configlibsql "inzetbooster/lib/configutil/libsql"
	"inzetbooster/lib/mailer"
	"inzetbooster/lib/serviceutil"
	"inzetbooster/lib/telemetry"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Config is the optional config.json5 (plus config.local.json5), every
// value in it can be overridden with flags or environment variables.
type Config struct {
	Organisation     string `json:"organisation"`
	Username         string `json:"username"`
	Password         string `json:"password"`
	BaseUrl          string `json:"base_url"`
	BypassCloudflare bool   `json:"bypass_cloudflare"`
	// id prefix of accounts created from Manegeplan
	IDPrefix  string              `json:"id_prefix"`
	AuditLog  configlibsql.Struct `json:"audit_log"`
	Templates string              `json:"templates"`
	Locale    string              `json:"locale"`
	Mail      mailer.Config       `json:"mail"`
}

type globalOptions struct {
	org        string
	user       string
	password   string
	configPath string
	baseUrl    string
	dumpHttp   string
	verbose    bool
}

var (
	globals globalOptions
	config  Config
)

var rootCmd = &cobra.Command{
	Use:           "inzetbooster",
	Short:         "inzetbooster automates the admin chores of an inzetrooster.nl organisation.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(globals.verbose)

		err := telemetry.SetupFromEnv(cmd.Context(), "inzetbooster")
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		config, err = configutil.ReadOptional[Config](globals.configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		resolveString(cmd, "org", &globals.org, "ORGANIZATION", config.Organisation)
		resolveString(cmd, "user", &globals.user, "USERNAME", config.Username)
		resolveString(cmd, "password", &globals.password, "PASSWORD", config.Password)
		resolveString(cmd, "base-url", &globals.baseUrl, "", config.BaseUrl)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.org, "org", "rvliethorp", "Organisation name as it appears in the roster URL (env ORGANIZATION).")
	flags.StringVar(&globals.user, "user", "", "Username, prompted when missing (env USERNAME).")
	flags.StringVar(&globals.password, "password", "", "Password, prompted when missing (env PASSWORD).")
	flags.StringVar(&globals.configPath, "config", "config.json5", "Config file, a .local variant next to it overrides it.")
	flags.StringVar(&globals.baseUrl, "base-url", "", "Base URL of the roster service.")
	flags.StringVar(&globals.dumpHttp, "dump-http", "", "Write every HTTP exchange to files in this directory.")
	flags.BoolVarP(&globals.verbose, "verbose", "v", false, "Enable debug logging.")
}

// resolveString fills target when its flag was not given: the environment
// variable wins over the config file, the flag default is the fallback.
func resolveString(cmd *cobra.Command, flag string, target *string, env, fromConfig string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if env != "" {
		if value, ok := os.LookupEnv(env); ok && value != "" {
			*target = value
			return
		}
	}
	if fromConfig != "" {
		*target = fromConfig
	}
}

func resolveInt(cmd *cobra.Command, flag string, target *int, fromConfig int) {
	if !cmd.Flags().Changed(flag) && fromConfig != 0 {
		*target = fromConfig
	}
}

func resolveBool(cmd *cobra.Command, flag string, target *bool, fromConfig bool) {
	if !cmd.Flags().Changed(flag) && fromConfig {
		*target = fromConfig
	}
}

func ExecuteContext(ctx context.Context) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
	}

	if err := execute(ctx, rootCmd); err != nil {
		serviceutil.Fatal("command failed", err)
	}
}

var shutdownTelemetry = telemetry.Shutdown

// execute runs cmd and flushes telemetry afterwards, also when cmd failed.
func execute(ctx context.Context, cmd *cobra.Command) error {
	defer func() {
		err := shutdownTelemetry(context.WithoutCancel(ctx))
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}()
	return cmd.ExecuteContext(ctx)
}
