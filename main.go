package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settings are the process-level options, read from flags and AIDOCS_* env.
type settings struct {
	Root        string
	Config      string
	LogLevel    string
	LogJSON     bool
	LogFile     string
	DB          string
	Trace       bool
	LockTimeout time.Duration
	JSON        bool
}

var (
	v   = viper.New()
	app *App
)

func loadSettings() settings {
	return settings{
		Root:        v.GetString("root"),
		Config:      v.GetString("config"),
		LogLevel:    v.GetString("log-level"),
		LogJSON:     v.GetBool("log-json"),
		LogFile:     v.GetString("log-file"),
		DB:          v.GetString("db"),
		Trace:       v.GetBool("trace"),
		LockTimeout: v.GetDuration("lock-timeout"),
		JSON:        v.GetBool("json"),
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "aidocs",
		Short:         "Plan, generate and audit repository documentation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app = NewApp()
			return app.startup(cmd.Context(), loadSettings())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("root", "", "Project root (default: nearest directory with kb.config.json, .kb, go.mod or .git)")
	flags.String("config", "", "Config file (default: aidocs.yaml if present, else kb.config.json)")
	flags.String("log-level", "info", "Log level: trace, debug, info, warn, error")
	flags.Bool("log-json", false, "Log as JSON instead of console text")
	flags.String("log-file", "", "Also write logs to this file")
	flags.String("db", "", "Run history database (default: .kb/ai-docs/history.db)")
	flags.Bool("trace", false, "Export lifecycle spans to stderr")
	flags.Duration("lock-timeout", 0, "How long to wait for another run to release the repository lock")
	flags.Bool("json", false, "Output in JSON format")

	v.SetEnvPrefix("AIDOCS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	rootCmd.AddCommand(
		newInitCmd(),
		newPlanCmd(),
		newGenerateCmd(),
		newAuditCmd(),
		newWorkflowCmd(),
		newModelsCmd(),
		newKeysCmd(),
		newHistoryCmd(),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if app != nil {
		app.shutdown(context.Background())
	}
	if err != nil {
		if v.GetBool("json") {
			data, _ := json.Marshal(map[string]string{"error": err.Error()})
			fmt.Fprintln(os.Stderr, string(data))
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
