package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"aidocs/internal/models"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List and toggle generation models",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog models by provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := app.svc.Models.ListModelGroups()
			if err != nil {
				return err
			}
			return render(cmd, groups, func(w io.Writer) {
				for _, g := range groups {
					fmt.Fprintf(w, "%s\n", g.ProviderName)
					for _, m := range g.Models {
						state := "disabled"
						if m.Enabled {
							state = "enabled"
						}
						fmt.Fprintf(w, "  %-45s %-30s %s\n", m.Key, m.DisplayName, state)
					}
				}
			})
		},
	}

	cmd.AddCommand(list, toggleCmd("enable", true), toggleCmd("disable", false))
	return cmd
}

func toggleCmd(use string, enabled bool) *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   use + " [model-key]",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a model, or every model of --provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var changed []models.LLMModel
			switch {
			case provider != "":
				list, err := app.svc.Models.SetProviderEnabled(app.ctx, provider, enabled)
				if err != nil {
					return err
				}
				changed = list
			case len(args) == 1:
				m, err := app.svc.Models.SetModelEnabled(app.ctx, args[0], enabled)
				if err != nil {
					return err
				}
				changed = []models.LLMModel{*m}
			default:
				return fmt.Errorf("a model key or --provider is required")
			}
			return render(cmd, changed, func(w io.Writer) {
				for _, m := range changed {
					fmt.Fprintf(w, "%sd %s\n", use, m.Key)
				}
			})
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Apply to every model of this provider")
	return cmd
}

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage provider API keys",
	}

	set := &cobra.Command{
		Use:   "set <provider> <key>",
		Short: "Store an API key in the keyring",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.svc.Keys.StoreApiKey(args[0], []byte(strings.TrimSpace(args[1]))); err != nil {
				return err
			}
			return render(cmd, map[string]string{"provider": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Stored key for %s\n", args[0])
			})
		},
	}

	get := &cobra.Command{
		Use:   "get <provider>",
		Short: "Show the resolved API key, masked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := app.svc.Keys.GetApiKey(args[0])
			if err != nil {
				return err
			}
			masked := maskKey(key)
			return render(cmd, map[string]string{"provider": args[0], "key": masked}, func(w io.Writer) {
				fmt.Fprintln(w, masked)
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <provider>",
		Short: "Remove an API key from the keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.svc.Keys.DeleteApiKey(args[0]); err != nil {
				return err
			}
			return render(cmd, map[string]string{"provider": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted key for %s\n", args[0])
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List providers with a configured key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := app.svc.Keys.ListApiKeys()
			if err != nil {
				return err
			}
			return render(cmd, infos, func(w io.Writer) {
				for _, info := range infos {
					fmt.Fprintf(w, "%-10s %s\n", info.Provider, info.Source)
				}
			})
		},
	}

	cmd.AddCommand(set, get, del, list)
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var kind string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent plan, generate and audit runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs := app.svc.Runtime.Runs
			if runs == nil {
				return fmt.Errorf("run history is not available")
			}
			records, err := runs.List(app.ctx, models.RunKind(kind), limit)
			if err != nil {
				return err
			}
			return render(cmd, records, func(w io.Writer) {
				for _, r := range records {
					line := fmt.Sprintf("%s  %-8s %-7s %s", r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Kind, r.Status, r.ID)
					if r.Summary != "" {
						line += "  " + r.Summary
					}
					if r.Error != "" {
						line += "  " + r.Error
					}
					fmt.Fprintln(w, line)
				}
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Only show plan, generate or audit runs")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")
	return cmd
}
