package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/dossier/internal/api"
	"github.com/jask/dossier/internal/cache"
	"github.com/jask/dossier/internal/config"
	"github.com/jask/dossier/internal/prefs"
	"github.com/jask/dossier/internal/service"
	"github.com/jask/dossier/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:           "dossier",
	Short:         "Terminal client for the case assistant",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.AddCommand(casesCmd, uploadCmd, configCmd)
	casesCmd.Flags().Bool("json", false, "print the raw case list as JSON")
	configCmd.AddCommand(configGetCmd, configSetCmd)
}

func newClient(cfg config.Config) *api.Client {
	return api.New(cfg.API.BaseURL, config.ResolveToken(cfg))
}

func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	p, err := prefs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load preferences: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := cache.Open(cfg.CachePath())
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer db.Close()

	app := tui.New(ctx, tui.Options{
		Client: newClient(cfg),
		Stores: tui.Stores{
			Cases: cache.NewCaseCache(db),
			Chats: cache.NewChatStore(db),
		},
		Reviewer: &service.Reviewer{Store: cache.NewReviewStore(db)},
		Config:   cfg,
		Prefs:    p,
	})

	_, err = tea.NewProgram(app, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List cases without entering the UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cases, err := newClient(cfg).ListCases(cmd.Context())
		if err != nil {
			return err
		}
		service.SortCases(cases)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cases)
		}
		for _, c := range cases {
			pin := " "
			if c.Pinned {
				pin = "*"
			}
			fmt.Printf("%s %-36s  %-14s  %-9s  %3.0f%%  %s\n",
				pin, c.ID, c.TransactionType,
				service.NormalizeStatus(c.Status),
				c.ConfidenceScore,
				c.Name)
		}
		return nil
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <case-id> <file>...",
	Short: "Upload documents to a case",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		client := newClient(cfg)
		caseID := args[0]
		for _, path := range args[1:] {
			doc, err := client.UploadDocument(cmd.Context(), caseID, path)
			if err != nil {
				return fmt.Errorf("uploading %s: %w", path, err)
			}
			fmt.Printf("uploaded %s (%s)\n", doc.Filename, doc.ID)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		fmt.Printf("api.base_url = %s\n", cfg.API.BaseURL)
		fmt.Printf("api.token_env = %s\n", cfg.API.TokenEnv)
		fmt.Printf("api.poll_seconds = %d\n", cfg.API.PollSeconds)
		fmt.Printf("cache.path = %s\n", cfg.CachePath())
		fmt.Printf("ui.locale = %s\n", cfg.UI.Locale)
		fmt.Printf("ui.date_format = %s\n", cfg.UI.DateFormat)
		fmt.Printf("ui.data_dir = %s\n", cfg.UI.DataDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := setConfigKey(&cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("set %s = %s\n", args[0], args[1])
		return nil
	},
}

func setConfigKey(cfg *config.Config, key, value string) error {
	switch key {
	case "api.base_url":
		cfg.API.BaseURL = value
	case "api.token":
		cfg.API.Token = value
	case "api.token_env":
		cfg.API.TokenEnv = value
	case "api.poll_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("api.poll_seconds wants a positive integer, got %q", value)
		}
		cfg.API.PollSeconds = n
	case "cache.path":
		cfg.Cache.Path = value
	case "ui.locale":
		if value != "en" && value != "fr" {
			return fmt.Errorf("ui.locale must be en or fr")
		}
		cfg.UI.Locale = value
	case "ui.date_format":
		cfg.UI.DateFormat = value
	case "ui.data_dir":
		cfg.UI.DataDir = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
