// Package main is the entry point for the xinyong CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xinyong-bot/xinyong/internal/config"
	"github.com/xinyong-bot/xinyong/internal/core"
	"github.com/xinyong-bot/xinyong/internal/security"
	"github.com/xinyong-bot/xinyong/pkg/app"

	// Compiled-in modules register themselves on import.
	_ "github.com/xinyong-bot/xinyong/internal/gateway"
	_ "github.com/xinyong-bot/xinyong/modules/channel/telegram"
	_ "github.com/xinyong-bot/xinyong/modules/render/sticker"
	_ "github.com/xinyong-bot/xinyong/modules/stats/sqlite"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "xinyong",
		Short:         "Telegram bot that renders social credit stickers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), startCmd(), configCmd(), renderCmd(), statsCmd(), setupCmd(), serviceCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled modules",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("xinyong %s (commit: %s, built: %s)\n", version, commit, date)
			mods := core.GetModules()
			if len(mods) == 0 {
				fmt.Println("\nNo compiled modules.")
				return
			}
			fmt.Println("\nCompiled modules:")
			for _, mod := range mods {
				fmt.Printf("  %s\n", mod.ID)
			}
		},
	}
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the bot with all configured modules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			assetsDir, _ := cmd.Flags().GetString("assets-dir")
			levelName, _ := cmd.Flags().GetString("log-level")

			level, err := parseLogLevel(levelName)
			if err != nil {
				return err
			}

			return app.Run(app.RunParams{
				ConfigPath: cfgPath,
				Version:    version,
				Commit:     commit,
				Date:       date,
				DataDir:    dataDir,
				AssetsDir:  assetsDir,
				LogLevel:   level,
			})
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.Flags().String("data-dir", "", "Override the persistent data directory")
	cmd.Flags().String("assets-dir", "", "Override the render assets directory")
	cmd.Flags().String("log-level", "info", "Minimum log level (debug, info, warn, error)")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration and provision all modules once",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			dataDir := cfg.DataDir
			if dataDir == "" {
				dataDir = app.DefaultDataDir()
			}
			assetsDir := cfg.AssetsDir
			if assetsDir == "" {
				assetsDir = app.DefaultAssetsDir()
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))
			appCtx := core.NewAppContext(logger, dataDir, assetsDir)
			appCtx = appCtx.WithModuleConfigs(cfg.Modules)

			application := core.NewApp(appCtx)
			ids := config.Resolve(cfg)
			if err := application.LoadModules(ids); err != nil {
				return err
			}
			defer application.Stop()

			fmt.Printf("Configuration OK (%d modules)\n", len(ids))
			for _, id := range ids {
				fmt.Printf("  %s\n", id)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <path>",
		Short: "Print the loaded configuration with secrets redacted",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			out, err := redactedConfig(args[0])
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	})
	return cmd
}

// redactedConfig loads the config at path and renders it back as YAML with
// secret-bearing values masked. The round trip through a generic map lets the
// redactor see every key, including the per-module sections.
func redactedConfig(path string) (string, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return "", err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("serializing config: %w", err)
	}
	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("reparsing config: %w", err)
	}
	security.NewRedactor().RedactMap(generic)

	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("serializing redacted config: %w", err)
	}
	return string(out), nil
}

func parseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q (debug, info, warn, error)", name)
}
