package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupTokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

func setupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Interactively create a configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			outPath, _ := cmd.Flags().GetString("out")
			if outPath == "" {
				resolved, err := defaultSetupPath()
				if err != nil {
					return err
				}
				outPath = resolved
			}

			var (
				token      string
				chatID     string
				mode       = "polling"
				webhookURL string
				assetsDir  = "assets"
			)

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Telegram bot token").
						Description("Create a bot with @BotFather and paste its token.").
						EchoMode(huh.EchoModePassword).
						Validate(func(s string) error {
							if !setupTokenPattern.MatchString(s) {
								return errors.New("expected <bot_id>:<hash>")
							}
							return nil
						}).
						Value(&token),
					huh.NewInput().
						Title("Cache chat ID").
						Description("Chat that receives sticker uploads backing inline results. The bot must be a member.").
						Placeholder("-1001234567890").
						Validate(func(s string) error {
							n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
							if err != nil || n == 0 {
								return errors.New("expected a non-zero integer chat ID")
							}
							return nil
						}).
						Value(&chatID),
					huh.NewSelect[string]().
						Title("Update delivery").
						Options(
							huh.NewOption("Long polling (no public endpoint needed)", "polling"),
							huh.NewOption("Webhook through the HTTP gateway", "webhook"),
						).
						Value(&mode),
				),
				huh.NewGroup(
					huh.NewInput().
						Title("Public webhook URL").
						Description("Must end in /webhooks/telegram and resolve to the gateway bind address.").
						Placeholder("https://bot.example.com/webhooks/telegram").
						Validate(func(s string) error {
							u, err := url.Parse(s)
							if err != nil || u.Scheme != "https" || u.Host == "" {
								return errors.New("expected an https URL")
							}
							return nil
						}).
						Value(&webhookURL),
				).WithHideFunc(func() bool { return mode != "webhook" }),
				huh.NewGroup(
					huh.NewInput().
						Title("Assets directory").
						Description("Must contain BIZ-UDGothicR.ttc, VCR_OSD_MONO_1.001.ttf, plus.png and minus.png.").
						Value(&assetsDir),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}

			cacheChatID, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
			if err != nil {
				return fmt.Errorf("cache chat ID %q is not an integer", chatID)
			}

			var webhookSecret string
			if mode == "webhook" {
				webhookSecret, err = randomSecret()
				if err != nil {
					return err
				}
			}

			content := renderConfig(token, mode, webhookURL, webhookSecret, assetsDir, cacheChatID)

			if _, err := os.Stat(outPath); err == nil {
				overwrite := false
				confirm := huh.NewConfirm().
					Title(fmt.Sprintf("%s exists. Overwrite?", outPath)).
					Value(&overwrite)
				if err := confirm.Run(); err != nil {
					return err
				}
				if !overwrite {
					return errors.New("aborted, existing configuration kept")
				}
			}

			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return fmt.Errorf("creating config directory: %w", err)
			}
			// The file carries the bot token, keep it private.
			if err := os.WriteFile(outPath, []byte(content), 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}

			fmt.Printf("Wrote %s\n\n", outPath)
			fmt.Printf("Next steps:\n")
			fmt.Printf("  1. Put the fonts and base images into %s\n", assetsDir)
			fmt.Printf("  2. Check the result: xinyong config check %s\n", outPath)
			fmt.Printf("  3. Start the bot:   xinyong start --config %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "", "Where to write the configuration (default XDG config dir)")
	return cmd
}

// renderConfig assembles the YAML document for the collected answers. Every
// compiled module needs an entry because validation requires one.
func renderConfig(token, mode, webhookURL, webhookSecret, assetsDir string, cacheChatID int64) string {
	var b strings.Builder
	b.WriteString("version: \"1\"\n\n")
	b.WriteString("log:\n  level: info\n\n")
	fmt.Fprintf(&b, "assets_dir: %q\n\n", assetsDir)
	b.WriteString("modules:\n")
	b.WriteString("  render.sticker: {}\n")
	b.WriteString("  stats.sqlite:\n    retention_days: 90\n")
	b.WriteString("  channel.telegram:\n")
	fmt.Fprintf(&b, "    token: %q\n", token)
	fmt.Fprintf(&b, "    mode: %q\n", mode)
	fmt.Fprintf(&b, "    cache_chat_id: %d\n", cacheChatID)
	if mode == "webhook" {
		fmt.Fprintf(&b, "    webhook_url: %q\n", webhookURL)
		fmt.Fprintf(&b, "    webhook_secret: %q\n", webhookSecret)
	}
	b.WriteString("  gateway.http:\n    bind: \"127.0.0.1:8080\"\n")
	return b.String()
}

func randomSecret() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating webhook secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func defaultSetupPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "xinyong", "xinyong.yaml"), nil
}
