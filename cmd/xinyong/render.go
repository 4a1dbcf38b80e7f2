package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xinyong-bot/xinyong/internal/render"
	"github.com/xinyong-bot/xinyong/internal/sticker"
	"github.com/xinyong-bot/xinyong/pkg/app"
)

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <amount>",
		Short: "Render one sticker to a local WebP file",
		Long: "Render writes the sticker for the given amount to a WebP file without\n" +
			"talking to Telegram. Useful for checking assets and caption layout.\n\n" +
			"Negative amounts need a flag separator: xinyong render -- -5000",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("amount %q is not an integer", args[0])
			}

			assetsDir, _ := cmd.Flags().GetString("assets-dir")
			if assetsDir == "" {
				assetsDir = app.DefaultAssetsDir()
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = fmt.Sprintf("%d.webp", amount)
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			assets := render.NewAssets(assetsDir)
			if err := assets.Verify(); err != nil {
				return err
			}
			svc := sticker.NewService(render.NewComposer(assets), sticker.DefaultSuffixes(), logger)

			ctx := sticker.WithOrigin(context.Background(), "cli")
			data, err := svc.Render(ctx, amount)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}

			fmt.Printf("Wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().String("assets-dir", "", "Directory with fonts and base images (default ./assets)")
	cmd.Flags().StringP("out", "o", "", "Output file (default <amount>.webp)")
	return cmd
}
