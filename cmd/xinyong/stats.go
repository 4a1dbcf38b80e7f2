package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/xinyong-bot/xinyong/modules/stats/sqlite"
	"github.com/xinyong-bot/xinyong/pkg/app"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recorded render statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath == "" {
				dbPath = filepath.Join(app.DefaultDataDir(), sqlite.DefaultDBFile)
			}
			// Opening would create an empty database; stat first so a wrong
			// path reports clearly instead.
			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("no stats database at %s", dbPath)
			}
			limit, _ := cmd.Flags().GetInt("recent")

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))
			store, db, err := sqlite.Open(dbPath, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			counts, err := store.CountByOutcome(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Render outcomes: ok=%d rejected=%d error=%d\n",
				counts["ok"], counts["rejected"], counts["error"])

			events, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No recorded renders.")
				return nil
			}

			fmt.Println("\nMost recent:")
			for _, ev := range events {
				fmt.Printf("  %s  %12d  %-8s  %-7s  %s\n",
					ev.CreatedAt.Format(time.RFC3339), ev.Amount, ev.Outcome, ev.Origin, ev.Duration)
			}
			return nil
		},
	}
	cmd.Flags().String("db", "", "Path to the stats database (default <data-dir>/stats.db)")
	cmd.Flags().Int("recent", 10, "Number of recent render events to list")
	return cmd
}
