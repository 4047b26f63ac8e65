package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"newscast/internal/history"
	"newscast/internal/logging"
	"newscast/internal/retention"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup [feed_path] [episodes_dir]",
		Short: "Remove episodes older than the retention window",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.newLogger(cfg)
			logging.CleanupFromConfig(logger, cfg)

			if cmd.Flags().Changed("days") {
				cfg.Retention.Days = days
			}

			feedPath := cfg.FeedPath()
			episodesDir := cfg.EpisodesDir()
			if len(args) > 0 {
				feedPath = args[0]
			}
			if len(args) > 1 {
				episodesDir = args[1]
			}

			var store retention.HistoryStore
			if hs, err := history.Open(cfg, logger); err == nil {
				defer hs.Close()
				store = hs
			} else {
				logger.Warn("article history unavailable; skipping its cleanup",
					logging.Error(err),
				)
			}

			pruner := retention.NewPruner(cfg, store, logger)
			removed, err := pruner.PruneAt(cmd.Context(), feedPath, episodesDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(removed) > 0 {
				fmt.Fprintf(out, "Cleaned up %d old episodes: %s\n", len(removed), strings.Join(removed, ", "))
			} else {
				fmt.Fprintln(out, "No old episodes to clean up")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Override the configured retention window in days")
	return cmd
}
