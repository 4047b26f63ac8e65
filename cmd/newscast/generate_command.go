package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"newscast/internal/articles"
	"newscast/internal/content"
	"newscast/internal/feed"
	"newscast/internal/history"
	"newscast/internal/logging"
	"newscast/internal/media"
	"newscast/internal/scripts"
	"newscast/internal/sources"
	"newscast/internal/tts"
	"newscast/internal/workflow"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate and publish one episode",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.newLogger(cfg)
			logging.CleanupFromConfig(logger, cfg)

			deps := workflow.Deps{
				Fetcher:   sources.NewFetcher(cfg.Sources, logger),
				Dedup:     articles.NewDeduplicator(cfg.Sources.SimilarityThreshold, logger),
				Writer:    scripts.NewGenerator(scripts.NewClient(cfg.LLM), logger),
				Synth:     tts.NewClient(cfg.TTS, logger),
				Converter: media.NewConverter(cfg, logger),
				Feed:      feed.NewStore(cfg, logger),
				Recorder:  content.NewRecorder(cfg, logger),
			}

			store, err := history.Open(cfg, logger)
			if err != nil {
				logger.Warn("article history unavailable; cross-run dedup disabled",
					logging.Error(err),
				)
			} else {
				defer store.Close()
				deps.History = store
			}

			rec, err := workflow.NewRunner(cfg, deps, logger).Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated episode %d: %s\n", rec.EpisodeNumber, rec.Title)
			fmt.Fprintf(out, "  audio:    %s\n", rec.AudioFile)
			fmt.Fprintf(out, "  duration: %s\n", formatDuration(rec.DurationSeconds))
			fmt.Fprintf(out, "  articles: %d\n", len(rec.SourceArticles))
			return nil
		},
	}
}
