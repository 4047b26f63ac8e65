package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"newscast/internal/content"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recorded episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			recorder := content.NewRecorder(cfg, ctx.newLogger(cfg))
			records, err := recorder.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No episodes recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					strconv.Itoa(rec.EpisodeNumber),
					rec.PublishedDate,
					formatDuration(rec.DurationSeconds),
					strconv.Itoa(len(rec.SourceArticles)),
					rec.AudioFile,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Date", "Duration", "Articles", "Audio"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}
