package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"newscast/internal/feed"
)

func newFeedCommand(ctx *commandContext) *cobra.Command {
	feedCmd := &cobra.Command{
		Use:   "feed",
		Short: "Feed document utilities",
	}
	feedCmd.AddCommand(newFeedInitCommand(ctx))
	feedCmd.AddCommand(newFeedShowCommand(ctx))
	return feedCmd
}

func newFeedInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty feed document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := feed.NewStore(cfg, ctx.newLogger(cfg))
			if err := store.Init(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote empty feed document to %s\n", store.Path())
			return nil
		},
	}
}

func newFeedShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the published episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := feed.NewStore(cfg, ctx.newLogger(cfg))
			doc, err := store.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d episodes)\n", doc.Channel.Title, len(doc.Episodes))
			if len(doc.Episodes) == 0 {
				return nil
			}

			rows := make([][]string, 0, len(doc.Episodes))
			for _, ep := range doc.Episodes {
				rows = append(rows, []string{
					strconv.Itoa(ep.Number),
					ep.Title,
					ep.PublishedAt.Format("2006-01-02"),
					formatDuration(ep.DurationSeconds),
					formatBytes(ep.MediaSizeBytes),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Title", "Published", "Duration", "Size"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}
