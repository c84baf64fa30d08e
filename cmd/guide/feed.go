package main

import (
	"context"
	"errors"

	"github.com/socialsphere/guide/internal/cli"
	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Work with the published-post feed",
}

var feedWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the dashboard API and announce newly published posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if url, _ := cmd.Flags().GetString("url"); url != "" {
			cfg.Feed.BaseURL = url
		}
		if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
			cfg.Feed.Interval = interval
		}

		watcher, err := cli.NewFeedWatcher(cfg, cmd.OutOrStdout(), nil, logger)
		if err != nil {
			return err
		}

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()
		logger.Info("Watching published posts", "url", cfg.Feed.BaseURL, "platform", cfg.Feed.Platform, "interval", cfg.Feed.Interval)
		if err := watcher.Run(sc); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)
	feedCmd.AddCommand(feedWatchCmd)
	feedWatchCmd.Flags().String("url", "", "Dashboard API base URL (overrides feed.base_url)")
	feedWatchCmd.Flags().Duration("interval", 0, "Poll interval (overrides feed.interval)")
}
