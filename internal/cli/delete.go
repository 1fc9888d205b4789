package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"notifeed/internal/domain"
)

func deleteCmd() *cli.Command {
	return &cli.Command{
		Name:  "delete",
		Usage: "Delete a feed, channel or notification",
		Subcommands: []*cli.Command{
			deleteFeedCmd(),
			deleteChannelCmd(),
			deleteNotificationCmd(),
		},
	}
}

func deleteFeedCmd() *cli.Command {
	return &cli.Command{
		Name:      "feed",
		Usage:     "Stop watching a feed",
		ArgsUsage: "NAME",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected NAME argument")
			}
			name := c.Args().Get(0)

			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.feeds.Delete(c.Context, name); err != nil {
				return fmt.Errorf("failed to delete feed: %w", err)
			}
			fmt.Printf("Deleted %s!\n", name)
			return nil
		},
	}
}

func deleteChannelCmd() *cli.Command {
	return &cli.Command{
		Name:      "channel",
		Usage:     "Remove a notification channel and its notifications",
		ArgsUsage: "NAME",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected NAME argument")
			}
			name := c.Args().Get(0)

			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.channels.Delete(c.Context, name); err != nil {
				return fmt.Errorf("failed to delete channel: %w", err)
			}
			fmt.Printf("Deleted %s!\n", name)
			return nil
		},
	}
}

func deleteNotificationCmd() *cli.Command {
	return &cli.Command{
		Name:      "notification",
		Usage:     "Stop notifying a channel about feeds",
		ArgsUsage: "CHANNEL FEED...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "remove the all-feeds notification",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("expected CHANNEL argument")
			}
			channelName := c.Args().Get(0)
			feedNames := c.Args().Slice()[1:]

			if c.Bool("all") == (len(feedNames) > 0) {
				return fmt.Errorf("provide either feed names or --all")
			}

			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			channel, err := e.channels.GetByName(c.Context, channelName)
			if err != nil {
				return fmt.Errorf("failed to delete notification: %w", err)
			}

			if c.Bool("all") {
				if err := e.bindings.Remove(c.Context, domain.WildcardFeedID, channel.ID); err != nil {
					return fmt.Errorf("failed to delete notification: %w", err)
				}
				fmt.Printf("Disabled the all-feeds notification on %s!\n", channelName)
				return nil
			}

			for _, feedName := range feedNames {
				feed, err := e.feeds.GetByName(c.Context, feedName)
				if err != nil {
					return fmt.Errorf("failed to delete notification: %w", err)
				}
				if err := e.bindings.Remove(c.Context, feed.ID, channel.ID); err != nil {
					return fmt.Errorf("failed to delete notification: %w", err)
				}
			}
			fmt.Printf("Disabled notifications on %s for %d feed(s)!\n", channelName, len(feedNames))
			return nil
		},
	}
}
