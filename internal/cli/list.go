package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"notifeed/internal/domain"
)

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List feeds, channels or notifications",
		Subcommands: []*cli.Command{
			listFeedsCmd(),
			listChannelsCmd(),
			listNotificationsCmd(),
		},
	}
}

func listFeedsCmd() *cli.Command {
	return &cli.Command{
		Name:  "feeds",
		Usage: "List watched feeds",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			feeds, err := e.feeds.List(c.Context)
			if err != nil {
				return err
			}
			if len(feeds) == 0 {
				fmt.Println("No feeds found.")
				return nil
			}
			fmt.Println("Currently watching:")
			for _, feed := range feeds {
				fmt.Printf("  %s (%s)\n", feed.Name, feed.URL)
			}
			return nil
		},
	}
}

func listChannelsCmd() *cli.Command {
	return &cli.Command{
		Name:  "channels",
		Usage: "List notification channels",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			channels, err := e.channels.List(c.Context)
			if err != nil {
				return err
			}
			if len(channels) == 0 {
				fmt.Println("No channels configured.")
				return nil
			}
			fmt.Println("Available notification channels:")
			for _, channel := range channels {
				fmt.Printf("  %s (%s, %s)\n", channel.Name, channel.Type, channel.Endpoint)
			}
			return nil
		},
	}
}

func listNotificationsCmd() *cli.Command {
	return &cli.Command{
		Name:  "notifications",
		Usage: "List configured notifications",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			bindings, err := e.bindings.List(c.Context)
			if err != nil {
				return err
			}
			if len(bindings) == 0 {
				fmt.Println("No notifications configured.")
				return nil
			}

			feeds, err := e.feeds.List(c.Context)
			if err != nil {
				return err
			}
			channels, err := e.channels.List(c.Context)
			if err != nil {
				return err
			}

			feedNames := make(map[int64]string, len(feeds))
			for _, feed := range feeds {
				feedNames[feed.ID] = feed.Name
			}
			channelNames := make(map[int64]string, len(channels))
			for _, channel := range channels {
				channelNames[channel.ID] = channel.Name
			}

			fmt.Println("Configured notifications:")
			for _, binding := range bindings {
				feedName := "all feeds"
				if binding.FeedID != domain.WildcardFeedID {
					feedName = feedNames[binding.FeedID]
				}
				fmt.Printf("  New posts to %s --> %s\n", feedName, channelNames[binding.ChannelID])
			}
			return nil
		},
	}
}
