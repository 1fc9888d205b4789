package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"notifeed/internal/domain"
)

func addCmd() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a feed, channel or notification",
		Subcommands: []*cli.Command{
			addFeedCmd(),
			addChannelCmd(),
			addNotificationCmd(),
		},
	}
}

func addFeedCmd() *cli.Command {
	return &cli.Command{
		Name:      "feed",
		Usage:     "Watch a new feed",
		ArgsUsage: "NAME URL",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected NAME and URL arguments")
			}
			name, url := c.Args().Get(0), c.Args().Get(1)

			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			if _, err := e.feeds.Add(c.Context, name, url); err != nil {
				return fmt.Errorf("failed to add feed: %w", err)
			}
			fmt.Printf("Added %s!\n", name)
			return nil
		},
	}
}

func addChannelCmd() *cli.Command {
	return &cli.Command{
		Name:      "channel",
		Usage:     "Add a notification channel",
		ArgsUsage: "NAME ENDPOINT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "type",
				Aliases:  []string{"t"},
				Usage:    "channel type (slack, discord, ntfy, amqp)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "auth",
				Aliases: []string{"a"},
				Usage:   "bearer token sent with each notification",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected NAME and ENDPOINT arguments")
			}
			name, endpoint := c.Args().Get(0), c.Args().Get(1)

			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			typ := strings.ToLower(c.String("type"))
			if !contains(e.registry.Types(), typ) {
				return fmt.Errorf("unknown channel type %q, available: %s",
					typ, strings.Join(e.registry.Types(), ", "))
			}

			var token *string
			if auth := c.String("auth"); auth != "" {
				token = &auth
			}

			if _, err := e.channels.Add(c.Context, name, typ, endpoint, token); err != nil {
				return fmt.Errorf("failed to add channel: %w", err)
			}
			fmt.Printf("Added %s!\n", name)
			return nil
		},
	}
}

func addNotificationCmd() *cli.Command {
	return &cli.Command{
		Name:      "notification",
		Usage:     "Notify a channel about new posts to feeds",
		ArgsUsage: "CHANNEL [FEED...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "notify for every current and future feed",
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
				return fmt.Errorf("failed to add notification: %w", err)
			}

			if c.Bool("all") {
				if err := e.bindings.Add(c.Context, domain.WildcardFeedID, channel.ID); err != nil {
					return fmt.Errorf("failed to add notification: %w", err)
				}
				fmt.Printf("Added notification for new posts to all feeds!\n")
				return nil
			}

			for _, feedName := range feedNames {
				feed, err := e.feeds.GetByName(c.Context, feedName)
				if err != nil {
					return fmt.Errorf("failed to add notification: %w", err)
				}
				if err := e.bindings.Add(c.Context, feed.ID, channel.ID); err != nil {
					return fmt.Errorf("failed to add notification: %w", err)
				}
			}
			fmt.Printf("Added notification for new posts to %s!\n", strings.Join(feedNames, ", "))
			return nil
		},
	}
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
