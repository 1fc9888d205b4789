package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"
)

func setCmd() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Change a setting",
		ArgsUsage: "poll-interval SECONDS",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 || c.Args().Get(0) != "poll-interval" {
				return fmt.Errorf("usage: set poll-interval SECONDS")
			}

			seconds, err := strconv.ParseInt(c.Args().Get(1), 10, 64)
			if err != nil || seconds <= 0 {
				return fmt.Errorf("poll-interval must be a positive number of seconds")
			}

			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			interval := time.Duration(seconds) * time.Second
			if err := e.settings.SetPollInterval(c.Context, interval); err != nil {
				return fmt.Errorf("failed to set poll-interval: %w", err)
			}
			fmt.Printf("Set poll-interval to %s! Takes effect on the next cycle.\n", interval)
			return nil
		},
	}
}

func getCmd() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show a setting",
		ArgsUsage: "poll-interval",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 || c.Args().Get(0) != "poll-interval" {
				return fmt.Errorf("usage: get poll-interval")
			}

			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			interval, err := e.settings.PollInterval(c.Context, e.cfg.Poll.DefaultInterval)
			if err != nil {
				return err
			}
			fmt.Printf("poll-interval: %s\n", interval)
			return nil
		},
	}
}
