package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func testCmd() *cli.Command {
	return &cli.Command{
		Name:      "test",
		Usage:     "Send a feed's latest post to one channel, ignoring the seen set",
		ArgsUsage: "CHANNEL FEED",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected CHANNEL and FEED arguments")
			}
			channelName, feedName := c.Args().Get(0), c.Args().Get(1)

			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.router.Test(c.Context, channelName, feedName); err != nil {
				return fmt.Errorf("test notification failed: %w", err)
			}
			fmt.Printf("Sent the latest %s post to %s!\n", feedName, channelName)
			return nil
		},
	}
}
