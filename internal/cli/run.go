package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"notifeed/internal/scheduler"
	"notifeed/internal/service"
)

func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Start the poll loop",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			poller := service.NewPoller(
				e.feeds,
				e.seen,
				e.fetcher,
				e.router,
				e.txManager,
				e.logger,
				e.cfg.Poll.MaxConcurrent,
			)
			sched := scheduler.NewScheduler(
				poller,
				e.settings,
				e.cfg.Poll.DefaultInterval,
				e.cfg.Poll.CycleTimeout,
				e.logger,
			)

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				sig := <-sigCh
				e.logger.Info("received shutdown signal", "signal", sig)
				cancel()
			}()

			interval, err := e.settings.PollInterval(ctx, e.cfg.Poll.DefaultInterval)
			if err != nil {
				return err
			}
			feeds, err := e.feeds.List(ctx)
			if err != nil {
				return err
			}
			bindings, err := e.bindings.List(ctx)
			if err != nil {
				return err
			}
			e.logger.Info("starting notifeed",
				"feeds", len(feeds),
				"notifications", len(bindings),
				"poll_interval", interval,
			)

			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
