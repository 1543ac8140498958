package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	qlifecycle "github.com/aretw0/quire/pkg/adapters/lifecycle"
)

// newWatchCmd runs until interrupted; --timeout does not apply.
func newWatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <owner> <collection>",
		Short: "Print notebook changes in a collection until interrupted",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := c.openService()
			if err != nil {
				return openFailed(err)
			}

			events, err := svc.Watch(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to watch collection: %w", err)
			}

			src := qlifecycle.NewSource(events)
			if err := src.Start(ctx); err != nil {
				return fmt.Errorf("failed to start event source: %w", err)
			}
			for e := range src.Events() {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
}
