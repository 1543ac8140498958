package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newLogCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "log <owner> <collection> <name>",
		Short: "Show the revision history of a notebook, newest first",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.openService()
			if err != nil {
				return openFailed(err)
			}

			ctx, cancel := c.commandContext("")
			defer cancel()

			revs, err := svc.History(ctx, keyFromArgs(args))
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
			for _, r := range revs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n", r.ID[:7], r.When.Format(time.RFC3339), r.Author, r.Message)
			}
			return nil
		},
	}
}
