package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire/pkg/adapters/fs"
)

func newLoadCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "load <owner> <collection> <name>",
		Short: "Print a notebook",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.openService()
			if err != nil {
				return openFailed(err)
			}

			ctx, cancel := c.commandContext("")
			defer cancel()

			doc, err := svc.Load(ctx, keyFromArgs(args))
			if err != nil {
				return fmt.Errorf("failed to load notebook: %w", err)
			}

			out, err := fs.NewCodec(false).Encode(doc.Data)
			if err != nil {
				return fmt.Errorf("failed to encode notebook: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
