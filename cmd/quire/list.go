package main

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newListCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list <owner> <collection>",
		Short: "List the notebooks of a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.openService()
			if err != nil {
				return openFailed(err)
			}

			ctx, cancel := c.commandContext("")
			defer cancel()

			summaries, err := svc.List(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to list notebooks: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(summaries); err != nil {
					return fmt.Errorf("failed to encode JSON: %w", err)
				}
				return nil
			}

			for _, s := range summaries {
				fmt.Fprintf(out, "%s\t%s\t%d\n", s.Name, s.LastModified.Format(time.RFC3339), s.NumCommits)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newSearchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search <owner> <term>",
		Short: "Print the collections holding notebooks whose name contains term",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.openService()
			if err != nil {
				return openFailed(err)
			}

			ctx, cancel := c.commandContext("")
			defer cancel()

			ids, err := svc.MatchingCollectionIDs(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to search: %w", err)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
