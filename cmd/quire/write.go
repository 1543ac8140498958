package main

import (
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/aretw0/quire/pkg/core"
)

// writeFlags are the data and message flags of create and update.
type writeFlags struct {
	data    string
	file    string
	message string
}

func (w *writeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.data, "data", "", "Notebook data as inline JSON")
	cmd.Flags().StringVar(&w.file, "file", "", "Read notebook data from a JSON file")
	cmd.Flags().StringVarP(&w.message, "message", "m", "", "Commit message")
}

func (w *writeFlags) check() error {
	if (w.data == "") == (w.file == "") {
		return errors.New("exactly one of --data or --file is required")
	}
	return nil
}

func newCreateCmd(c *cli) *cobra.Command {
	w := &writeFlags{}
	cmd := &cobra.Command{
		Use:   "create <owner> <collection> <name>",
		Short: "Create a notebook",
		Long: `Create a notebook from inline JSON (--data) or a JSON file (--file).
If the notebook already exists the data is committed as an update.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := w.check(); err != nil {
				return err
			}

			doc := core.Document{Key: keyFromArgs(args), SourcePath: w.file}
			if w.data != "" {
				v, err := parseData(w.data)
				if err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
				doc.Data = v
			}

			svc, err := c.openService()
			if err != nil {
				return openFailed(err)
			}

			ctx, cancel := c.commandContext(w.message)
			defer cancel()

			out, err := svc.Create(ctx, doc)
			if err != nil {
				return fmt.Errorf("failed to create notebook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Notebook '%s' saved at revision %s (%d revisions).\n", out.Key, out.Revision, out.RevisionCount)
			return nil
		},
	}
	w.register(cmd)
	return cmd
}

func newUpdateCmd(c *cli) *cobra.Command {
	w := &writeFlags{}
	cmd := &cobra.Command{
		Use:   "update <owner> <collection> <name>",
		Short: "Commit new data on top of an existing notebook",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := w.check(); err != nil {
				return err
			}

			raw := []byte(w.data)
			if w.file != "" {
				var err error
				if raw, err = os.ReadFile(w.file); err != nil {
					return fmt.Errorf("failed to read --file: %w", err)
				}
			}
			data, err := parseData(string(raw))
			if err != nil {
				return fmt.Errorf("invalid notebook data: %w", err)
			}

			svc, err := c.openService()
			if err != nil {
				return openFailed(err)
			}

			ctx, cancel := c.commandContext(w.message)
			defer cancel()

			key := keyFromArgs(args)
			rev, err := svc.Update(ctx, key, data)
			if err != nil {
				return fmt.Errorf("failed to update notebook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Notebook '%s' committed at revision %s.\n", key, rev)
			return nil
		},
	}
	w.register(cmd)
	return cmd
}

func parseData(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}
