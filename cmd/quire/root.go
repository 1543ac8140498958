package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/internal/platform"
	"github.com/aretw0/quire/pkg/core"
)

// DefaultTimeout bounds every command except watch.
const DefaultTimeout = 30 * time.Second

// cli holds the global flags shared by every command.
type cli struct {
	verbose    bool
	rootDir    string
	configPath string
	readOnly   bool
	timeout    time.Duration
}

// newRootCmd builds the command tree. Each call returns an independent tree.
func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "quire",
		Short: "A versioned store for notebook documents",
		Long: `Quire keeps every notebook as a JSON file with its own git history.
Creating a notebook records a root commit and every update appends one more.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if c.verbose {
				level = slog.LevelDebug
			}

			opts := &slog.HandlerOptions{
				Level: level,
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
			slog.SetDefault(logger)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&c.rootDir, "root", "", "Store root (defaults to the nearest directory with quire.yaml or repos)")
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to a quire.yaml file")
	rootCmd.PersistentFlags().BoolVar(&c.readOnly, "read-only", false, "Reject every write")
	rootCmd.PersistentFlags().DurationVar(&c.timeout, "timeout", DefaultTimeout, "Give up on a command after this long")

	rootCmd.AddCommand(
		newCreateCmd(c),
		newUpdateCmd(c),
		newLoadCmd(c),
		newListCmd(c),
		newSearchCmd(c),
		newLogCmd(c),
		newWatchCmd(c),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command line. This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fatal("Error", err)
	}
}

// commandContext returns the context of a bounded command, carrying the commit
// message when one is given.
func (c *cli) commandContext(reason string) (context.Context, context.CancelFunc) {
	ctx := context.Background()
	if reason != "" {
		ctx = context.WithValue(ctx, core.ChangeReasonKey, reason)
	}
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// resolve picks the store root and config file.
//
// Root: --root, then the config file's root, then the nearest directory found
// by FindRoot, then the working directory. Config: --config, then a
// quire.yaml at the discovered root.
func (c *cli) resolve() (root, cfgFile string, err error) {
	root, cfgFile = c.rootDir, c.configPath
	if root != "" || cfgFile != "" {
		return root, cfgFile, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	found, err := platform.FindRoot(cwd)
	switch {
	case errors.Is(err, platform.ErrRootNotFound):
		return cwd, "", nil
	case err != nil:
		return "", "", err
	}

	if _, err := os.Stat(filepath.Join(found, platform.ConfigFile)); err == nil {
		cfgFile = filepath.Join(found, platform.ConfigFile)
	}
	return found, cfgFile, nil
}

// openService opens the store selected by the flags, the config file and
// the working directory.
func (c *cli) openService() (*core.Service, error) {
	root, cfgFile, err := c.resolve()
	if err != nil {
		return nil, err
	}

	opts := []quire.Option{quire.WithLogger(slog.Default())}
	if cfgFile != "" {
		cfg, err := platform.LoadConfig(cfgFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cfg.Options()...)
		if c.rootDir == "" {
			root = cfg.Root
		}
	}
	if c.readOnly {
		opts = append(opts, quire.WithReadOnly(true))
	}

	slog.Debug("opening store", "root", root, "config", cfgFile)
	return quire.New(root, opts...)
}

func keyFromArgs(args []string) core.Key {
	return core.Key{OwnerID: args[0], CollectionID: args[1], Name: args[2]}
}

func openFailed(err error) error {
	return fmt.Errorf("failed to open store: %w", err)
}
