// Package cli implements the captioner command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/mgpai22/captioner/internal/caption"
	"github.com/mgpai22/captioner/internal/config"
	"github.com/mgpai22/captioner/internal/logging"
	"github.com/mgpai22/captioner/internal/storage"
)

// shared state for one invocation, loaded on first use
type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger *logging.Logger

	kv    storage.KV
	store *caption.Store
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{configFlag: configFlag, verbose: verbose}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *logging.Logger {
	if c.logger != nil {
		return c.logger
	}
	level := zapcore.InfoLevel
	if c.config != nil {
		level = logging.ParseLevel(c.config.Logging.Level)
	}
	if *c.verbose {
		level = zapcore.DebugLevel
	}
	c.logger = logging.ForLevel(level)
	return c.logger
}

// openStore connects the configured backend and loads the saved session.
func (c *commandContext) openStore(ctx context.Context) (*caption.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	kv, err := storage.Open(ctx, cfg.Storage, c.log())
	if err != nil {
		return nil, err
	}
	c.kv = kv
	c.store = caption.NewStore(storage.NewSessionRepo(kv), c.log())
	found := c.store.Load(ctx)
	c.log().Debugw("session opened", "backend", cfg.Storage.Backend, "found", found, "captions", c.store.Len())
	return c.store, nil
}

// requireVideo opens the store and fails unless a video is loaded.
func (c *commandContext) requireVideo(ctx context.Context) (*caption.Store, error) {
	store, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if store.VideoURL() == "" {
		return nil, errors.New("no video loaded: run `captioner load <url>` first")
	}
	return store, nil
}

func (c *commandContext) close() {
	if c.kv != nil {
		if err := c.kv.Close(); err != nil {
			c.log().Warnw("closing storage failed", "error", err)
		}
		c.kv = nil
		c.store = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

// newRootCommand builds the command tree. The caller owns the returned
// context and must close it once the command has run, whether or not it
// failed.
func newRootCommand() (*cobra.Command, *commandContext) {
	var (
		configFlag string
		verbose    bool
	)
	cc := newCommandContext(&configFlag, &verbose)

	rootCmd := &cobra.Command{
		Use:   "captioner",
		Short: "Caption editor for web videos",
		Long: `Captioner attaches timed text captions to a video URL, lets you
edit them, shows which caption is on screen at a playback position,
and exports the result as WebVTT, SRT or ASS.

Captions are numbered from 1 in the order they were added, the same
numbers used in exported files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cc.ensureConfig(); err != nil {
				return err
			}
			cc.log()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(newLoadCommand(cc))
	rootCmd.AddCommand(newAddCommand(cc))
	rootCmd.AddCommand(newEditCommand(cc))
	rootCmd.AddCommand(newDeleteCommand(cc))
	rootCmd.AddCommand(newListCommand(cc))
	rootCmd.AddCommand(newActiveCommand(cc))
	rootCmd.AddCommand(newResetCommand(cc))
	rootCmd.AddCommand(newExportCommand(cc))
	rootCmd.AddCommand(newImportCommand(cc))
	rootCmd.AddCommand(newPlayCommand(cc))
	rootCmd.AddCommand(newTranslateCommand(cc))
	rootCmd.AddCommand(newBurnCommand(cc))
	rootCmd.AddCommand(newProbeCommand(cc))
	rootCmd.AddCommand(newServeCommand(cc))
	rootCmd.AddCommand(newTimecodeCommand())

	return rootCmd, cc
}

// Execute runs the command tree until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd, cc := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	cc.close()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
