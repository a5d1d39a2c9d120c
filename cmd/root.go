package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/assetpairs/internal/assets"
	"github.com/agentic-research/assetpairs/internal/config"
	"github.com/agentic-research/assetpairs/internal/logging"
	"github.com/agentic-research/assetpairs/internal/source"
)

// options carries global flags and the state they resolve to.
type options struct {
	configPath string
	logLevel   string
	logFormat  string
	basePath   string
	workers    int

	cfg *config.Config
	log *slog.Logger
}

// NewRootCmd builds the assetpairs command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "assetpairs",
		Short:         "Validate and index NFT asset batches for upload",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "Path to HCL config (default ./"+config.DefaultFile+" if present)")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&o.logFormat, "log-format", "", "Log format: text or json")
	pf.StringVar(&o.basePath, "base-path", "", "Logical directory assets are addressed under")
	pf.IntVar(&o.workers, "workers", 0, "Concurrent metadata parsers")

	root.AddCommand(
		newResolveCmd(o),
		newCacheCmd(o),
		newStageCmd(o),
		newQueryCmd(o),
	)
	return root
}

// setup loads config, applies flag overrides and builds the logger.
func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if flags.Changed("base-path") {
		cfg.BasePath = o.basePath
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	l, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.log = l
	return nil
}

// assetsDir picks the positional directory argument or the configured one.
func (o *options) assetsDir(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return o.cfg.AssetsDir
}

// resolve reads every file in dir and resolves it into a batch.
func (o *options) resolve(ctx context.Context, dir string) (*assets.Batch, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", dir, err)
	}
	if info, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("stat assets dir: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	r := assets.NewResolver(o.cfg.BasePath)
	r.Workers = o.cfg.Workers
	r.Log = o.log.With("dir", abs)
	return r.ResolveSource(ctx, source.NewFSSource(osfs.New(abs), "."))
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
