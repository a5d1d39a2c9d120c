package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/agentic-research/assetpairs/internal/cache"
)

func newCacheCmd(o *options) *cobra.Command {
	var cachePath string
	cmd := &cobra.Command{
		Use:   "cache [dir]",
		Short: "Resolve an asset directory and merge it into the cache file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := o.resolve(cmd.Context(), o.assetsDir(args))
			if err != nil {
				return err
			}
			if cachePath == "" {
				cachePath = o.cfg.CachePath
			}
			abs, err := filepath.Abs(cachePath)
			if err != nil {
				return err
			}
			fs := osfs.New(filepath.Dir(abs))
			name := filepath.Base(abs)

			existing, err := cache.Load(fs, name)
			if err != nil {
				return err
			}
			merged, plan := cache.Merge(existing, cache.FromBatch(b))
			if err := cache.Save(fs, name, merged); err != nil {
				return err
			}

			o.log.Info("cache updated", "path", abs, "items", len(merged.Items))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cachePath, plan.Summary())
			for _, idx := range plan.NeedsUpload() {
				fmt.Fprintf(cmd.OutOrStdout(), "upload %s\n", idx.Key())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cachePath, "cache", "", "Cache file (default from config)")
	return cmd
}
