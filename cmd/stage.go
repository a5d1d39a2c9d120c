package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentic-research/assetpairs/internal/stage"
)

func newStageCmd(o *options) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "stage [dir] [output.db]",
		Short: "Resolve an asset directory and write the upload payload to SQLite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, output := args[0], args[1]

			start := time.Now()
			b, err := o.resolve(cmd.Context(), dir)
			if err != nil {
				return err
			}

			if overwrite {
				if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("remove %s: %w", output, err)
				}
			}
			w, err := stage.NewWriter(output)
			if err != nil {
				return err
			}
			n, err := w.StageBatch(b)
			if err != nil {
				_ = w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}

			o.log.Info("staged batch", "output", output, "batch_id", w.BatchID(), "items", n)
			fmt.Fprintf(cmd.OutOrStdout(), "Staged %d pairs (%d items) into %s in %v.\n",
				b.Len(), n, output, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Remove an existing output database first")
	return cmd
}
