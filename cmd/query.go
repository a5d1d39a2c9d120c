package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/assetpairs/internal/assets"
)

func newQueryCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "query [dir] [jsonpath]",
		Short: "Evaluate a JSONPath expression against every metadata document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := o.resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows, err := assets.Query(b, args[1])
			if err != nil {
				return err
			}
			for _, row := range rows {
				vals, err := json.Marshal(row.Values)
				if err != nil {
					return fmt.Errorf("encode %s: %w", row.File, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", row.Index.Key(), vals)
			}
			return nil
		},
	}
}
