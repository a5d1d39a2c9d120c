package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newResolveCmd(o *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "resolve [dir]",
		Short: "Validate an asset directory and print its pairs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := o.resolve(cmd.Context(), o.assetsDir(args))
			if err != nil {
				return err
			}
			pairs := b.Sorted()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(pairs)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tNAME\tIMAGE\tANIMATION")
			for _, p := range pairs {
				anim := "-"
				if p.Pair.HasAnimation() {
					anim = p.Pair.Animation
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.Index, p.Pair.Name, p.Pair.Image, anim)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print pairs as JSON")
	return cmd
}
