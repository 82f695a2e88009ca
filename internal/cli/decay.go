package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newDecayCmd(opts *options) *cobra.Command {
	var (
		cutoff int
		group  int64
	)
	cmd := &cobra.Command{
		Use:   "decay",
		Short: "Forget memories whose weight is at or below the cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			var removed int
			if cmd.Flags().Changed("group") {
				removed = w.store.DecaySweep(group, cutoff)
			} else {
				removed = w.store.DecayAll(cutoff)
			}
			if err := w.save(cmd); err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), map[string]int{"removed": removed}, func(wr io.Writer) {
				fmt.Fprintf(wr, "removed %d entries\n", removed)
			})
		},
	}
	cmd.Flags().IntVarP(&cutoff, "cutoff", "c", 1, "Remove entries with weight <= cutoff")
	cmd.Flags().Int64VarP(&group, "group", "g", 0, "Only sweep this group")
	return cmd
}
