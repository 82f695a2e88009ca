package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

func newDumpCmd(opts *options) *cobra.Command {
	var group int64
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "List a group's memories, heaviest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			entries := w.store.Snapshot(group)
			sort.SliceStable(entries, func(i, j int) bool { return entries[i].Weight > entries[j].Weight })

			return opts.print(cmd.OutOrStdout(), entries, func(wr io.Writer) {
				for _, e := range entries {
					fmt.Fprintf(wr, "%3d  %s\n", e.Weight, e.Message)
				}
			})
		},
	}
	cmd.Flags().Int64VarP(&group, "group", "g", 0, "Group id")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}
