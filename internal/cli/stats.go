package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type groupStats struct {
	Group   int64 `json:"group"`
	Entries int   `json:"entries"`
}

type statsOutput struct {
	Groups  int          `json:"groups"`
	Entries int          `json:"entries"`
	PerGrp  []groupStats `json:"per_group"`
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show memory statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			st := w.store.Stats()
			out := statsOutput{Groups: st.Groups, Entries: st.Entries, PerGrp: []groupStats{}}
			for _, id := range w.store.Groups() {
				out.PerGrp = append(out.PerGrp, groupStats{Group: id, Entries: w.store.Len(id)})
			}

			return opts.print(cmd.OutOrStdout(), out, func(wr io.Writer) {
				fmt.Fprintf(wr, "groups: %d\nentries: %d\n", out.Groups, out.Entries)
				for _, g := range out.PerGrp {
					fmt.Fprintf(wr, "  %d\t%d\n", g.Group, g.Entries)
				}
			})
		},
	}
}
