package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newReplyCmd(opts *options) *cobra.Command {
	var (
		group int64
		text  string
	)
	cmd := &cobra.Command{
		Use:   "reply",
		Short: "Preview the reply the bot would pick for a message",
		Long:  "Runs reply selection against the stored memory. Nothing is recorded or sent.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			d, ok := w.runner().Decide(group, text)
			if !ok {
				return fmt.Errorf("group %d has no memories", group)
			}
			return opts.print(cmd.OutOrStdout(), d, func(wr io.Writer) {
				fmt.Fprintf(wr, "[%s] %s\n", d.Kind, d.Text)
			})
		},
	}
	cmd.Flags().Int64VarP(&group, "group", "g", 0, "Group id")
	cmd.Flags().StringVar(&text, "text", "", "Incoming message text")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
