package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newBlacklistCmd(opts *options) *cobra.Command {
	bl := &cobra.Command{
		Use:   "blacklist",
		Short: "Manage blacklist patterns",
	}

	bl.AddCommand(&cobra.Command{
		Use:   "add <pattern>",
		Short: "Append a full-match regex to the blacklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(opts)
			if err != nil {
				return err
			}
			if err := settings.AddBlacklist(args[0]); err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), map[string]string{"added": args[0]}, func(wr io.Writer) {
				fmt.Fprintf(wr, "added %q to %s\n", args[0], settings.Path())
			})
		},
	})

	bl.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the blacklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(opts)
			if err != nil {
				return err
			}
			patterns := settings.Current().BlackList
			return opts.print(cmd.OutOrStdout(), patterns, func(wr io.Writer) {
				for _, p := range patterns {
					fmt.Fprintln(wr, p)
				}
			})
		},
	})
	return bl
}
