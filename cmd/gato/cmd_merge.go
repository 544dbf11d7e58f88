package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gato/pkg/repo"
)

func newMergeCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "merge <branch>",
		Short: "Three-way merge branch into the active branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			result, err := r.Merge(args[0], message)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", result.CommitHash)
			if len(result.Conflicts) > 0 {
				fmt.Fprintf(out, "conflicts in %d file(s):\n", len(result.Conflicts))
				for _, p := range result.Conflicts {
					fmt.Fprintf(out, "  %s\n", p)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "merge commit message (required)")
	cmd.MarkFlagRequired("message")
	return cmd
}
