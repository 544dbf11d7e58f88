package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gato/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Compare the working tree against the pending index and HEAD's tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			entries, err := r.Status()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%-20s %s\n", e.Status, e.Path)
			}
			return nil
		},
	}
}
