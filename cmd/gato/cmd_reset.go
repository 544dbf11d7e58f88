package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gato/pkg/repo"
)

func newSoftResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "soft-reset <offset>",
		Short: "Move the active branch's ref to an ancestor, leaving the working tree and index untouched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("soft-reset: invalid offset %q: %w", args[0], err)
			}
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			if err := r.SoftReset(n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "active branch reset to offset %d\n", n)
			return nil
		},
	}
}
