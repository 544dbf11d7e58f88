package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gato/pkg/repo"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout [offset]",
		Short: "Restore the commit at offset from the active branch's tip into the working tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset := 0
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("checkout: invalid offset %q: %w", args[0], err)
				}
				offset = n
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			if err := r.Checkout(offset); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked out commit at offset %d\n", offset)
			return nil
		},
	}
}
