package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gato/pkg/gc"
)

func newGcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Mark objects reachable from any ref of any registered repository, sweep the rest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storeRoot, err := storeRootFlag(cmd)
			if err != nil {
				return err
			}
			result, err := gc.Run(storeRoot)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reachable %d object(s), swept %d object(s)\n", result.Reachable, result.Swept)
			return nil
		},
	}
}
