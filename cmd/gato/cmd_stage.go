package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gato/pkg/repo"
)

func newStageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stage [paths...]",
		Short: "Ingest files or directories into the pending staging index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			result, err := r.Stage(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "staged %d file(s)\n", len(result.Index.Paths))
			for _, p := range result.Skipped {
				fmt.Fprintf(out, "skipped (vanished before read): %s\n", p)
			}
			return nil
		},
	}
}
