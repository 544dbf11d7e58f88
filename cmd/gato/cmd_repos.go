package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gato/pkg/registry"
	"github.com/odvcencio/gato/pkg/repo"
)

func newListReposCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-repos",
		Short: "List every repository registered at the store root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storeRoot, err := storeRootFlag(cmd)
			if err != nil {
				return err
			}
			paths, err := registry.List(storeRoot)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range paths {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
}

func newDeleteRepoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-repo",
		Short: "Unregister the current repository and remove its refs and pending index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			if err := r.DeleteRepo(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted repository %s\n", r.ID)
			return nil
		},
	}
}
