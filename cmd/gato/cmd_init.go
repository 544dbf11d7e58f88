package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gato/pkg/gatoconfig"
	"github.com/odvcencio/gato/pkg/repo"
)

func newInitCmd() *cobra.Command {
	var title, author, email, description, ignore string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new gato repository in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storeRoot, err := storeRootFlag(cmd)
			if err != nil {
				return err
			}
			workDir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("resolve working directory: %w", err)
			}

			cfg := gatoconfig.Config{
				Title:       title,
				Author:      author,
				Email:       email,
				Description: description,
				Ignore:      splitNonEmpty(ignore, ","),
			}

			r, err := repo.Init(workDir, storeRoot, cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized gato repository %s in %s (store %s)\n", r.ID, r.WorkDir, r.StoreRoot)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "untitled", "repository title")
	cmd.Flags().StringVar(&author, "author", "", "author name (required)")
	cmd.Flags().StringVar(&email, "email", "", "author email")
	cmd.Flags().StringVar(&description, "description", "", "repository description (required)")
	cmd.Flags().StringVar(&ignore, "ignore", "", "comma-separated list of path components to ignore")
	return cmd
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
