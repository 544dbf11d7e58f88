// Command gato is a thin CLI adapter over the core engine in
// pkg/repo, pkg/registry, and pkg/gc. It resolves flags, formats
// output, and maps core errors to exit codes; every durability and
// correctness guarantee lives in the packages it calls.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "gato",
		Short: "Content-addressed version control for binary-heavy repositories",
	}
	root.PersistentFlags().String("store", defaultStoreRoot(), "shared object store root")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newStageCmd())
	root.AddCommand(newCommitCmd())
	root.AddCommand(newCheckoutCmd())
	root.AddCommand(newBranchCmd())
	root.AddCommand(newSwitchCmd())
	root.AddCommand(newSoftResetCmd())
	root.AddCommand(newGcCmd())
	root.AddCommand(newListReposCmd())
	root.AddCommand(newDeleteRepoCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newMergeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "gato 0.1.0-dev")
		},
	}
}

// defaultStoreRoot picks a store root when --store is not given.
// Real data-directory resolution (XDG, platform conventions) is a CLI
// concern out of this module's scope (spec §1); this is a minimal
// stand-in so the CLI is usable without extra configuration.
func defaultStoreRoot() string {
	if v := os.Getenv("GATO_STORE"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gato-store"
	}
	return home + string(os.PathSeparator) + ".gato-store"
}

func storeRootFlag(cmd *cobra.Command) (string, error) {
	return cmd.Flags().GetString("store")
}
