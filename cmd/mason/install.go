package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mason-org/mason-go/internal/lifecycle"
)

var installCmd = &cobra.Command{
	Use:   "install <package>...",
	Short: "Install one or more packages",
	Long: `Install resolves each package's recipe, dispatches to its ecosystem
installer, and links the result onto PATH.

For a single "mason install A B C" invocation, A is fully committed (receipt
on disk, links placed) before B starts (spec.md §5).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mctx, err := newContext()
		if err != nil {
			return err
		}

		l, err := acquireLock(cfg.LockPath)
		if err != nil {
			return err
		}
		defer l.Release()

		for _, name := range args {
			pkg, err := mctx.Lookup(globalCtx, name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if pkg.IsDeprecated() {
				fmt.Fprintf(os.Stderr, "Warning: %s is deprecated: %s\n", name, pkg.Deprecation.Message)
			}

			fmt.Printf("Installing %s@%s...\n", pkg.Name, pkg.PURL.Version)
			if err := lifecycle.Install(globalCtx, cfg, pkg.PURL, pkg.PURL.Format(), pkg); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			fmt.Printf("Installed %s@%s\n", pkg.Name, pkg.PURL.Version)
		}
		return nil
	},
}
