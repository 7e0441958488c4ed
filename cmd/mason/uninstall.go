package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mason-org/mason-go/internal/lifecycle"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <package>...",
	Short: "Remove one or more installed packages",
	Long: `Uninstall reads each package's receipt and removes exactly the
recorded link destinations, then the package directory itself (spec.md
§4.8).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := newContext()
		if err != nil {
			return err
		}

		l, err := acquireLock(cfg.LockPath)
		if err != nil {
			return err
		}
		defer l.Release()

		for _, name := range args {
			if err := lifecycle.Uninstall(cfg, name); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			fmt.Printf("Uninstalled %s\n", name)
		}
		return nil
	},
}
