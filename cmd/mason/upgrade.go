package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mason-org/mason-go/internal/lifecycle"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [<package>...]",
	Short: "Reinstall packages that have a newer version available",
	Long: `Upgrade compares each installed package's recorded version against the
registry's current version and reinstalls only those that are out of date.
With no arguments, every installed package is checked.`,
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

		targets := args
		if len(targets) == 0 {
			installed, err := mctx.List()
			if err != nil {
				return err
			}
			for _, ip := range installed {
				targets = append(targets, ip.Name)
			}
		}

		for _, name := range targets {
			installed, err := mctx.List()
			if err != nil {
				return err
			}
			receiptOf, found := findInstalled(installed, name)
			if !found {
				fmt.Printf("%s is not installed, skipping\n", name)
				continue
			}

			needs, err := mctx.NeedsUpgrade(globalCtx, name, receiptOf)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if !needs {
				fmt.Printf("%s is already up to date\n", name)
				continue
			}

			pkg, err := mctx.Lookup(globalCtx, name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if err := lifecycle.Uninstall(cfg, name); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if err := lifecycle.Install(globalCtx, cfg, pkg.PURL, pkg.PURL.Format(), pkg); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			fmt.Printf("Upgraded %s to %s\n", name, pkg.PURL.Version)
		}
		return nil
	},
}
