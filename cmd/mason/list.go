package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mason-org/mason-go/internal/masoncontext"
	"github.com/mason-org/mason-go/internal/receipt"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, mctx, err := newContext()
		if err != nil {
			return err
		}
		installed, err := mctx.List()
		if err != nil {
			return err
		}
		for _, pkg := range installed {
			fmt.Println(pkg.Name)
		}
		return nil
	},
}

// findInstalled returns the receipt for name among installed, if present.
func findInstalled(installed []masoncontext.InstalledPackage, name string) (*receipt.Receipt, bool) {
	for _, ip := range installed {
		if ip.Name == name {
			return ip.Receipt, true
		}
	}
	return nil, false
}
