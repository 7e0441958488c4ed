package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the registry cache",
	Long:  `Update checks each configured registry for a new release and re-downloads it if so.`,
	Args:  cobra.NoArgs,
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

		if err := mctx.Refresh(globalCtx); err != nil {
			return err
		}
		fmt.Println("Registry is up to date.")
		return nil
	},
}
