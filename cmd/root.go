package cmd

import (
	"fmt"
	"os"

	"inventree-connect/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "inventree-connect",
	Short: "Shopware to InvenTree synchronization",
	Long: `inventree-connect mirrors Shopware customers, addresses and products into
InvenTree, turns Shopware orders into InvenTree sales orders with stock
allocation, and keeps the order status of both systems in step.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console encoding at debug level gives readable ISO8601 timestamps.
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
