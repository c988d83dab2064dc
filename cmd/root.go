package cmd

import (
	"fmt"
	"os"

	"vendsync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "vendsync",
	Short: "Vendus to Shopify catalog sync",
	Long: `Vendsync keeps a Shopify shop in line with a Vendus POS catalog.
It scans the source catalog for a tracked set of references, snapshots the
result, and reconciles the shop's tagged products against it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format so CLI errors read like CLI errors, not log lines.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
