package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var saveSnapshot bool

// scanCmd runs a source catalog scan without touching the destination shop.
var scanCmd = &cobra.Command{
	Use:   "scan [reference ...]",
	Short: "Scan the source catalog for tracked references",
	Long: `Scans the source catalog for the given references (or the tracked set
when none are given) and reports which were found, without reconciling.

Examples:
  # Scan the tracked reference set
  vendsync scan

  # Scan specific references and persist the snapshot
  vendsync scan --save P001 P002`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&saveSnapshot, "save", false, "Persist the scan result as the current snapshot")
	RootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	l := p.logger
	defer l.Sync()

	scan, err := p.service.Scan(ctx, args, saveSnapshot)
	if err != nil {
		return err
	}

	l.Info("Scan finished",
		zap.Int("searched", scan.TotalSearched),
		zap.Int("found", len(scan.Found)),
		zap.Int("notFound", len(scan.NotFound)),
		zap.Int("pagesScanned", scan.PagesScanned),
		zap.Bool("aborted", scan.Aborted),
	)
	for ref, entry := range scan.Found {
		l.Info("Found reference",
			zap.String("reference", ref),
			zap.Int("page", entry.Page),
			zap.Int("position", entry.Position),
			zap.String("title", entry.Product.Title),
			zap.String("price", entry.Product.Price.StringFixed(2)),
			zap.Int("stock", entry.Product.Stock),
		)
	}
	for _, ref := range scan.NotFound {
		l.Warn("Reference not found", zap.String("reference", ref))
	}
	if saveSnapshot {
		fmt.Println("Snapshot saved.")
	}
	return nil
}
