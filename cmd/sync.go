package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"vendsync/core/snapshot"
	"vendsync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunSync bool
	yesConfirm bool
)

// syncCmd runs one full reconciliation pass from the CLI.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass (plan + apply)",
	Long: `Scans the source catalog, diffs it against the shop's tagged products,
and applies the resulting creates, updates, and deletes.

Examples:
  # Plan only, no mutations
  vendsync sync --dry-run

  # Full run with interactive confirmation when deletions are planned
  vendsync sync

  # Full run, non-interactive
  vendsync sync --yes`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Plan and report only, apply nothing")
	syncCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm deletions (non-interactive)")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	l := p.logger
	defer l.Sync()

	// Plan first so the operator sees what a run would do before anything
	// is mutated.
	scan, plan, err := p.service.Plan(ctx)
	if err != nil {
		return err
	}
	printPlan(l, scan, plan)

	if dryRunSync {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if plan.IsEmpty() {
		l.Info("Nothing to do, catalog is in sync.")
		return nil
	}

	if len(plan.ToDelete) > 0 && !confirmDeletions(len(plan.ToDelete)) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	// Apply the plan the operator just confirmed, not a fresh one from a
	// second scan.
	report, err := p.service.ApplyPlan(ctx, scan, plan, "cli")
	if err != nil {
		return err
	}

	l.Info("Sync run finished",
		zap.String("runId", report.RunID),
		zap.String("status", report.Status),
	)
	if report.Apply != nil {
		l.Info(report.Apply.Message)
		for _, itemErr := range report.Apply.Errors {
			l.Error("Item failed",
				zap.String("reference", itemErr.Reference),
				zap.String("action", itemErr.Action),
				zap.String("error", itemErr.Message),
			)
		}
	}
	if report.Status == sync.RunFailed {
		return fmt.Errorf("sync run failed: %s", report.Error)
	}
	return nil
}

// printPlan prints a formatted plan report using logger.
func printPlan(l *zap.Logger, scan *snapshot.ScanResult, plan *sync.Plan) {
	l.Info("Reconciliation plan",
		zap.Int("found", len(scan.Found)),
		zap.Int("notFound", len(scan.NotFound)),
		zap.Int("toCreate", len(plan.ToCreate)),
		zap.Int("toUpdate", len(plan.ToUpdate)),
		zap.Int("toDelete", len(plan.ToDelete)),
	)
	for _, item := range plan.ToCreate {
		l.Info("Planned create", zap.String("reference", item.Reference))
	}
	for _, item := range plan.ToUpdate {
		l.Info("Planned update",
			zap.String("reference", item.Reference),
			zap.Int64("productId", item.Existing.ID),
		)
	}
	for _, product := range plan.ToDelete {
		l.Info("Planned delete",
			zap.Int64("productId", product.ID),
			zap.String("title", product.Title),
		)
	}
}

// confirmDeletions prompts the user for confirmation or uses --yes flag.
func confirmDeletions(count int) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  %d product(s) will be deleted. Type 'yes' to confirm: ", count)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
