package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"inventree-connect/feature/cleanup"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunClean bool
	yesConfirm  bool
)

// cleanCmd deletes mirrored records that disappeared from Source.
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete customers and addresses no longer present in Source",
	Long: `Plans the deletion of every customer and address the last sync marked as
gone from Source. Customers linked to a Target company are deleted there first.

Examples:
  # Report only
  clean --dry-run

  # Delete with interactive confirmation
  clean

  # Delete without prompting
  clean --yes`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withServices(cmd.Context(), runClean)
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&dryRunClean, "dry-run", false, "Only print the plan")
	cleanCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	RootCmd.AddCommand(cleanCmd)
}

func runClean(ctx context.Context, svc *services) error {
	l := svc.logger
	cl := cleanup.NewService(svc.store, svc.target, l)

	plan, err := cl.Plan(ctx)
	if err != nil {
		return fmt.Errorf("failed to plan cleanup: %w", err)
	}
	printCleanupPlan(l, plan)

	if len(plan.Actions) == 0 {
		l.Info("Nothing to clean up")
		return nil
	}
	if dryRunClean {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	executed, err := cl.Apply(ctx, plan)
	l.Info("Cleanup finished", zap.Int("executed", executed), zap.Int("planned", len(plan.Actions)))
	if err != nil {
		return fmt.Errorf("cleanup incomplete: %w", err)
	}
	return nil
}

func printCleanupPlan(l *zap.Logger, plan *cleanup.Plan) {
	s := plan.Summary
	l.Info("Cleanup plan",
		zap.Int("customers", s.Customers),
		zap.Int("linked_customers", s.LinkedCustomers),
		zap.Int("addresses", s.Addresses),
	)

	maxShow := min(5, len(plan.Actions))
	for _, a := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(a.Type)),
			zap.Uint("local_id", a.LocalID),
			zap.String("target_id", a.TargetID),
			zap.String("reason", a.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\nAuto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\nType 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
