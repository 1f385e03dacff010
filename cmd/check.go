package cmd

import (
	"context"
	"fmt"

	"inventree-connect/core/database"
	"inventree-connect/feature/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// checkCmd compares the live store schema with the models.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the local store has every table and column",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withServices(cmd.Context(), runCheck)
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)
}

func runCheck(_ context.Context, svc *services) error {
	expected, err := store.ExpectedSchema()
	if err != nil {
		return fmt.Errorf("failed to derive expected schema: %w", err)
	}
	issues, err := database.CheckSchema(svc.db, expected)
	if err != nil {
		return fmt.Errorf("schema check failed: %w", err)
	}
	for _, is := range issues {
		svc.logger.Warn("Schema issue",
			zap.String("table", is.Table),
			zap.String("column", is.Column),
			zap.String("reason", is.Reason),
		)
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d schema issues", len(issues))
	}
	svc.logger.Info("Schema OK", zap.Int("tables", len(expected)))
	return nil
}
