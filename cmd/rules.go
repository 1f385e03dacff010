package cmd

import (
	"context"
	"fmt"
	"strconv"

	"inventree-connect/feature/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rulesCmd manages the per-product quantity rules applied while assembling orders.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage quantity modifiers and product overwrites",
}

var modifierCmd = &cobra.Command{
	Use:   "modifier <product-number> <multiplier> <offset>",
	Short: "Order quantity becomes quantity*multiplier+offset for the product",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		multiplier, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("multiplier: %w", err)
		}
		offset, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("offset: %w", err)
		}
		return withServices(cmd.Context(), func(ctx context.Context, svc *services) error {
			p, err := svc.store.ProductByNumber(ctx, args[0])
			if err != nil {
				return fmt.Errorf("product %s: %w", args[0], err)
			}
			if err := svc.store.SetModifier(ctx, &store.QuantityModifier{ProductID: p.ID, Multiplier: multiplier, Offset: offset}); err != nil {
				return err
			}
			svc.logger.Info("Quantity modifier set",
				zap.String("product", args[0]),
				zap.Int("multiplier", multiplier),
				zap.Int("offset", offset),
			)
			return nil
		})
	},
}

var overwriteCmd = &cobra.Command{
	Use:   "overwrite <product-number> <replacement-number>",
	Short: "Order lines for the product are booked on the replacement instead",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), func(ctx context.Context, svc *services) error {
			p, err := svc.store.ProductByNumber(ctx, args[0])
			if err != nil {
				return fmt.Errorf("product %s: %w", args[0], err)
			}
			r, err := svc.store.ProductByNumber(ctx, args[1])
			if err != nil {
				return fmt.Errorf("replacement %s: %w", args[1], err)
			}
			if err := svc.store.SetOverwrite(ctx, &store.ProductOverwrite{ProductID: p.ID, ReplacementID: r.ID}); err != nil {
				return err
			}
			svc.logger.Info("Product overwrite set", zap.String("product", args[0]), zap.String("replacement", args[1]))
			return nil
		})
	},
}

func init() {
	rulesCmd.AddCommand(modifierCmd, overwriteCmd)
	RootCmd.AddCommand(rulesCmd)
}
