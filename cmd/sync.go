package cmd

import (
	"context"
	"fmt"
	"sort"

	"inventree-connect/core/reconcile"
	"inventree-connect/feature/mirror"
	"inventree-connect/feature/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validateProducts bool

// syncCmd runs one cycle, or one stage of it.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single reconciliation cycle or one of its stages",
	Long: `Runs one full cycle when called without a subcommand. The subcommands run a
single stage against the same store:

  sync customers
  sync addresses
  sync products [--validate]
  sync orders      assemble the latest Source orders and push them
  sync states      reconcile the status of pushed orders`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withServices(cmd.Context(), func(ctx context.Context, svc *services) error {
			archiver, err := svc.archiver(ctx)
			if err != nil {
				return err
			}
			rep, err := svc.cycles(archiver).RunCycle(ctx)
			if err != nil {
				return err
			}
			if rep.Status == report.StatusFailed {
				return fmt.Errorf("cycle %s failed", rep.CycleID)
			}
			return nil
		})
	},
}

func mirrorCmd(kind reconcile.Kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind) + "s",
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, svc *services) error {
				res, err := svc.mirror.Sync(ctx, kind)
				if res != nil {
					logCounts(svc.logger, string(kind)+"s", res.Counts())
				}
				if err != nil {
					return fmt.Errorf("%s sync failed: %w", kind, err)
				}
				if kind == reconcile.KindProduct && validateProducts {
					v, err := mirror.ValidateProducts(ctx, svc.store, svc.source, svc.logger)
					if v != nil {
						logCounts(svc.logger, "products.validate", v.Counts())
					}
					if err != nil {
						return fmt.Errorf("product validation failed: %w", err)
					}
				}
				return nil
			})
		},
	}
}

var syncOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Assemble the latest Source orders and push them to Target",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withServices(cmd.Context(), func(ctx context.Context, svc *services) error {
			a, err := svc.orders.AssembleOrders(ctx)
			if a != nil {
				logCounts(svc.logger, "orders.assemble", a.Counts())
			}
			if err != nil {
				return fmt.Errorf("order assembly failed: %w", err)
			}
			p, err := svc.orders.PushOrders(ctx)
			if p != nil {
				logCounts(svc.logger, "orders.push", p.Counts())
			}
			if err != nil {
				return fmt.Errorf("order push failed: %w", err)
			}
			return nil
		})
	},
}

var syncStatesCmd = &cobra.Command{
	Use:   "states",
	Short: "Reconcile the status of pushed orders",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withServices(cmd.Context(), func(ctx context.Context, svc *services) error {
			res, err := svc.orders.ReconcileOrderStates(ctx)
			if res != nil {
				logCounts(svc.logger, "orders.states", res.Counts())
			}
			if err != nil {
				return fmt.Errorf("state reconciliation failed: %w", err)
			}
			return nil
		})
	},
}

func init() {
	products := mirrorCmd(reconcile.KindProduct, "Mirror Source products into Target parts")
	products.Flags().BoolVar(&validateProducts, "validate", false, "Check every mirrored product still exists in Source")

	syncCmd.AddCommand(
		mirrorCmd(reconcile.KindCustomer, "Mirror Source customers into Target companies"),
		mirrorCmd(reconcile.KindAddress, "Mirror Source addresses into Target company addresses"),
		products,
		syncOrdersCmd,
		syncStatesCmd,
	)
	RootCmd.AddCommand(syncCmd)
}

// withServices bootstraps the services for a one-shot command and closes them afterwards.
func withServices(parent context.Context, fn func(context.Context, *services) error) error {
	ctx, cancel := withCancel(parent)
	defer cancel()

	svc, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer svc.close()
	return fn(ctx, svc)
}

func logCounts(l *zap.Logger, concern string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := []zap.Field{zap.String("concern", concern)}
	for _, k := range keys {
		fields = append(fields, zap.Int(k, counts[k]))
	}
	l.Info("Stage finished", fields...)
}
