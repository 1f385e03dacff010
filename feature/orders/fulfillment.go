package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"inventree-connect/core/reconcile"
	"inventree-connect/feature/gateway"
	"inventree-connect/feature/gateway/inventree"
	"inventree-connect/feature/gateway/shopware"
	"inventree-connect/feature/store"

	"go.uber.org/zap"
)

// StateResult summarizes one ReconcileOrderStates run.
type StateResult struct {
	Checked    int `json:"checked"`
	Settled    int `json:"settled"`
	Unchanged  int `json:"unchanged"`
	Advanced   int `json:"advanced"`
	Violations int `json:"violations"`
	Failed     int `json:"failed"`
}

// Counts returns the result as outcome -> count.
func (r *StateResult) Counts() map[string]int {
	return map[string]int{
		"checked":    r.Checked,
		"settled":    r.Settled,
		"unchanged":  r.Unchanged,
		"advanced":   r.Advanced,
		"violations": r.Violations,
		"failed":     r.Failed,
	}
}

// ReconcileOrderStates moves every linked sales order at most one step towards
// the state of its Source order. Target states never regress.
func (s *Service) ReconcileOrderStates(ctx context.Context) (*StateResult, error) {
	l := s.logger.Named("fulfillment")

	linked, err := s.store.OrdersInTarget(ctx)
	if err != nil {
		return nil, fmt.Errorf("select linked orders: %w", err)
	}

	res := &StateResult{}
	for _, o := range linked {
		if settled(o) {
			res.Settled++
			continue
		}
		res.Checked++

		ol := l.With(
			zap.Uint("local_id", o.ID),
			zap.String("source_id", deref(o.SourceID)),
			zap.String("target_id", deref(o.TargetID)),
		)
		err := s.reconcileState(ctx, o, res, ol)
		switch {
		case err == nil:
		case errors.Is(err, reconcile.ErrInvariant), errors.Is(err, reconcile.ErrUnknownState):
			res.Violations++
			ol.Error("Order state violation", zap.Error(err))
		default:
			res.Failed++
			ol.Error("Order state not reconciled", zap.Error(err))
		}
	}
	return res, nil
}

// settled reports whether an order needs no further status checks: cancelled
// in Source, or complete on both sides.
func settled(o store.Order) bool {
	src, err := ParseState(o.SourceState)
	if err != nil {
		return false
	}
	if src == Cancelled {
		return true
	}
	if src != Complete || o.TargetState == nil {
		return false
	}
	tgt, err := ParseState(*o.TargetState)
	return err == nil && tgt == Complete
}

func (s *Service) reconcileState(ctx context.Context, o store.Order, res *StateResult, l *zap.Logger) error {
	if o.SourceID == nil || o.TargetID == nil {
		return fmt.Errorf("%w: linked order without ids", reconcile.ErrInvariant)
	}

	rawSource, err := s.sourceState(ctx, *o.SourceID)
	if err != nil {
		return err
	}
	if rawSource != o.SourceState {
		if err := s.store.Update(ctx, o.ID, store.OrderPatch{SourceState: store.Ptr(rawSource)}); err != nil {
			return err
		}
	}
	rawTarget, err := s.targetState(ctx, *o.TargetID)
	if err != nil {
		return err
	}

	src, err := ParseState(rawSource)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	tgt, err := ParseState(rawTarget)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	l = l.With(zap.String("source_state", rawSource), zap.String("target_state", rawTarget))

	switch {
	case src == tgt:
		if o.TargetState == nil || *o.TargetState != rawTarget {
			if err := s.store.SetTargetState(ctx, o.ID, rawTarget, MonotonicGuard(tgt)); err != nil {
				return err
			}
		}
		res.Unchanged++
		return nil
	case src == Cancelled || tgt == Cancelled:
		return fmt.Errorf("%w: %s in source, %s in target", reconcile.ErrInvariant, rawSource, rawTarget)
	case src < tgt:
		return fmt.Errorf("%w: target %s is ahead of source %s", reconcile.ErrInvariant, rawTarget, rawSource)
	}

	next, err := s.advance(ctx, *o.TargetID, tgt)
	if err != nil {
		return err
	}
	if err := s.store.SetTargetState(ctx, o.ID, next.String(), MonotonicGuard(next)); err != nil {
		return err
	}
	res.Advanced++
	l.Info("Sales order advanced", zap.Stringer("state", next))
	return nil
}

// advance performs the one transition that follows from state.
func (s *Service) advance(ctx context.Context, salesOrder string, state Rank) (Rank, error) {
	switch state {
	case Pending:
		if err := s.target.Action(ctx, inventree.ResourceSalesOrder, salesOrder, inventree.VerbIssue, nil); err != nil {
			return 0, fmt.Errorf("issue: %w", err)
		}
		return InProgress, nil
	case InProgress:
		completeErr := s.target.Action(ctx, inventree.ResourceSalesOrder, salesOrder, inventree.VerbComplete, nil)
		if completeErr == nil {
			return Complete, nil
		}
		pk, err := strconv.Atoi(salesOrder)
		if err != nil {
			return 0, fmt.Errorf("sales order id %q: %w", salesOrder, err)
		}
		shipment, err := s.openShipment(ctx, pk)
		if err != nil {
			return 0, fmt.Errorf("complete rejected (%v), manual review needed: %w", completeErr, err)
		}
		if err := s.target.Action(ctx, inventree.ResourceShipment, strconv.Itoa(shipment.PK), inventree.VerbShip, nil); err != nil {
			return 0, fmt.Errorf("ship shipment %d: %w", shipment.PK, err)
		}
		return Complete, nil
	default:
		return 0, fmt.Errorf("%w: no transition from %s", reconcile.ErrInvariant, state)
	}
}

func (s *Service) sourceState(ctx context.Context, sourceID string) (string, error) {
	raw, err := s.source.Get(ctx, "order", sourceID, "stateMachineState")
	if err != nil {
		return "", fmt.Errorf("source order: %w", err)
	}
	var o shopware.Order
	if err := gateway.Decode(raw, &o); err != nil {
		return "", fmt.Errorf("source order: %w", err)
	}
	if o.StateMachineState == nil {
		return "", fmt.Errorf("%w: source order without state", reconcile.ErrInvalidResponse)
	}
	return o.StateMachineState.Name, nil
}

func (s *Service) targetState(ctx context.Context, targetID string) (string, error) {
	raw, err := s.target.Get(ctx, inventree.ResourceSalesOrder+"/"+targetID, nil)
	if err != nil {
		return "", fmt.Errorf("sales order: %w", err)
	}
	var so inventree.SalesOrder
	if err := gateway.Decode(raw, &so); err != nil {
		return "", fmt.Errorf("sales order: %w", err)
	}
	return so.StatusText, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
