package cleanup

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"inventree-connect/core/reconcile"
	"inventree-connect/feature/gateway/inventree"
	"inventree-connect/feature/store"

	"go.uber.org/zap"
)

// ActionType names what an action deletes.
type ActionType string

const (
	ActionDeleteCustomer ActionType = "delete_customer"
	ActionDeleteAddress  ActionType = "delete_address"
)

// Action is one planned deletion.
type Action struct {
	Type     ActionType `json:"type"`
	LocalID  uint       `json:"local_id"`
	TargetID string     `json:"target_id,omitempty"`
	Reason   string     `json:"reason"`
}

// Summary counts the planned actions.
type Summary struct {
	Customers       int `json:"customers"`
	LinkedCustomers int `json:"linked_customers"`
	Addresses       int `json:"addresses"`
}

// Plan lists the deletions of records no longer present in Source. Customer
// actions come before address actions.
type Plan struct {
	Actions []Action `json:"actions"`
	Summary Summary  `json:"summary"`
}

// Target is the part of the InvenTree client cleanup uses.
type Target interface {
	Delete(ctx context.Context, resource, id string) error
}

// Service plans and applies deletions of swept customers and addresses.
type Service struct {
	store  *store.Store
	target Target
	logger *zap.Logger
}

// NewService creates the cleanup service.
func NewService(st *store.Store, tgt Target, logger *zap.Logger) *Service {
	return &Service{store: st, target: tgt, logger: logger.Named("cleanup")}
}

// Plan collects the deletions without changing anything.
func (s *Service) Plan(ctx context.Context) (*Plan, error) {
	customers, err := s.store.SweptCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list swept customers: %w", err)
	}
	addresses, err := s.store.SweptAddresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list swept addresses: %w", err)
	}

	plan := &Plan{}
	for _, c := range customers {
		a := Action{Type: ActionDeleteCustomer, LocalID: c.ID, Reason: "customer no longer in source"}
		if c.InTarget && c.TargetID != nil {
			a.TargetID = *c.TargetID
			plan.Summary.LinkedCustomers++
		}
		plan.Actions = append(plan.Actions, a)
		plan.Summary.Customers++
	}
	for _, addr := range addresses {
		plan.Actions = append(plan.Actions, Action{Type: ActionDeleteAddress, LocalID: addr.ID, Reason: "address no longer in source"})
		plan.Summary.Addresses++
	}
	return plan, nil
}

// Apply executes plan and returns how many actions succeeded. A customer whose
// company could not be deleted in Target is kept locally.
func (s *Service) Apply(ctx context.Context, plan *Plan) (int, error) {
	var (
		executed int
		errs     []error
	)
	for _, a := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return executed, errors.Join(append(errs, err)...)
		}
		l := s.logger.With(zap.String("type", string(a.Type)), zap.Uint("local_id", a.LocalID))

		var err error
		switch a.Type {
		case ActionDeleteCustomer:
			err = s.deleteCustomer(ctx, a)
		case ActionDeleteAddress:
			err = s.store.DeleteAddress(ctx, a.LocalID)
		default:
			err = fmt.Errorf("unknown action %q", a.Type)
		}
		if err != nil {
			l.Error("Cleanup action failed", zap.Error(err))
			errs = append(errs, err)
			continue
		}
		executed++
		l.Debug("Cleanup action applied", zap.String("target_id", a.TargetID))
	}
	return executed, errors.Join(errs...)
}

func (s *Service) deleteCustomer(ctx context.Context, a Action) error {
	if a.TargetID != "" {
		if _, err := strconv.Atoi(a.TargetID); err != nil {
			return fmt.Errorf("customer %d target id %q: %w", a.LocalID, a.TargetID, err)
		}
		err := s.target.Delete(ctx, inventree.ResourceCompany, a.TargetID)
		if err != nil && !errors.Is(err, reconcile.ErrNotFound) {
			return fmt.Errorf("delete company %s: %w", a.TargetID, err)
		}
	}
	return s.store.DeleteCustomer(ctx, a.LocalID)
}
