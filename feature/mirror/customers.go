package mirror

import (
	"context"
	"fmt"

	"inventree-connect/core/reconcile"
	"inventree-connect/feature/gateway/inventree"
	"inventree-connect/feature/gateway/shopware"
	"inventree-connect/feature/store"
)

// CustomerRecord is one Source customer.
type CustomerRecord struct {
	shopware.Customer
}

// SourceID implements reconcile.Record.
func (r CustomerRecord) SourceID() string { return r.ID }

// CustomerAdapter mirrors Source customers into Target companies.
type CustomerAdapter struct {
	store    *store.Store
	source   Source
	target   Target
	currency string
}

// NewCustomerAdapter creates the customer adapter.
func NewCustomerAdapter(st *store.Store, src Source, tgt Target, cfg Config) *CustomerAdapter {
	return &CustomerAdapter{store: st, source: src, target: tgt, currency: cfg.Currency}
}

// Kind implements reconcile.Adapter.
func (a *CustomerAdapter) Kind() reconcile.Kind { return reconcile.KindCustomer }

// FetchPage implements reconcile.Adapter.
func (a *CustomerAdapter) FetchPage(ctx context.Context, page, limit int) (*reconcile.Page, error) {
	p, err := a.source.List(ctx, "customer", shopware.ListOptions{Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}
	customers, err := decodePage[shopware.Customer](p)
	if err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	out := &reconcile.Page{Fetched: len(p.Items)}
	for _, c := range customers {
		out.Records = append(out.Records, CustomerRecord{c})
	}
	return out, nil
}

// Upsert implements reconcile.Adapter. A stored collision suffix survives updates
// of an unchanged last name.
func (a *CustomerAdapter) Upsert(ctx context.Context, rec reconcile.Record) (uint, bool, error) {
	r := rec.(CustomerRecord)
	existing, err := a.store.CustomerBySourceID(ctx, r.ID)
	if isNotFound(err) {
		c := &store.Customer{
			Mirror:    store.Mirror{SourceID: store.Ptr(r.ID), InSource: true, Updated: true},
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
		}
		if err := a.store.InsertCustomer(ctx, c); err != nil {
			return 0, false, err
		}
		return c.ID, true, nil
	}
	if err != nil {
		return 0, false, err
	}

	patch := store.CustomerPatch{
		FirstName: store.Ptr(r.FirstName),
		Email:     store.Ptr(r.Email),
		InSource:  store.Ptr(true),
	}
	if existing.LastName != r.LastName && !store.HasCollisionSuffix(existing.LastName, r.LastName) {
		patch.LastName = store.Ptr(r.LastName)
	}
	if err := a.store.Update(ctx, existing.ID, patch); err != nil {
		return 0, false, err
	}
	return existing.ID, false, nil
}

// Push implements reconcile.Adapter.
func (a *CustomerAdapter) Push(ctx context.Context, localID uint, _ reconcile.Resolver) (string, error) {
	c, err := a.store.Customer(ctx, localID)
	if err != nil {
		return "", err
	}
	obj, err := a.target.Create(ctx, inventree.ResourceCompany, map[string]any{
		"is_customer":     true,
		"name":            c.FirstName + " " + c.LastName,
		"email":           c.Email,
		"currency":        a.currency,
		"active":          true,
		"is_supplier":     false,
		"is_manufacturer": false,
	})
	if err != nil {
		return "", err
	}
	return targetPK(obj)
}
