package mirror

import (
	"context"
	"fmt"
	"strconv"

	"inventree-connect/core/reconcile"
	"inventree-connect/core/utils"
	"inventree-connect/feature/gateway/inventree"
	"inventree-connect/feature/gateway/shopware"
	"inventree-connect/feature/store"
)

// AddressRecord is one Source customer address.
type AddressRecord struct {
	shopware.Address
}

// SourceID implements reconcile.Record.
func (r AddressRecord) SourceID() string { return r.ID }

// AddressAdapter mirrors customer addresses into Target company addresses.
// Addresses are listed through their customers, so a page holds the addresses
// of one page of customers.
type AddressAdapter struct {
	store  *store.Store
	source Source
	target Target
}

// NewAddressAdapter creates the address adapter.
func NewAddressAdapter(st *store.Store, src Source, tgt Target) *AddressAdapter {
	return &AddressAdapter{store: st, source: src, target: tgt}
}

// Kind implements reconcile.Adapter.
func (a *AddressAdapter) Kind() reconcile.Kind { return reconcile.KindAddress }

// FetchPage implements reconcile.Adapter.
func (a *AddressAdapter) FetchPage(ctx context.Context, page, limit int) (*reconcile.Page, error) {
	p, err := a.source.List(ctx, "customer", shopware.ListOptions{
		Page:  page,
		Limit: limit,
		Query: shopware.Associations("addresses"),
	})
	if err != nil {
		return nil, err
	}
	customers, err := decodePage[shopware.Customer](p)
	if err != nil {
		return nil, fmt.Errorf("decode customer addresses: %w", err)
	}
	out := &reconcile.Page{Fetched: len(p.Items)}
	for _, c := range customers {
		for _, addr := range c.Addresses {
			if addr.CustomerID == "" {
				addr.CustomerID = c.ID
			}
			out.Records = append(out.Records, AddressRecord{addr})
		}
	}
	return out, nil
}

// Upsert implements reconcile.Adapter. Addresses of unknown customers are skipped.
func (a *AddressAdapter) Upsert(ctx context.Context, rec reconcile.Record) (uint, bool, error) {
	r := rec.(AddressRecord)
	existing, err := a.store.AddressBySourceID(ctx, r.ID)
	if err == nil {
		err = a.store.Update(ctx, existing.ID, store.AddressPatch{
			FirstName: store.Ptr(r.FirstName),
			LastName:  store.Ptr(r.LastName),
			Street:    store.Ptr(r.Street),
			Zipcode:   store.Ptr(r.Zipcode),
			City:      store.Ptr(r.City),
			InSource:  store.Ptr(true),
		})
		return existing.ID, false, err
	}
	if !isNotFound(err) {
		return 0, false, err
	}

	customer, err := a.store.CustomerBySourceID(ctx, r.CustomerID)
	if isNotFound(err) {
		return 0, false, fmt.Errorf("%w: customer %s not mirrored", reconcile.ErrSkipped, r.CustomerID)
	}
	if err != nil {
		return 0, false, err
	}

	addr := &store.Address{
		Mirror:     store.Mirror{SourceID: store.Ptr(r.ID), InSource: true, Updated: true},
		CustomerID: customer.ID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Street:     r.Street,
		Zipcode:    r.Zipcode,
		City:       r.City,
	}
	if err := a.store.InsertAddress(ctx, addr); err != nil {
		return 0, false, err
	}
	return addr.ID, true, nil
}

// Push implements reconcile.Adapter. The owning customer is created in Target
// first when needed; an address whose customer row is gone is deleted.
func (a *AddressAdapter) Push(ctx context.Context, localID uint, parents reconcile.Resolver) (string, error) {
	addr, err := a.store.Address(ctx, localID)
	if err != nil {
		return "", err
	}

	companyID, err := parents.EnsureTarget(ctx, reconcile.KindCustomer, addr.CustomerID)
	if isNotFound(err) {
		if err := a.store.DeleteAddress(ctx, addr.ID); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: customer %d of address %d", reconcile.ErrParentMissing, addr.CustomerID, addr.ID)
	}
	if err != nil {
		return "", fmt.Errorf("customer %d of address %d: %w", addr.CustomerID, addr.ID, err)
	}
	company, err := strconv.Atoi(companyID)
	if err != nil {
		return "", fmt.Errorf("customer %d target id %q: %w", addr.CustomerID, companyID, err)
	}

	obj, err := a.target.Create(ctx, inventree.ResourceCompanyAddress, map[string]any{
		"company":     company,
		"title":       strconv.FormatUint(uint64(addr.ID), 10),
		"line1":       utils.Truncate(addr.FirstName+" "+addr.LastName, 50),
		"line2":       utils.Truncate(addr.Street, 50),
		"postal_code": utils.Truncate(addr.Zipcode, 10),
		"postal_city": addr.City,
	})
	if err != nil {
		return "", err
	}
	return targetPK(obj)
}
