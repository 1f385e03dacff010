package orders

import (
	"context"
	"fmt"
	"net/url"

	"inventree-connect/core/reconcile"
	"inventree-connect/feature/gateway"
	"inventree-connect/feature/gateway/shopware"
	"inventree-connect/feature/store"

	"go.uber.org/zap"
)

// AssembleResult summarizes one AssembleOrders run.
type AssembleResult struct {
	Fetched      int `json:"fetched"`
	Created      int `json:"created"`
	Existing     int `json:"existing"`
	Failed       int `json:"failed"`
	Lines        int `json:"lines"`
	SkippedLines int `json:"skipped_lines"`
	DroppedLines int `json:"dropped_lines"`
	FailedLines  int `json:"failed_lines"`
}

// Counts returns the result as outcome -> count.
func (r *AssembleResult) Counts() map[string]int {
	return map[string]int{
		"fetched":       r.Fetched,
		"created":       r.Created,
		"existing":      r.Existing,
		"failed":        r.Failed,
		"lines":         r.Lines,
		"skipped_lines": r.SkippedLines,
		"dropped_lines": r.DroppedLines,
		"failed_lines":  r.FailedLines,
	}
}

func orderQuery() url.Values {
	q := shopware.Associations("addresses", "lineItems", "orderCustomer", "stateMachineState")
	q.Set("sort", "-orderDateTime")
	return q
}

// AssembleOrders stores the latest Source orders that are not known yet, with
// their lines after quantity rules. Known orders are left untouched.
func (s *Service) AssembleOrders(ctx context.Context) (*AssembleResult, error) {
	l := s.logger.Named("assembler")

	p, err := s.source.List(ctx, "order", shopware.ListOptions{Page: 1, Limit: s.cfg.Window, Query: orderQuery()})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	res := &AssembleResult{Fetched: len(p.Items)}
	for i, raw := range p.Items {
		var o shopware.Order
		if err := gateway.Decode(raw, &o); err != nil {
			res.Failed++
			l.Error("Undecodable order", zap.Int("index", i), zap.Error(err))
			continue
		}
		ol := l.With(zap.String("source_id", o.ID), zap.String("order_number", o.OrderNumber))

		_, err := s.store.OrderBySourceID(ctx, o.ID)
		if err == nil {
			res.Existing++
			continue
		}
		if !isNotFound(err) {
			res.Failed++
			ol.Error("Order lookup failed", zap.Error(err))
			continue
		}

		if err := s.assemble(ctx, o, res, ol); err != nil {
			res.Failed++
			ol.Error("Order not assembled", zap.Error(err))
			continue
		}
		res.Created++
	}

	if res.Created > 0 {
		l.Info("Orders assembled", zap.Int("created", res.Created), zap.Int("lines", res.Lines))
	}
	return res, nil
}

// assemble inserts the order first; each line is inserted on its own, so a
// failing line leaves a partial order.
func (s *Service) assemble(ctx context.Context, o shopware.Order, res *AssembleResult, l *zap.Logger) error {
	customerID, err := s.resolveCustomer(ctx, o.OrderCustomer, l)
	if err != nil {
		return err
	}
	addressID, err := s.resolveAddress(ctx, o.Addresses, customerID, l)
	if err != nil {
		return err
	}

	order := &store.Order{
		SourceID:          store.Ptr(o.ID),
		InSource:          true,
		SourceOrderNumber: o.OrderNumber,
		CreationDate:      o.OrderDateTime,
		CustomerID:        customerID,
		AddressID:         addressID,
	}
	if o.StateMachineState != nil {
		order.SourceState = o.StateMachineState.Name
	}
	if err := s.store.InsertOrder(ctx, order); err != nil {
		return err
	}
	l = l.With(zap.Uint("local_id", order.ID))

	for _, item := range o.LineItems {
		s.assembleLine(ctx, order.ID, item, res, l)
	}
	return nil
}

func (s *Service) assembleLine(ctx context.Context, orderID uint, item shopware.LineItem, res *AssembleResult, l *zap.Logger) {
	if item.ProductID == nil || *item.ProductID == "" {
		res.SkippedLines++
		l.Warn("Line item without product skipped", zap.String("label", item.Label))
		return
	}
	il := l.With(zap.String("product_source_id", *item.ProductID))

	product, err := s.store.ProductBySourceID(ctx, *item.ProductID)
	if isNotFound(err) {
		res.SkippedLines++
		il.Warn("Line item of unknown product skipped", zap.String("reason", "product not mirrored"))
		return
	}
	if err != nil {
		res.FailedLines++
		il.Error("Product lookup failed", zap.Error(err))
		return
	}

	modifier, err := s.store.ModifierFor(ctx, product.ID)
	if err != nil {
		res.FailedLines++
		il.Error("Modifier lookup failed", zap.Error(err))
		return
	}
	overwrite, err := s.store.OverwriteFor(ctx, product.ID)
	if err != nil {
		res.FailedLines++
		il.Error("Overwrite lookup failed", zap.Error(err))
		return
	}

	productID, quantity := Transform(product.ID, item.Quantity, modifier, overwrite)
	if quantity <= 0 {
		res.DroppedLines++
		il.Warn("Line dropped", zap.Int("quantity", quantity), zap.String("reason", "non-positive quantity after modifier"))
		return
	}

	if err := s.store.InsertOrderLine(ctx, &store.OrderLine{OrderID: orderID, ProductID: productID, Quantity: quantity}); err != nil {
		res.FailedLines++
		il.Error("Line not stored", zap.Error(err))
		return
	}
	res.Lines++
}

// resolveCustomer finds the ordering customer or stores a minimal one from the
// order's customer snapshot.
func (s *Service) resolveCustomer(ctx context.Context, oc *shopware.OrderCustomer, l *zap.Logger) (uint, error) {
	if oc == nil {
		return 0, fmt.Errorf("%w: order without customer", reconcile.ErrInvalidResponse)
	}
	sourceID := oc.CustomerID
	if sourceID == "" {
		sourceID = oc.ID
	}

	c, err := s.store.CustomerBySourceID(ctx, sourceID)
	if err == nil {
		return c.ID, nil
	}
	if !isNotFound(err) {
		return 0, err
	}

	c = &store.Customer{
		Mirror:    store.Mirror{SourceID: store.Ptr(sourceID), InSource: true, Updated: true},
		FirstName: oc.FirstName,
		LastName:  oc.LastName,
		Email:     oc.Email,
	}
	if err := s.store.InsertCustomer(ctx, c); err != nil {
		return 0, err
	}
	l.Info("Customer synthesized from order", zap.String("customer_source_id", sourceID), zap.Uint("customer_id", c.ID))
	return c.ID, nil
}

// resolveAddress finds the order's first address or stores it for customerID.
func (s *Service) resolveAddress(ctx context.Context, addrs []shopware.Address, customerID uint, l *zap.Logger) (uint, error) {
	if len(addrs) == 0 {
		return 0, fmt.Errorf("%w: order without address", reconcile.ErrInvalidResponse)
	}
	first := addrs[0]

	a, err := s.store.AddressBySourceID(ctx, first.ID)
	if err == nil {
		return a.ID, nil
	}
	if !isNotFound(err) {
		return 0, err
	}

	a = &store.Address{
		Mirror:     store.Mirror{SourceID: store.Ptr(first.ID), InSource: true, Updated: true},
		CustomerID: customerID,
		FirstName:  first.FirstName,
		LastName:   first.LastName,
		Street:     first.Street,
		Zipcode:    first.Zipcode,
		City:       first.City,
	}
	if err := s.store.InsertAddress(ctx, a); err != nil {
		return 0, err
	}
	l.Info("Address synthesized from order", zap.String("address_source_id", first.ID), zap.Uint("address_id", a.ID))
	return a.ID, nil
}
