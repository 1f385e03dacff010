package orders

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"inventree-connect/core/reconcile"
	"inventree-connect/core/utils"
	"inventree-connect/feature/gateway/inventree"
	"inventree-connect/feature/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PushResult summarizes one PushOrders run.
type PushResult struct {
	Pushed       int `json:"pushed"`
	Failed       int `json:"failed"`
	Lines        int `json:"lines"`
	LinesSkipped int `json:"lines_skipped"`
	LinesFailed  int `json:"lines_failed"`
	Allocated    int `json:"allocated"`
	Shortfalls   int `json:"shortfalls"`
	Unallocated  int `json:"unallocated"`
	Resumed      int `json:"resumed"`
}

// Counts returns the result as outcome -> count.
func (r *PushResult) Counts() map[string]int {
	return map[string]int{
		"pushed":        r.Pushed,
		"failed":        r.Failed,
		"lines":         r.Lines,
		"lines_skipped": r.LinesSkipped,
		"lines_failed":  r.LinesFailed,
		"allocated":     r.Allocated,
		"shortfalls":    r.Shortfalls,
		"unallocated":   r.Unallocated,
		"resumed":       r.Resumed,
	}
}

// errNoShipment means a sales order has no open shipment to allocate to or ship.
var errNoShipment = errors.New("no open shipment")

// PushOrders creates every stored order not yet in Target as a sales order with
// its lines, and allocates stock to each line when enough is available. Lines
// left behind by an earlier run are created on their already linked order,
// unless that order is settled in Target.
func (s *Service) PushOrders(ctx context.Context) (*PushResult, error) {
	l := s.logger.Named("push")

	pending, err := s.store.OrdersPendingPush(ctx)
	if err != nil {
		return nil, fmt.Errorf("select pending orders: %w", err)
	}

	res := &PushResult{}
	pushed := make(map[uint]bool, len(pending))
	for _, o := range pending {
		ol := l.With(zap.Uint("local_id", o.ID), zap.String("order_number", o.SourceOrderNumber))
		if o.SourceID != nil {
			ol = ol.With(zap.String("source_id", *o.SourceID))
		}

		orderPK, err := s.pushOrder(ctx, o)
		if err != nil {
			res.Failed++
			ol.Error("Order not created in target", zap.Error(err))
			continue
		}
		res.Pushed++
		ol = ol.With(zap.Int("target_id", orderPK))
		ol.Info("Order created in target")

		pushed[o.ID] = true
		s.pushLines(ctx, o.ID, orderPK, false, res, ol)
	}

	incomplete, err := s.store.OrdersWithUnpushedLines(ctx)
	if err != nil {
		return res, fmt.Errorf("select orders with unpushed lines: %w", err)
	}
	for _, o := range incomplete {
		if pushed[o.ID] || targetSettled(o) {
			continue
		}
		ol := l.With(zap.Uint("local_id", o.ID), zap.String("order_number", o.SourceOrderNumber))
		orderPK, err := strconv.Atoi(*o.TargetID)
		if err != nil {
			res.Failed++
			ol.Error("Invalid sales order target id", zap.String("target_id", *o.TargetID))
			continue
		}
		res.Resumed++
		s.pushLines(ctx, o.ID, orderPK, true, res, ol.With(zap.Int("target_id", orderPK)))
	}
	return res, nil
}

// targetSettled reports whether the stored Target state is terminal.
func targetSettled(o store.Order) bool {
	if o.TargetState == nil {
		return false
	}
	state, err := ParseState(*o.TargetState)
	return err == nil && state.Terminal()
}

func (s *Service) pushOrder(ctx context.Context, o store.Order) (int, error) {
	customer, err := s.ensureTarget(ctx, reconcile.KindCustomer, o.CustomerID)
	if err != nil {
		return 0, err
	}
	address, err := s.ensureTarget(ctx, reconcile.KindAddress, o.AddressID)
	if err != nil {
		return 0, err
	}

	obj, err := s.target.Create(ctx, inventree.ResourceSalesOrder, map[string]any{
		"creation_date":      datePart(o.CreationDate),
		"customer_reference": o.SourceOrderNumber,
		"address":            address,
		"customer":           customer,
		"reference":          "SO-" + utils.Digits(o.SourceOrderNumber),
		"order_currency":     s.cfg.Currency,
	})
	if err != nil {
		return 0, err
	}
	if obj == nil || obj.PK == 0 {
		return 0, fmt.Errorf("%w: sales order without pk", reconcile.ErrInvalidResponse)
	}
	if err := s.store.LinkTarget(ctx, reconcile.KindOrder, o.ID, strconv.Itoa(obj.PK)); err != nil {
		return 0, fmt.Errorf("link order to sales order %d: %w", obj.PK, err)
	}
	return obj.PK, nil
}

func (s *Service) ensureTarget(ctx context.Context, kind reconcile.Kind, localID uint) (int, error) {
	id, err := s.parents.EnsureTarget(ctx, kind, localID)
	if err != nil {
		return 0, fmt.Errorf("%s %d: %w", kind, localID, err)
	}
	pk, err := strconv.Atoi(id)
	if err != nil {
		return 0, fmt.Errorf("%s %d target id %q: %w", kind, localID, id, err)
	}
	return pk, nil
}

// datePart returns the date of an ISO-8601 timestamp.
func datePart(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

// pushLines creates the unlinked lines of an order. When resuming, a line that
// already exists on the sales order is linked instead of created again.
func (s *Service) pushLines(ctx context.Context, orderID uint, orderPK int, resume bool, res *PushResult, l *zap.Logger) {
	lines, err := s.store.LinesForPush(ctx, orderID)
	if err != nil {
		res.LinesFailed++
		l.Error("Order lines not loaded", zap.Error(err))
		return
	}
	linked, err := s.linkedLines(ctx, orderID)
	if err != nil {
		res.LinesFailed += len(lines)
		l.Error("Order lines not loaded", zap.Error(err))
		return
	}

	for _, line := range lines {
		ll := l.With(zap.Uint("line_id", line.LineID), zap.Uint("product_id", line.ProductID))
		if line.ProductTargetID == nil {
			res.LinesSkipped++
			ll.Warn("Line skipped", zap.String("reason", "product not in target"))
			continue
		}
		part, err := strconv.Atoi(*line.ProductTargetID)
		if err != nil {
			res.LinesFailed++
			ll.Error("Invalid product target id", zap.String("target_id", *line.ProductTargetID))
			continue
		}

		if resume {
			linePK, err := s.findLine(ctx, orderPK, part, linked)
			switch {
			case err == nil:
				s.linkLine(ctx, line.LineID, linePK, ll)
				linked[linePK] = true
				res.Lines++
				s.allocateLine(ctx, orderPK, linePK, part, line.Quantity, res, ll)
				continue
			case !errors.Is(err, reconcile.ErrNotFound):
				res.LinesFailed++
				ll.Error("Sales order lines not loaded", zap.Error(err))
				continue
			}
		}

		body := map[string]any{
			"order":               orderPK,
			"part":                part,
			"quantity":            line.Quantity,
			"sale_price_currency": s.cfg.Currency,
		}
		if line.Price.Valid {
			body["sale_price"] = line.Price.Decimal.StringFixed(2)
		}
		obj, err := s.target.Create(ctx, inventree.ResourceSalesOrderLine, body)
		if err != nil {
			res.LinesFailed++
			ll.Error("Line not created in target", zap.Error(err))
			continue
		}
		res.Lines++

		linePK := 0
		if obj != nil {
			linePK = obj.PK
		}
		if linePK == 0 {
			if linePK, err = s.findLine(ctx, orderPK, part, linked); err != nil {
				// Left unlinked; the next run finds it on the sales order.
				res.Unallocated++
				ll.Error("Created line not found", zap.Error(err))
				continue
			}
		}
		s.linkLine(ctx, line.LineID, linePK, ll)
		linked[linePK] = true
		s.allocateLine(ctx, orderPK, linePK, part, line.Quantity, res, ll)
	}
}

// linkedLines returns the Target pks already linked to lines of an order.
func (s *Service) linkedLines(ctx context.Context, orderID uint) (map[int]bool, error) {
	all, err := s.store.OrderLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	linked := make(map[int]bool, len(all))
	for _, ol := range all {
		if ol.TargetID == nil {
			continue
		}
		if pk, err := strconv.Atoi(*ol.TargetID); err == nil {
			linked[pk] = true
		}
	}
	return linked, nil
}

func (s *Service) linkLine(ctx context.Context, lineID uint, linePK int, l *zap.Logger) {
	if err := s.store.LinkLine(ctx, lineID, strconv.Itoa(linePK)); err != nil {
		l.Error("Line not linked", zap.Int("line_pk", linePK), zap.Error(err))
	}
}

func (s *Service) allocateLine(ctx context.Context, orderPK, linePK, part, quantity int, res *PushResult, l *zap.Logger) {
	err := s.allocate(ctx, orderPK, linePK, part, quantity)
	switch {
	case err == nil:
		res.Allocated++
	case errors.Is(err, reconcile.ErrInsufficientStock):
		res.Shortfalls++
		l.Warn("Stock not allocated", zap.Int("part", part), zap.String("reason", err.Error()))
	default:
		res.Unallocated++
		l.Error("Stock allocation failed", zap.Int("part", part), zap.Error(err))
	}
}

// findLine looks up the newest line of part on a sales order, ignoring the
// lines in exclude.
func (s *Service) findLine(ctx context.Context, orderPK, part int, exclude map[int]bool) (int, error) {
	raw, err := s.target.Get(ctx, inventree.ResourceSalesOrderLine, url.Values{"order": {strconv.Itoa(orderPK)}})
	if err != nil {
		return 0, err
	}
	lines, err := inventree.DecodeList[inventree.SalesOrderLine](raw)
	if err != nil {
		return 0, err
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].Part == part && !exclude[lines[i].PK] {
			return lines[i].PK, nil
		}
	}
	return 0, fmt.Errorf("%w: no line of part %d on sales order %d", reconcile.ErrNotFound, part, orderPK)
}

// allocate assigns quantity of the first available stock item of part to a line.
func (s *Service) allocate(ctx context.Context, orderPK, linePK, part, quantity int) error {
	raw, err := s.target.Get(ctx, inventree.ResourceStock, url.Values{
		"available": {"true"},
		"part":      {strconv.Itoa(part)},
	})
	if err != nil {
		return fmt.Errorf("stock of part %d: %w", part, err)
	}
	stock, err := inventree.DecodeList[inventree.StockItem](raw)
	if err != nil {
		return fmt.Errorf("stock of part %d: %w", part, err)
	}
	if len(stock) == 0 {
		return fmt.Errorf("%w: no stock of part %d", reconcile.ErrInsufficientStock, part)
	}
	item := stock[0]
	if item.Quantity.LessThan(decimal.NewFromInt(int64(quantity))) {
		return fmt.Errorf("%w: %s available, %d ordered", reconcile.ErrInsufficientStock, item.Quantity, quantity)
	}

	shipment, err := s.openShipment(ctx, orderPK)
	if err != nil {
		return err
	}
	return s.target.Action(ctx, inventree.ResourceSalesOrder, strconv.Itoa(orderPK), inventree.VerbAllocate, map[string]any{
		"items": []map[string]any{{
			"line_item":  linePK,
			"quantity":   quantity,
			"stock_item": item.PK,
		}},
		"shipment": shipment.PK,
	})
}

// openShipment returns the first not yet shipped shipment of a sales order.
func (s *Service) openShipment(ctx context.Context, orderPK int) (*inventree.Shipment, error) {
	raw, err := s.target.Get(ctx, inventree.ResourceShipment, url.Values{
		"order":   {strconv.Itoa(orderPK)},
		"shipped": {"false"},
	})
	if err != nil {
		return nil, fmt.Errorf("shipments of sales order %d: %w", orderPK, err)
	}
	shipments, err := inventree.DecodeList[inventree.Shipment](raw)
	if err != nil {
		return nil, fmt.Errorf("shipments of sales order %d: %w", orderPK, err)
	}
	if len(shipments) == 0 {
		return nil, fmt.Errorf("sales order %d: %w", orderPK, errNoShipment)
	}
	return &shipments[0], nil
}
