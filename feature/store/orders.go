package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderBySourceID looks an order up by its Source id.
func (s *Store) OrderBySourceID(ctx context.Context, sourceID string) (*Order, error) {
	return take[Order](ctx, s.db, "source_id = ?", sourceID)
}

// Order loads an order by local id.
func (s *Store) Order(ctx context.Context, id uint) (*Order, error) {
	return take[Order](ctx, s.db, "id = ?", id)
}

// InsertOrder inserts o without lines.
func (s *Store) InsertOrder(ctx context.Context, o *Order) error {
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// InsertOrderLine inserts one line of an existing order.
func (s *Store) InsertOrderLine(ctx context.Context, l *OrderLine) error {
	if l.Quantity <= 0 {
		return fmt.Errorf("order %d line of product %d: quantity %d is not positive", l.OrderID, l.ProductID, l.Quantity)
	}
	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

// OrderLines lists the lines of an order.
func (s *Store) OrderLines(ctx context.Context, orderID uint) ([]OrderLine, error) {
	return list[OrderLine](ctx, s.db, "order_id = ?", orderID)
}

// OrdersPendingPush lists orders not yet created in Target.
func (s *Store) OrdersPendingPush(ctx context.Context) ([]Order, error) {
	return list[Order](ctx, s.db, "in_source = ? AND (in_target = ? OR target_id IS NULL)", true, false)
}

// OrdersInTarget lists orders linked to a Target sales order.
func (s *Store) OrdersInTarget(ctx context.Context) ([]Order, error) {
	return list[Order](ctx, s.db, "in_target = ? AND target_id IS NOT NULL", true)
}

// OrdersWithUnpushedLines lists linked orders that still have lines without a
// Target line.
func (s *Store) OrdersWithUnpushedLines(ctx context.Context) ([]Order, error) {
	return list[Order](ctx, s.db,
		"in_target = ? AND target_id IS NOT NULL AND EXISTS (SELECT 1 FROM order_lines WHERE order_lines.order_id = orders.id AND order_lines.target_id IS NULL)",
		true)
}

// LinkLine records the Target line created for an order line.
func (s *Store) LinkLine(ctx context.Context, lineID uint, targetID string) error {
	res := s.db.WithContext(ctx).Model(&OrderLine{}).Where("id = ?", lineID).Update("target_id", targetID)
	if res.Error != nil {
		return fmt.Errorf("link order line %d: %w", lineID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order line %d: %w", lineID, ErrNotFound)
	}
	return nil
}

// PushLine is an order line joined with what its Target payload needs from the product.
type PushLine struct {
	LineID          uint
	ProductID       uint
	Quantity        int
	ProductTargetID *string
	Price           decimal.NullDecimal
}

// LinesForPush lists an order's lines not yet created in Target, with their
// products' Target ids and prices.
func (s *Store) LinesForPush(ctx context.Context, orderID uint) ([]PushLine, error) {
	var out []PushLine
	err := s.db.WithContext(ctx).Table("order_lines").
		Select("order_lines.id AS line_id, order_lines.product_id, order_lines.quantity, products.target_id AS product_target_id, products.price").
		Joins("LEFT JOIN products ON products.id = order_lines.product_id").
		Where("order_lines.order_id = ? AND order_lines.target_id IS NULL", orderID).
		Order("order_lines.id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("lines of order %d: %w", orderID, err)
	}
	return out, nil
}

// StateGuard inspects the stored target state before a write; a non-nil error
// cancels the write.
type StateGuard func(current *string) error

// SetTargetState writes the observed or advanced Target state of an order after
// guard accepted the currently stored value. Read and write share one transaction.
func (s *Store) SetTargetState(ctx context.Context, orderID uint, state string, guard StateGuard) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o Order
		q := tx.Select("id", "target_state")
		if tx.Dialector.Name() != "sqlite" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		err := q.Where("id = ?", orderID).Take(&o).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(o.TargetState); err != nil {
				return err
			}
		}
		return tx.Model(&Order{}).Where("id = ?", orderID).Update("target_state", state).Error
	})
}
