package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm/clause"
)

// ModifierFor returns the quantity modifier of a product, or nil when none is set.
func (s *Store) ModifierFor(ctx context.Context, productID uint) (*QuantityModifier, error) {
	m, err := take[QuantityModifier](ctx, s.db, "product_id = ?", productID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return m, err
}

// OverwriteFor returns the overwrite of an ordered product, or nil when none is set.
func (s *Store) OverwriteFor(ctx context.Context, productID uint) (*ProductOverwrite, error) {
	o, err := take[ProductOverwrite](ctx, s.db, "product_id = ?", productID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return o, err
}

// SetModifier creates or replaces the modifier of m.ProductID.
func (s *Store) SetModifier(ctx context.Context, m *QuantityModifier) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"multiplier", "quantity_offset"}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("set modifier of product %d: %w", m.ProductID, err)
	}
	return nil
}

// SetOverwrite creates or replaces the overwrite of o.ProductID.
func (s *Store) SetOverwrite(ctx context.Context, o *ProductOverwrite) error {
	if o.ProductID == o.ReplacementID {
		return fmt.Errorf("product %d cannot overwrite itself", o.ProductID)
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"replacement_id"}),
	}).Create(o).Error
	if err != nil {
		return fmt.Errorf("set overwrite of product %d: %w", o.ProductID, err)
	}
	return nil
}
