package store

import (
	"context"
	"fmt"
)

// ProductBySourceID looks a product up by its Source id.
func (s *Store) ProductBySourceID(ctx context.Context, sourceID string) (*Product, error) {
	return take[Product](ctx, s.db, "source_id = ?", sourceID)
}

// ProductByNumber looks a product up by its product number.
func (s *Store) ProductByNumber(ctx context.Context, number string) (*Product, error) {
	return take[Product](ctx, s.db, "product_number = ?", number)
}

// Product loads a product by local id.
func (s *Store) Product(ctx context.Context, id uint) (*Product, error) {
	return take[Product](ctx, s.db, "id = ?", id)
}

// InsertProduct inserts p.
func (s *Store) InsertProduct(ctx context.Context, p *Product) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// ProductsInSource lists products currently flagged present in Source.
func (s *Store) ProductsInSource(ctx context.Context) ([]Product, error) {
	return list[Product](ctx, s.db, "in_source = ? AND source_id IS NOT NULL", true)
}
