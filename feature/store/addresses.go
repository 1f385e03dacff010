package store

import (
	"context"
	"fmt"
)

// AddressBySourceID looks an address up by its Source id.
func (s *Store) AddressBySourceID(ctx context.Context, sourceID string) (*Address, error) {
	return take[Address](ctx, s.db, "source_id = ?", sourceID)
}

// Address loads an address by local id.
func (s *Store) Address(ctx context.Context, id uint) (*Address, error) {
	return take[Address](ctx, s.db, "id = ?", id)
}

// InsertAddress inserts a.
func (s *Store) InsertAddress(ctx context.Context, a *Address) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

// SweptAddresses lists addresses no longer present in Source.
func (s *Store) SweptAddresses(ctx context.Context) ([]Address, error) {
	return list[Address](ctx, s.db, "in_source = ?", false)
}

// DeleteAddress removes one address.
func (s *Store) DeleteAddress(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&Address{}, id).Error; err != nil {
		return fmt.Errorf("delete address %d: %w", id, err)
	}
	return nil
}
