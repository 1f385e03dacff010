package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const maxCollisionSuffix = 10000

// CustomerBySourceID looks a customer up by its Source id.
func (s *Store) CustomerBySourceID(ctx context.Context, sourceID string) (*Customer, error) {
	return take[Customer](ctx, s.db, "source_id = ?", sourceID)
}

// Customer loads a customer by local id.
func (s *Store) Customer(ctx context.Context, id uint) (*Customer, error) {
	return take[Customer](ctx, s.db, "id = ?", id)
}

// InsertCustomer inserts c, suffixing LastName with " (n)" while (first, last, email)
// is already taken. c.ID and c.LastName reflect the stored row afterwards.
func (s *Store) InsertCustomer(ctx context.Context, c *Customer) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base := c.LastName
		for n := 1; ; n++ {
			var count int64
			err := tx.Model(&Customer{}).
				Where("first_name = ? AND last_name = ? AND email = ?", c.FirstName, c.LastName, c.Email).
				Count(&count).Error
			if err != nil {
				return fmt.Errorf("check customer identity: %w", err)
			}
			if count == 0 {
				break
			}
			if n > maxCollisionSuffix {
				return fmt.Errorf("customer %s %s <%s>: no free name suffix", c.FirstName, base, c.Email)
			}
			c.LastName = CollisionName(base, n)
		}
		if err := tx.Create(c).Error; err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}
		return nil
	})
}

// CollisionName returns base with the n-th collision suffix.
func CollisionName(base string, n int) string {
	return fmt.Sprintf("%s (%d)", base, n)
}

// HasCollisionSuffix reports whether stored is base with a collision suffix.
func HasCollisionSuffix(stored, base string) bool {
	rest, ok := strings.CutPrefix(stored, base+" (")
	if !ok || !strings.HasSuffix(rest, ")") {
		return false
	}
	digits := strings.TrimSuffix(rest, ")")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SweptCustomers lists customers no longer present in Source.
func (s *Store) SweptCustomers(ctx context.Context) ([]Customer, error) {
	return list[Customer](ctx, s.db, "in_source = ?", false)
}

// DeleteCustomer removes a customer and its addresses in one transaction.
func (s *Store) DeleteCustomer(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&Address{}).Error; err != nil {
			return fmt.Errorf("delete addresses of customer %d: %w", id, err)
		}
		if err := tx.Delete(&Customer{}, id).Error; err != nil {
			return fmt.Errorf("delete customer %d: %w", id, err)
		}
		return nil
	})
}
