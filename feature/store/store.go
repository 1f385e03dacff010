package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"inventree-connect/core/reconcile"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("store: record not found")

// Store persists the local mirror of both systems.
type Store struct {
	db *gorm.DB
}

// New wraps an open database connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates missing tables, columns and indexes. Existing columns are never altered.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}
	return nil
}

// ExpectedSchema returns table -> column names of every model.
func ExpectedSchema() (map[string][]string, error) {
	cache := &sync.Map{}
	out := make(map[string][]string)
	for _, m := range Models() {
		sch, err := schema.Parse(m, cache, schema.NamingStrategy{})
		if err != nil {
			return nil, fmt.Errorf("parse schema of %T: %w", m, err)
		}
		out[sch.Table] = append([]string(nil), sch.DBNames...)
	}
	return out, nil
}

// Update applies a typed patch to row id. An empty patch is a no-op.
func (s *Store) Update(ctx context.Context, id uint, p Patch) error {
	cols := p.Columns()
	if len(cols) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(p.model()).Where("id = ?", id).Updates(cols).Error; err != nil {
		return fmt.Errorf("update %T %d: %w", p, id, err)
	}
	return nil
}

func take[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (*T, error) {
	var out T
	err := db.WithContext(ctx).Where(query, args...).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func list[T any](ctx context.Context, db *gorm.DB, query string, args ...any) ([]T, error) {
	var out []T
	if err := db.WithContext(ctx).Where(query, args...).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func modelFor(kind reconcile.Kind) (any, error) {
	switch kind {
	case reconcile.KindCustomer:
		return &Customer{}, nil
	case reconcile.KindAddress:
		return &Address{}, nil
	case reconcile.KindProduct:
		return &Product{}, nil
	case reconcile.KindOrder:
		return &Order{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", reconcile.ErrUnknownKind, kind)
	}
}
