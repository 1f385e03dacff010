package store

import (
	"context"
	"fmt"

	"inventree-connect/core/reconcile"
)

var _ reconcile.Store = (*Store)(nil)

func (s *Store) mirrorModel(kind reconcile.Kind) (any, error) {
	if kind == reconcile.KindOrder {
		return nil, fmt.Errorf("%w: orders are not swept", reconcile.ErrUnknownKind)
	}
	return modelFor(kind)
}

// BeginSweep implements reconcile.Store.
func (s *Store) BeginSweep(ctx context.Context, kind reconcile.Kind) error {
	m, err := s.mirrorModel(kind)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(m).
		Where("updated = ?", true).
		UpdateColumn("updated", false).Error
}

// MarkSeen implements reconcile.Store.
func (s *Store) MarkSeen(ctx context.Context, kind reconcile.Kind, localID uint) error {
	m, err := s.mirrorModel(kind)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(m).
		Where("id = ?", localID).
		UpdateColumns(map[string]any{"updated": true, "in_source": true}).Error
}

// EndSweep implements reconcile.Store.
func (s *Store) EndSweep(ctx context.Context, kind reconcile.Kind) (int64, error) {
	m, err := s.mirrorModel(kind)
	if err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Model(m).
		Where("updated = ? AND in_source = ?", false, true).
		UpdateColumn("in_source", false)
	return res.RowsAffected, res.Error
}

// PendingPush implements reconcile.Store.
func (s *Store) PendingPush(ctx context.Context, kind reconcile.Kind) ([]uint, error) {
	m, err := s.mirrorModel(kind)
	if err != nil {
		return nil, err
	}
	var ids []uint
	err = s.db.WithContext(ctx).Model(m).
		Where("in_source = ? AND (in_target = ? OR target_id IS NULL)", true, false).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// TargetID implements reconcile.Store. It returns ErrNotFound when the row is gone.
func (s *Store) TargetID(ctx context.Context, kind reconcile.Kind, localID uint) (string, error) {
	m, err := modelFor(kind)
	if err != nil {
		return "", err
	}
	var rows []struct {
		TargetID *string
		InTarget bool
	}
	err = s.db.WithContext(ctx).Model(m).
		Select("target_id", "in_target").
		Where("id = ?", localID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("%s %d: %w", kind, localID, ErrNotFound)
	}
	if !rows[0].InTarget || rows[0].TargetID == nil {
		return "", nil
	}
	return *rows[0].TargetID, nil
}

// LinkTarget implements reconcile.Store.
func (s *Store) LinkTarget(ctx context.Context, kind reconcile.Kind, localID uint, targetID string) error {
	m, err := modelFor(kind)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(m).
		Where("id = ?", localID).
		Updates(map[string]any{"target_id": targetID, "in_target": true}).Error
}
