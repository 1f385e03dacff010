package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultPageSize is used when neither the engine nor the adapter sets one.
const DefaultPageSize = 500

// Engine runs mark-and-sweep pulls and pushes for registered adapters.
// It is safe for concurrent use across kinds. Pushes of the same record are
// coalesced so a parent requested by several children is created once.
type Engine struct {
	store    Store
	logger   *zap.Logger
	pageSize int

	mu       sync.RWMutex
	adapters map[Kind]Adapter
	inflight singleflight.Group
}

// NewEngine creates an engine. A pageSize <= 0 selects DefaultPageSize.
func NewEngine(store Store, logger *zap.Logger, pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine{
		store:    store,
		logger:   logger.Named("mirror"),
		pageSize: pageSize,
		adapters: make(map[Kind]Adapter),
	}
}

// Register adds an adapter, replacing any previous one for the same kind.
func (e *Engine) Register(a Adapter) {
	e.mu.Lock()
	e.adapters[a.Kind()] = a
	e.mu.Unlock()
}

func (e *Engine) adapter(kind Kind) (Adapter, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return a, nil
}

func (e *Engine) pageSizeFor(a Adapter) int {
	if ps, ok := a.(PageSizer); ok && ps.PageSize() > 0 {
		return ps.PageSize()
	}
	return e.pageSize
}

// Sync pulls kind from Source and then pushes pending records to Target.
// The push runs even when the pull failed; both errors are returned joined.
func (e *Engine) Sync(ctx context.Context, kind Kind) (*Result, error) {
	res := &Result{Kind: kind}
	pullErr := e.pull(ctx, kind, res)
	pushErr := e.push(ctx, kind, res)
	return res, errors.Join(pullErr, pushErr)
}

// Pull mirrors kind from Source into the store.
func (e *Engine) Pull(ctx context.Context, kind Kind) (*Result, error) {
	res := &Result{Kind: kind}
	return res, e.pull(ctx, kind, res)
}

// Push creates every pending record of kind in Target.
func (e *Engine) Push(ctx context.Context, kind Kind) (*Result, error) {
	res := &Result{Kind: kind}
	return res, e.push(ctx, kind, res)
}

func (e *Engine) pull(ctx context.Context, kind Kind, res *Result) error {
	a, err := e.adapter(kind)
	if err != nil {
		return err
	}
	l := e.logger.With(zap.String("kind", string(kind)))

	if err := e.store.BeginSweep(ctx, kind); err != nil {
		res.SweepSkipped = true
		return fmt.Errorf("begin sweep of %s: %w", kind, err)
	}

	limit := e.pageSizeFor(a)
	failed := 0
	for page := 1; ; page++ {
		p, err := a.FetchPage(ctx, page, limit)
		if err != nil {
			res.SweepSkipped = true
			l.Warn("Listing failed, sweep skipped", zap.Int("page", page), zap.Error(err))
			return fmt.Errorf("fetch %s page %d: %w", kind, page, err)
		}

		for _, rec := range p.Records {
			if !e.upsertOne(ctx, a, rec, res, l) {
				failed++
			}
		}
		res.Fetched += p.Fetched

		if p.Fetched < limit {
			break
		}
	}

	// A listed record that could not be stored was never marked seen.
	if failed > 0 {
		res.SweepSkipped = true
		l.Warn("Upserts failed, sweep skipped", zap.Int("failed", failed))
		return nil
	}

	swept, err := e.store.EndSweep(ctx, kind)
	if err != nil {
		return fmt.Errorf("end sweep of %s: %w", kind, err)
	}
	res.Swept = int(swept)
	if swept > 0 {
		l.Info("Records no longer in source", zap.Int64("count", swept))
	}
	return nil
}

// upsertOne stores one listed record. It reports false when the record could
// not be stored or marked seen; skipped records count as handled.
func (e *Engine) upsertOne(ctx context.Context, a Adapter, rec Record, res *Result, l *zap.Logger) bool {
	rl := l.With(zap.String("source_id", rec.SourceID()))

	id, created, err := a.Upsert(ctx, rec)
	switch {
	case errors.Is(err, ErrSkipped):
		res.Skipped++
		rl.Warn("Record skipped", zap.String("reason", err.Error()))
		return true
	case err != nil:
		res.Failed++
		rl.Error("Upsert failed", zap.Error(err))
		return false
	}

	if err := e.store.MarkSeen(ctx, a.Kind(), id); err != nil {
		res.Failed++
		rl.Error("Mark seen failed", zap.Uint("local_id", id), zap.Error(err))
		return false
	}

	if created {
		res.Created++
		rl.Debug("Record created", zap.Uint("local_id", id))
	} else {
		res.Updated++
	}
	return true
}

func (e *Engine) push(ctx context.Context, kind Kind, res *Result) error {
	a, err := e.adapter(kind)
	if err != nil {
		return err
	}
	l := e.logger.With(zap.String("kind", string(kind)))

	ids, err := e.store.PendingPush(ctx, kind)
	if err != nil {
		return fmt.Errorf("select pending %s: %w", kind, err)
	}

	for _, id := range ids {
		_, pushed, err := e.pushOne(ctx, a, id)
		switch {
		case errors.Is(err, ErrParentMissing):
			res.Dropped++
			l.Warn("Orphan dropped", zap.Uint("local_id", id), zap.String("reason", err.Error()))
		case err != nil:
			res.PushFailed++
			l.Error("Push failed", zap.Uint("local_id", id), zap.Error(err))
		case pushed:
			res.Pushed++
		}
	}
	return nil
}

// EnsureTarget implements Resolver.
func (e *Engine) EnsureTarget(ctx context.Context, kind Kind, localID uint) (string, error) {
	a, err := e.adapter(kind)
	if err != nil {
		return "", err
	}
	targetID, _, err := e.pushOne(ctx, a, localID)
	return targetID, err
}

type pushOutcome struct {
	targetID string
	pushed   bool
}

// pushOne returns the record's Target id, creating it when unlinked. pushed
// reports whether this call (or the call it joined) performed the create.
func (e *Engine) pushOne(ctx context.Context, a Adapter, localID uint) (string, bool, error) {
	key := fmt.Sprintf("%s:%d", a.Kind(), localID)
	v, err, _ := e.inflight.Do(key, func() (any, error) {
		targetID, err := e.store.TargetID(ctx, a.Kind(), localID)
		if err != nil {
			return nil, err
		}
		if targetID != "" {
			return pushOutcome{targetID: targetID}, nil
		}

		targetID, err = a.Push(ctx, localID, e)
		if err != nil {
			return nil, err
		}
		if targetID == "" {
			return nil, fmt.Errorf("%w: %s %d pushed without target id", ErrInvalidResponse, a.Kind(), localID)
		}
		if err := e.store.LinkTarget(ctx, a.Kind(), localID, targetID); err != nil {
			return nil, fmt.Errorf("link %s %d to target %s: %w", a.Kind(), localID, targetID, err)
		}

		e.logger.Info("Created in target",
			zap.String("kind", string(a.Kind())),
			zap.Uint("local_id", localID),
			zap.String("target_id", targetID),
		)
		return pushOutcome{targetID: targetID, pushed: true}, nil
	})
	if err != nil {
		return "", false, err
	}
	out := v.(pushOutcome)
	return out.targetID, out.pushed, nil
}
