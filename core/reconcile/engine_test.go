package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRow struct {
	sourceID string
	targetID string
	inSource bool
	inTarget bool
	seen     bool
	parent   uint
}

// memStore is an in-memory Store keyed by kind and local id.
type memStore struct {
	mu   sync.Mutex
	rows map[Kind]map[uint]*memRow
	next uint
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[Kind]map[uint]*memRow)}
}

func (s *memStore) table(kind Kind) map[uint]*memRow {
	if s.rows[kind] == nil {
		s.rows[kind] = make(map[uint]*memRow)
	}
	return s.rows[kind]
}

func (s *memStore) upsert(kind Kind, sourceID string) (uint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.table(kind) {
		if r.sourceID == sourceID {
			return id, false
		}
	}
	s.next++
	s.table(kind)[s.next] = &memRow{sourceID: sourceID}
	return s.next, true
}

func (s *memStore) get(kind Kind, id uint) *memRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table(kind)[id]
}

func (s *memStore) BeginSweep(_ context.Context, kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.table(kind) {
		r.seen = false
	}
	return nil
}

func (s *memStore) MarkSeen(_ context.Context, kind Kind, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.table(kind)[id]
	r.seen, r.inSource = true, true
	return nil
}

func (s *memStore) EndSweep(_ context.Context, kind Kind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.table(kind) {
		if !r.seen && r.inSource {
			r.inSource = false
			n++
		}
	}
	return n, nil
}

func (s *memStore) PendingPush(_ context.Context, kind Kind) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint
	for id, r := range s.table(kind) {
		if r.inSource && (!r.inTarget || r.targetID == "") {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *memStore) TargetID(_ context.Context, kind Kind, id uint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.table(kind)[id]
	if !ok {
		return "", errors.New("row not found")
	}
	if !r.inTarget {
		return "", nil
	}
	return r.targetID, nil
}

func (s *memStore) LinkTarget(_ context.Context, kind Kind, id uint, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.table(kind)[id]
	r.targetID, r.inTarget = targetID, true
	return nil
}

type rec string

func (r rec) SourceID() string { return string(r) }

// fakeAdapter serves pages from a fixed listing and counts pushes.
type fakeAdapter struct {
	kind     Kind
	store    *memStore
	listing  []string
	failPage int
	pageSize int
	pushes   atomic.Int32
	pushErr  map[uint]error
	parent   Kind
	delay    time.Duration
	failOn   map[string]error
}

func (f *fakeAdapter) Kind() Kind { return f.kind }

func (f *fakeAdapter) PageSize() int { return f.pageSize }

func (f *fakeAdapter) FetchPage(_ context.Context, page, limit int) (*Page, error) {
	if page == f.failPage {
		return nil, ErrNoData
	}
	start := (page - 1) * limit
	if start > len(f.listing) {
		start = len(f.listing)
	}
	end := start + limit
	if end > len(f.listing) {
		end = len(f.listing)
	}
	p := &Page{Fetched: end - start}
	for _, id := range f.listing[start:end] {
		p.Records = append(p.Records, rec(id))
	}
	return p, nil
}

func (f *fakeAdapter) Upsert(_ context.Context, r Record) (uint, bool, error) {
	if r.SourceID() == "skip" {
		return 0, false, ErrSkipped
	}
	if err := f.failOn[r.SourceID()]; err != nil {
		return 0, false, err
	}
	id, created := f.store.upsert(f.kind, r.SourceID())
	return id, created, nil
}

func (f *fakeAdapter) Push(ctx context.Context, id uint, parents Resolver) (string, error) {
	if err := f.pushErr[id]; err != nil {
		return "", err
	}
	if f.parent != "" {
		if _, err := parents.EnsureTarget(ctx, f.parent, f.store.get(f.kind, id).parent); err != nil {
			return "", err
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	n := f.pushes.Add(1)
	return fmt.Sprintf("%s-%d", f.kind, n), nil
}

func newEngine(store *memStore, adapters ...Adapter) *Engine {
	e := NewEngine(store, zap.NewNop(), 0)
	for _, a := range adapters {
		e.Register(a)
	}
	return e
}

func TestSync_PagesUntilShortPage(t *testing.T) {
	store := newMemStore()
	a := &fakeAdapter{kind: KindCustomer, store: store, pageSize: 2, listing: []string{"a", "b", "c", "d", "e"}}
	e := newEngine(store, a)

	res, err := e.Sync(context.Background(), KindCustomer)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Fetched)
	assert.Equal(t, 5, res.Created)
	assert.Equal(t, 5, res.Pushed)
	assert.Equal(t, int32(5), a.pushes.Load())
}

func TestSync_Idempotent(t *testing.T) {
	store := newMemStore()
	a := &fakeAdapter{kind: KindCustomer, store: store, pageSize: 10, listing: []string{"a", "b"}}
	e := newEngine(store, a)

	_, err := e.Sync(context.Background(), KindCustomer)
	require.NoError(t, err)
	res, err := e.Sync(context.Background(), KindCustomer)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 0, res.Pushed, "linked records are never re-submitted")
	assert.Equal(t, int32(2), a.pushes.Load())
}

func TestPull_SweepMarksMissing(t *testing.T) {
	store := newMemStore()
	a := &fakeAdapter{kind: KindProduct, store: store, pageSize: 10, listing: []string{"a", "b", "c"}}
	e := newEngine(store, a)

	_, err := e.Pull(context.Background(), KindProduct)
	require.NoError(t, err)

	a.listing = []string{"a", "c"}
	res, err := e.Pull(context.Background(), KindProduct)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Swept)

	var absent []string
	for _, r := range store.table(KindProduct) {
		if !r.inSource {
			absent = append(absent, r.sourceID)
		}
	}
	assert.Equal(t, []string{"b"}, absent)
	assert.Len(t, store.table(KindProduct), 3, "sweep never deletes")
}

func TestPull_FailedPageSkipsSweep(t *testing.T) {
	store := newMemStore()
	a := &fakeAdapter{kind: KindProduct, store: store, pageSize: 1, listing: []string{"a", "b"}}
	e := newEngine(store, a)

	_, err := e.Pull(context.Background(), KindProduct)
	require.NoError(t, err)

	a.failPage = 2
	res, err := e.Pull(context.Background(), KindProduct)
	assert.ErrorIs(t, err, ErrNoData)
	assert.True(t, res.SweepSkipped)

	for _, r := range store.table(KindProduct) {
		assert.True(t, r.inSource, "listing failure must not mark %s absent", r.sourceID)
	}
}

func TestPull_FailedUpsertSkipsSweep(t *testing.T) {
	store := newMemStore()
	a := &fakeAdapter{kind: KindCustomer, store: store, pageSize: 10, listing: []string{"a", "b"}}
	e := newEngine(store, a)

	_, err := e.Pull(context.Background(), KindCustomer)
	require.NoError(t, err)

	a.failOn = map[string]error{"b": errors.New("database is locked")}
	res, err := e.Pull(context.Background(), KindCustomer)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 0, res.Swept)
	assert.True(t, res.SweepSkipped)

	for _, r := range store.table(KindCustomer) {
		assert.True(t, r.inSource, "%s is still listed by source", r.sourceID)
	}

	a.failOn = nil
	a.listing = []string{"a"}
	res, err = e.Pull(context.Background(), KindCustomer)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Swept)
}

func TestPull_SkippedRecord(t *testing.T) {
	store := newMemStore()
	a := &fakeAdapter{kind: KindAddress, store: store, pageSize: 10, listing: []string{"a", "skip"}}
	e := newEngine(store, a)

	res, err := e.Pull(context.Background(), KindAddress)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Failed)
}

func TestPush_FailureStaysPending(t *testing.T) {
	store := newMemStore()
	a := &fakeAdapter{kind: KindCustomer, store: store, pageSize: 10, listing: []string{"a", "b"}}
	a.pushErr = map[uint]error{1: ErrRequestFailed}
	e := newEngine(store, a)

	res, err := e.Sync(context.Background(), KindCustomer)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pushed)
	assert.Equal(t, 1, res.PushFailed)

	pending, _ := store.PendingPush(context.Background(), KindCustomer)
	assert.Equal(t, []uint{1}, pending)

	delete(a.pushErr, 1)
	res, err = e.Push(context.Background(), KindCustomer)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pushed)
}

func TestPush_ParentMissingCountsDropped(t *testing.T) {
	store := newMemStore()
	a := &fakeAdapter{kind: KindAddress, store: store, pageSize: 10, listing: []string{"a"}}
	a.pushErr = map[uint]error{1: ErrParentMissing}
	e := newEngine(store, a)

	res, err := e.Sync(context.Background(), KindAddress)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 0, res.PushFailed)
}

func TestEnsureTarget_CreatesParentOnce(t *testing.T) {
	store := newMemStore()
	customers := &fakeAdapter{kind: KindCustomer, store: store, pageSize: 10, delay: 20 * time.Millisecond}
	addresses := &fakeAdapter{kind: KindAddress, store: store, pageSize: 10, parent: KindCustomer}
	e := newEngine(store, customers, addresses)

	parentID, _ := store.upsert(KindCustomer, "c1")
	require.NoError(t, store.MarkSeen(context.Background(), KindCustomer, parentID))
	for _, sid := range []string{"x", "y", "z"} {
		id, _ := store.upsert(KindAddress, sid)
		require.NoError(t, store.MarkSeen(context.Background(), KindAddress, id))
		store.get(KindAddress, id).parent = parentID
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = e.Push(context.Background(), KindAddress)
	}()
	go func() {
		defer wg.Done()
		_, _ = e.Push(context.Background(), KindCustomer)
	}()
	wg.Wait()

	assert.Equal(t, int32(1), customers.pushes.Load())
	assert.Equal(t, int32(3), addresses.pushes.Load())
	assert.True(t, store.get(KindCustomer, parentID).inTarget)
}

func TestEnsureTarget_UnknownKind(t *testing.T) {
	e := newEngine(newMemStore())
	_, err := e.EnsureTarget(context.Background(), KindProduct, 1)
	assert.ErrorIs(t, err, ErrUnknownKind)
}
