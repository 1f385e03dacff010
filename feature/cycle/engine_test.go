package cycle_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"inventree-connect/core/metrics"
	"inventree-connect/core/reconcile"
	"inventree-connect/feature/cycle"
	"inventree-connect/feature/orders"
	"inventree-connect/feature/report"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMirror struct {
	mu      sync.Mutex
	synced  []reconcile.Kind
	failing map[reconcile.Kind]error
	block   chan struct{}
}

func (f *fakeMirror) Sync(_ context.Context, kind reconcile.Kind) (*reconcile.Result, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.synced = append(f.synced, kind)
	f.mu.Unlock()
	if err := f.failing[kind]; err != nil {
		return &reconcile.Result{Kind: kind, SweepSkipped: true}, err
	}
	return &reconcile.Result{Kind: kind, Created: 1}, nil
}

func (f *fakeMirror) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.synced)
}

type fakeOrders struct {
	mirror      *fakeMirror
	seenMirrors atomic.Int32
	assembleErr error
}

func (f *fakeOrders) AssembleOrders(context.Context) (*orders.AssembleResult, error) {
	f.seenMirrors.Store(int32(f.mirror.count()))
	if f.assembleErr != nil {
		return nil, f.assembleErr
	}
	return &orders.AssembleResult{Fetched: 2, Created: 2}, nil
}

func (f *fakeOrders) PushOrders(context.Context) (*orders.PushResult, error) {
	return &orders.PushResult{Pushed: 2}, nil
}

func (f *fakeOrders) ReconcileOrderStates(context.Context) (*orders.StateResult, error) {
	return &orders.StateResult{Checked: 1}, nil
}

type mockArchiver struct {
	mock.Mock
}

func (m *mockArchiver) Archive(ctx context.Context, r *report.Report) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockArchiver) Latest(ctx context.Context) (*report.Report, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*report.Report)
	return r, args.Error(1)
}

func TestRunCycle(t *testing.T) {
	m := &fakeMirror{}
	o := &fakeOrders{mirror: m}
	reg := metrics.NewRegistry()
	arch := &mockArchiver{}
	arch.On("Archive", mock.Anything, mock.Anything).Return(nil).Once()
	e := cycle.NewEngine(m, o, reg, arch, zap.NewNop())

	rep, err := e.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.StatusSuccess, rep.Status)
	assert.NotEmpty(t, rep.CycleID)
	assert.Equal(t, int32(3), o.seenMirrors.Load())

	var names []string
	for _, s := range rep.Sections {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		cycle.SectionCustomers, cycle.SectionAddresses, cycle.SectionProducts,
		cycle.SectionAssemble, cycle.SectionPush, cycle.SectionStates,
	}, names)

	assert.Same(t, rep, e.LastReport())
	assert.False(t, e.Running())
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Outcomes.WithLabelValues(cycle.SectionCustomers, "created")))
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.Outcomes.WithLabelValues(cycle.SectionPush, "pushed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Cycles.WithLabelValues("success")))
	arch.AssertExpectations(t)
}

func TestRunCycle_FailuresStayInTheirSection(t *testing.T) {
	m := &fakeMirror{failing: map[reconcile.Kind]error{reconcile.KindProduct: reconcile.ErrNoData}}
	o := &fakeOrders{mirror: m, assembleErr: errors.New("listing down")}
	arch := &mockArchiver{}
	arch.On("Archive", mock.Anything, mock.Anything).Return(errors.New("bucket gone"))
	e := cycle.NewEngine(m, o, metrics.NewRegistry(), arch, zap.NewNop())

	rep, err := e.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.StatusPartial, rep.Status)

	products, ok := rep.Section(cycle.SectionProducts)
	require.True(t, ok)
	assert.Contains(t, products.Error, "no data")
	assemble, ok := rep.Section(cycle.SectionAssemble)
	require.True(t, ok)
	assert.Nil(t, assemble.Counts)
	assert.Equal(t, "listing down", assemble.Error)
	push, ok := rep.Section(cycle.SectionPush)
	require.True(t, ok)
	assert.Empty(t, push.Error)
	assert.Equal(t, 2, push.Counts["pushed"])
}

func TestTrigger_RejectsConcurrentCycle(t *testing.T) {
	m := &fakeMirror{block: make(chan struct{})}
	o := &fakeOrders{mirror: m}
	e := cycle.NewEngine(m, o, metrics.NewRegistry(), nil, zap.NewNop())

	id, err := e.Trigger(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.True(t, e.Running())

	_, err = e.Trigger(context.Background())
	assert.ErrorIs(t, err, cycle.ErrCycleRunning)
	_, err = e.RunCycle(context.Background())
	assert.ErrorIs(t, err, cycle.ErrCycleRunning)

	close(m.block)
	e.Wait()
	assert.False(t, e.Running())
	require.NotNil(t, e.LastReport())
	assert.Equal(t, id, e.LastReport().CycleID)
}

func TestLoop_StopsOnCancel(t *testing.T) {
	m := &fakeMirror{}
	e := cycle.NewEngine(m, &fakeOrders{mirror: m}, metrics.NewRegistry(), nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Loop(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool { return e.LastReport() != nil }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestRestore(t *testing.T) {
	arch := &mockArchiver{}
	saved := &report.Report{CycleID: "old", Status: report.StatusSuccess}
	arch.On("Latest", mock.Anything).Return(saved, nil)
	e := cycle.NewEngine(&fakeMirror{}, &fakeOrders{mirror: &fakeMirror{}}, metrics.NewRegistry(), arch, zap.NewNop())

	require.NoError(t, e.Restore(context.Background()))
	assert.Same(t, saved, e.LastReport())
}

func TestConfig(t *testing.T) {
	assert.Equal(t, time.Minute, cycle.Config{}.Interval())
	assert.Equal(t, 5*time.Second, cycle.Config{IntervalSeconds: 5}.Interval())
	assert.NoError(t, cycle.Config{IntervalSeconds: 60, OrderWindow: 10}.Validate())
	assert.Error(t, cycle.Config{OrderWindow: -1}.Validate())
}
