package cycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"inventree-connect/core/logger"
	"inventree-connect/core/metrics"
	"inventree-connect/core/reconcile"
	"inventree-connect/feature/orders"
	"inventree-connect/feature/report"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrCycleRunning is returned when a cycle is requested while one runs.
var ErrCycleRunning = errors.New("cycle already running")

// Report section names.
const (
	SectionCustomers = "customers"
	SectionAddresses = "addresses"
	SectionProducts  = "products"
	SectionAssemble  = "orders.assemble"
	SectionPush      = "orders.push"
	SectionStates    = "orders.states"
)

// Mirror syncs one mirrored kind.
type Mirror interface {
	Sync(ctx context.Context, kind reconcile.Kind) (*reconcile.Result, error)
}

// Orders is the order flow that follows the mirror syncs.
type Orders interface {
	AssembleOrders(ctx context.Context) (*orders.AssembleResult, error)
	PushOrders(ctx context.Context) (*orders.PushResult, error)
	ReconcileOrderStates(ctx context.Context) (*orders.StateResult, error)
}

// Engine runs reconciliation cycles, one at a time.
type Engine struct {
	mirror   Mirror
	orders   Orders
	metrics  *metrics.Registry
	archiver report.Archiver
	logger   *zap.Logger
	now      func() time.Time

	running   atomic.Bool
	triggered sync.WaitGroup

	mu   sync.RWMutex
	last *report.Report
}

// NewEngine creates a cycle engine. A nil archiver discards reports.
func NewEngine(m Mirror, o Orders, reg *metrics.Registry, archiver report.Archiver, l *zap.Logger) *Engine {
	if archiver == nil {
		archiver = report.NopArchiver{}
	}
	return &Engine{
		mirror:   m,
		orders:   o,
		metrics:  reg,
		archiver: archiver,
		logger:   l.Named("cycle"),
		now:      time.Now,
	}
}

// SyncCustomers mirrors customers.
func (e *Engine) SyncCustomers(ctx context.Context) (*reconcile.Result, error) {
	return e.mirror.Sync(ctx, reconcile.KindCustomer)
}

// SyncAddresses mirrors addresses, creating missing customers in Target first.
func (e *Engine) SyncAddresses(ctx context.Context) (*reconcile.Result, error) {
	return e.mirror.Sync(ctx, reconcile.KindAddress)
}

// SyncProducts mirrors products and their variants.
func (e *Engine) SyncProducts(ctx context.Context) (*reconcile.Result, error) {
	return e.mirror.Sync(ctx, reconcile.KindProduct)
}

// Running reports whether a cycle is in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// LastReport returns the report of the latest finished cycle, or nil.
func (e *Engine) LastReport() *report.Report {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// Restore loads the newest archived report as the last report.
func (e *Engine) Restore(ctx context.Context) error {
	r, err := e.archiver.Latest(ctx)
	if err != nil {
		return err
	}
	if r != nil {
		e.mu.Lock()
		if e.last == nil {
			e.last = r
		}
		e.mu.Unlock()
	}
	return nil
}

// RunCycle runs one cycle and returns its report.
func (e *Engine) RunCycle(ctx context.Context) (*report.Report, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrCycleRunning
	}
	defer e.running.Store(false)
	return e.run(ctx), nil
}

// Trigger starts a cycle in the background. The cycle outlives ctx's cancellation.
func (e *Engine) Trigger(ctx context.Context) (string, error) {
	if !e.running.CompareAndSwap(false, true) {
		return "", ErrCycleRunning
	}
	cycleID := uuid.NewString()
	e.triggered.Add(1)
	go func() {
		defer e.triggered.Done()
		defer e.running.Store(false)
		e.runWithID(context.WithoutCancel(ctx), cycleID)
	}()
	return cycleID, nil
}

// Wait blocks until triggered cycles have finished.
func (e *Engine) Wait() {
	e.triggered.Wait()
}

// Loop runs a cycle immediately and then every interval until ctx is done.
// A cycle in progress when ctx is cancelled runs to its end.
func (e *Engine) Loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := e.RunCycle(context.WithoutCancel(ctx)); errors.Is(err, ErrCycleRunning) {
			e.logger.Debug("Cycle skipped, previous one still running")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
		}
	}
}

func (e *Engine) run(ctx context.Context) *report.Report {
	return e.runWithID(ctx, uuid.NewString())
}

func (e *Engine) runWithID(ctx context.Context, cycleID string) *report.Report {
	l := logger.WithCycle(e.logger, cycleID)
	started := e.now()
	rep := report.New(cycleID, started)
	e.metrics.CycleStarted()
	l.Info("Cycle started")

	// Mirrors run concurrently; each one's failure stays in its own section.
	kinds := []struct {
		section string
		sync    func(context.Context) (*reconcile.Result, error)
	}{
		{SectionCustomers, e.SyncCustomers},
		{SectionAddresses, e.SyncAddresses},
		{SectionProducts, e.SyncProducts},
	}
	results := make([]*reconcile.Result, len(kinds))
	errs := make([]error, len(kinds))
	var g errgroup.Group
	for i, k := range kinds {
		g.Go(func() error {
			results[i], errs[i] = k.sync(ctx)
			return nil
		})
	}
	_ = g.Wait()
	for i, k := range kinds {
		record(e, rep, k.section, results[i], errs[i])
	}

	assembled, err := e.orders.AssembleOrders(ctx)
	record(e, rep, SectionAssemble, assembled, err)
	pushed, err := e.orders.PushOrders(ctx)
	record(e, rep, SectionPush, pushed, err)
	states, err := e.orders.ReconcileOrderStates(ctx)
	record(e, rep, SectionStates, states, err)

	finished := e.now()
	rep.Finish(finished)
	rep.Log(l)
	e.metrics.CycleFinished(rep.Duration(), string(rep.Status), finished)

	if err := e.archiver.Archive(ctx, rep); err != nil {
		l.Warn("Report not archived", zap.Error(err))
	}

	e.mu.Lock()
	e.last = rep
	e.mu.Unlock()
	return rep
}

// record adds one concern to the report and the metrics. res is nil when the
// concern failed before producing a result.
func record[R any, P interface {
	*R
	Counts() map[string]int
}](e *Engine, rep *report.Report, section string, res P, err error) {
	var counts map[string]int
	if res != nil {
		counts = res.Counts()
		e.metrics.Observe(section, counts)
	}
	rep.Add(section, counts, err)
}
