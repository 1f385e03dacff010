package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"

	"inventree-connect/core/reconcile"
	"inventree-connect/feature/gateway/inventree"
	"inventree-connect/feature/gateway/shopware"
	"inventree-connect/feature/store"

	"go.uber.org/zap"
)

// DefaultWindow is the number of latest Source orders assembled per run.
const DefaultWindow = 10

// Source is the part of the Shopware client the order flow uses.
type Source interface {
	List(ctx context.Context, resource string, opts shopware.ListOptions) (*shopware.Page, error)
	Get(ctx context.Context, resource, id string, associations ...string) (json.RawMessage, error)
}

// Target is the part of the InvenTree client the order flow uses.
type Target interface {
	Create(ctx context.Context, resource string, body any) (*inventree.Object, error)
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
	Action(ctx context.Context, resource, id, verb string, body any) error
}

// Config tunes the order flow.
type Config struct {
	// Window is how many of the latest Source orders are assembled.
	Window int
	// Currency is sent with sales orders and their lines.
	Currency string
}

// Service assembles Source orders, pushes them to Target and reconciles their status.
type Service struct {
	store   *store.Store
	source  Source
	target  Target
	parents reconcile.Resolver
	cfg     Config
	logger  *zap.Logger
}

// NewService creates the order service. parents creates customers and
// addresses in Target on demand.
func NewService(st *store.Store, src Source, tgt Target, parents reconcile.Resolver, cfg Config, logger *zap.Logger) *Service {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	return &Service{
		store:   st,
		source:  src,
		target:  tgt,
		parents: parents,
		cfg:     cfg,
		logger:  logger.Named("orders"),
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
