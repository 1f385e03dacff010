package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"inventree-connect/core/reconcile"
	"inventree-connect/feature/gateway"
	"inventree-connect/feature/gateway/inventree"
	"inventree-connect/feature/gateway/shopware"
	"inventree-connect/feature/store"

	"go.uber.org/zap"
)

// Source is the part of the Shopware client the adapters use.
type Source interface {
	List(ctx context.Context, resource string, opts shopware.ListOptions) (*shopware.Page, error)
	Get(ctx context.Context, resource, id string, associations ...string) (json.RawMessage, error)
}

// Target is the part of the InvenTree client the adapters use.
type Target interface {
	Create(ctx context.Context, resource string, body any) (*inventree.Object, error)
}

// Config tunes the mirrored kinds.
type Config struct {
	// PageSize applies to customers and addresses.
	PageSize int
	// ProductPageSize applies to the product listing.
	ProductPageSize int
	// MinimumStock is sent with every created part.
	MinimumStock int
	// Currency is sent with every created company.
	Currency string
}

// NewEngine returns a reconcile engine with the customer, address and product
// adapters registered.
func NewEngine(st *store.Store, src Source, tgt Target, cfg Config, logger *zap.Logger) *reconcile.Engine {
	e := reconcile.NewEngine(st, logger, cfg.PageSize)
	e.Register(NewCustomerAdapter(st, src, tgt, cfg))
	e.Register(NewAddressAdapter(st, src, tgt))
	e.Register(NewProductAdapter(st, src, tgt, cfg))
	return e
}

// decodePage decodes every item of a listing page into T.
func decodePage[T any](p *shopware.Page) ([]T, error) {
	out := make([]T, 0, len(p.Items))
	for i, raw := range p.Items {
		var v T
		if err := gateway.Decode(raw, &v); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func targetPK(obj *inventree.Object) (string, error) {
	if obj == nil || obj.PK == 0 {
		return "", fmt.Errorf("%w: created record has no pk", reconcile.ErrInvalidResponse)
	}
	return strconv.Itoa(obj.PK), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
