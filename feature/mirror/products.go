package mirror

import (
	"context"
	"errors"
	"fmt"

	"inventree-connect/core/reconcile"
	"inventree-connect/core/utils"
	"inventree-connect/feature/gateway/inventree"
	"inventree-connect/feature/gateway/shopware"
	"inventree-connect/feature/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultProductPageSize is the product listing page size.
const DefaultProductPageSize = 50

// DefaultMinimumStock is sent with created parts when none is configured.
const DefaultMinimumStock = 10

// ProductRecord is one Source product or flattened variant.
type ProductRecord struct {
	ID            string
	Name          string
	Description   string
	Active        bool
	ProductNumber string
	Price         decimal.NullDecimal
	// skip holds the reason a listed product is ignored.
	skip string
}

// SourceID implements reconcile.Record.
func (r ProductRecord) SourceID() string { return r.ID }

// ProductAdapter mirrors Source products and their variants into Target parts.
type ProductAdapter struct {
	store        *store.Store
	source       Source
	target       Target
	pageSize     int
	minimumStock int
}

// NewProductAdapter creates the product adapter.
func NewProductAdapter(st *store.Store, src Source, tgt Target, cfg Config) *ProductAdapter {
	a := &ProductAdapter{
		store:        st,
		source:       src,
		target:       tgt,
		pageSize:     cfg.ProductPageSize,
		minimumStock: cfg.MinimumStock,
	}
	if a.pageSize <= 0 {
		a.pageSize = DefaultProductPageSize
	}
	if a.minimumStock <= 0 {
		a.minimumStock = DefaultMinimumStock
	}
	return a
}

// Kind implements reconcile.Adapter.
func (a *ProductAdapter) Kind() reconcile.Kind { return reconcile.KindProduct }

// PageSize implements reconcile.PageSizer.
func (a *ProductAdapter) PageSize() int { return a.pageSize }

// FetchPage implements reconcile.Adapter. Variants precede their parent.
func (a *ProductAdapter) FetchPage(ctx context.Context, page, limit int) (*reconcile.Page, error) {
	p, err := a.source.List(ctx, "product", shopware.ListOptions{
		Page:  page,
		Limit: limit,
		Query: shopware.Associations("children"),
	})
	if err != nil {
		return nil, err
	}
	products, err := decodePage[shopware.Product](p)
	if err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := &reconcile.Page{Fetched: len(p.Items)}
	for _, prod := range products {
		out.Records = append(out.Records, flatten(prod)...)
	}
	return out, nil
}

func flatten(p shopware.Product) []reconcile.Record {
	if p.Name == nil || *p.Name == "" {
		return []reconcile.Record{ProductRecord{
			ID:            p.ID,
			ProductNumber: p.ProductNumber,
			skip:          "product " + p.ProductNumber + " has no name",
		}}
	}
	parent := ProductRecord{
		ID:            p.ID,
		Name:          *p.Name,
		Description:   deref(p.Description, ""),
		Active:        deref(p.Active, false),
		ProductNumber: p.ProductNumber,
		Price:         p.GrossPrice(),
	}

	out := make([]reconcile.Record, 0, len(p.Children)+1)
	for _, c := range p.Children {
		child := ProductRecord{
			ID:            c.ID,
			Name:          deref(c.Name, ""),
			Description:   deref(c.Description, parent.Description),
			Active:        deref(c.Active, parent.Active),
			ProductNumber: c.ProductNumber,
			Price:         c.GrossPrice(),
		}
		if child.Name == "" {
			child.Name = c.ProductNumber
		}
		if !child.Price.Valid {
			child.Price = parent.Price
		}
		out = append(out, child)
	}
	return append(out, parent)
}

func deref[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

// Upsert implements reconcile.Adapter.
func (a *ProductAdapter) Upsert(ctx context.Context, rec reconcile.Record) (uint, bool, error) {
	r := rec.(ProductRecord)
	if r.skip != "" {
		return 0, false, fmt.Errorf("%w: %s", reconcile.ErrSkipped, r.skip)
	}

	existing, err := a.store.ProductBySourceID(ctx, r.ID)
	if isNotFound(err) {
		p := &store.Product{
			Mirror:        store.Mirror{SourceID: store.Ptr(r.ID), InSource: true, Updated: true},
			Name:          r.Name,
			Description:   r.Description,
			Active:        r.Active,
			ProductNumber: r.ProductNumber,
			Price:         r.Price,
		}
		if err := a.store.InsertProduct(ctx, p); err != nil {
			return 0, false, err
		}
		return p.ID, true, nil
	}
	if err != nil {
		return 0, false, err
	}

	err = a.store.Update(ctx, existing.ID, store.ProductPatch{
		Name:          store.Ptr(r.Name),
		Description:   store.Ptr(r.Description),
		Active:        store.Ptr(r.Active),
		ProductNumber: store.Ptr(r.ProductNumber),
		Price:         store.Ptr(r.Price),
		InSource:      store.Ptr(true),
	})
	return existing.ID, false, err
}

// Push implements reconcile.Adapter.
func (a *ProductAdapter) Push(ctx context.Context, localID uint, _ reconcile.Resolver) (string, error) {
	p, err := a.store.Product(ctx, localID)
	if err != nil {
		return "", err
	}
	obj, err := a.target.Create(ctx, inventree.ResourcePart, map[string]any{
		"name":          utils.Truncate(p.Name, 100),
		"description":   utils.Truncate(utils.SanitizeDescription(p.Description), 250),
		"active":        p.Active,
		"minimum_stock": a.minimumStock,
		"salable":       true,
	})
	if err != nil {
		return "", err
	}
	return targetPK(obj)
}

// ValidateResult summarizes one ValidateProducts run.
type ValidateResult struct {
	Checked     int `json:"checked"`
	Missing     int `json:"missing"`
	Unreachable int `json:"unreachable"`
}

// Counts returns the result as outcome -> count.
func (r *ValidateResult) Counts() map[string]int {
	return map[string]int{
		"checked":     r.Checked,
		"missing":     r.Missing,
		"unreachable": r.Unreachable,
	}
}

// ValidateProducts asks Source for every product flagged present. An explicit
// not-found clears the flag; any other failure leaves it as it is.
func ValidateProducts(ctx context.Context, st *store.Store, src Source, logger *zap.Logger) (*ValidateResult, error) {
	l := logger.Named("mirror.products")
	products, err := st.ProductsInSource(ctx)
	if err != nil {
		return nil, err
	}

	res := &ValidateResult{}
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++
		pl := l.With(zap.Uint("local_id", p.ID), zap.String("source_id", *p.SourceID))

		_, err := src.Get(ctx, "product", *p.SourceID)
		switch {
		case err == nil:
		case errors.Is(err, reconcile.ErrNotFound):
			if err := st.Update(ctx, p.ID, store.ProductPatch{InSource: store.Ptr(false)}); err != nil {
				pl.Error("Failed to flag missing product", zap.Error(err))
				continue
			}
			res.Missing++
			pl.Info("Product no longer in source")
		default:
			res.Unreachable++
			pl.Warn("Product check failed", zap.Error(err))
		}
	}
	return res, nil
}
