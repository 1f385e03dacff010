package orders_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"testing"

	"inventree-connect/core/reconcile"
	"inventree-connect/feature/gateway/inventree"
	"inventree-connect/feature/gateway/shopware"
	"inventree-connect/feature/orders"
	"inventree-connect/feature/store"
	"inventree-connect/feature/store/storetest"

	"go.uber.org/zap"
)

type fakeSource struct {
	orders []string
	states map[string]string
}

func (f *fakeSource) List(_ context.Context, resource string, opts shopware.ListOptions) (*shopware.Page, error) {
	if resource != "order" {
		return nil, fmt.Errorf("%w: %s", reconcile.ErrNotFound, resource)
	}
	p := &shopware.Page{}
	for i, o := range f.orders {
		if i >= opts.Limit {
			break
		}
		p.Items = append(p.Items, json.RawMessage(o))
	}
	return p, nil
}

func (f *fakeSource) Get(_ context.Context, resource, id string, _ ...string) (json.RawMessage, error) {
	state, ok := f.states[id]
	if resource != "order" || !ok {
		return nil, reconcile.ErrNoData
	}
	return json.RawMessage(fmt.Sprintf(`{"id":%q,"stateMachineState":{"name":%q}}`, id, state)), nil
}

type call struct {
	Resource string
	ID       string
	Verb     string
	Body     any
}

type fakeTarget struct {
	mu        sync.Mutex
	nextPK    int
	creates   []call
	actions   []call
	gets      map[string]string
	actionErr map[string]error
	createErr map[string]error
}

func (f *fakeTarget) Create(_ context.Context, resource string, body any) (*inventree.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, call{Resource: resource, Body: body})
	if err := f.createErr[resource]; err != nil {
		return nil, err
	}
	f.nextPK++
	return &inventree.Object{PK: f.nextPK}, nil
}

func (f *fakeTarget) Get(_ context.Context, path string, query url.Values) (json.RawMessage, error) {
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	body, ok := f.gets[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", reconcile.ErrNotFound, key)
	}
	return json.RawMessage(body), nil
}

func (f *fakeTarget) Action(_ context.Context, resource, id, verb string, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, call{Resource: resource, ID: id, Verb: verb, Body: body})
	return f.actionErr[resource+"/"+id+"/"+verb]
}

type fakeResolver struct {
	ids  map[reconcile.Kind]string
	errs map[reconcile.Kind]error
}

func (f *fakeResolver) EnsureTarget(_ context.Context, kind reconcile.Kind, _ uint) (string, error) {
	if err := f.errs[kind]; err != nil {
		return "", err
	}
	return f.ids[kind], nil
}

func newService(t *testing.T, src *fakeSource, tgt *fakeTarget, parents reconcile.Resolver) (*orders.Service, *store.Store) {
	t.Helper()
	st := storetest.New(t)
	if parents == nil {
		parents = &fakeResolver{}
	}
	svc := orders.NewService(st, src, tgt, parents, orders.Config{Window: 10, Currency: "EUR"}, zap.NewNop())
	return svc, st
}

func insertProduct(t *testing.T, st *store.Store, sourceID string) *store.Product {
	t.Helper()
	p := &store.Product{
		Mirror:        store.Mirror{SourceID: storetest.SourceID(sourceID), InSource: true},
		Name:          "Product " + sourceID,
		ProductNumber: "SW-" + sourceID,
	}
	if err := st.InsertProduct(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}
