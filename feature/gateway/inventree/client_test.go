package inventree_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"inventree-connect/core/reconcile"
	"inventree-connect/feature/gateway/inventree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func TestClient_Create(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/company/", r.URL.Path)
		assert.Equal(t, "Token tok", r.Header.Get("Authorization"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ada Lovelace", body["name"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"pk":42,"name":"Ada Lovelace"}`))
	}))
	defer srv.Close()

	c := inventree.NewClient(inventree.Config{URL: srv.URL}, staticToken("tok"))
	obj, err := c.Create(context.Background(), inventree.ResourceCompany, map[string]any{"name": "Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, 42, obj.PK)
}

func TestClient_ActionAndDelete(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/api/order/so/7/complete/":
			w.WriteHeader(http.StatusBadRequest)
		case "/api/company/5/":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	c := inventree.NewClient(inventree.Config{URL: srv.URL}, staticToken("tok"))
	ctx := context.Background()

	require.NoError(t, c.Action(ctx, inventree.ResourceSalesOrder, "7", inventree.VerbIssue, nil))
	err := c.Action(ctx, inventree.ResourceSalesOrder, "7", inventree.VerbComplete, nil)
	assert.ErrorIs(t, err, reconcile.ErrRequestFailed)
	require.NoError(t, c.Delete(ctx, inventree.ResourceCompany, "5"))

	assert.Equal(t, []string{
		"POST /api/order/so/7/issue/",
		"POST /api/order/so/7/complete/",
		"DELETE /api/company/5/",
	}, calls)
}

func TestClient_GetList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/stock/":
			assert.Equal(t, "true", r.URL.Query().Get("available"))
			_, _ = w.Write([]byte(`[{"pk":1,"part":9,"quantity":12.0}]`))
		case "/api/order/so/shipment/":
			_, _ = w.Write([]byte(`{"count":1,"results":[{"pk":3,"order":7,"shipment_date":null}]}`))
		}
	}))
	defer srv.Close()

	c := inventree.NewClient(inventree.Config{URL: srv.URL}, staticToken("tok"))
	ctx := context.Background()

	raw, err := c.Get(ctx, inventree.ResourceStock, url.Values{"available": {"true"}, "part": {"9"}})
	require.NoError(t, err)
	stock, err := inventree.DecodeList[inventree.StockItem](raw)
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.Equal(t, "12", stock[0].Quantity.String())

	raw, err = c.Get(ctx, inventree.ResourceShipment, url.Values{"order": {"7"}, "shipped": {"false"}})
	require.NoError(t, err)
	shipments, err := inventree.DecodeList[inventree.Shipment](raw)
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	assert.Equal(t, 3, shipments[0].PK)
}

func TestAuthenticator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"token":"inv-1","expiry":"2030-06-01"}`))
	}))
	defer srv.Close()

	a := inventree.NewAuthenticator(inventree.Config{URL: srv.URL, User: "admin", Password: "pw"})
	tok, err := a.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inv-1", tok.Value)
	assert.Equal(t, 2030, tok.ExpiresAt.Year())
	assert.Equal(t, time.June, tok.ExpiresAt.Month())

	bad := inventree.NewAuthenticator(inventree.Config{URL: srv.URL, User: "admin", Password: "nope"})
	_, err = bad.Authenticate(context.Background())
	assert.ErrorIs(t, err, reconcile.ErrRequestFailed)
}

func TestConfig_Validate(t *testing.T) {
	assert.Error(t, inventree.Config{}.Validate())
	assert.Error(t, inventree.Config{URL: "u", User: "a", Password: "b", Currency: "EURO"}.Validate())
	assert.NoError(t, inventree.Config{URL: "u", User: "a", Password: "b", Currency: "EUR"}.Validate())
}
