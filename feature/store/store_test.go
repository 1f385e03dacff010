package store_test

import (
	"context"
	"errors"
	"testing"

	"inventree-connect/core/reconcile"
	"inventree-connect/feature/store"
	"inventree-connect/feature/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sid = storetest.SourceID

func TestInsertCustomer_CollisionSuffix(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	names := []string{}
	for i, src := range []string{"c1", "c2", "c3"} {
		c := &store.Customer{Mirror: store.Mirror{SourceID: sid(src)}, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
		require.NoError(t, s.InsertCustomer(ctx, c), "insert %d", i)
		names = append(names, c.LastName)
	}

	assert.Equal(t, []string{"Lovelace", "Lovelace (1)", "Lovelace (2)"}, names)

	other := &store.Customer{Mirror: store.Mirror{SourceID: sid("c4")}, FirstName: "Ada", LastName: "Lovelace", Email: "other@example.com"}
	require.NoError(t, s.InsertCustomer(ctx, other))
	assert.Equal(t, "Lovelace", other.LastName)
}

func TestHasCollisionSuffix(t *testing.T) {
	assert.True(t, store.HasCollisionSuffix("Lovelace (3)", "Lovelace"))
	assert.False(t, store.HasCollisionSuffix("Lovelace", "Lovelace"))
	assert.False(t, store.HasCollisionSuffix("Lovelace (x)", "Lovelace"))
	assert.False(t, store.HasCollisionSuffix("Byron (1)", "Lovelace"))
}

func TestLookups(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	c := &store.Customer{Mirror: store.Mirror{SourceID: sid("c1")}, FirstName: "A"}
	require.NoError(t, s.InsertCustomer(ctx, c))

	got, err := s.CustomerBySourceID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = s.CustomerBySourceID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Address(ctx, 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdate_PatchesOnlySetFields(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	p := &store.Product{Mirror: store.Mirror{SourceID: sid("p1")}, Name: "Mug", Description: "old", ProductNumber: "SW-1", Active: true}
	require.NoError(t, s.InsertProduct(ctx, p))

	price := decimal.NewNullDecimal(decimal.RequireFromString("12.50"))
	require.NoError(t, s.Update(ctx, p.ID, store.ProductPatch{
		Description: store.Ptr("new"),
		Active:      store.Ptr(false),
		Price:       &price,
	}))

	got, err := s.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", got.Name)
	assert.Equal(t, "new", got.Description)
	assert.False(t, got.Active)
	require.True(t, got.Price.Valid)
	assert.True(t, got.Price.Decimal.Equal(decimal.RequireFromString("12.5")))

	assert.NoError(t, s.Update(ctx, p.ID, store.ProductPatch{}))
}

func TestSweep(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	var ids []uint
	for _, src := range []string{"a", "b", "c"} {
		p := &store.Product{Mirror: store.Mirror{SourceID: sid(src), InSource: true, Updated: true}, Name: src}
		require.NoError(t, s.InsertProduct(ctx, p))
		ids = append(ids, p.ID)
	}

	require.NoError(t, s.BeginSweep(ctx, reconcile.KindProduct))
	require.NoError(t, s.MarkSeen(ctx, reconcile.KindProduct, ids[0]))
	require.NoError(t, s.MarkSeen(ctx, reconcile.KindProduct, ids[2]))
	swept, err := s.EndSweep(ctx, reconcile.KindProduct)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	b, err := s.Product(ctx, ids[1])
	require.NoError(t, err)
	assert.False(t, b.InSource)

	// a second sweep without changes reports nothing new
	require.NoError(t, s.BeginSweep(ctx, reconcile.KindProduct))
	require.NoError(t, s.MarkSeen(ctx, reconcile.KindProduct, ids[0]))
	require.NoError(t, s.MarkSeen(ctx, reconcile.KindProduct, ids[2]))
	swept, err = s.EndSweep(ctx, reconcile.KindProduct)
	require.NoError(t, err)
	assert.Equal(t, int64(0), swept)
}

func TestSweep_RejectsOrders(t *testing.T) {
	s := storetest.New(t)
	err := s.BeginSweep(context.Background(), reconcile.KindOrder)
	assert.ErrorIs(t, err, reconcile.ErrUnknownKind)
}

func TestPendingPushAndLink(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	fresh := &store.Customer{Mirror: store.Mirror{SourceID: sid("1"), InSource: true}, LastName: "fresh"}
	linked := &store.Customer{Mirror: store.Mirror{SourceID: sid("2"), InSource: true, InTarget: true, TargetID: sid("77")}, LastName: "linked"}
	gone := &store.Customer{Mirror: store.Mirror{SourceID: sid("3"), InSource: false}, LastName: "gone"}
	flagOnly := &store.Customer{Mirror: store.Mirror{SourceID: sid("4"), InSource: true, InTarget: true}, LastName: "flag"}
	for _, c := range []*store.Customer{fresh, linked, gone, flagOnly} {
		require.NoError(t, s.InsertCustomer(ctx, c))
	}

	ids, err := s.PendingPush(ctx, reconcile.KindCustomer)
	require.NoError(t, err)
	assert.Equal(t, []uint{fresh.ID, flagOnly.ID}, ids)

	tid, err := s.TargetID(ctx, reconcile.KindCustomer, linked.ID)
	require.NoError(t, err)
	assert.Equal(t, "77", tid)

	tid, err = s.TargetID(ctx, reconcile.KindCustomer, fresh.ID)
	require.NoError(t, err)
	assert.Empty(t, tid)

	require.NoError(t, s.LinkTarget(ctx, reconcile.KindCustomer, fresh.ID, "78"))
	got, err := s.Customer(ctx, fresh.ID)
	require.NoError(t, err)
	assert.True(t, got.InTarget)
	assert.Equal(t, "78", *got.TargetID)

	_, err = s.TargetID(ctx, reconcile.KindCustomer, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteCustomer_RemovesAddresses(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	c := &store.Customer{Mirror: store.Mirror{SourceID: sid("c")}}
	require.NoError(t, s.InsertCustomer(ctx, c))
	a := &store.Address{Mirror: store.Mirror{SourceID: sid("a")}, CustomerID: c.ID}
	require.NoError(t, s.InsertAddress(ctx, a))

	require.NoError(t, s.DeleteCustomer(ctx, c.ID))

	_, err := s.Customer(ctx, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Address(ctx, a.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRules(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	m, err := s.ModifierFor(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, m)

	require.NoError(t, s.SetModifier(ctx, &store.QuantityModifier{ProductID: 1, Multiplier: 2, Offset: 1}))
	require.NoError(t, s.SetModifier(ctx, &store.QuantityModifier{ProductID: 1, Multiplier: 3, Offset: 0}))
	m, err = s.ModifierFor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Multiplier)
	assert.Equal(t, 0, m.Offset)

	assert.Error(t, s.SetOverwrite(ctx, &store.ProductOverwrite{ProductID: 2, ReplacementID: 2}))
	require.NoError(t, s.SetOverwrite(ctx, &store.ProductOverwrite{ProductID: 2, ReplacementID: 3}))
	o, err := s.OverwriteFor(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(3), o.ReplacementID)
}

func TestOrders(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	p := &store.Product{Mirror: store.Mirror{SourceID: sid("p"), TargetID: sid("501"), InTarget: true}, Price: decimal.NewNullDecimal(decimal.NewFromInt(4))}
	require.NoError(t, s.InsertProduct(ctx, p))
	o := &store.Order{SourceID: sid("o"), InSource: true, SourceOrderNumber: "1001", CustomerID: 1, AddressID: 1, SourceState: "Open"}
	require.NoError(t, s.InsertOrder(ctx, o))

	assert.Error(t, s.InsertOrderLine(ctx, &store.OrderLine{OrderID: o.ID, ProductID: p.ID, Quantity: 0}))
	require.NoError(t, s.InsertOrderLine(ctx, &store.OrderLine{OrderID: o.ID, ProductID: p.ID, Quantity: 3}))

	pending, err := s.OrdersPendingPush(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	lines, err := s.LinesForPush(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	require.NotNil(t, lines[0].ProductTargetID)
	assert.Equal(t, "501", *lines[0].ProductTargetID)
	assert.True(t, lines[0].Price.Decimal.Equal(decimal.NewFromInt(4)))

	require.NoError(t, s.LinkTarget(ctx, reconcile.KindOrder, o.ID, "9"))
	linked, err := s.OrdersInTarget(ctx)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	pending, err = s.OrdersPendingPush(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	unpushed, err := s.OrdersWithUnpushedLines(ctx)
	require.NoError(t, err)
	require.Len(t, unpushed, 1)
	assert.Equal(t, o.ID, unpushed[0].ID)

	require.NoError(t, s.LinkLine(ctx, lines[0].LineID, "77"))
	lines, err = s.LinesForPush(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
	unpushed, err = s.OrdersWithUnpushedLines(ctx)
	require.NoError(t, err)
	assert.Empty(t, unpushed)

	assert.ErrorIs(t, s.LinkLine(ctx, 999, "78"), store.ErrNotFound)
}

func TestSetTargetState_Guard(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	o := &store.Order{SourceID: sid("o"), CustomerID: 1, AddressID: 1}
	require.NoError(t, s.InsertOrder(ctx, o))

	var seen []*string
	guard := func(cur *string) error {
		seen = append(seen, cur)
		if cur != nil && *cur == "Complete" {
			return errors.New("regression")
		}
		return nil
	}

	require.NoError(t, s.SetTargetState(ctx, o.ID, "Complete", guard))
	assert.Error(t, s.SetTargetState(ctx, o.ID, "Pending", guard))

	got, err := s.Order(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Complete", *got.TargetState)
	require.Len(t, seen, 2)
	assert.Nil(t, seen[0])

	assert.ErrorIs(t, s.SetTargetState(ctx, 404, "Pending", nil), store.ErrNotFound)
}

func TestExpectedSchema(t *testing.T) {
	schema, err := store.ExpectedSchema()
	require.NoError(t, err)

	assert.Contains(t, schema["customers"], "source_id")
	assert.Contains(t, schema["customers"], "updated")
	assert.Contains(t, schema["quantity_modifiers"], "quantity_offset")
	assert.Contains(t, schema, "order_lines")
}
