package store

import "github.com/shopspring/decimal"

// Patch is a partial update of one model: only the columns it returns are written.
type Patch interface {
	model() any
	Columns() map[string]any
}

func put[T any](cols map[string]any, column string, v *T) {
	if v != nil {
		cols[column] = *v
	}
}

// CustomerPatch updates mutable Customer fields.
type CustomerPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	InSource  *bool
}

func (CustomerPatch) model() any { return &Customer{} }

// Columns implements Patch.
func (p CustomerPatch) Columns() map[string]any {
	cols := map[string]any{}
	put(cols, "first_name", p.FirstName)
	put(cols, "last_name", p.LastName)
	put(cols, "email", p.Email)
	put(cols, "in_source", p.InSource)
	return cols
}

// AddressPatch updates mutable Address fields.
type AddressPatch struct {
	FirstName *string
	LastName  *string
	Street    *string
	Zipcode   *string
	City      *string
	InSource  *bool
}

func (AddressPatch) model() any { return &Address{} }

// Columns implements Patch.
func (p AddressPatch) Columns() map[string]any {
	cols := map[string]any{}
	put(cols, "first_name", p.FirstName)
	put(cols, "last_name", p.LastName)
	put(cols, "street", p.Street)
	put(cols, "zipcode", p.Zipcode)
	put(cols, "city", p.City)
	put(cols, "in_source", p.InSource)
	return cols
}

// ProductPatch updates mutable Product fields.
type ProductPatch struct {
	Name          *string
	Description   *string
	Active        *bool
	ProductNumber *string
	Price         *decimal.NullDecimal
	InSource      *bool
}

func (ProductPatch) model() any { return &Product{} }

// Columns implements Patch.
func (p ProductPatch) Columns() map[string]any {
	cols := map[string]any{}
	put(cols, "name", p.Name)
	put(cols, "description", p.Description)
	put(cols, "active", p.Active)
	put(cols, "product_number", p.ProductNumber)
	put(cols, "price", p.Price)
	put(cols, "in_source", p.InSource)
	return cols
}

// OrderPatch updates mutable Order fields. TargetState is written through
// SetTargetState only.
type OrderPatch struct {
	SourceState *string
	InSource    *bool
}

func (OrderPatch) model() any { return &Order{} }

// Columns implements Patch.
func (p OrderPatch) Columns() map[string]any {
	cols := map[string]any{}
	put(cols, "source_state", p.SourceState)
	put(cols, "in_source", p.InSource)
	return cols
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}
