package orders

import "inventree-connect/feature/store"

// Transform applies the quantity rules of an ordered product: the modifier
// rewrites the quantity as q*multiplier + offset, then the overwrite swaps the
// product while keeping the rewritten quantity. Nil rules pass values through.
func Transform(productID uint, quantity int, m *store.QuantityModifier, o *store.ProductOverwrite) (uint, int) {
	if m != nil {
		quantity = quantity*m.Multiplier + m.Offset
	}
	if o != nil {
		productID = o.ReplacementID
	}
	return productID, quantity
}
