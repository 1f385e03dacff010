package shopware

import "github.com/shopspring/decimal"

// Customer is a customer entity with its addresses association.
type Customer struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Addresses []Address `json:"addresses"`
}

// Address is a customer or order address.
type Address struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Street     string `json:"street"`
	Zipcode    string `json:"zipcode"`
	City       string `json:"city"`
}

// Price is one currency price of a product.
type Price struct {
	CurrencyID string          `json:"currencyId"`
	Gross      decimal.Decimal `json:"gross"`
	Net        decimal.Decimal `json:"net"`
}

// Product is a product entity. Children are its variants; inherited fields of a
// variant are null.
type Product struct {
	ID            string    `json:"id"`
	ParentID      *string   `json:"parentId"`
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Active        *bool     `json:"active"`
	ProductNumber string    `json:"productNumber"`
	Price         []Price   `json:"price"`
	Children      []Product `json:"children"`
}

// GrossPrice returns the first listed gross price.
func (p Product) GrossPrice() decimal.NullDecimal {
	if len(p.Price) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(p.Price[0].Gross)
}

// OrderCustomer is the customer snapshot embedded in an order.
type OrderCustomer struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
}

// LineItem is one order line.
type LineItem struct {
	ID        string  `json:"id"`
	ProductID *string `json:"productId"`
	Label     string  `json:"label"`
	Quantity  int     `json:"quantity"`
}

// StateMachineState is an order's state association.
type StateMachineState struct {
	Name          string `json:"name"`
	TechnicalName string `json:"technicalName"`
}

// Order is an order entity with its associations.
type Order struct {
	ID                string             `json:"id"`
	OrderNumber       string             `json:"orderNumber"`
	OrderDateTime     string             `json:"orderDateTime"`
	OrderCustomer     *OrderCustomer     `json:"orderCustomer"`
	Addresses         []Address          `json:"addresses"`
	LineItems         []LineItem         `json:"lineItems"`
	StateMachineState *StateMachineState `json:"stateMachineState"`
}
