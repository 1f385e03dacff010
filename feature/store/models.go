package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mirror holds the identity and presence flags shared by every mirrored entity.
// InTarget implies TargetID is set; both are written together by LinkTarget.
type Mirror struct {
	SourceID *string `gorm:"column:source_id;size:64;uniqueIndex" json:"source_id"`
	TargetID *string `gorm:"column:target_id;size:64;uniqueIndex" json:"target_id"`
	InSource bool    `gorm:"column:in_source;not null;index" json:"in_source"`
	InTarget bool    `gorm:"column:in_target;not null" json:"in_target"`
	// Updated is the transient seen flag of the current sweep.
	Updated bool `gorm:"column:updated;not null" json:"-"`
}

// Customer maps to an InvenTree company.
type Customer struct {
	ID uint `gorm:"primaryKey" json:"id"`
	Mirror
	FirstName string    `gorm:"size:255;index:idx_customer_identity" json:"first_name"`
	LastName  string    `gorm:"size:255;index:idx_customer_identity" json:"last_name"`
	Email     string    `gorm:"size:255;index:idx_customer_identity" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Address belongs to a Customer and maps to an InvenTree company address.
type Address struct {
	ID uint `gorm:"primaryKey" json:"id"`
	Mirror
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	FirstName  string    `gorm:"size:255" json:"first_name"`
	LastName   string    `gorm:"size:255" json:"last_name"`
	Street     string    `gorm:"size:255" json:"street"`
	Zipcode    string    `gorm:"size:32" json:"zipcode"`
	City       string    `gorm:"size:255" json:"city"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Product maps to an InvenTree part. Variants are stored as products of their own.
type Product struct {
	ID uint `gorm:"primaryKey" json:"id"`
	Mirror
	Name          string              `gorm:"size:255" json:"name"`
	Description   string              `gorm:"type:text" json:"description"`
	Active        bool                `gorm:"not null" json:"active"`
	ProductNumber string              `gorm:"size:64;index" json:"product_number"`
	Price         decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"price"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Order maps to an InvenTree sales order.
type Order struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	SourceID          *string   `gorm:"column:source_id;size:64;uniqueIndex" json:"source_id"`
	TargetID          *string   `gorm:"column:target_id;size:64;uniqueIndex" json:"target_id"`
	InSource          bool      `gorm:"column:in_source;not null" json:"in_source"`
	InTarget          bool      `gorm:"column:in_target;not null;index" json:"in_target"`
	SourceOrderNumber string    `gorm:"size:64" json:"source_order_number"`
	CreationDate      string    `gorm:"size:40" json:"creation_date"`
	CustomerID        uint      `gorm:"not null;index" json:"customer_id"`
	AddressID         uint      `gorm:"not null;index" json:"address_id"`
	SourceState       string    `gorm:"size:64" json:"source_state"`
	TargetState       *string   `gorm:"size:64" json:"target_state"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// OrderLine is one line of an Order after quantity rules were applied.
type OrderLine struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	OrderID   uint `gorm:"not null;index" json:"order_id"`
	ProductID uint `gorm:"not null;index" json:"product_id"`
	Quantity  int  `gorm:"not null" json:"quantity"`
	// TargetID is the pk of the Target sales order line, nil until it was created.
	TargetID *string `gorm:"column:target_id;size:64" json:"target_id"`
}

// QuantityModifier rewrites ordered quantities of one product as q*Multiplier + Offset.
type QuantityModifier struct {
	ProductID  uint `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	Multiplier int  `gorm:"not null" json:"multiplier"`
	Offset     int  `gorm:"column:quantity_offset;not null" json:"offset"`
}

// ProductOverwrite substitutes the ordered product by another one.
type ProductOverwrite struct {
	ProductID     uint `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	ReplacementID uint `gorm:"not null" json:"replacement_id"`
}

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&Customer{},
		&Address{},
		&Product{},
		&Order{},
		&OrderLine{},
		&QuantityModifier{},
		&ProductOverwrite{},
	}
}
