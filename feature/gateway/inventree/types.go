package inventree

import "github.com/shopspring/decimal"

// Resources used by the reconciliation engine.
const (
	ResourceCompany        = "company"
	ResourceCompanyAddress = "company/address"
	ResourcePart           = "part"
	ResourceSalesOrder     = "order/so"
	ResourceSalesOrderLine = "order/so-line"
	ResourceShipment       = "order/so/shipment"
	ResourceStock          = "stock"
)

// Sales order verbs.
const (
	VerbIssue    = "issue"
	VerbComplete = "complete"
	VerbAllocate = "allocate"
	VerbShip     = "ship"
)

// SalesOrder is the status view of a sales order.
type SalesOrder struct {
	PK         int    `json:"pk"`
	Reference  string `json:"reference"`
	Status     int    `json:"status"`
	StatusText string `json:"status_text"`
}

// SalesOrderLine is one line of a sales order.
type SalesOrderLine struct {
	PK       int             `json:"pk"`
	Order    int             `json:"order"`
	Part     int             `json:"part"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Shipment is a sales order shipment.
type Shipment struct {
	PK           int     `json:"pk"`
	Order        int     `json:"order"`
	ShipmentDate *string `json:"shipment_date"`
}

// StockItem is an available stock item of a part.
type StockItem struct {
	PK       int             `json:"pk"`
	Part     int             `json:"part"`
	Quantity decimal.Decimal `json:"quantity"`
}
