package enums

import "fmt"

// ProductOrder names the columns product searches may sort by. Anything else
// never reaches SQL text.
type ProductOrder string

const (
	ProductOrderID       ProductOrder = "id"
	ProductOrderName     ProductOrder = "name"
	ProductOrderBrand    ProductOrder = "brand"
	ProductOrderType     ProductOrder = "type"
	ProductOrderSupplier ProductOrder = "supplier"
	ProductOrderCount    ProductOrder = "count"
	ProductOrderCost     ProductOrder = "cost"
	ProductOrderBarcode  ProductOrder = "barcode"
)

var validProductOrders = []ProductOrder{
	ProductOrderID,
	ProductOrderName,
	ProductOrderBrand,
	ProductOrderType,
	ProductOrderSupplier,
	ProductOrderCount,
	ProductOrderCost,
	ProductOrderBarcode,
}

// String implements fmt.Stringer.
func (o ProductOrder) String() string {
	return string(o)
}

// IsValid reports whether the value is a known ProductOrder.
func (o ProductOrder) IsValid() bool {
	for _, candidate := range validProductOrders {
		if candidate == o {
			return true
		}
	}
	return false
}

// Column returns the SQL column for the order, defaulting to id.
func (o ProductOrder) Column() string {
	if o.IsValid() {
		return string(o)
	}
	return string(ProductOrderID)
}

// ParseProductOrder converts raw input into a ProductOrder.
func ParseProductOrder(value string) (ProductOrder, error) {
	for _, candidate := range validProductOrders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product order column %q", value)
}

// SortDirection constrains ORDER BY directions.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Keyword returns the SQL keyword for the direction, defaulting to DESC to
// match the original listing behavior (newest stock first).
func (d SortDirection) Keyword() string {
	if d == SortAsc {
		return "ASC"
	}
	return "DESC"
}
