package models

// Product is a catalog item with an inventory count. Type and Brand reference
// the taxonomy tables by name; there is deliberately no foreign key into the
// ledger tables, product identity and line identity evolve independently.
type Product struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string  `gorm:"column:name;not null"`
	Type        *string `gorm:"column:type"`
	ProductCode *string `gorm:"column:product_code"`
	Brand       string  `gorm:"column:brand;not null"`
	Supplier    *string `gorm:"column:supplier"`
	Barcode     *string `gorm:"column:barcode"`
	Count       int64   `gorm:"column:count;not null;default:0"`
	Cost        int64   `gorm:"column:cost;not null;default:0"`
}

// TableName keeps the historical table name.
func (Product) TableName() string {
	return "products"
}
