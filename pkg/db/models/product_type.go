package models

// ProductType is a catalog taxonomy entry. Names are unique and act as the
// join key from products, which makes them immutable identifiers: there is no
// rename path.
type ProductType struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;not null;unique"`
}

// TableName keeps the historical table name.
func (ProductType) TableName() string {
	return "types"
}
