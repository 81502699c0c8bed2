package models

// Brand is a catalog taxonomy entry referenced from products by name. Like
// ProductType, names are unique immutable identifiers.
type Brand struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;not null;unique"`
}

// TableName keeps the historical table name.
func (Brand) TableName() string {
	return "brands"
}
