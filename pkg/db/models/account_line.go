package models

// AccountLine is one charge posted to a book. Lines are append-only audit
// records; TotalPrice is always derived from the other pricing columns at
// insert time and never patched afterwards.
//
// All monetary columns are minor currency units (cents/kuruş).
type AccountLine struct {
	ID            int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name          string `gorm:"column:name;not null"`
	AccountBookID int64  `gorm:"column:account_book_id;not null"`
	NetPrice      int64  `gorm:"column:net_price;not null"`
	Amount        int64  `gorm:"column:amount;not null"`
	Price         int64  `gorm:"column:price;not null"`
	Tax           int64  `gorm:"column:tax;not null;default:20"`
	Discount      int64  `gorm:"column:discount;not null;default:0"`
	TotalPrice    int64  `gorm:"column:total_price;not null"`
	Date          string `gorm:"column:date;not null"`
}

// TableName keeps the historical singular table name.
func (AccountLine) TableName() string {
	return "account_line"
}
