package models

// Payment records a reduction of a book's debt. OldDebt and OldBalance are
// snapshots of the book aggregates immediately before this payment applied,
// kept so the record stays meaningful after later postings move the book.
type Payment struct {
	ID            int64   `gorm:"column:id;primaryKey;autoIncrement"`
	Name          *string `gorm:"column:name"`
	Payment       int64   `gorm:"column:payment;not null"`
	OldDebt       int64   `gorm:"column:old_debt;not null"`
	OldBalance    int64   `gorm:"column:old_balance;not null;default:0"`
	AccountBookID int64   `gorm:"column:account_book_id;not null"`
	Date          string  `gorm:"column:date;not null"`
}

// TableName keeps the historical table name.
func (Payment) TableName() string {
	return "payments"
}
