package models

// AccountBook is one ledger folder under an account. Debt and Balance are
// aggregates over the book's lines and payments.
type AccountBook struct {
	ID        int64         `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string        `gorm:"column:name;not null"`
	AccountID int64         `gorm:"column:account_id;not null"`
	Debt      int64         `gorm:"column:debt;not null;default:0"`
	Balance   int64         `gorm:"column:balance;not null;default:0"`
	Lines     []AccountLine `gorm:"foreignKey:AccountBookID;constraint:OnDelete:CASCADE"`
	Payments  []Payment     `gorm:"foreignKey:AccountBookID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the historical singular table name.
func (AccountBook) TableName() string {
	return "account_book"
}
