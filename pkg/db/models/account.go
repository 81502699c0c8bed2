package models

import (
	"time"

	"github.com/defterapp/defter-core/pkg/enums"
)

// Account is a customer or supplier party. Debt and Balance are aggregate
// caches over the account's books; only the ledger engine writes them.
type Account struct {
	ID          int64             `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string            `gorm:"column:name;not null"`
	Email       *string           `gorm:"column:email"`
	Phone       *string           `gorm:"column:phone"`
	Address     *string           `gorm:"column:address"`
	Debt        int64             `gorm:"column:debt;not null;default:0"`
	Balance     int64             `gorm:"column:balance;not null;default:0"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	LastAction  *string           `gorm:"column:last_action"`
	AccountType enums.AccountType `gorm:"column:account_type;not null;default:customer"`
	Books       []AccountBook     `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the historical table name.
func (Account) TableName() string {
	return "accounts"
}
