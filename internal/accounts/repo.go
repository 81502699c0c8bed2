package accounts

import (
	"context"

	"github.com/defterapp/defter-core/pkg/db/models"
	"github.com/defterapp/defter-core/pkg/enums"
	"gorm.io/gorm"
)

// Summary is the compact listing projection used for account overviews: the
// identity plus the cached aggregates, without contact details.
type Summary struct {
	ID         int64   `gorm:"column:id"`
	Name       string  `gorm:"column:name"`
	Debt       int64   `gorm:"column:debt"`
	Balance    int64   `gorm:"column:balance"`
	LastAction *string `gorm:"column:last_action"`
}

// Repository manages persistence for accounts. Aggregate columns (debt,
// balance) are deliberately absent from every update path here; the ledger
// engine owns them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	List(ctx context.Context, accountType enums.AccountType) ([]models.Account, error)
	ListSummaries(ctx context.Context, accountType enums.AccountType) ([]Summary, error)
	UpdateContact(ctx context.Context, id int64, name string, email, phone, address *string) (int64, error)
	UpdateLastAction(ctx context.Context, id int64, action string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an account repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) List(ctx context.Context, accountType enums.AccountType) ([]models.Account, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if accountType != "" {
		query = query.Where("account_type = ?", accountType)
	}
	var accounts []models.Account
	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) ListSummaries(ctx context.Context, accountType enums.AccountType) ([]Summary, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Select("id, name, debt, balance, last_action").
		Order("id ASC")
	if accountType != "" {
		query = query.Where("account_type = ?", accountType)
	}
	var summaries []Summary
	if err := query.Find(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *repository) UpdateContact(ctx context.Context, id int64, name string, email, phone, address *string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":    name,
			"email":   email,
			"phone":   phone,
			"address": address,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) UpdateLastAction(ctx context.Context, id int64, action string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("last_action", action)
	return result.RowsAffected, result.Error
}
