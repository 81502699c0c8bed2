package ledger

import (
	"context"

	"github.com/defterapp/defter-core/pkg/db/models"
	"github.com/defterapp/defter-core/pkg/enums"
	"github.com/defterapp/defter-core/pkg/pagination"
	"gorm.io/gorm"
)

// Entry is one row of a book statement: a charge line or a payment, merged
// into a single chronological feed. Amount carries the line total or the
// payment value depending on Kind.
type Entry struct {
	Kind   enums.EntryKind `gorm:"column:kind"`
	ID     int64           `gorm:"column:id"`
	Name   *string         `gorm:"column:name"`
	Date   string          `gorm:"column:date"`
	Amount int64           `gorm:"column:amount"`
}

// Totals are the sums reconciliation compares against the stored aggregates.
type Totals struct {
	LineTotal   int64
	PaymentSum  int64
	LineCount   int64
	PaymentRows int64
}

// Repository manages persistence for books, lines, payments and the
// aggregate columns they maintain.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	AccountExists(ctx context.Context, accountID int64) (bool, error)
	CreateBook(ctx context.Context, book *models.AccountBook) error
	FindBookByID(ctx context.Context, id int64) (*models.AccountBook, error)
	ListBooks(ctx context.Context, accountID int64) ([]models.AccountBook, error)
	CountBooks(ctx context.Context, accountID int64) (int64, error)
	RenameBook(ctx context.Context, id int64, name string) (int64, error)
	DeleteBook(ctx context.Context, id int64) (int64, error)
	DeleteAccount(ctx context.Context, accountID int64) (int64, error)

	CreateLine(ctx context.Context, line *models.AccountLine) error
	CreatePayment(ctx context.Context, payment *models.Payment) error

	BumpBookAggregates(ctx context.Context, bookID, debtDelta, balanceDelta int64) (int64, error)
	BumpAccountAggregates(ctx context.Context, accountID, debtDelta, balanceDelta int64) (int64, error)
	StampLastAction(ctx context.Context, accountID int64, action string) error

	Statement(ctx context.Context, bookID int64, after pagination.Cursor, limit int) ([]Entry, error)
	SumChildren(ctx context.Context, bookID int64) (Totals, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) AccountExists(ctx context.Context, accountID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreateBook(ctx context.Context, book *models.AccountBook) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *repository) FindBookByID(ctx context.Context, id int64) (*models.AccountBook, error) {
	var book models.AccountBook
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *repository) ListBooks(ctx context.Context, accountID int64) ([]models.AccountBook, error) {
	var books []models.AccountBook
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id ASC").
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) CountBooks(ctx context.Context, accountID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AccountBook{}).
		Where("account_id = ?", accountID).
		Count(&count).Error
	return count, err
}

func (r *repository) RenameBook(ctx context.Context, id int64, name string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AccountBook{}).
		Where("id = ?", id).
		Update("name", name)
	return result.RowsAffected, result.Error
}

func (r *repository) DeleteBook(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.AccountBook{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *repository) DeleteAccount(ctx context.Context, accountID int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Account{}, "id = ?", accountID)
	return result.RowsAffected, result.Error
}

func (r *repository) CreateLine(ctx context.Context, line *models.AccountLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// BumpBookAggregates shifts the stored aggregates by the given deltas as a
// single SQL expression so the update composes with other writers.
func (r *repository) BumpBookAggregates(ctx context.Context, bookID, debtDelta, balanceDelta int64) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		"UPDATE account_book SET debt = debt + ?, balance = balance + ? WHERE id = ?",
		debtDelta, balanceDelta, bookID,
	)
	return result.RowsAffected, result.Error
}

func (r *repository) BumpAccountAggregates(ctx context.Context, accountID, debtDelta, balanceDelta int64) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		"UPDATE accounts SET debt = debt + ?, balance = balance + ? WHERE id = ?",
		debtDelta, balanceDelta, accountID,
	)
	return result.RowsAffected, result.Error
}

func (r *repository) StampLastAction(ctx context.Context, accountID int64, action string) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("last_action", action).Error
}

const statementBaseQuery = `
	SELECT kind, kind_rank, id, name, date, amount FROM (
		SELECT 'line' AS kind, 0 AS kind_rank, id, name, date, total_price AS amount
		FROM account_line WHERE account_book_id = ?
		UNION ALL
		SELECT 'payment' AS kind, 1 AS kind_rank, id, name, date, payment AS amount
		FROM payments WHERE account_book_id = ?
	) entries`

// Statement pages the merged line/payment feed ordered by (date, kind, id);
// lines sort before payments on a full date tie because the two id sequences
// are not comparable.
func (r *repository) Statement(ctx context.Context, bookID int64, after pagination.Cursor, limit int) ([]Entry, error) {
	query := statementBaseQuery
	args := []any{bookID, bookID}

	if !after.IsZero() {
		rank := 0
		if after.Kind == enums.EntryKindPayment {
			rank = 1
		}
		query += `
	WHERE date > ? OR (date = ? AND (kind_rank > ? OR (kind_rank = ? AND id > ?)))`
		args = append(args, after.Date, after.Date, rank, rank, after.ID)
	}

	query += `
	ORDER BY date ASC, kind_rank ASC, id ASC
	LIMIT ?`
	args = append(args, limit)

	var entries []Entry
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) SumChildren(ctx context.Context, bookID int64) (Totals, error) {
	var totals Totals

	row := r.db.WithContext(ctx).Raw(
		"SELECT COALESCE(SUM(total_price), 0), COUNT(*) FROM account_line WHERE account_book_id = ?",
		bookID,
	).Row()
	if err := row.Scan(&totals.LineTotal, &totals.LineCount); err != nil {
		return Totals{}, err
	}

	row = r.db.WithContext(ctx).Raw(
		"SELECT COALESCE(SUM(payment), 0), COUNT(*) FROM payments WHERE account_book_id = ?",
		bookID,
	).Row()
	if err := row.Scan(&totals.PaymentSum, &totals.PaymentRows); err != nil {
		return Totals{}, err
	}

	return totals, nil
}
