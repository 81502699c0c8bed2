package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/defterapp/defter-core/pkg/config"
	"github.com/defterapp/defter-core/pkg/db"
	"github.com/defterapp/defter-core/pkg/db/models"
	pkgerrors "github.com/defterapp/defter-core/pkg/errors"
	"github.com/defterapp/defter-core/pkg/pagination"
	"gorm.io/gorm"
)

// Service is the ledger engine. It owns every write to the debt and balance
// aggregates on books and accounts; the account and catalog stores never
// touch them.
type Service interface {
	CreateBook(ctx context.Context, accountID int64, name string) (*models.AccountBook, error)
	RenameBook(ctx context.Context, bookID int64, name string) error
	ListBooks(ctx context.Context, accountID int64) ([]models.AccountBook, error)
	GetBook(ctx context.Context, bookID int64) (*models.AccountBook, error)
	DeleteBook(ctx context.Context, bookID int64) error
	PostLine(ctx context.Context, input PostLineInput) (*models.AccountLine, error)
	PostPayment(ctx context.Context, input PostPaymentInput) (*models.Payment, error)
	Statement(ctx context.Context, bookID int64, params pagination.Params) (*StatementPage, error)
	Reconcile(ctx context.Context, bookID int64) (*ReconcileReport, error)
	DeleteAccount(ctx context.Context, accountID int64) error
}

// PostLineInput describes a charge to post against a book. Tax defaults to
// the configured percentage when nil.
type PostLineInput struct {
	BookID   int64
	Name     string
	NetPrice int64
	Amount   int64
	Tax      *int64
	Discount int64
	Date     string
}

// PostPaymentInput describes a payment against a book's debt.
type PostPaymentInput struct {
	BookID int64
	Name   *string
	Amount int64
	Date   string
}

// StatementPage is one page of a book statement plus the cursor for the next
// page; NextCursor is empty on the last page.
type StatementPage struct {
	Entries    []Entry
	NextCursor string
}

// ReconcileReport compares the stored book aggregates against sums recomputed
// from the book's children.
type ReconcileReport struct {
	BookID          int64
	StoredDebt      int64
	StoredBalance   int64
	ComputedDebt    int64
	ComputedBalance int64
	LineCount       int64
	PaymentCount    int64
}

// Consistent reports whether the stored aggregates match the recomputed ones.
func (r *ReconcileReport) Consistent() bool {
	return r.StoredDebt == r.ComputedDebt && r.StoredBalance == r.ComputedBalance
}

type service struct {
	client *db.Client
	repo   Repository
	cfg    config.LedgerConfig
}

// NewService wires the ledger engine with the provided db client, repository
// and ledger policy configuration.
func NewService(client *db.Client, repo Repository, cfg config.LedgerConfig) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{client: client, repo: repo, cfg: cfg}, nil
}

// CreateBook opens a new book under the account. A blank name picks the next
// ordinal name for the account, "Ledger book N".
func (s *service) CreateBook(ctx context.Context, accountID int64, name string) (*models.AccountBook, error) {
	if accountID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	name = strings.TrimSpace(name)

	var book *models.AccountBook
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		exists, err := repo.AccountExists(ctx, accountID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking account")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("account %d not found", accountID))
		}

		if name == "" {
			count, err := repo.CountBooks(ctx, accountID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting books")
			}
			name = fmt.Sprintf("Ledger book %d", count+1)
		}

		book = &models.AccountBook{Name: name, AccountID: accountID}
		if err := repo.CreateBook(ctx, book); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating book")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *service) RenameBook(ctx context.Context, bookID int64, name string) error {
	if bookID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "book name is required")
	}

	affected, err := s.repo.RenameBook(ctx, bookID, name)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "renaming book")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("book %d not found", bookID))
	}
	return nil
}

func (s *service) ListBooks(ctx context.Context, accountID int64) ([]models.AccountBook, error) {
	if accountID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	books, err := s.repo.ListBooks(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing books")
	}
	return books, nil
}

func (s *service) GetBook(ctx context.Context, bookID int64) (*models.AccountBook, error) {
	if bookID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	book, err := s.repo.FindBookByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("book %d not found", bookID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading book")
	}
	return book, nil
}

// DeleteBook removes the book and its children; the cascade carries lines and
// payments, and the owning account's aggregates shed the book's share in the
// same transaction.
func (s *service) DeleteBook(ctx context.Context, bookID int64) error {
	if bookID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		book, err := repo.FindBookByID(ctx, bookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("book %d not found", bookID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading book")
		}

		if _, err := repo.DeleteBook(ctx, bookID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting book")
		}

		if _, err := repo.BumpAccountAggregates(ctx, book.AccountID, -book.Debt, -book.Balance); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating account aggregates")
		}
		return nil
	})
}

func (s *service) PostLine(ctx context.Context, input PostLineInput) (*models.AccountLine, error) {
	if input.BookID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line name is required")
	}
	date := strings.TrimSpace(input.Date)
	if date == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}

	tax := s.cfg.DefaultTaxPercent
	if input.Tax != nil {
		tax = *input.Tax
	}

	pricing, err := ComputePricing(input.NetPrice, input.Amount, tax, input.Discount)
	if err != nil {
		return nil, err
	}

	line := &models.AccountLine{
		Name:          name,
		AccountBookID: input.BookID,
		NetPrice:      input.NetPrice,
		Amount:        input.Amount,
		Price:         pricing.UnitGross,
		Tax:           tax,
		Discount:      input.Discount,
		TotalPrice:    pricing.Total,
		Date:          date,
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		book, err := repo.FindBookByID(ctx, input.BookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("book %d not found", input.BookID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading book")
		}

		if err := repo.CreateLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "inserting line")
		}
		if _, err := repo.BumpBookAggregates(ctx, book.ID, pricing.Total, 0); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating book aggregates")
		}
		if _, err := repo.BumpAccountAggregates(ctx, book.AccountID, pricing.Total, 0); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating account aggregates")
		}
		if err := repo.StampLastAction(ctx, book.AccountID, date); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stamping last action")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// PostPayment records a payment against the book. The payment row snapshots
// the book aggregates as they stood before this payment applied.
func (s *service) PostPayment(ctx context.Context, input PostPaymentInput) (*models.Payment, error) {
	if input.BookID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	date := strings.TrimSpace(input.Date)
	if date == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}

	var payment *models.Payment
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		book, err := repo.FindBookByID(ctx, input.BookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("book %d not found", input.BookID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading book")
		}

		if !s.cfg.AllowOverpayment && input.Amount > book.Debt {
			return pkgerrors.New(pkgerrors.CodeIntegrity,
				fmt.Sprintf("payment %d exceeds book debt %d", input.Amount, book.Debt))
		}

		payment = &models.Payment{
			Name:          input.Name,
			Payment:       input.Amount,
			OldDebt:       book.Debt,
			OldBalance:    book.Balance,
			AccountBookID: book.ID,
			Date:          date,
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "inserting payment")
		}
		if _, err := repo.BumpBookAggregates(ctx, book.ID, -input.Amount, input.Amount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating book aggregates")
		}
		if _, err := repo.BumpAccountAggregates(ctx, book.AccountID, -input.Amount, input.Amount); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating account aggregates")
		}
		if err := repo.StampLastAction(ctx, book.AccountID, date); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stamping last action")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) Statement(ctx context.Context, bookID int64, params pagination.Params) (*StatementPage, error) {
	if bookID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id is required")
	}

	cursor, err := pagination.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	if _, err := s.GetBook(ctx, bookID); err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	entries, err := s.repo.Statement(ctx, bookID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading statement")
	}

	page := &StatementPage{Entries: entries}
	if len(entries) > limit {
		page.Entries = entries[:limit]
		last := page.Entries[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			Date: last.Date,
			Kind: last.Kind,
			ID:   last.ID,
		})
	}
	return page, nil
}

// Reconcile recomputes the book's debt and balance from its children and
// reports them alongside the stored aggregates. It never repairs; the report
// is a read-only diagnostic.
func (s *service) Reconcile(ctx context.Context, bookID int64) (*ReconcileReport, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.SumChildren(ctx, bookID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing book children")
	}

	return &ReconcileReport{
		BookID:          book.ID,
		StoredDebt:      book.Debt,
		StoredBalance:   book.Balance,
		ComputedDebt:    totals.LineTotal - totals.PaymentSum,
		ComputedBalance: totals.PaymentSum,
		LineCount:       totals.LineCount,
		PaymentCount:    totals.PaymentRows,
	}, nil
}

// DeleteAccount removes the account and everything under it in one
// transaction; the FK cascade carries books, lines and payments.
func (s *service) DeleteAccount(ctx context.Context, accountID int64) error {
	if accountID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.DeleteAccount(ctx, accountID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting account")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("account %d not found", accountID))
		}
		return nil
	})
}
