package facade

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/defterapp/defter-core/internal/accounts"
	"github.com/defterapp/defter-core/internal/catalog"
	"github.com/defterapp/defter-core/internal/ledger"
	"github.com/defterapp/defter-core/pkg/config"
	"github.com/defterapp/defter-core/pkg/db"
	"github.com/defterapp/defter-core/pkg/db/models"
	pkgerrors "github.com/defterapp/defter-core/pkg/errors"
	"github.com/defterapp/defter-core/pkg/logger"
	"github.com/defterapp/defter-core/pkg/metrics"
	"github.com/defterapp/defter-core/pkg/migrate"
	"github.com/defterapp/defter-core/pkg/pagination"
)

// Store is the single entry point to the ledger database: it owns the
// connection, runs migrations on open, and exposes the account, ledger and
// catalog operations as a typed command surface.
type Store struct {
	cfg      *config.Config
	logg     *logger.Logger
	client   *db.Client
	validate *validator.Validate
	metrics  *metrics.CommandMetrics

	accounts accounts.Service
	catalog  catalog.Service
	ledger   ledger.Service

	ready chan struct{}
}

// Open connects to the database file, applies pending migrations and wires
// the stores. A migration failure is fatal; the store never serves against a
// half-migrated schema. The registerer may be nil to disable metrics.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg prometheus.Registerer) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "opening database")
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		_ = client.Close()
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "acquiring sql handle")
	}
	if err := migrate.Up(ctx, sqlDB); err != nil {
		_ = client.Close()
		return nil, pkgerrors.Wrap(pkgerrors.CodeSchema, err, "applying migrations")
	}

	accountsSvc, err := accounts.NewService(accounts.NewRepository(client.DB()))
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	catalogSvc, err := catalog.NewService(client, catalog.NewRepository(client.DB()))
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	ledgerSvc, err := ledger.NewService(client, ledger.NewRepository(client.DB()), cfg.Ledger)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	store := &Store{
		cfg:      cfg,
		logg:     logg,
		client:   client,
		validate: validator.New(),
		metrics:  metrics.NewCommandMetrics(reg),
		accounts: accountsSvc,
		catalog:  catalogSvc,
		ledger:   ledgerSvc,
		ready:    make(chan struct{}),
	}

	close(store.ready)
	logg.Info(ctx, "store ready")
	return store, nil
}

// Ready is closed once migrations have applied and the store accepts
// commands.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Ping verifies the database file is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close releases the database connections.
func (s *Store) Close() error {
	var errs error
	errs = multierr.Append(errs, s.client.Close())
	return errs
}

// observe tags the context with a fresh command id and returns the completion
// callback that records duration and outcome.
func (s *Store) observe(ctx context.Context, command string) (context.Context, func(err error)) {
	ctx = s.logg.WithCommandID(ctx, uuid.NewString())
	start := time.Now()
	return ctx, func(err error) {
		s.metrics.ObserveDuration(command, time.Since(start))
		if err != nil {
			code := string(pkgerrors.CodeInternal)
			if typed := pkgerrors.As(err); typed != nil {
				code = string(typed.Code())
			}
			s.metrics.IncFailure(command, code)
			s.logg.Error(ctx, command+" failed", err)
			return
		}
		s.metrics.IncSuccess(command)
	}
}

func (s *Store) validateCommand(cmd any) error {
	if err := s.validate.Struct(cmd); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid command input")
	}
	return nil
}

// --- accounts ---

func (s *Store) CreateAccount(ctx context.Context, cmd CreateAccountCommand) (account *models.Account, err error) {
	ctx, done := s.observe(ctx, "create_account")
	defer func() { done(err) }()

	if err = s.validateCommand(cmd); err != nil {
		return nil, err
	}
	account, err = s.accounts.Create(ctx, accounts.CreateAccountInput{
		Name:        cmd.Name,
		Email:       cmd.Email,
		Phone:       cmd.Phone,
		Address:     cmd.Address,
		AccountType: cmd.AccountType,
	})
	return account, err
}

func (s *Store) GetAccount(ctx context.Context, id int64) (account *models.Account, err error) {
	ctx, done := s.observe(ctx, "get_account")
	defer func() { done(err) }()

	account, err = s.accounts.Get(s.logg.WithAccountID(ctx, id), id)
	return account, err
}

func (s *Store) ListAccounts(ctx context.Context, accountType string) (list []models.Account, err error) {
	ctx, done := s.observe(ctx, "list_accounts")
	defer func() { done(err) }()

	list, err = s.accounts.List(ctx, accountType)
	return list, err
}

func (s *Store) ListAccountSummaries(ctx context.Context, accountType string) (list []accounts.Summary, err error) {
	ctx, done := s.observe(ctx, "list_account_summaries")
	defer func() { done(err) }()

	list, err = s.accounts.ListSummaries(ctx, accountType)
	return list, err
}

func (s *Store) UpdateContact(ctx context.Context, cmd UpdateContactCommand) (err error) {
	ctx, done := s.observe(ctx, "update_contact")
	defer func() { done(err) }()

	if err = s.validateCommand(cmd); err != nil {
		return err
	}
	err = s.accounts.UpdateContact(s.logg.WithAccountID(ctx, cmd.AccountID), accounts.UpdateContactInput{
		ID:      cmd.AccountID,
		Name:    cmd.Name,
		Email:   cmd.Email,
		Phone:   cmd.Phone,
		Address: cmd.Address,
	})
	return err
}

func (s *Store) UpdateLastAction(ctx context.Context, cmd UpdateLastActionCommand) (err error) {
	ctx, done := s.observe(ctx, "update_last_action")
	defer func() { done(err) }()

	if err = s.validateCommand(cmd); err != nil {
		return err
	}
	err = s.accounts.UpdateLastAction(s.logg.WithAccountID(ctx, cmd.AccountID), cmd.AccountID, cmd.Action)
	return err
}

func (s *Store) DeleteAccount(ctx context.Context, accountID int64) (err error) {
	ctx, done := s.observe(ctx, "delete_account")
	defer func() { done(err) }()

	err = s.ledger.DeleteAccount(s.logg.WithAccountID(ctx, accountID), accountID)
	return err
}

// --- ledger ---

func (s *Store) CreateBook(ctx context.Context, cmd CreateBookCommand) (book *models.AccountBook, err error) {
	ctx, done := s.observe(ctx, "create_book")
	defer func() { done(err) }()

	if err = s.validateCommand(cmd); err != nil {
		return nil, err
	}
	book, err = s.ledger.CreateBook(s.logg.WithAccountID(ctx, cmd.AccountID), cmd.AccountID, cmd.Name)
	return book, err
}

func (s *Store) RenameBook(ctx context.Context, cmd RenameBookCommand) (err error) {
	ctx, done := s.observe(ctx, "rename_book")
	defer func() { done(err) }()

	if err = s.validateCommand(cmd); err != nil {
		return err
	}
	err = s.ledger.RenameBook(s.logg.WithBookID(ctx, cmd.BookID), cmd.BookID, cmd.Name)
	return err
}

func (s *Store) ListBooks(ctx context.Context, accountID int64) (books []models.AccountBook, err error) {
	ctx, done := s.observe(ctx, "list_books")
	defer func() { done(err) }()

	books, err = s.ledger.ListBooks(s.logg.WithAccountID(ctx, accountID), accountID)
	return books, err
}

func (s *Store) GetBook(ctx context.Context, bookID int64) (book *models.AccountBook, err error) {
	ctx, done := s.observe(ctx, "get_book")
	defer func() { done(err) }()

	book, err = s.ledger.GetBook(s.logg.WithBookID(ctx, bookID), bookID)
	return book, err
}

func (s *Store) DeleteBook(ctx context.Context, bookID int64) (err error) {
	ctx, done := s.observe(ctx, "delete_book")
	defer func() { done(err) }()

	err = s.ledger.DeleteBook(s.logg.WithBookID(ctx, bookID), bookID)
	return err
}

func (s *Store) PostLine(ctx context.Context, cmd PostLineCommand) (line *models.AccountLine, err error) {
	ctx, done := s.observe(ctx, "post_line")
	defer func() { done(err) }()

	if err = s.validateCommand(cmd); err != nil {
		return nil, err
	}
	line, err = s.ledger.PostLine(s.logg.WithBookID(ctx, cmd.BookID), ledger.PostLineInput{
		BookID:   cmd.BookID,
		Name:     cmd.Name,
		NetPrice: cmd.NetPrice,
		Amount:   cmd.Amount,
		Tax:      cmd.Tax,
		Discount: cmd.Discount,
		Date:     cmd.Date,
	})
	return line, err
}

func (s *Store) PostPayment(ctx context.Context, cmd PostPaymentCommand) (payment *models.Payment, err error) {
	ctx, done := s.observe(ctx, "post_payment")
	defer func() { done(err) }()

	if err = s.validateCommand(cmd); err != nil {
		return nil, err
	}
	payment, err = s.ledger.PostPayment(s.logg.WithBookID(ctx, cmd.BookID), ledger.PostPaymentInput{
		BookID: cmd.BookID,
		Name:   cmd.Name,
		Amount: cmd.Amount,
		Date:   cmd.Date,
	})
	return payment, err
}

func (s *Store) Statement(ctx context.Context, query StatementQuery) (page *ledger.StatementPage, err error) {
	ctx, done := s.observe(ctx, "statement")
	defer func() { done(err) }()

	if err = s.validateCommand(query); err != nil {
		return nil, err
	}
	page, err = s.ledger.Statement(s.logg.WithBookID(ctx, query.BookID), query.BookID, pagination.Params{
		Limit:  query.Limit,
		Cursor: query.Cursor,
	})
	return page, err
}

func (s *Store) Reconcile(ctx context.Context, bookID int64) (report *ledger.ReconcileReport, err error) {
	ctx, done := s.observe(ctx, "reconcile")
	defer func() { done(err) }()

	report, err = s.ledger.Reconcile(s.logg.WithBookID(ctx, bookID), bookID)
	return report, err
}

// --- catalog ---

func (s *Store) CreateType(ctx context.Context, name string) (productType *models.ProductType, err error) {
	ctx, done := s.observe(ctx, "create_type")
	defer func() { done(err) }()

	productType, err = s.catalog.CreateType(ctx, name)
	return productType, err
}

func (s *Store) CreateBrand(ctx context.Context, name string) (brand *models.Brand, err error) {
	ctx, done := s.observe(ctx, "create_brand")
	defer func() { done(err) }()

	brand, err = s.catalog.CreateBrand(ctx, name)
	return brand, err
}

func (s *Store) SearchTypes(ctx context.Context, query string) (types []models.ProductType, err error) {
	ctx, done := s.observe(ctx, "search_types")
	defer func() { done(err) }()

	types, err = s.catalog.SearchTypes(ctx, query)
	return types, err
}

func (s *Store) SearchBrands(ctx context.Context, query string) (brands []models.Brand, err error) {
	ctx, done := s.observe(ctx, "search_brands")
	defer func() { done(err) }()

	brands, err = s.catalog.SearchBrands(ctx, query)
	return brands, err
}

func (s *Store) CreateProduct(ctx context.Context, cmd CreateProductCommand) (product *models.Product, err error) {
	ctx, done := s.observe(ctx, "create_product")
	defer func() { done(err) }()

	if err = s.validateCommand(cmd); err != nil {
		return nil, err
	}
	product, err = s.catalog.CreateProduct(ctx, catalog.CreateProductInput{
		Name:        cmd.Name,
		Type:        cmd.Type,
		ProductCode: cmd.ProductCode,
		Brand:       cmd.Brand,
		Supplier:    cmd.Supplier,
		Barcode:     cmd.Barcode,
		Count:       cmd.Count,
		Cost:        cmd.Cost,
	})
	return product, err
}

func (s *Store) GetProduct(ctx context.Context, id int64) (product *models.Product, err error) {
	ctx, done := s.observe(ctx, "get_product")
	defer func() { done(err) }()

	product, err = s.catalog.GetProduct(s.logg.WithProductID(ctx, id), id)
	return product, err
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) (err error) {
	ctx, done := s.observe(ctx, "delete_product")
	defer func() { done(err) }()

	err = s.catalog.DeleteProduct(s.logg.WithProductID(ctx, id), id)
	return err
}

func (s *Store) AdjustInventory(ctx context.Context, cmd AdjustInventoryCommand) (count int64, err error) {
	ctx, done := s.observe(ctx, "adjust_inventory")
	defer func() { done(err) }()

	if err = s.validateCommand(cmd); err != nil {
		return 0, err
	}
	count, err = s.catalog.AdjustInventory(s.logg.WithProductID(ctx, cmd.ProductID), cmd.ProductID, cmd.Delta)
	return count, err
}

func (s *Store) SearchProducts(ctx context.Context, filter catalog.SearchFilter) (products []models.Product, err error) {
	ctx, done := s.observe(ctx, "search_products")
	defer func() { done(err) }()

	products, err = s.catalog.SearchProducts(ctx, filter)
	return products, err
}
