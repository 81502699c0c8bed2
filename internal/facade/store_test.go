package facade

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/defterapp/defter-core/pkg/config"
	pkgerrors "github.com/defterapp/defter-core/pkg/errors"
	"github.com/defterapp/defter-core/pkg/logger"
)

func openTestStore(t *testing.T) (*Store, *prometheus.Registry) {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev, LogLevel: "error"},
		DB: config.DBConfig{
			Path:         filepath.Join(t.TempDir(), "base.db"),
			BusyTimeout:  time.Second,
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Ledger: config.LedgerConfig{AllowOverpayment: true, DefaultTaxPercent: 20},
	}
	logg := logger.New(logger.Options{
		ServiceName: "store-test",
		Level:       zerolog.ErrorLevel,
		Output:      io.Discard,
	})
	registry := prometheus.NewRegistry()

	store, err := Open(context.Background(), cfg, logg, registry)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store, registry
}

func TestOpenSignalsReady(t *testing.T) {
	store, _ := openTestStore(t)

	select {
	case <-store.Ready():
	default:
		t.Fatal("expected ready channel to be closed after open")
	}

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestCommandValidationRunsBeforeDispatch(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateAccount(ctx, CreateAccountCommand{}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	bad := "not-an-email"
	if _, err := store.CreateAccount(ctx, CreateAccountCommand{Name: "Acme", Email: &bad}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for email, got %v", err)
	}

	if _, err := store.PostLine(ctx, PostLineCommand{BookID: 1, Name: "x", Amount: 1, Discount: 150, Date: "2026-01-01"}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for discount, got %v", err)
	}

	if _, err := store.AdjustInventory(ctx, AdjustInventoryCommand{ProductID: 1}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero delta, got %v", err)
	}
}

func TestLedgerFlowThroughStore(t *testing.T) {
	store, registry := openTestStore(t)
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, CreateAccountCommand{Name: "Acme"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	book, err := store.CreateBook(ctx, CreateBookCommand{AccountID: account.ID, Name: "Jan"})
	if err != nil {
		t.Fatalf("create book: %v", err)
	}

	line, err := store.PostLine(ctx, PostLineCommand{
		BookID:   book.ID,
		Name:     "Widgets",
		NetPrice: 100,
		Amount:   2,
		Date:     "2026-01-10",
	})
	if err != nil {
		t.Fatalf("post line: %v", err)
	}
	if line.TotalPrice != 240 {
		t.Fatalf("expected total 240, got %d", line.TotalPrice)
	}

	payment, err := store.PostPayment(ctx, PostPaymentCommand{BookID: book.ID, Amount: 100, Date: "2026-01-20"})
	if err != nil {
		t.Fatalf("post payment: %v", err)
	}
	if payment.OldDebt != 240 {
		t.Fatalf("expected old debt snapshot 240, got %d", payment.OldDebt)
	}

	book, err = store.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if book.Debt != 140 || book.Balance != 100 {
		t.Fatalf("unexpected book aggregates: debt=%d balance=%d", book.Debt, book.Balance)
	}

	page, err := store.Statement(ctx, StatementQuery{BookID: book.ID})
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(page.Entries) != 2 {
		t.Fatalf("expected 2 statement entries, got %d", len(page.Entries))
	}

	report, err := store.Reconcile(ctx, book.ID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !report.Consistent() {
		t.Fatalf("expected consistent book, got %+v", report)
	}

	if err := store.DeleteAccount(ctx, account.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if _, err := store.GetBook(ctx, book.ID); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected cascade to remove the book, got %v", err)
	}

	// Command metrics landed on the registry.
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}
	for _, want := range []string{"store_command_duration_seconds", "store_command_success", "store_command_failure"} {
		if !names[want] {
			t.Fatalf("expected metric family %s, families: %v", want, names)
		}
	}
}

func TestUpdateLastActionThroughStore(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, CreateAccountCommand{Name: "Acme"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	if err := store.UpdateLastAction(ctx, UpdateLastActionCommand{AccountID: account.ID, Action: "2026-02-01"}); err != nil {
		t.Fatalf("update last action: %v", err)
	}

	summaries, err := store.ListAccountSummaries(ctx, "customer")
	if err != nil {
		t.Fatalf("list summaries: %v", err)
	}
	if len(summaries) != 1 || summaries[0].LastAction == nil || *summaries[0].LastAction != "2026-02-01" {
		t.Fatalf("expected last action to surface, got %+v", summaries)
	}

	if err := store.UpdateLastAction(ctx, UpdateLastActionCommand{AccountID: account.ID}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank action, got %v", err)
	}
	if err := store.UpdateLastAction(ctx, UpdateLastActionCommand{AccountID: 999, Action: "2026-02-01"}); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for missing account, got %v", err)
	}
}

func TestCatalogFlowThroughStore(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateBrand(ctx, "Shell"); err != nil {
		t.Fatalf("create brand: %v", err)
	}
	if _, err := store.CreateType(ctx, "oil"); err != nil {
		t.Fatalf("create type: %v", err)
	}

	oil := "oil"
	product, err := store.CreateProduct(ctx, CreateProductCommand{
		Name:  "Motor Oil",
		Brand: "Shell",
		Type:  &oil,
		Count: 3,
		Cost:  1500,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	count, err := store.AdjustInventory(ctx, AdjustInventoryCommand{ProductID: product.ID, Delta: -2})
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	if _, err := store.AdjustInventory(ctx, AdjustInventoryCommand{ProductID: product.ID, Delta: -5}); !pkgerrors.HasCode(err, pkgerrors.CodeIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
}
