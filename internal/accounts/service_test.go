package accounts

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/defterapp/defter-core/pkg/enums"
	pkgerrors "github.com/defterapp/defter-core/pkg/errors"
	"github.com/defterapp/defter-core/pkg/migrate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "base.db")
	conn, err := gorm.Open(sqlite.Open("file:"+path+"?_foreign_keys=on"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := migrate.Up(context.Background(), sqlDB); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return conn
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(openTestDB(t)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	account, err := svc.Create(ctx, CreateAccountInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if account.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if account.Debt != 0 || account.Balance != 0 {
		t.Fatalf("aggregates must start at zero, got debt=%d balance=%d", account.Debt, account.Balance)
	}
	if account.AccountType != enums.AccountTypeCustomer {
		t.Fatalf("expected customer default, got %s", account.AccountType)
	}

	fetched, err := svc.Get(ctx, account.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be stamped")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateAccountInput{Name: "  "}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateAccountInput{Name: "Acme", AccountType: "alien"}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}
}

func TestGetMissingAccount(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), 999)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListFiltersByType(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateAccountInput{Name: "Retail", AccountType: "customer"}); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if _, err := svc.Create(ctx, CreateAccountInput{Name: "Wholesale", AccountType: "supplier"}); err != nil {
		t.Fatalf("create supplier: %v", err)
	}

	suppliers, err := svc.List(ctx, "supplier")
	if err != nil {
		t.Fatalf("list suppliers: %v", err)
	}
	if len(suppliers) != 1 || suppliers[0].Name != "Wholesale" {
		t.Fatalf("unexpected supplier listing: %+v", suppliers)
	}

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(all))
	}

	if _, err := svc.List(ctx, "alien"); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for bad filter, got %v", err)
	}
}

func TestListSummariesProjection(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	account, err := svc.Create(ctx, CreateAccountInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.UpdateLastAction(ctx, account.ID, "2026-01-15"); err != nil {
		t.Fatalf("update last action: %v", err)
	}

	summaries, err := svc.ListSummaries(ctx, "customer")
	if err != nil {
		t.Fatalf("list summaries: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(summaries))
	}
	if summaries[0].Name != "Acme" || summaries[0].Debt != 0 {
		t.Fatalf("unexpected summary %+v", summaries[0])
	}
	if summaries[0].LastAction == nil || *summaries[0].LastAction != "2026-01-15" {
		t.Fatalf("expected last action to surface, got %+v", summaries[0].LastAction)
	}
}

func TestUpdateContact(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	account, err := svc.Create(ctx, CreateAccountInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	email := "acme@example.com"
	if err := svc.UpdateContact(ctx, UpdateContactInput{ID: account.ID, Name: "Acme Ltd", Email: &email}); err != nil {
		t.Fatalf("update contact: %v", err)
	}

	fetched, err := svc.Get(ctx, account.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Name != "Acme Ltd" {
		t.Fatalf("expected renamed account, got %q", fetched.Name)
	}
	if fetched.Email == nil || *fetched.Email != email {
		t.Fatalf("expected email update, got %+v", fetched.Email)
	}

	err = svc.UpdateContact(ctx, UpdateContactInput{ID: 999, Name: "Ghost"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for missing account, got %v", err)
	}
}

func TestUpdateLastActionValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.UpdateLastAction(ctx, 0, "2026-01-15"); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for bad id, got %v", err)
	}
	if err := svc.UpdateLastAction(ctx, 1, " "); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank action, got %v", err)
	}
	if err := svc.UpdateLastAction(ctx, 999, "2026-01-15"); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
