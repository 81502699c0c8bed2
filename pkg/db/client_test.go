package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/defterapp/defter-core/pkg/config"
	pkgerrors "github.com/defterapp/defter-core/pkg/errors"
	"gorm.io/gorm"
)

func openTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := config.DBConfig{
		Path:         filepath.Join(t.TempDir(), "base.db"),
		BusyTimeout:  time.Second,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	client, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestWithTxCommitFailureIsTransactionError(t *testing.T) {
	client := openTestClient(t)

	// Rolling back inside fn leaves nothing for Commit to commit; the
	// resulting failure must carry the transaction code so callers can retry.
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		tx.Rollback()
		return nil
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeTransaction) {
		t.Fatalf("expected transaction error on commit failure, got %v", err)
	}
	if !pkgerrors.MetadataFor(pkgerrors.CodeTransaction).Retryable {
		t.Fatal("transaction errors must be retryable")
	}
}

func TestWithTxPassesThroughCallbackError(t *testing.T) {
	client := openTestClient(t)
	ctx := context.Background()

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec("CREATE TABLE sample (id INTEGER PRIMARY KEY)").Error; err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "nope")
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected callback error to pass through, got %v", err)
	}

	// The rollback took the in-transaction DDL with it.
	var count int64
	row := client.Raw(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='sample'").Row()
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if count != 0 {
		t.Fatal("expected rollback to discard the created table")
	}
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	client := openTestClient(t)
	ctx := context.Background()

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Exec("CREATE TABLE sample (id INTEGER PRIMARY KEY)").Error
	})
	if err != nil {
		t.Fatalf("with tx: %v", err)
	}

	var count int64
	row := client.Raw(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='sample'").Row()
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if count != 1 {
		t.Fatal("expected committed table to survive")
	}
}
