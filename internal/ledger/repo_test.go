package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/defterapp/defter-core/pkg/db/models"
	"github.com/defterapp/defter-core/pkg/enums"
	"github.com/defterapp/defter-core/pkg/pagination"
)

func seedBook(t *testing.T) (Repository, int64) {
	t.Helper()
	client := openTestClient(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	account := &models.Account{Name: "Acme", AccountType: enums.AccountTypeCustomer}
	require.NoError(t, client.DB().Create(account).Error)

	book := &models.AccountBook{Name: "Jan", AccountID: account.ID}
	require.NoError(t, repo.CreateBook(ctx, book))
	return repo, book.ID
}

func TestRepositoryStatementCursorWindow(t *testing.T) {
	repo, bookID := seedBook(t)
	ctx := context.Background()

	lines := []models.AccountLine{
		{Name: "a", AccountBookID: bookID, NetPrice: 10, Amount: 1, Price: 12, Tax: 20, TotalPrice: 12, Date: "2026-01-05"},
		{Name: "b", AccountBookID: bookID, NetPrice: 20, Amount: 1, Price: 24, Tax: 20, TotalPrice: 24, Date: "2026-01-10"},
		{Name: "c", AccountBookID: bookID, NetPrice: 30, Amount: 1, Price: 36, Tax: 20, TotalPrice: 36, Date: "2026-01-10"},
	}
	for i := range lines {
		require.NoError(t, repo.CreateLine(ctx, &lines[i]))
	}
	require.NoError(t, repo.CreatePayment(ctx, &models.Payment{
		Payment: 12, OldDebt: 12, AccountBookID: bookID, Date: "2026-01-10",
	}))

	all, err := repo.Statement(ctx, bookID, pagination.Cursor{}, 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, enums.EntryKindPayment, all[3].Kind)

	// Resume after the second entry; the tied line and payment both follow.
	rest, err := repo.Statement(ctx, bookID, pagination.Cursor{
		Date: all[1].Date,
		Kind: all[1].Kind,
		ID:   all[1].ID,
	}, 10)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	require.Equal(t, all[2].ID, rest[0].ID)
	require.Equal(t, enums.EntryKindPayment, rest[1].Kind)
}

func TestRepositorySumChildren(t *testing.T) {
	repo, bookID := seedBook(t)
	ctx := context.Background()

	totals, err := repo.SumChildren(ctx, bookID)
	require.NoError(t, err)
	require.Zero(t, totals.LineTotal)
	require.Zero(t, totals.PaymentSum)

	require.NoError(t, repo.CreateLine(ctx, &models.AccountLine{
		Name: "a", AccountBookID: bookID, NetPrice: 100, Amount: 2, Price: 120, Tax: 20, TotalPrice: 240, Date: "2026-01-05",
	}))
	require.NoError(t, repo.CreatePayment(ctx, &models.Payment{
		Payment: 90, OldDebt: 240, AccountBookID: bookID, Date: "2026-01-06",
	}))

	totals, err = repo.SumChildren(ctx, bookID)
	require.NoError(t, err)
	require.EqualValues(t, 240, totals.LineTotal)
	require.EqualValues(t, 90, totals.PaymentSum)
	require.EqualValues(t, 1, totals.LineCount)
	require.EqualValues(t, 1, totals.PaymentRows)
}
