package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/query"
	"salesledger/pkg/domain"
	"salesledger/pkg/errors"
)

func strPtr(s string) *string {
	return &s
}

func sample() []*domain.Transaction {
	day := domain.NewDate(2023, time.April, 10)
	return []*domain.Transaction{
		{TransactionID: "TXN3", Date: day, CustomerName: "Rahul Sharma", Quantity: 2, TotalAmount: decimal.NewFromInt(300), CustomerRegion: strPtr("North"), Gender: strPtr("Male")},
		{TransactionID: "TXN1", Date: day, CustomerName: "Neha Yadav", Quantity: 1, TotalAmount: decimal.NewFromInt(100), CustomerRegion: strPtr("South"), Gender: strPtr("Female")},
		{TransactionID: "TXN2", Date: day, CustomerName: "Amit Patel", Quantity: 4, TotalAmount: decimal.NewFromInt(200), CustomerRegion: strPtr("North")},
	}
}

func TestTransactionRepository_LoadCopiesRecords(t *testing.T) {
	records := sample()
	repo := NewTransactionRepository(records...)

	records[0].CustomerName = "Changed"

	got, err := repo.Select(context.Background(), query.Build(query.Filters{}), query.ResolveSort("customer_desc"), 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Rahul Sharma", got[0].CustomerName)
	assert.Equal(t, int64(1), got[0].ID)

	// Results are copies as well.
	got[0].CustomerName = "Mutated"
	again, err := repo.Select(context.Background(), query.Build(query.Filters{}), query.ResolveSort("customer_desc"), 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "Rahul Sharma", again[0].CustomerName)
}

func TestTransactionRepository_SelectOrdersAndWindows(t *testing.T) {
	repo := NewTransactionRepository(sample()...)
	ctx := context.Background()

	// Equal dates fall back to transaction id.
	got, err := repo.Select(ctx, query.Build(query.Filters{}), query.ResolveSort("date_desc"), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"TXN1", "TXN2", "TXN3"}, []string{got[0].TransactionID, got[1].TransactionID, got[2].TransactionID})

	got, err = repo.Select(ctx, query.Build(query.Filters{}), query.ResolveSort("quantity_desc"), 1, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "TXN3", got[0].TransactionID)

	got, err = repo.Select(ctx, query.Build(query.Filters{}), query.ResolveSort(""), 10, 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTransactionRepository_CountAndSum(t *testing.T) {
	repo := NewTransactionRepository(sample()...)
	ctx := context.Background()
	north := query.Build(query.Filters{Regions: []string{"North"}})

	n, err := repo.Count(ctx, north)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	totals, err := repo.Sum(ctx, north)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Count)
	assert.Equal(t, int64(6), totals.Units)
	assert.True(t, totals.Amount.Equal(decimal.NewFromInt(500)))
}

func TestTransactionRepository_Distinct(t *testing.T) {
	repo := NewTransactionRepository(sample()...)
	ctx := context.Background()

	regions, err := repo.Distinct(ctx, query.FieldRegion)
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, regions)

	genders, err := repo.Distinct(ctx, query.FieldGender)
	require.NoError(t, err)
	assert.Equal(t, []string{"Female", "Male"}, genders)

	categories, err := repo.Distinct(ctx, query.FieldCategory)
	require.NoError(t, err)
	assert.Empty(t, categories)

	_, err = repo.Distinct(ctx, query.FieldAge)
	assert.True(t, errors.Is(err, errors.ErrUnknownField))
}

func TestTransactionRepository_InsertBatch(t *testing.T) {
	repo := NewTransactionRepository()
	ctx := context.Background()

	require.NoError(t, repo.InsertBatch(ctx, sample()))
	require.NoError(t, repo.InsertBatch(ctx, sample()[:1]))

	n, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestTransactionRepository_CancelledContext(t *testing.T) {
	repo := NewTransactionRepository(sample()...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Select(ctx, query.Build(query.Filters{}), query.ResolveSort(""), 0, 10)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = repo.Count(ctx, query.Build(query.Filters{}))
	assert.Error(t, err)

	_, err = repo.Sum(ctx, query.Build(query.Filters{}))
	assert.Error(t, err)

	assert.Error(t, repo.Ping(ctx))
}
