package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/cadastro-militares/pkg/db"
)

func newSQLiteRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	sqlDB, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(sqlDB, db.DriverSQLite))

	repo := NewSQLiteRepository(sqlDB)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepository_Seeds(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	ranks, err := repo.ListRanks(ctx)
	require.NoError(t, err)
	assert.Equal(t, fakeRanks[0], ranks[0])
	assert.Len(t, ranks, 10)
	assert.Equal(t, "Soldado Efetivo Variável", ranks[9])

	banks, err := repo.ListBanks(ctx)
	require.NoError(t, err)
	assert.Len(t, banks, 5)
	assert.Equal(t, "001 - Banco do Brasil S.A", banks[0])

	stipends, err := repo.ListStipends(ctx)
	require.NoError(t, err)
	assert.Len(t, stipends, 10)
	for _, s := range stipends {
		assert.True(t, s.Amount.IsZero(), s.Rank)
	}
}

func TestSQLiteRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	gen := NewTestDataGeneratorWithSeed(42)

	rec := gen.Record()
	id, err := repo.Insert(ctx, rec)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	rec.ID = id
	assert.Equal(t, rec, *got)

	rec.Address = "Rua Nova, 10"
	require.NoError(t, repo.Update(ctx, id, rec))

	all, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Rua Nova, 10", all[0].Address)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRepository_MissingRecord(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	assert.ErrorIs(t, repo.Update(ctx, 99, NewTestDataGenerator().Record()), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 99), ErrNotFound)

	ok, err := repo.UpdateTransportAllowance(ctx, 99, decimal.NewFromInt(10), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	gen := NewTestDataGeneratorWithSeed(7)

	first := gen.Record()
	_, err := repo.Insert(ctx, first)
	require.NoError(t, err)

	t.Run("same CPF is rejected", func(t *testing.T) {
		dup := gen.Record()
		dup.NationalID = first.NationalID
		_, err := repo.Insert(ctx, dup)
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("blank identifiers may repeat", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			rec := gen.Record()
			rec.NationalID, rec.PrecedenceCode, rec.MilitaryID = "", "", ""
			_, err := repo.Insert(ctx, rec)
			require.NoError(t, err)
		}
	})
}

func TestSQLiteRepository_EnsureRank(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	inserted, err := repo.EnsureRank(ctx, "Major")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.EnsureRank(ctx, " Major ")
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = repo.EnsureRank(ctx, "   ")
	require.NoError(t, err)
	assert.False(t, inserted)

	ranks, err := repo.ListRanks(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Major", ranks[len(ranks)-1])

	stipend, err := repo.GetStipend(ctx, "Major")
	require.NoError(t, err)
	assert.True(t, stipend.IsZero())
}

func TestSQLiteRepository_EnsureBank(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	inserted, err := repo.EnsureBank(ctx, "260 - Nu Pagamentos S.A")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.EnsureBank(ctx, "001 - Banco do Brasil S.A")
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestSQLiteRepository_Stipends(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	require.NoError(t, repo.UpsertStipend(ctx, "Capitão", decimal.RequireFromString("13799")))
	require.NoError(t, repo.UpsertStipend(ctx, "Coronel", decimal.RequireFromString("15.5")))

	got, err := repo.GetStipend(ctx, "Capitão")
	require.NoError(t, err)
	assert.Equal(t, "13799.00", got.StringFixed(2))

	got, err = repo.GetStipend(ctx, "Inexistente")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	stipends, err := repo.ListStipends(ctx)
	require.NoError(t, err)
	assert.Len(t, stipends, 11)
}

func TestSQLiteRepository_UpdateTransportAllowance(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	id, err := repo.Insert(ctx, NewTestDataGenerator().Record())
	require.NoError(t, err)

	ok, err := repo.UpdateTransportAllowance(ctx, id, decimal.RequireFromString("286.655"), "")
	require.NoError(t, err)
	assert.True(t, ok)

	rec, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "286.66", rec.TransportValue)
	assert.Equal(t, Yes, rec.TransportFlag)
	assert.True(t, rec.ReceivesTransport())
}

func TestSQLiteRepository_WithinTx(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	gen := NewTestDataGeneratorWithSeed(3)
	errBoom := errors.New("boom")

	t.Run("rolls back on error", func(t *testing.T) {
		err := repo.WithinTx(ctx, func(ctx context.Context, gw Gateway) error {
			if _, err := gw.Insert(ctx, gen.Record()); err != nil {
				return err
			}
			if _, err := gw.EnsureRank(ctx, "General"); err != nil {
				return err
			}
			return errBoom
		})
		assert.ErrorIs(t, err, errBoom)

		all, err := repo.FetchAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		ranks, err := repo.ListRanks(ctx)
		require.NoError(t, err)
		assert.NotContains(t, ranks, "General")
	})

	t.Run("commits on success", func(t *testing.T) {
		err := repo.WithinTx(ctx, func(ctx context.Context, gw Gateway) error {
			_, err := gw.Insert(ctx, gen.Record())
			return err
		})
		require.NoError(t, err)

		all, err := repo.FetchAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}
