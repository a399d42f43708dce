// =================================
// File: internal/store/store_test.go
// =================================
package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/launchpad/internal/curve"
	"github.com/rovshanmuradov/launchpad/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "launchpad.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleToken(id uint64) engine.Token {
	return engine.Token{
		ID:          id,
		Creator:     "alice",
		Name:        "Sample",
		Symbol:      "SMP",
		MetadataURI: "ipfs://sample",
		Curve: curve.State{
			VirtualBase:   12_500_000,
			VirtualTokens: 250_000_000,
			BondingSupply: 200_000_000,
			RealReserve:   9_900_000,
			TokensSold:    110_491_072,
		},
		TotalBurned: 1_000,
		Volume:      10_000_000,
		Status:      engine.StatusActive,
		CreatedAt:   time.Unix(1_700_000_000, 0).UTC(),
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tok := sampleToken(1)
	require.NoError(t, s.Save(ctx, tok, map[string]uint64{"bob": 110_490_072, "carol": 1_000}))

	tokens, balances, err := s.LoadTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, tok, tokens[0])
	assert.Equal(t, map[string]uint64{"bob": 110_490_072, "carol": 1_000}, balances[1])
}

func TestSaveUpsertsAndDeletesBalances(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tok := sampleToken(1)
	require.NoError(t, s.Save(ctx, tok, map[string]uint64{"bob": 500}))

	// Обновление записи токена и балансов поверх существующих.
	tok.Curve.RealReserve = 15_000_000
	tok.Volume += 5_000_000
	require.NoError(t, s.Save(ctx, tok, map[string]uint64{"bob": 0, "carol": 500}))

	tokens, balances, err := s.LoadTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, uint64(15_000_000), tokens[0].Curve.RealReserve)
	// Нулевой баланс удалён, новый владелец записан.
	assert.Equal(t, map[string]uint64{"carol": 500}, balances[1])
}

func TestGraduatedTokenRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tok := sampleToken(2)
	tok.Status = engine.StatusGraduated
	tok.GraduatedAt = time.Unix(1_700_000_600, 0).UTC()
	tok.PoolRef = "pool-abc"
	require.NoError(t, s.Save(ctx, tok, nil))

	tokens, _, err := s.LoadTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, engine.StatusGraduated, tokens[0].Status)
	assert.Equal(t, tok.GraduatedAt, tokens[0].GraduatedAt)
	assert.Equal(t, "pool-abc", tokens[0].PoolRef)
}

func TestLoadOrdersByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Сохраняем в обратном порядке: чтение обязано вернуть по id.
	for _, id := range []uint64{3, 1, 2} {
		require.NoError(t, s.Save(ctx, sampleToken(id), nil))
	}
	tokens, _, err := s.LoadTokens(ctx)
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	for i, tok := range tokens {
		assert.Equal(t, uint64(i+1), tok.ID)
	}
}

func TestEmptyDatabase(t *testing.T) {
	s := openTestStore(t)
	tokens, balances, err := s.LoadTokens(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tokens)
	assert.Empty(t, balances)
}
