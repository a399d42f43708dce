// ================================
// File: internal/venue/amm_test.go
// ================================
package venue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/launchpad/internal/engine"
)

func liquidityParams(tokenID uint64) engine.VenueParams {
	return engine.VenueParams{
		TokenID:     tokenID,
		Symbol:      "TST",
		TokenAmount: 50_000_000,
		BaseAmount:  40_000_000,
		Recipient:   "venue:locked",
		Deadline:    time.Now().Add(30 * time.Second),
	}
}

func TestAMMAddLiquidity(t *testing.T) {
	amm := NewAMM(nil)

	ref, err := amm.AddLiquidity(context.Background(), liquidityParams(1))
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	pool, ok := amm.Pool(ref)
	require.True(t, ok)
	assert.Equal(t, uint64(1), pool.TokenID)
	assert.Equal(t, uint64(40_000_000), pool.BaseReserves)
	assert.Equal(t, uint64(50_000_000), pool.TokenReserves)

	_, ok = amm.Pool("no-such-ref")
	assert.False(t, ok)
}

// TestAMMIdempotentPerToken — повторная поставка по тому же токену
// (ретрай после отката на стороне движка) возвращает ссылку уже
// созданного пула и не меняет его резервы.
func TestAMMIdempotentPerToken(t *testing.T) {
	amm := NewAMM(nil)
	ctx := context.Background()

	first, err := amm.AddLiquidity(ctx, liquidityParams(1))
	require.NoError(t, err)

	second, err := amm.AddLiquidity(ctx, liquidityParams(1))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	pool, ok := amm.Pool(first)
	require.True(t, ok)
	assert.Equal(t, uint64(40_000_000), pool.BaseReserves)
	assert.Equal(t, uint64(50_000_000), pool.TokenReserves)

	// Другой токен — другой пул.
	ref, err := amm.AddLiquidity(ctx, liquidityParams(2))
	require.NoError(t, err)
	assert.NotEqual(t, first, ref)
}

func TestAMMValidatesLegs(t *testing.T) {
	amm := NewAMM(nil)
	ctx := context.Background()

	p := liquidityParams(1)
	p.TokenAmount = 0
	_, err := amm.AddLiquidity(ctx, p)
	require.Error(t, err)

	p = liquidityParams(1)
	p.BaseAmount = 0
	_, err = amm.AddLiquidity(ctx, p)
	require.Error(t, err)

	p = liquidityParams(1)
	p.MinBase = p.BaseAmount + 1
	_, err = amm.AddLiquidity(ctx, p)
	require.Error(t, err)
}
