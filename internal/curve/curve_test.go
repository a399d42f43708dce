// =================================
// File: internal/curve/curve_test.go
// =================================
package curve

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func launchState() State {
	return State{
		VirtualBase:   12_500_000,
		VirtualTokens: 250_000_000,
		BondingSupply: 200_000_000,
	}
}

func TestQuoteBuy(t *testing.T) {
	s := launchState()

	// Чистый принципал 9.9M: tokensOut = 250M - floor(12.5M*250M/22.4M).
	out := QuoteBuy(s, 9_900_000)
	assert.Equal(t, uint64(110_491_072), out)

	// Нулевой вход — нулевой выход.
	assert.Equal(t, uint64(0), QuoteBuy(s, 0))
}

func TestQuoteBuyExhaustsSupplyAtTarget(t *testing.T) {
	s := launchState()

	// Константы подобраны так, что на пороге 50M база выкупает ровно
	// всю эмиссию кривой.
	out := QuoteBuy(s, 50_000_000)
	assert.Equal(t, s.BondingSupply, out)
}

func TestQuoteSellRoundsDown(t *testing.T) {
	s := launchState()
	s.RealReserve = 9_900_000
	s.TokensSold = 110_491_072

	gross := QuoteSell(s, 1_000_000)
	// baseOut = 1M*22.4M/(139,508,928+1M) floored.
	assert.Equal(t, uint64(159_420), gross)
	assert.LessOrEqual(t, gross, s.RealReserve)
}

func TestSellAllReturnsReserveWithinRounding(t *testing.T) {
	s := launchState()
	s.RealReserve = 9_900_000
	s.TokensSold = 110_491_072

	gross := QuoteSell(s, s.TokensSold)
	assert.LessOrEqual(t, gross, s.RealReserve)
	assert.InDelta(t, float64(s.RealReserve), float64(gross), 2)
}

func TestPriceMonotonicity(t *testing.T) {
	s := launchState()
	before := Price(s)

	netIn := uint64(5_000_000)
	out := QuoteBuy(s, netIn)
	s.RealReserve += netIn
	s.TokensSold += out
	afterBuy := Price(s)
	require.Equal(t, 1, afterBuy.Cmp(before), "price must strictly rise after a buy")

	gross := QuoteSell(s, out/2)
	s.RealReserve -= gross
	s.TokensSold -= out / 2
	afterSell := Price(s)
	assert.Equal(t, -1, afterSell.Cmp(afterBuy), "price must strictly fall after a sell")
}

func TestKConservation(t *testing.T) {
	s := launchState()

	for _, netIn := range []uint64{1_000_000, 3_333_333, 7_777_777} {
		before := K(s)
		out := QuoteBuy(s, netIn)
		s.RealReserve += netIn
		s.TokensSold += out
		after := K(s)

		// Округление вниз может только уменьшить K, и меньше чем на
		// один новый базовый резерв.
		require.LessOrEqual(t, after.Cmp(before), 0)
		diff := new(uint256.Int).Sub(before, after)
		bound := uint256.NewInt(s.VirtualBase + s.RealReserve)
		require.Equal(t, -1, diff.Cmp(bound), "K drift must stay below one denominator unit")
	}
}

func TestQuoteBurn(t *testing.T) {
	s := launchState()
	s.RealReserve = 10_000_000
	s.TokensSold = 100_000_000

	// Пропорциональное погашение: 10% проданных токенов — 10% резерва.
	assert.Equal(t, uint64(1_000_000), QuoteBurn(s, 10_000_000))
	// Пустая кривая ничего не возвращает.
	assert.Equal(t, uint64(0), QuoteBurn(State{VirtualBase: 1, VirtualTokens: 2, BondingSupply: 1}, 5))
}

func TestPriceAtLaunch(t *testing.T) {
	s := launchState()
	// 12.5M/250M = 0.05, в масштабе 1e18.
	want := uint256.NewInt(50_000_000_000_000_000)
	assert.Equal(t, 0, Price(s).Cmp(want))
}
