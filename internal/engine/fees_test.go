// =================================
// File: internal/engine/fees_test.go
// =================================
package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFee(t *testing.T) {
	cases := []struct {
		name     string
		gross    uint64
		bps      uint64
		referrer string
		trader   string
		want     FeeSplit
	}{
		{
			name:  "full fee to treasury without referrer",
			gross: 10_000_000, bps: 100, trader: "bob",
			want: FeeSplit{Net: 9_900_000, TreasuryCut: 100_000},
		},
		{
			name:  "even split with referrer",
			gross: 10_000_000, bps: 100, referrer: "carol", trader: "bob",
			want: FeeSplit{Net: 9_900_000, TreasuryCut: 50_000, ReferrerCut: 50_000, Referrer: "carol"},
		},
		{
			// Нечётная комиссия: лишняя единица достаётся казне.
			name:  "odd fee favors treasury",
			gross: 10_100, bps: 100, referrer: "carol", trader: "bob",
			want: FeeSplit{Net: 9_999, TreasuryCut: 51, ReferrerCut: 50, Referrer: "carol"},
		},
		{
			name:  "self referral degrades silently",
			gross: 10_000_000, bps: 100, referrer: "bob", trader: "bob",
			want: FeeSplit{Net: 9_900_000, TreasuryCut: 100_000},
		},
		{
			name:  "zero bps is a passthrough",
			gross: 10_000_000, bps: 0, referrer: "carol", trader: "bob",
			want: FeeSplit{Net: 10_000_000, Referrer: "carol"},
		},
		{
			// Комиссия округляется вниз: мелкая сделка проходит бесплатно.
			name:  "dust trade pays nothing",
			gross: 99, bps: 100, trader: "bob",
			want: FeeSplit{Net: 99},
		},
		{
			// Произведение gross*bps шире 64 бит; комиссия всё равно точная.
			name:  "wide product does not overflow",
			gross: 1 << 63, bps: 100, trader: "bob",
			want: FeeSplit{Net: 9_131_138_316_486_228_050, TreasuryCut: 92_233_720_368_547_758},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitFee(tc.gross, tc.bps, tc.referrer, tc.trader)
			assert.Equal(t, tc.want, got)
			// Разбиение без потерь: net + доли == gross.
			assert.Equal(t, tc.gross, got.Net+got.TreasuryCut+got.ReferrerCut)
		})
	}
}
