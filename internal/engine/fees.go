// ============================
// File: internal/engine/fees.go
// ============================
package engine

import "math/bits"

const bpsDenominator = 10_000

// MaxTradeFeeBps — потолок комиссии покупки и продажи.
const MaxTradeFeeBps = 500

// FeeSplit — результат разбиения комиссии одной сделки. Эфемерный:
// считается на каждую сделку и никуда не сохраняется.
type FeeSplit struct {
	Net         uint64 // принципал, который видит кривая
	TreasuryCut uint64
	ReferrerCut uint64
	Referrer    string // пустая строка, если реферальная доля не платится
}

// mulDiv считает a*b/den со 128-битным произведением, округление вниз.
// Требование вызывающего: b <= den либо a < den, тогда частное помещается
// в uint64 и старшее слово произведения меньше den.
func mulDiv(a, b, den uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	out, _ := bits.Div64(hi, lo, den)
	return out
}

// splitFee считает комиссию gross*feeBps/10000 (округление вниз, в ущерб
// трейдеру) и делит её пополам между казной и рефером. Отсутствующий
// рефер или самореферал — не ошибка: вся комиссия молча уходит казне.
func splitFee(gross, feeBps uint64, referrer, trader string) FeeSplit {
	fee := mulDiv(gross, feeBps, bpsDenominator)
	if referrer == "" || referrer == trader {
		return FeeSplit{Net: gross - fee, TreasuryCut: fee}
	}
	refCut := fee / 2
	return FeeSplit{
		Net:         gross - fee,
		TreasuryCut: fee - refCut,
		ReferrerCut: refCut,
		Referrer:    referrer,
	}
}
