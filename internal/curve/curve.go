// =============================
// File: internal/curve/curve.go
// =============================
package curve

import (
	"github.com/holiman/uint256"
)

// PriceScale — масштаб фиксированной точки для спотовой цены.
// Цена возвращается как (базовые единицы за токен) * 1e18.
const PriceScale = 1_000_000_000_000_000_000

// State описывает состояние constant-product кривой одного токена.
// Виртуальные резервы — константы, заданные при создании; реальные
// величины (RealReserve, TokensSold) меняются при каждой сделке.
type State struct {
	VirtualBase   uint64 // виртуальный резерв базовой валюты
	VirtualTokens uint64 // виртуальный резерв токенов
	BondingSupply uint64 // часть эмиссии, продаваемая через кривую
	RealReserve   uint64 // фактически привлечённая база
	TokensSold    uint64 // продано токенов через кривую
}

// effBase возвращает эффективный базовый резерв кривой.
func (s State) effBase() *uint256.Int {
	b := uint256.NewInt(s.VirtualBase)
	return b.Add(b, uint256.NewInt(s.RealReserve))
}

// effTokens возвращает эффективный токен-резерв кривой.
// Знаменатель всегда строго положителен: TokensSold ограничен
// BondingSupply < VirtualTokens.
func (s State) effTokens() *uint256.Int {
	t := uint256.NewInt(s.VirtualTokens)
	return t.Sub(t, uint256.NewInt(s.TokensSold))
}

// Remaining возвращает остаток эмиссии, доступный для покупки через кривую.
func (s State) Remaining() uint64 {
	return s.BondingSupply - s.TokensSold
}

// QuoteBuy считает выход токенов за netBaseIn базовых единиц (уже за
// вычетом комиссии). Формула: tokensOut = effTokens - K/(effBase+netBaseIn),
// деление с округлением вниз. Вся промежуточная арифметика 256-битная,
// переполнение effBase*effTokens исключено.
func QuoteBuy(s State, netBaseIn uint64) uint64 {
	effBase := s.effBase()
	effTokens := s.effTokens()

	k := new(uint256.Int).Mul(effBase, effTokens)
	newBase := new(uint256.Int).Add(effBase, uint256.NewInt(netBaseIn))
	newTokens := new(uint256.Int).Div(k, newBase)

	out := new(uint256.Int).Sub(effTokens, newTokens)
	return out.Uint64()
}

// QuoteSell считает выход базовой валюты (до комиссии) за tokensIn.
// Формула: baseOut = tokensIn*effBase/(effTokens+tokensIn), округление вниз —
// в пользу протокола.
func QuoteSell(s State, tokensIn uint64) uint64 {
	effBase := s.effBase()
	effTokens := s.effTokens()

	num := new(uint256.Int).Mul(uint256.NewInt(tokensIn), effBase)
	den := new(uint256.Int).Add(effTokens, uint256.NewInt(tokensIn))

	out := num.Div(num, den)
	return out.Uint64()
}

// QuoteBurn считает пропорциональное погашение: baseOut = tokensIn*RealReserve/TokensSold.
func QuoteBurn(s State, tokensIn uint64) uint64 {
	if s.TokensSold == 0 {
		return 0
	}
	num := new(uint256.Int).Mul(uint256.NewInt(tokensIn), uint256.NewInt(s.RealReserve))
	out := num.Div(num, uint256.NewInt(s.TokensSold))
	return out.Uint64()
}

// Price возвращает спотовую цену, масштабированную PriceScale:
// (VirtualBase+RealReserve)*1e18 / (VirtualTokens-TokensSold).
func Price(s State) *uint256.Int {
	num := new(uint256.Int).Mul(s.effBase(), uint256.NewInt(PriceScale))
	return num.Div(num, s.effTokens())
}

// K возвращает текущий инвариант кривой effBase*effTokens. Используется
// тестами для проверки сохранения произведения с точностью до округления.
func K(s State) *uint256.Int {
	return new(uint256.Int).Mul(s.effBase(), s.effTokens())
}
