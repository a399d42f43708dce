// =============================
// File: internal/engine/moves.go
// =============================
package engine

import "fmt"

// bankMove — один отложенный перевод базовой валюты.
type bankMove struct {
	from, to string
	amount   uint64
}

// moveSet накапливает переводы сделки и применяет их одним пакетом в
// commit-фазе. Validate проверяет пакет против проекции балансов, чтобы
// к моменту Apply внутри банка не осталось причин для отказа; если банк
// всё же откажет (гонка по общему счёту с операцией по другому токену),
// уже применённые переводы разворачиваются в обратном порядке.
type moveSet struct {
	moves []bankMove
}

func (m *moveSet) add(from, to string, amount uint64) {
	if amount == 0 || from == to {
		return
	}
	m.moves = append(m.moves, bankMove{from: from, to: to, amount: amount})
}

func (m *moveSet) validate(bank Bank) error {
	projected := make(map[string]uint64)
	balance := func(acct string) uint64 {
		if v, ok := projected[acct]; ok {
			return v
		}
		return bank.Balance(acct)
	}
	for _, mv := range m.moves {
		have := balance(mv.from)
		if have < mv.amount {
			return fmt.Errorf("%w: account %s has %d, needs %d",
				ErrInsufficientBalance, mv.from, have, mv.amount)
		}
		projected[mv.from] = have - mv.amount
		projected[mv.to] = balance(mv.to) + mv.amount
	}
	return nil
}

func (m *moveSet) apply(bank Bank) error {
	for i, mv := range m.moves {
		if err := bank.Transfer(mv.from, mv.to, mv.amount); err != nil {
			// Разворачиваем всё, что успели перевести.
			for j := i - 1; j >= 0; j-- {
				done := m.moves[j]
				_ = bank.Transfer(done.to, done.from, done.amount)
			}
			return fmt.Errorf("%w: %v", ErrExternalTransferFailed, err)
		}
	}
	return nil
}

func (m *moveSet) revert(bank Bank) {
	for j := len(m.moves) - 1; j >= 0; j-- {
		done := m.moves[j]
		_ = bank.Transfer(done.to, done.from, done.amount)
	}
}
