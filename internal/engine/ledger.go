// ==============================
// File: internal/engine/ledger.go
// ==============================
package engine

import "fmt"

// Ledger — пообъектная бухгалтерия одного токена: балансы по владельцам
// и классические allowance. Счета создаются неявно при первом зачислении.
// Mint и burn доступны только движку; внешние вызовы проходят через
// операции Engine (Transfer/Approve/TransferFrom), которые берут замок
// токена, поэтому сам Ledger замков не держит.
type Ledger struct {
	balances   map[string]uint64
	allowances map[string]map[string]uint64
}

// NewLedger создаёт пустую бухгалтерию токена.
func NewLedger() *Ledger {
	return &Ledger{
		balances:   make(map[string]uint64),
		allowances: make(map[string]map[string]uint64),
	}
}

// Balance возвращает баланс владельца (0 для неизвестного счёта).
func (l *Ledger) Balance(owner string) uint64 {
	return l.balances[owner]
}

// Allowance возвращает остаток одобренного лимита spender у owner.
func (l *Ledger) Allowance(owner, spender string) uint64 {
	return l.allowances[owner][spender]
}

// TotalHeld возвращает сумму всех балансов. Инвариант движка:
// TotalHeld == TokensSold - TotalBurned.
func (l *Ledger) TotalHeld() uint64 {
	var sum uint64
	for _, b := range l.balances {
		sum += b
	}
	return sum
}

// mint зачисляет amount владельцу. Вызывается только из commit-фазы движка.
func (l *Ledger) mint(to string, amount uint64) {
	l.balances[to] += amount
}

// burn списывает amount с владельца.
func (l *Ledger) burn(from string, amount uint64) error {
	bal := l.balances[from]
	if bal < amount {
		return fmt.Errorf("%w: have %d, burn %d", ErrInsufficientBalance, bal, amount)
	}
	l.balances[from] = bal - amount
	if l.balances[from] == 0 {
		delete(l.balances, from)
	}
	return nil
}

// transfer перемещает amount между владельцами.
func (l *Ledger) transfer(from, to string, amount uint64) error {
	bal := l.balances[from]
	if bal < amount {
		return fmt.Errorf("%w: have %d, transfer %d", ErrInsufficientBalance, bal, amount)
	}
	l.balances[from] = bal - amount
	if l.balances[from] == 0 {
		delete(l.balances, from)
	}
	l.balances[to] += amount
	return nil
}

// approve выставляет spender лимит amount от имени owner.
func (l *Ledger) approve(owner, spender string, amount uint64) {
	m := l.allowances[owner]
	if m == nil {
		m = make(map[string]uint64)
		l.allowances[owner] = m
	}
	if amount == 0 {
		delete(m, spender)
		return
	}
	m[spender] = amount
}

// spendAllowance уменьшает лимит spender у owner на amount.
// Если acting-сторона и есть владелец, лимит не расходуется.
func (l *Ledger) spendAllowance(owner, spender string, amount uint64) error {
	if owner == spender {
		return nil
	}
	have := l.allowances[owner][spender]
	if have < amount {
		return fmt.Errorf("%w: allowance %d, need %d", ErrAllowanceExceeded, have, amount)
	}
	l.allowances[owner][spender] = have - amount
	if l.allowances[owner][spender] == 0 {
		delete(l.allowances[owner], spender)
	}
	return nil
}
