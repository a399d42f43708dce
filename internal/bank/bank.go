// ==========================
// File: internal/bank/bank.go
// ==========================

// Package bank реализует потокобезопасный счёт базовой валюты,
// в которой движок принимает оплату и раздаёт выплаты.
package bank

import (
	"fmt"
	"sync"
)

// InMemory — банк на картах в памяти. Счета создаются неявно при первом
// зачислении; баланс никогда не уходит в минус.
type InMemory struct {
	mu       sync.Mutex
	balances map[string]uint64
}

// NewInMemory создаёт пустой банк.
func NewInMemory() *InMemory {
	return &InMemory{balances: make(map[string]uint64)}
}

// Deposit зачисляет amount на счёт. Используется при начальном
// фондировании трейдеров; движок эмиссией базы не управляет.
func (b *InMemory) Deposit(account string, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[account] += amount
}

// Transfer переводит amount с from на to одним атомарным шагом.
func (b *InMemory) Transfer(from, to string, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	have := b.balances[from]
	if have < amount {
		return fmt.Errorf("account %s: balance %d below transfer %d", from, have, amount)
	}
	b.balances[from] = have - amount
	b.balances[to] += amount
	return nil
}

// Balance возвращает остаток счёта (0 для неизвестного).
func (b *InMemory) Balance(account string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[account]
}

// TotalSupply возвращает сумму всех счетов. Переводы её не меняют —
// удобная проверка консервации в тестах.
func (b *InMemory) TotalSupply() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sum uint64
	for _, v := range b.balances {
		sum += v
	}
	return sum
}
