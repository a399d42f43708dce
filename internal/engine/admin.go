// =============================
// File: internal/engine/admin.go
// =============================
package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// FeeUpdate — новый набор комиссий и аллокаций градации одним пакетом.
type FeeUpdate struct {
	BuyBps       uint64
	SellBps      uint64
	BurnBps      uint64
	LiquidityBps uint64
	CreatorBps   uint64
}

func (e *Engine) requireOwner(caller string) error {
	if caller != e.owner {
		return fmt.Errorf("%w: caller %s is not the owner", ErrUnauthorized, caller)
	}
	return nil
}

// SetFees обновляет ставки комиссий и доли градации. Только владелец;
// торговые ставки ограничены MaxTradeFeeBps, сумма долей — 10000 bps.
func (e *Engine) SetFees(caller string, upd FeeUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return err
	}

	next := e.params
	next.BuyFeeBps = upd.BuyBps
	next.SellFeeBps = upd.SellBps
	next.BurnBps = upd.BurnBps
	next.LiquidityBps = upd.LiquidityBps
	next.CreatorBps = upd.CreatorBps
	if err := next.validateFees(); err != nil {
		return err
	}

	e.params = next
	e.logger.Info("Fee parameters updated",
		zap.Uint64("buy_bps", upd.BuyBps),
		zap.Uint64("sell_bps", upd.SellBps),
		zap.Uint64("burn_bps", upd.BurnBps),
		zap.Uint64("liquidity_bps", upd.LiquidityBps),
		zap.Uint64("creator_bps", upd.CreatorBps))
	return nil
}

// SetPaused включает или снимает глобальную паузу. Флаг консультируется
// каждой мутирующей операцией движка.
func (e *Engine) SetPaused(caller string, paused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.paused = paused
	e.logger.Warn("Pause flag changed", zap.Bool("paused", paused))
	return nil
}

// SetVenue подменяет внешнюю площадку ликвидности.
func (e *Engine) SetVenue(caller string, venue LiquidityVenue) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	e.venue = venue
	e.logger.Info("Liquidity venue replaced")
	return nil
}

// Paused возвращает текущее состояние глобальной паузы.
func (e *Engine) Paused() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.paused
}

// CurrentParams возвращает снимок администрируемых параметров.
func (e *Engine) CurrentParams() Params {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params
}
