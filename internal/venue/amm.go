// ===========================
// File: internal/venue/amm.go
// ===========================

// Package venue содержит реализации внешней площадки ликвидности,
// которую движок вызывает ровно один раз на токен — при градации.
package venue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad/internal/engine"
)

// Pool — пул constant-product площадки, созданный из градационной поставки.
type Pool struct {
	Ref           string
	TokenID       uint64
	Symbol        string
	BaseReserves  uint64
	TokenReserves uint64
	CreatedAt     time.Time
}

// AMM — in-process площадка. Принимает поставку, бутстрапит пул и
// возвращает его ссылку; ссылка по договорённости никому не
// принадлежит (pool-share заперт).
type AMM struct {
	logger *zap.Logger

	mu    sync.Mutex
	pools map[string]Pool
}

// NewAMM создаёт пустую площадку.
func NewAMM(logger *zap.Logger) *AMM {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMM{logger: logger, pools: make(map[string]Pool)}
}

// AddLiquidity бутстрапит пул под токен. Вызов идемпотентен по токену:
// повторная поставка (ретрай после сбоя на стороне движка) возвращает
// ссылку уже созданного пула, не трогая его резервы.
func (a *AMM) AddLiquidity(_ context.Context, p engine.VenueParams) (string, error) {
	if p.TokenAmount == 0 || p.BaseAmount == 0 {
		return "", fmt.Errorf("empty liquidity legs: token %d, base %d", p.TokenAmount, p.BaseAmount)
	}
	if p.TokenAmount < p.MinToken || p.BaseAmount < p.MinBase {
		return "", fmt.Errorf("liquidity below requested minimums")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, pool := range a.pools {
		if pool.TokenID == p.TokenID {
			a.logger.Info("Pool already bootstrapped, returning existing ref",
				zap.String("pool_ref", pool.Ref),
				zap.Uint64("token_id", p.TokenID))
			return pool.Ref, nil
		}
	}

	pool := Pool{
		Ref:           uuid.NewString(),
		TokenID:       p.TokenID,
		Symbol:        p.Symbol,
		BaseReserves:  p.BaseAmount,
		TokenReserves: p.TokenAmount,
		CreatedAt:     time.Now().UTC(),
	}
	a.pools[pool.Ref] = pool

	a.logger.Info("Pool bootstrapped",
		zap.String("pool_ref", pool.Ref),
		zap.Uint64("token_id", p.TokenID),
		zap.Uint64("base_reserves", p.BaseAmount),
		zap.Uint64("token_reserves", p.TokenAmount))
	return pool.Ref, nil
}

// Pool возвращает пул по ссылке.
func (a *AMM) Pool(ref string) (Pool, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	pool, ok := a.pools[ref]
	return pool, ok
}
