// ==================================
// File: internal/engine/graduation.go
// ==================================
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Окно, в течение которого площадка обязана принять ликвидность.
const venueDeadline = 30 * time.Second

// allocation — разбиение собранного принципала при градации. Доли
// считаются от порога градации, а не от фактического резерва: перелёт
// последней покупки остаётся держателям.
type allocation struct {
	Burn      uint64 // уничтожается безвозвратно
	Liquidity uint64 // уходит в пул внешней площадки
	Creator   uint64 // награда создателю
}

func allocate(p Params) allocation {
	return allocation{
		Burn:      mulDiv(p.GraduationTarget, p.BurnBps, bpsDenominator),
		Liquidity: mulDiv(p.GraduationTarget, p.LiquidityBps, bpsDenominator),
		Creator:   mulDiv(p.GraduationTarget, p.CreatorBps, bpsDenominator),
	}
}

// executeGraduation выполняет единственный внешний вызов горячего пути —
// поставку ликвидности. Вызов синхронный: либо площадка приняла пул и
// движок завершает переход, либо вся вызвавшая сделка откатывается.
// Ретраев здесь нет; они, если нужны, живут внутри реализации площадки.
func (e *Engine) executeGraduation(ctx context.Context, venue LiquidityVenue, tok *Token, alloc allocation) (string, error) {
	if venue == nil {
		return "", fmt.Errorf("%w: no liquidity venue configured", ErrExternalTransferFailed)
	}

	// Токен-нога пула — свежая эмиссия сверх bonding supply; она не
	// проходит через бухгалтерию токена и сразу принадлежит площадке.
	params, _, _, _ := e.snapshot()
	poolRef, err := venue.AddLiquidity(ctx, VenueParams{
		TokenID:     tok.ID,
		Symbol:      tok.Symbol,
		TokenAmount: params.PoolTokenSupply,
		BaseAmount:  alloc.Liquidity,
		MinToken:    params.PoolTokenSupply,
		MinBase:     alloc.Liquidity,
		Recipient:   VenueAccount,
		Deadline:    e.clock().Add(venueDeadline),
	})
	if err != nil {
		e.logger.Error("Liquidity venue rejected graduation, rolling back trade",
			zap.Uint64("token_id", tok.ID),
			zap.Error(err))
		return "", fmt.Errorf("%w: add liquidity: %v", ErrExternalTransferFailed, err)
	}

	e.logger.Info("Token graduated",
		zap.Uint64("token_id", tok.ID),
		zap.String("symbol", tok.Symbol),
		zap.Uint64("raised", tok.Curve.RealReserve),
		zap.Uint64("burned", alloc.Burn),
		zap.Uint64("liquidity", alloc.Liquidity),
		zap.Uint64("creator_reward", alloc.Creator),
		zap.String("pool_ref", poolRef))
	return poolRef, nil
}
