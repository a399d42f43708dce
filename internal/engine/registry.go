// ================================
// File: internal/engine/registry.go
// ================================
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad/internal/curve"
)

// Progress — состояние продвижения токена к порогу градации.
type Progress struct {
	Raised      uint64
	Target      uint64
	ProgressBps uint64
	TokensSold  uint64
}

// CreateToken регистрирует новый токен и инициализирует его кривую.
// payment — заявленная оплата; движок списывает ровно фиксированную
// плату за создание (целиком в казну), излишек не трогает.
func (e *Engine) CreateToken(ctx context.Context, caller, name, symbol, metadataURI string, payment uint64) (uint64, error) {
	params, paused, treasury, _ := e.snapshot()
	if paused {
		return 0, ErrPaused
	}
	if name == "" || symbol == "" {
		return 0, fmt.Errorf("%w: name and symbol are required", ErrInvalidToken)
	}
	if payment < params.CreationFee {
		return 0, fmt.Errorf("%w: fee %d, paid %d", ErrInsufficientPayment, params.CreationFee, payment)
	}

	var moves moveSet
	moves.add(caller, treasury, params.CreationFee)
	if err := moves.validate(e.bank); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrExternalTransferFailed, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tok := Token{
		ID:          e.nextID,
		Creator:     caller,
		Name:        name,
		Symbol:      symbol,
		MetadataURI: metadataURI,
		Curve: curve.State{
			VirtualBase:   e.curveCfg.VirtualBase,
			VirtualTokens: e.curveCfg.VirtualTokens,
			BondingSupply: e.curveCfg.BondingSupply,
		},
		Status:    StatusActive,
		CreatedAt: e.clock(),
	}

	if err := moves.apply(e.bank); err != nil {
		return 0, err
	}
	if e.store != nil {
		if err := e.store.Save(ctx, tok, nil); err != nil {
			moves.revert(e.bank)
			return 0, fmt.Errorf("persist token: %w", err)
		}
	}

	e.tokens[tok.ID] = &tokenEntry{tok: tok, ledger: NewLedger()}
	e.order = append(e.order, tok.ID)
	e.byCreator[caller] = append(e.byCreator[caller], tok.ID)
	e.nextID++

	e.logger.Info("Token created",
		zap.Uint64("token_id", tok.ID),
		zap.String("symbol", symbol),
		zap.String("creator", caller))
	return tok.ID, nil
}

// GetToken возвращает копию записи токена.
func (e *Engine) GetToken(tokenID uint64) (Token, error) {
	entry, err := e.entry(tokenID)
	if err != nil {
		return Token{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.tok, nil
}

// ListTokens возвращает страницу токенов в порядке создания.
func (e *Engine) ListTokens(offset, limit int) []Token {
	e.mu.RLock()
	ids := make([]uint64, len(e.order))
	copy(ids, e.order)
	e.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return nil
	}
	end := len(ids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]Token, 0, end-offset)
	for _, id := range ids[offset:end] {
		if tok, err := e.GetToken(id); err == nil {
			out = append(out, tok)
		}
	}
	return out
}

// TokensByCreator возвращает токены, запущенные указанным создателем.
func (e *Engine) TokensByCreator(creator string) []Token {
	e.mu.RLock()
	ids := make([]uint64, len(e.byCreator[creator]))
	copy(ids, e.byCreator[creator])
	e.mu.RUnlock()

	out := make([]Token, 0, len(ids))
	for _, id := range ids {
		if tok, err := e.GetToken(id); err == nil {
			out = append(out, tok)
		}
	}
	return out
}

// BondingCurveProgress возвращает продвижение токена к порогу градации.
func (e *Engine) BondingCurveProgress(tokenID uint64) (Progress, error) {
	params, _, _, _ := e.snapshot()
	entry, err := e.entry(tokenID)
	if err != nil {
		return Progress{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	raised := entry.tok.Curve.RealReserve
	bps := uint64(bpsDenominator)
	if entry.tok.Status != StatusGraduated {
		bps = mulDiv(raised, bpsDenominator, params.GraduationTarget)
		if bps > bpsDenominator {
			bps = bpsDenominator
		}
	}
	return Progress{
		Raised:      raised,
		Target:      params.GraduationTarget,
		ProgressBps: bps,
		TokensSold:  entry.tok.Curve.TokensSold,
	}, nil
}
