// ==============================
// File: internal/engine/engine.go
// ==============================
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad/internal/curve"
)

// Служебные счета базовой валюты.
const (
	// BurnSink — невозвратный счёт: зачисленное сюда уничтожено.
	BurnSink = "sink:burn"
	// VenueAccount — счёт, с которого внешняя площадка забирает базу пула.
	VenueAccount = "venue:locked"
)

// CurveConfig — константы кривой, общие для всех создаваемых токенов.
type CurveConfig struct {
	VirtualBase   uint64
	VirtualTokens uint64
	BondingSupply uint64
}

// Params — администрируемые параметры комиссий и градации.
type Params struct {
	BuyFeeBps        uint64
	SellFeeBps       uint64
	CreationFee      uint64
	GraduationTarget uint64
	BurnBps          uint64
	LiquidityBps     uint64
	CreatorBps       uint64
	PoolTokenSupply  uint64
}

// Config — полная конфигурация движка.
type Config struct {
	Owner    string
	Treasury string
	Curve    CurveConfig
	Params   Params
}

// Validate проверяет согласованность конфигурации.
func (c Config) Validate() error {
	if c.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	if c.Treasury == "" {
		return fmt.Errorf("treasury account is required")
	}
	if c.Curve.VirtualBase == 0 || c.Curve.VirtualTokens == 0 {
		return fmt.Errorf("virtual reserves must be non-zero")
	}
	if c.Curve.BondingSupply == 0 || c.Curve.BondingSupply >= c.Curve.VirtualTokens {
		return fmt.Errorf("bonding supply must be in (0, virtual tokens)")
	}
	if c.Params.GraduationTarget == 0 {
		return fmt.Errorf("graduation target must be non-zero")
	}
	return c.Params.validateFees()
}

func (p Params) validateFees() error {
	if p.BuyFeeBps > MaxTradeFeeBps || p.SellFeeBps > MaxTradeFeeBps {
		return fmt.Errorf("trade fee exceeds %d bps cap", MaxTradeFeeBps)
	}
	if p.BurnBps+p.LiquidityBps+p.CreatorBps > bpsDenominator {
		return fmt.Errorf("graduation allocation exceeds 10000 bps")
	}
	return nil
}

// tokenEntry — запись реестра вместе с её замком и бухгалтерией.
// Замок сериализует все мутации по одному токену; разные токены
// обрабатываются параллельно.
type tokenEntry struct {
	mu     sync.Mutex
	tok    Token
	ledger *Ledger
}

// Engine — фасад движка: ценообразование, комиссии, бухгалтерия и
// градация за одним набором операций с явной идентичностью вызывающего.
type Engine struct {
	logger *zap.Logger
	bank   Bank
	store  Store
	clock  func() time.Time

	mu        sync.RWMutex // реестр, параметры, пауза
	tokens    map[uint64]*tokenEntry
	order     []uint64
	byCreator map[string][]uint64
	nextID    uint64

	venue    LiquidityVenue
	params   Params
	curveCfg CurveConfig
	paused   bool
	owner    string
	treasury string
}

// New собирает движок. store и venue могут быть nil: без store движок
// живёт в памяти, без venue любая градация завершится ошибкой и откатом.
func New(cfg Config, bank Bank, store Store, venue LiquidityVenue, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if bank == nil {
		return nil, fmt.Errorf("bank is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:    logger,
		bank:      bank,
		store:     store,
		clock:     time.Now,
		tokens:    make(map[uint64]*tokenEntry),
		byCreator: make(map[string][]uint64),
		nextID:    1,
		venue:     venue,
		params:    cfg.Params,
		curveCfg:  cfg.Curve,
		owner:     cfg.Owner,
		treasury:  cfg.Treasury,
	}, nil
}

// WithClock подменяет источник времени для детерминированных тестов.
func (e *Engine) WithClock(clock func() time.Time) {
	if clock == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock = clock
}

// Restore загружает записи и балансы из хранилища. Вызывается один раз
// при старте, до начала обслуживания операций.
func (e *Engine) Restore(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	tokens, balances, err := e.store.LoadTokens(ctx)
	if err != nil {
		return fmt.Errorf("restore tokens: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, tok := range tokens {
		entry := &tokenEntry{tok: tok, ledger: NewLedger()}
		for owner, bal := range balances[tok.ID] {
			entry.ledger.mint(owner, bal)
		}
		e.tokens[tok.ID] = entry
		e.order = append(e.order, tok.ID)
		e.byCreator[tok.Creator] = append(e.byCreator[tok.Creator], tok.ID)
		if tok.ID >= e.nextID {
			e.nextID = tok.ID + 1
		}
	}
	e.logger.Info("Engine state restored", zap.Int("tokens", len(tokens)))
	return nil
}

// snapshot возвращает read-mostly конфигурацию одним захватом RLock.
func (e *Engine) snapshot() (Params, bool, string, LiquidityVenue) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params, e.paused, e.treasury, e.venue
}

func (e *Engine) entry(tokenID uint64) (*tokenEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.tokens[tokenID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrInvalidToken, tokenID)
	}
	return entry, nil
}

// Buy покупает токены за baseIn базовых единиц. Комиссия снимается с
// принципала до кривой; после применения сделки проверяется порог
// градации, и если он пройден — градация выполняется в той же
// атомарной единице работы, до возврата из Buy.
func (e *Engine) Buy(ctx context.Context, caller string, tokenID uint64, baseIn, minTokensOut uint64, referrer string) (uint64, error) {
	params, paused, treasury, venue := e.snapshot()
	if paused {
		return 0, ErrPaused
	}
	entry, err := e.entry(tokenID)
	if err != nil {
		return 0, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.tok.Status == StatusGraduated {
		return 0, ErrAlreadyGraduated
	}
	if baseIn == 0 {
		return 0, ErrZeroAmount
	}

	split := splitFee(baseIn, params.BuyFeeBps, referrer, caller)
	st := entry.tok.Curve
	tokensOut := curve.QuoteBuy(st, split.Net)
	if tokensOut == 0 {
		return 0, fmt.Errorf("%w: trade too small for one token unit", ErrZeroAmount)
	}
	if tokensOut > st.Remaining() {
		// Накопленное округление может исчерпать эмиссию на пару единиц
		// раньше порога. Покупка, доводящая резерв до порога, выметает
		// остаток эмиссии за весь внесённый принципал; ниже порога
		// остаток кривой не продаётся.
		if split.Net < params.GraduationTarget-st.RealReserve {
			return 0, fmt.Errorf("%w: want %d tokens, curve has %d left",
				ErrInsufficientLiquidity, tokensOut, st.Remaining())
		}
		tokensOut = st.Remaining()
	}
	if tokensOut < minTokensOut {
		return 0, fmt.Errorf("%w: out %d below min %d", ErrSlippageExceeded, tokensOut, minTokensOut)
	}

	next := entry.tok
	next.Curve.RealReserve += split.Net
	next.Curve.TokensSold += tokensOut
	next.Volume += baseIn

	var moves moveSet
	moves.add(caller, treasury, split.TreasuryCut)
	moves.add(caller, split.Referrer, split.ReferrerCut)
	moves.add(caller, next.EscrowAccount(), split.Net)

	// Градация — по порогу либо по исчерпанию эмиссии кривой: второй
	// случай достижим на пару единиц раньше первого из-за округления.
	graduating := next.Curve.RealReserve >= params.GraduationTarget ||
		next.Curve.TokensSold == next.Curve.BondingSupply
	var alloc allocation
	if graduating {
		alloc = allocate(params)
		moves.add(next.EscrowAccount(), BurnSink, alloc.Burn)
		moves.add(next.EscrowAccount(), VenueAccount, alloc.Liquidity)
		moves.add(next.EscrowAccount(), next.Creator, alloc.Creator)
	}
	if err := moves.validate(e.bank); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrExternalTransferFailed, err)
	}

	if graduating {
		poolRef, err := e.executeGraduation(ctx, venue, &next, alloc)
		if err != nil {
			return 0, err
		}
		next.Status = StatusGraduated
		next.GraduatedAt = e.clock()
		next.PoolRef = poolRef
	}

	if err := moves.apply(e.bank); err != nil {
		return 0, err
	}
	if e.store != nil {
		changed := map[string]uint64{caller: entry.ledger.Balance(caller) + tokensOut}
		if err := e.store.Save(ctx, next, changed); err != nil {
			moves.revert(e.bank)
			return 0, fmt.Errorf("persist buy: %w", err)
		}
	}

	entry.ledger.mint(caller, tokensOut)
	entry.tok = next

	e.logger.Debug("Buy executed",
		zap.Uint64("token_id", tokenID),
		zap.String("buyer", caller),
		zap.Uint64("base_in", baseIn),
		zap.Uint64("tokens_out", tokensOut),
		zap.Bool("graduated", graduating))
	return tokensOut, nil
}

// Sell продаёт tokensIn токенов обратно кривой. Комиссия снимается с
// базового выхода; minBaseOut сравнивается с чистой суммой продавца.
func (e *Engine) Sell(ctx context.Context, caller string, tokenID uint64, tokensIn, minBaseOut uint64, referrer string) (uint64, error) {
	params, paused, treasury, _ := e.snapshot()
	if paused {
		return 0, ErrPaused
	}
	entry, err := e.entry(tokenID)
	if err != nil {
		return 0, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.tok.Status == StatusGraduated {
		return 0, ErrAlreadyGraduated
	}
	if tokensIn == 0 {
		return 0, ErrZeroAmount
	}
	if have := entry.ledger.Balance(caller); have < tokensIn {
		return 0, fmt.Errorf("%w: have %d tokens, sell %d", ErrInsufficientBalance, have, tokensIn)
	}

	st := entry.tok.Curve
	gross := curve.QuoteSell(st, tokensIn)
	if gross > st.RealReserve {
		// Защита от накопленного округления; математически недостижимо.
		gross = st.RealReserve
	}
	split := splitFee(gross, params.SellFeeBps, referrer, caller)
	if split.Net < minBaseOut {
		return 0, fmt.Errorf("%w: out %d below min %d", ErrSlippageExceeded, split.Net, minBaseOut)
	}

	next := entry.tok
	next.Curve.RealReserve -= gross
	next.Curve.TokensSold -= tokensIn
	next.Volume += gross

	var moves moveSet
	moves.add(next.EscrowAccount(), treasury, split.TreasuryCut)
	moves.add(next.EscrowAccount(), split.Referrer, split.ReferrerCut)
	moves.add(next.EscrowAccount(), caller, split.Net)
	if err := moves.validate(e.bank); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrExternalTransferFailed, err)
	}

	if err := moves.apply(e.bank); err != nil {
		return 0, err
	}
	if e.store != nil {
		changed := map[string]uint64{caller: entry.ledger.Balance(caller) - tokensIn}
		if err := e.store.Save(ctx, next, changed); err != nil {
			moves.revert(e.bank)
			return 0, fmt.Errorf("persist sell: %w", err)
		}
	}

	if err := entry.ledger.burn(caller, tokensIn); err != nil {
		// Баланс проверен выше; сюда попасть нельзя.
		moves.revert(e.bank)
		return 0, err
	}
	entry.tok = next

	e.logger.Debug("Sell executed",
		zap.Uint64("token_id", tokenID),
		zap.String("seller", caller),
		zap.Uint64("tokens_in", tokensIn),
		zap.Uint64("base_out", split.Net))
	return split.Net, nil
}

// Burn гасит tokensIn токенов пропорциональным выкупом из собранного
// резерва: baseOut = tokensIn*RealReserve/TokensSold. Без комиссии,
// только до градации.
func (e *Engine) Burn(ctx context.Context, caller string, tokenID uint64, tokensIn uint64) (uint64, error) {
	_, paused, _, _ := e.snapshot()
	if paused {
		return 0, ErrPaused
	}
	entry, err := e.entry(tokenID)
	if err != nil {
		return 0, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.tok.Status == StatusGraduated {
		return 0, ErrAlreadyGraduated
	}
	if tokensIn == 0 {
		return 0, ErrZeroAmount
	}
	if have := entry.ledger.Balance(caller); have < tokensIn {
		return 0, fmt.Errorf("%w: have %d tokens, burn %d", ErrInsufficientBalance, have, tokensIn)
	}

	baseOut := curve.QuoteBurn(entry.tok.Curve, tokensIn)

	next := entry.tok
	next.Curve.RealReserve -= baseOut
	next.TotalBurned += tokensIn

	var moves moveSet
	moves.add(next.EscrowAccount(), caller, baseOut)
	if err := moves.validate(e.bank); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrExternalTransferFailed, err)
	}

	if err := moves.apply(e.bank); err != nil {
		return 0, err
	}
	if e.store != nil {
		changed := map[string]uint64{caller: entry.ledger.Balance(caller) - tokensIn}
		if err := e.store.Save(ctx, next, changed); err != nil {
			moves.revert(e.bank)
			return 0, fmt.Errorf("persist burn: %w", err)
		}
	}

	if err := entry.ledger.burn(caller, tokensIn); err != nil {
		moves.revert(e.bank)
		return 0, err
	}
	entry.tok = next

	e.logger.Debug("Burn executed",
		zap.Uint64("token_id", tokenID),
		zap.String("holder", caller),
		zap.Uint64("tokens_in", tokensIn),
		zap.Uint64("base_out", baseOut))
	return baseOut, nil
}

// QuoteBuy возвращает выход токенов за baseIn с учётом текущей комиссии,
// без побочных эффектов.
func (e *Engine) QuoteBuy(tokenID uint64, baseIn uint64) (uint64, error) {
	params, _, _, _ := e.snapshot()
	entry, err := e.entry(tokenID)
	if err != nil {
		return 0, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.tok.Status == StatusGraduated {
		return 0, ErrAlreadyGraduated
	}
	if baseIn == 0 {
		return 0, ErrZeroAmount
	}
	split := splitFee(baseIn, params.BuyFeeBps, "", "")
	st := entry.tok.Curve
	out := curve.QuoteBuy(st, split.Net)
	if out > st.Remaining() {
		// Та же логика финальной покупки, что и в Buy.
		if split.Net < params.GraduationTarget-st.RealReserve {
			return 0, fmt.Errorf("%w: want %d tokens, curve has %d left",
				ErrInsufficientLiquidity, out, st.Remaining())
		}
		out = st.Remaining()
	}
	return out, nil
}

// QuoteSell возвращает чистый базовый выход за tokensIn с учётом комиссии.
func (e *Engine) QuoteSell(tokenID uint64, tokensIn uint64) (uint64, error) {
	params, _, _, _ := e.snapshot()
	entry, err := e.entry(tokenID)
	if err != nil {
		return 0, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.tok.Status == StatusGraduated {
		return 0, ErrAlreadyGraduated
	}
	if tokensIn == 0 {
		return 0, ErrZeroAmount
	}
	gross := curve.QuoteSell(entry.tok.Curve, tokensIn)
	split := splitFee(gross, params.SellFeeBps, "", "")
	return split.Net, nil
}

// Price возвращает спотовую цену токена, масштабированную curve.PriceScale.
func (e *Engine) Price(tokenID uint64) (*uint256.Int, error) {
	entry, err := e.entry(tokenID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return curve.Price(entry.tok.Curve), nil
}

// Transfer переводит amount токенов со счёта вызывающего. Изменённые
// балансы персистятся той же атомарной записью, что и у сделок.
func (e *Engine) Transfer(ctx context.Context, caller string, tokenID uint64, to string, amount uint64) error {
	_, paused, _, _ := e.snapshot()
	if paused {
		return ErrPaused
	}
	entry, err := e.entry(tokenID)
	if err != nil {
		return err
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := entry.ledger.transfer(caller, to, amount); err != nil {
		return err
	}
	if e.store != nil {
		changed := map[string]uint64{
			caller: entry.ledger.Balance(caller),
			to:     entry.ledger.Balance(to),
		}
		if err := e.store.Save(ctx, entry.tok, changed); err != nil {
			// У получателя средства есть: обратный перевод не может упасть.
			_ = entry.ledger.transfer(to, caller, amount)
			return fmt.Errorf("persist transfer: %w", err)
		}
	}
	return nil
}

// Approve выставляет spender лимит расхода от имени вызывающего.
func (e *Engine) Approve(caller string, tokenID uint64, spender string, amount uint64) error {
	_, paused, _, _ := e.snapshot()
	if paused {
		return ErrPaused
	}
	entry, err := e.entry(tokenID)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.ledger.approve(caller, spender, amount)
	return nil
}

// TransferFrom расходует allowance вызывающего и переводит amount от from к to.
func (e *Engine) TransferFrom(ctx context.Context, caller string, tokenID uint64, from, to string, amount uint64) error {
	_, paused, _, _ := e.snapshot()
	if paused {
		return ErrPaused
	}
	entry, err := e.entry(tokenID)
	if err != nil {
		return err
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if err := entry.ledger.spendAllowance(from, caller, amount); err != nil {
		return err
	}
	if err := entry.ledger.transfer(from, to, amount); err != nil {
		// Возвращаем списанный лимит: операция целиком не состоялась.
		entry.ledger.approve(from, caller, entry.ledger.Allowance(from, caller)+amount)
		return err
	}
	if e.store != nil {
		changed := map[string]uint64{
			from: entry.ledger.Balance(from),
			to:   entry.ledger.Balance(to),
		}
		if err := e.store.Save(ctx, entry.tok, changed); err != nil {
			_ = entry.ledger.transfer(to, from, amount)
			entry.ledger.approve(from, caller, entry.ledger.Allowance(from, caller)+amount)
			return fmt.Errorf("persist transfer: %w", err)
		}
	}
	return nil
}

// BalanceOf возвращает баланс владельца по токену.
func (e *Engine) BalanceOf(tokenID uint64, owner string) (uint64, error) {
	entry, err := e.entry(tokenID)
	if err != nil {
		return 0, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.ledger.Balance(owner), nil
}

// Allowance возвращает остаток лимита spender у owner.
func (e *Engine) Allowance(tokenID uint64, owner, spender string) (uint64, error) {
	entry, err := e.entry(tokenID)
	if err != nil {
		return 0, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.ledger.Allowance(owner, spender), nil
}
