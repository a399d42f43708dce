// ==============================
// File: internal/engine/errors.go
// ==============================
package engine

import "errors"

// Ошибки движка. Каждая мутирующая операция либо проходит целиком, либо
// возвращает одну из этих ошибок без каких-либо побочных эффектов.
var (
	// ErrInsufficientPayment — заявленная оплата ниже фиксированной платы за создание.
	ErrInsufficientPayment = errors.New("insufficient payment")
	// ErrZeroAmount — нулевой объём операции.
	ErrZeroAmount = errors.New("zero amount")
	// ErrInvalidToken — неизвестный идентификатор токена.
	ErrInvalidToken = errors.New("invalid token")
	// ErrAlreadyGraduated — кривая токена навсегда отключена.
	ErrAlreadyGraduated = errors.New("token already graduated")
	// ErrSlippageExceeded — фактический результат хуже заявленного минимума.
	ErrSlippageExceeded = errors.New("slippage exceeded")
	// ErrInsufficientBalance — недостаточно средств или токенов.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrAllowanceExceeded — расход превышает одобренный лимит.
	ErrAllowanceExceeded = errors.New("allowance exceeded")
	// ErrInsufficientLiquidity — покупка превысила бы эмиссию кривой.
	ErrInsufficientLiquidity = errors.New("insufficient curve liquidity")
	// ErrPaused — движок остановлен администратором.
	ErrPaused = errors.New("engine paused")
	// ErrExternalTransferFailed — не прошёл платёж или вызов внешней площадки.
	ErrExternalTransferFailed = errors.New("external transfer failed")
	// ErrUnauthorized — операция доступна только владельцу.
	ErrUnauthorized = errors.New("unauthorized")
)
