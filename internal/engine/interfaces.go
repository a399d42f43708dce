// ==================================
// File: internal/engine/interfaces.go
// ==================================
package engine

import (
	"context"
	"time"
)

// Bank — счёт базовой валюты, в которой трейдеры платят за токены.
// Движок только переводит между счетами; эмиссию базы он не контролирует.
// Реализация обязана быть потокобезопасной: операции по разным токенам
// идут параллельно, а счёт трейдера у них общий.
type Bank interface {
	// Transfer переводит amount с from на to. Ошибка при нехватке средств.
	Transfer(from, to string, amount uint64) error
	// Balance возвращает текущий остаток счёта.
	Balance(account string) uint64
}

// VenueParams — параметры разовой поставки ликвидности на внешнюю
// площадку при градации токена.
type VenueParams struct {
	TokenID     uint64
	Symbol      string
	TokenAmount uint64 // свежая эмиссия под пул
	BaseAmount  uint64 // базовая валюта из собранного принципала
	MinToken    uint64
	MinBase     uint64
	Recipient   string // держатель pool-ref; по договорённости "заперт"
	Deadline    time.Time
}

// LiquidityVenue — внешняя торговая площадка. Вызывается синхронно при
// градации: ошибка здесь откатывает всю сделку, вызвавшую градацию.
// Реализация обязана быть идемпотентной по токену — если сделка
// откатилась уже после успешной поставки (например, не записалось
// состояние), повторный вызов возвращает ссылку существующего пула.
// Ретраи переходных сбоев, если нужны, тоже живут внутри реализации.
type LiquidityVenue interface {
	AddLiquidity(ctx context.Context, p VenueParams) (poolRef string, err error)
}

// Store — долговременное хранилище записей токенов и балансов.
// Save обязан применять запись токена и изменённые балансы атомарно.
// nil-store допустим: движок тогда работает только в памяти.
type Store interface {
	Save(ctx context.Context, tok Token, changed map[string]uint64) error
	LoadTokens(ctx context.Context) ([]Token, map[uint64]map[string]uint64, error)
}
