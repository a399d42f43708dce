// =============================
// File: internal/engine/token.go
// =============================
package engine

import (
	"fmt"
	"time"

	"github.com/rovshanmuradov/launchpad/internal/curve"
)

// Status is the lifecycle state of a launched token.
type Status uint8

const (
	// StatusActive — токен торгуется через кривую.
	StatusActive Status = iota
	// StatusGraduated — кривая навсегда отключена, ликвидность выведена
	// на внешнюю площадку. Терминальное состояние.
	StatusGraduated
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusGraduated:
		return "graduated"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Token — запись о запущенном токене. Владеет ею реестр; мутируют её
// только операции движка под замком токена.
type Token struct {
	ID          uint64
	Creator     string
	Name        string
	Symbol      string
	MetadataURI string

	Curve       curve.State
	TotalBurned uint64 // погашено через proportional redemption
	Volume      uint64 // суммарный оборот в базовых единицах

	Status      Status
	CreatedAt   time.Time
	GraduatedAt time.Time // нулевое время до градации
	PoolRef     string    // ссылка на пул внешней площадки, заперта навсегда
}

// EscrowAccount возвращает имя банковского счёта, на котором кривая
// держит привлечённую базу этого токена.
func (t *Token) EscrowAccount() string {
	return fmt.Sprintf("curve:%d", t.ID)
}
