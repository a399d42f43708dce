// ===========================
// File: internal/task/task.go
// ===========================

// Package task загружает декларативные задания оператора (создание
// токенов, сделки) и исполняет их против движка пулом воркеров.
package task

// OperationType — вид задания.
type OperationType string

const (
	OperationCreate OperationType = "create"
	OperationBuy    OperationType = "buy"
	OperationSell   OperationType = "sell"
	OperationBurn   OperationType = "burn"
)

// Task — одно задание из YAML-файла.
type Task struct {
	TaskName  string
	Operation OperationType
	Actor     string // идентичность вызывающего; передаётся движку явно
	Deposit   uint64 // стартовое фондирование счёта перед заданием

	// create
	Name        string
	Symbol      string
	MetadataURI string
	Payment     uint64

	// buy/sell/burn
	TokenID  uint64
	AmountIn uint64
	MinOut   uint64
	Referrer string
}
