// =============================
// File: internal/task/runner.go
// =============================
package task

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/launchpad/internal/bank"
	"github.com/rovshanmuradov/launchpad/internal/engine"
)

// Runner исполняет задания против движка. Создания выполняются
// последовательно (последующие задания ссылаются на выданные id),
// сделки — параллельно пулом воркеров: движок сериализует только
// операции по одному и тому же токену.
type Runner struct {
	engine  *engine.Engine
	bank    *bank.InMemory
	logger  *zap.Logger
	workers int
}

// NewRunner собирает исполнитель заданий.
func NewRunner(eng *engine.Engine, b *bank.InMemory, workers int, logger *zap.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{engine: eng, bank: b, logger: logger, workers: workers}
}

// Run выполняет все задания. Ошибка любого задания останавливает прогон.
func (r *Runner) Run(ctx context.Context, tasks []*Task) error {
	var creations, trades []*Task
	for _, t := range tasks {
		if t.Deposit > 0 {
			r.bank.Deposit(t.Actor, t.Deposit)
		}
		if t.Operation == OperationCreate {
			creations = append(creations, t)
		} else {
			trades = append(trades, t)
		}
	}

	for _, t := range creations {
		id, err := r.engine.CreateToken(ctx, t.Actor, t.Name, t.Symbol, t.MetadataURI, t.Payment)
		if err != nil {
			return fmt.Errorf("task %s: %w", t.TaskName, err)
		}
		r.logger.Info("Token launched",
			zap.String("task", t.TaskName),
			zap.Uint64("token_id", id),
			zap.String("symbol", t.Symbol))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, t := range trades {
		t := t
		g.Go(func() error {
			if err := r.execute(gctx, t); err != nil {
				return fmt.Errorf("task %s: %w", t.TaskName, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) execute(ctx context.Context, t *Task) error {
	switch t.Operation {
	case OperationBuy:
		out, err := r.engine.Buy(ctx, t.Actor, t.TokenID, t.AmountIn, t.MinOut, t.Referrer)
		if err != nil {
			return err
		}
		r.logger.Info("Buy filled",
			zap.String("task", t.TaskName),
			zap.Uint64("token_id", t.TokenID),
			zap.Uint64("tokens_out", out))
	case OperationSell:
		out, err := r.engine.Sell(ctx, t.Actor, t.TokenID, t.AmountIn, t.MinOut, t.Referrer)
		if err != nil {
			return err
		}
		r.logger.Info("Sell filled",
			zap.String("task", t.TaskName),
			zap.Uint64("token_id", t.TokenID),
			zap.Uint64("base_out", out))
	case OperationBurn:
		out, err := r.engine.Burn(ctx, t.Actor, t.TokenID, t.AmountIn)
		if err != nil {
			return err
		}
		r.logger.Info("Burn redeemed",
			zap.String("task", t.TaskName),
			zap.Uint64("token_id", t.TokenID),
			zap.Uint64("base_out", out))
	default:
		return fmt.Errorf("unsupported operation: %q", t.Operation)
	}
	return nil
}
