// ============================
// File: internal/venue/http.go
// ============================
package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad/internal/engine"
)

// HTTP — площадка за сетевым API. Переходные сбои сети ретраятся с
// экспоненциальным backoff до возврата в движок; сам движок ретраев не
// делает и любой итоговый отказ трактует как откат всей сделки.
type HTTP struct {
	url     string
	client  *http.Client
	logger  *zap.Logger
	maxWait time.Duration
}

// NewHTTP создаёт адаптер к площадке по адресу url.
func NewHTTP(url string, logger *zap.Logger) *HTTP {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTP{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		maxWait: 25 * time.Second,
	}
}

type addLiquidityRequest struct {
	TokenID     uint64 `json:"token_id"`
	Symbol      string `json:"symbol"`
	TokenAmount uint64 `json:"token_amount"`
	BaseAmount  uint64 `json:"base_amount"`
	MinToken    uint64 `json:"min_token"`
	MinBase     uint64 `json:"min_base"`
	Recipient   string `json:"recipient"`
	Deadline    int64  `json:"deadline_unix"`
}

type addLiquidityResponse struct {
	PoolRef string `json:"pool_ref"`
}

// AddLiquidity отправляет поставку одним POST. Ответы 4xx — постоянные
// ошибки (повторять бессмысленно), сетевые сбои и 5xx — временные.
func (h *HTTP) AddLiquidity(ctx context.Context, p engine.VenueParams) (string, error) {
	body, err := json.Marshal(addLiquidityRequest{
		TokenID:     p.TokenID,
		Symbol:      p.Symbol,
		TokenAmount: p.TokenAmount,
		BaseAmount:  p.BaseAmount,
		MinToken:    p.MinToken,
		MinBase:     p.MinBase,
		Recipient:   p.Recipient,
		Deadline:    p.Deadline.Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal add liquidity request: %w", err)
	}

	notify := func(err error, wait time.Duration) {
		h.logger.Info("Повтор поставки ликвидности после ошибки",
			zap.Error(err), zap.Duration("backoff", wait))
	}

	op := func() (string, error) {
		return h.post(ctx, body)
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(h.maxWait),
		backoff.WithNotify(notify))
}

func (h *HTTP) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err // сетевой сбой — временная ошибка
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", err
	}
	switch {
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("venue unavailable: status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return "", backoff.Permanent(fmt.Errorf("venue rejected liquidity: status %d: %s",
			resp.StatusCode, bytes.TrimSpace(payload)))
	}

	var out addLiquidityResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", backoff.Permanent(fmt.Errorf("decode venue response: %w", err))
	}
	if out.PoolRef == "" {
		return "", backoff.Permanent(fmt.Errorf("venue returned empty pool ref"))
	}
	return out.PoolRef, nil
}
