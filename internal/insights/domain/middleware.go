package domain

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pendergraft/trustscore/internal/chains"
)

// loggingService is the interface required for logging middleware.
type loggingService interface {
	OnTransactionReview(ctx context.Context, tx Transaction, chainID string) *Response
	Chains(ctx context.Context) []chains.Explorer
}

// LoggingMiddleware returns a service middleware that logs all operations.
func LoggingMiddleware(logger *slog.Logger) func(loggingService) *loggingMiddleware {
	return func(next loggingService) *loggingMiddleware {
		return &loggingMiddleware{
			next:   next,
			logger: logger,
		}
	}
}

type loggingMiddleware struct {
	next   loggingService
	logger *slog.Logger
}

// OnTransactionReview logs one line per review. Calls without a request id
// (the in-process check command) get a fresh one in their context.
func (m *loggingMiddleware) OnTransactionReview(ctx context.Context, tx Transaction, chainID string) *Response {
	ctx, id := withRequestID(ctx)
	start := time.Now()
	resp := m.next.OnTransactionReview(ctx, tx, chainID)

	view := tx.View()
	attrs := []any{
		"request_id", id,
		"chain", chainID,
		"to", view.To,
		"outcome", resp.Outcome,
		"duration", time.Since(start),
	}
	if resp.Outcome == OutcomeOK {
		m.logger.Info("OnTransactionReview", append(attrs, "aggregate", resp.Aggregate)...)
	} else {
		m.logger.Warn("OnTransactionReview", append(attrs, "error", resp.Err)...)
	}
	return resp
}

func (m *loggingMiddleware) Chains(ctx context.Context) []chains.Explorer {
	start := time.Now()
	list := m.next.Chains(ctx)
	m.logger.Debug("Chains",
		"count", len(list),
		"duration", time.Since(start),
	)
	return list
}

func withRequestID(ctx context.Context) (context.Context, string) {
	if id := middleware.GetReqID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return context.WithValue(ctx, middleware.RequestIDKey, id), id
}
