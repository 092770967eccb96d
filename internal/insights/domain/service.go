package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pendergraft/trustscore/internal/chains"
	"github.com/pendergraft/trustscore/internal/explorer"
	"github.com/pendergraft/trustscore/internal/observability/metrics"
	"github.com/pendergraft/trustscore/internal/scoring"
	"github.com/pendergraft/trustscore/internal/validation"
)

// Common errors returned by the insights service.
var (
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// Fallback reasons shown to the user when no score is available.
const (
	ReasonInvalidTransaction = "This transaction has no contract destination that can be scored."
	ReasonUnsupportedChain   = "Trust scores are not available on this network."
	ReasonTimeout            = "The block explorer took too long to respond."
	ReasonTransport          = "The block explorer could not be reached."
	ReasonDecode             = "The block explorer returned an unexpected response."
	ReasonUpstreamMissing    = "The block explorer did not return enough data about this contract."
	ReasonInternal           = "The trust score could not be computed."
)

// Service defines the transaction-review operations.
type Service interface {
	OnTransactionReview(ctx context.Context, tx Transaction, chainID string) *Response
	Chains(ctx context.Context) []chains.Explorer
}

// Evaluator runs the scoring pipeline.
type Evaluator interface {
	Evaluate(ctx context.Context, req scoring.Request) (*scoring.Evaluation, error)
}

// ChainRegistry lists the chains that have an explorer configured.
type ChainRegistry interface {
	Get(id chains.ChainID) (chains.Explorer, error)
	List() []chains.Explorer
}

type service struct {
	evaluator Evaluator
	chains    ChainRegistry
	timeout   time.Duration
}

// NewService creates the transaction-review handler. A zero timeout means
// only the caller's context bounds an evaluation.
func NewService(evaluator Evaluator, registry ChainRegistry, timeout time.Duration) *service {
	return &service{
		evaluator: evaluator,
		chains:    registry,
		timeout:   timeout,
	}
}

// OnTransactionReview scores the destination contract of tx and renders the
// result. It always returns a panel; failures are rendered as an
// "unavailable" panel whose reason depends on the failure.
func (s *service) OnTransactionReview(ctx context.Context, tx Transaction, chainID string) *Response {
	start := time.Now()
	resp := s.review(ctx, tx, chainID)
	metrics.Evaluation(resp.Outcome, time.Since(start))
	return resp
}

// Chains returns the chains trust scores can be computed for.
func (s *service) Chains(ctx context.Context) []chains.Explorer {
	return s.chains.List()
}

func (s *service) review(ctx context.Context, tx Transaction, rawChainID string) *Response {
	req, err := s.request(tx, rawChainID)
	if err != nil {
		return fallback(ctx, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	eval, err := s.evaluator.Evaluate(ctx, req)
	if err != nil {
		return fallback(ctx, err)
	}

	return &Response{
		Insights:  Render(eval),
		Outcome:   OutcomeOK,
		Aggregate: eval.Aggregate,
	}
}

func (s *service) request(tx Transaction, rawChainID string) (scoring.Request, error) {
	chainID, err := validation.ValidateChainID(rawChainID)
	if err != nil {
		return scoring.Request{}, fmt.Errorf("%w: %v", chains.ErrUnsupportedChain, err)
	}
	if _, err := s.chains.Get(chainID); err != nil {
		return scoring.Request{}, err
	}

	view := tx.View()
	if err := validation.ValidateTransaction(view.From, view.To); err != nil {
		return scoring.Request{}, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	return scoring.Request{
		ChainID:         chainID,
		ContractAddress: view.To,
		UserAddress:     view.From,
	}, nil
}

// fallback picks the unavailable panel for err. ctx is the evaluation
// context, used to tell our own deadline from an explorer failure.
func fallback(ctx context.Context, err error) *Response {
	outcome, reason := classify(ctx, err)
	return &Response{
		Insights: RenderUnavailable(reason),
		Outcome:  outcome,
		Err:      err,
	}
}

func classify(ctx context.Context, err error) (outcome, reason string) {
	switch {
	case errors.Is(err, ErrInvalidTransaction):
		return OutcomeInvalidTransaction, ReasonInvalidTransaction
	case errors.Is(err, chains.ErrUnsupportedChain):
		return OutcomeUnsupportedChain, ReasonUnsupportedChain
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return OutcomeTimeout, ReasonTimeout
	case errors.Is(ctx.Err(), context.Canceled):
		return OutcomeCanceled, ReasonTimeout
	}

	switch explorer.KindOf(err) {
	case explorer.KindTransport:
		return OutcomeTransport, ReasonTransport
	case explorer.KindDecode:
		return OutcomeDecode, ReasonDecode
	case explorer.KindUpstreamDataMissing:
		return OutcomeUpstreamMissing, ReasonUpstreamMissing
	}
	return OutcomeInternal, ReasonInternal
}
