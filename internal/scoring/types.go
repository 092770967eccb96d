// Package scoring computes the independent trust sub-scores of a contract and
// combines them into one weighted verdict.
package scoring

import (
	"context"
	"time"

	"github.com/pendergraft/trustscore/internal/chains"
	"github.com/pendergraft/trustscore/internal/explorer"
)

// Ordinal scores. Higher is more trustworthy.
const (
	ScoreLow    = 1
	ScoreMedium = 2
	ScoreHigh   = 3
)

// Kind names a sub-score.
type Kind string

// Sub-score kinds.
const (
	KindPopularity   Kind = "popularity"
	KindInteractions Kind = "interactions"
	KindAge          Kind = "age"
	KindVerification Kind = "verification"
)

// EvaluationOrder is the order sub-scores are presented in.
var EvaluationOrder = []Kind{KindPopularity, KindInteractions, KindAge, KindVerification}

// Result is the outcome of one scoring function.
type Result struct {
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// Request identifies the transaction being scored.
type Request struct {
	ChainID         chains.ChainID
	ContractAddress string
	UserAddress     string
}

// Scorer is one scoring function.
type Scorer interface {
	Kind() Kind
	Score(ctx context.Context, req Request) (Result, error)
}

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

// ContractTxSource lists a contract's transactions page by page.
type ContractTxSource interface {
	ContractTransactions(ctx context.Context, chainID chains.ChainID, address string, offset int) ([]explorer.Transaction, error)
}

// FirstTxSource returns the oldest transaction of an address.
type FirstTxSource interface {
	FirstTransaction(ctx context.Context, chainID chains.ChainID, address string) (*explorer.Transaction, error)
}

// AccountTxSource lists the full history of an address.
type AccountTxSource interface {
	AccountTransactions(ctx context.Context, chainID chains.ChainID, address string) ([]explorer.Transaction, error)
}

// VerificationSource reports whether a contract's source is verified.
type VerificationSource interface {
	IsVerified(ctx context.Context, chainID chains.ChainID, address string) (bool, error)
}

// TransactionSource is everything the history-based scorers need.
type TransactionSource interface {
	ContractTxSource
	FirstTxSource
	AccountTxSource
}
