package scoring

import (
	"context"
	"fmt"
)

// Page sizes used as "at least N transactions" probes.
const (
	PopularityHighThreshold   = 100
	PopularityMediumThreshold = 50
)

// TransactionCountScore rates a contract by how many transactions it has.
//
// It never counts the full history: it asks for one page of N rows and
// treats a page of exactly N rows as "N or more".
type TransactionCountScore struct {
	txs ContractTxSource
}

// NewTransactionCountScore creates the popularity scorer.
func NewTransactionCountScore(txs ContractTxSource) *TransactionCountScore {
	return &TransactionCountScore{txs: txs}
}

// Kind implements Scorer.
func (s *TransactionCountScore) Kind() Kind { return KindPopularity }

// Score implements Scorer.
func (s *TransactionCountScore) Score(ctx context.Context, req Request) (Result, error) {
	full, err := s.hasPage(ctx, req, PopularityHighThreshold)
	if err != nil {
		return Result{}, err
	}
	if full {
		return Result{Score: ScoreHigh, Description: fmt.Sprintf("%d+ transactions", PopularityHighThreshold)}, nil
	}

	full, err = s.hasPage(ctx, req, PopularityMediumThreshold)
	if err != nil {
		return Result{}, err
	}
	if full {
		return Result{Score: ScoreMedium, Description: fmt.Sprintf("%d+ transactions", PopularityMediumThreshold)}, nil
	}

	return Result{Score: ScoreLow, Description: fmt.Sprintf("fewer than %d transactions", PopularityMediumThreshold)}, nil
}

func (s *TransactionCountScore) hasPage(ctx context.Context, req Request, size int) (bool, error) {
	txs, err := s.txs.ContractTransactions(ctx, req.ChainID, req.ContractAddress, size)
	if err != nil {
		return false, fmt.Errorf("listing %d contract transactions: %w", size, err)
	}
	return len(txs) == size, nil
}
