package scoring

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Interaction thresholds; both are strict lower bounds.
const (
	InteractionsHighAbove   = 5
	InteractionsMediumAbove = 1
)

// InteractionScore rates a contract by how often the sender has already
// called it.
//
// Addresses are compared as 20-byte values, so checksummed and lower-case
// spellings of the same address match.
type InteractionScore struct {
	txs AccountTxSource
}

// NewInteractionScore creates the previous-interactions scorer.
func NewInteractionScore(txs AccountTxSource) *InteractionScore {
	return &InteractionScore{txs: txs}
}

// Kind implements Scorer.
func (s *InteractionScore) Kind() Kind { return KindInteractions }

// Score implements Scorer.
func (s *InteractionScore) Score(ctx context.Context, req Request) (Result, error) {
	txs, err := s.txs.AccountTransactions(ctx, req.ChainID, req.UserAddress)
	if err != nil {
		return Result{}, fmt.Errorf("listing user transactions: %w", err)
	}

	contract := common.HexToAddress(req.ContractAddress)
	count := 0
	for _, tx := range txs {
		if tx.To == "" {
			continue // contract creation
		}
		if common.HexToAddress(tx.To) == contract {
			count++
		}
	}

	return InteractionResult(count), nil
}

// InteractionResult maps an interaction count to a Result.
func InteractionResult(count int) Result {
	var score int
	switch {
	case count > InteractionsHighAbove:
		score = ScoreHigh
	case count > InteractionsMediumAbove:
		score = ScoreMedium
	default:
		score = ScoreLow
	}

	var desc string
	switch count {
	case 0:
		desc = "no previous interactions"
	case 1:
		desc = "1 previous interaction"
	default:
		desc = fmt.Sprintf("%d previous interactions", count)
	}

	return Result{Score: score, Description: desc}
}
