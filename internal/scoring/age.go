package scoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pendergraft/trustscore/internal/explorer"
)

// Month is a flat 30 days, not a calendar month.
const Month = 30 * 24 * time.Hour

// ContractAgeScore rates a contract by the age of its first transaction.
type ContractAgeScore struct {
	txs FirstTxSource
	now Clock
}

// NewContractAgeScore creates the age scorer. A nil clock means time.Now.
func NewContractAgeScore(txs FirstTxSource, now Clock) *ContractAgeScore {
	if now == nil {
		now = time.Now
	}
	return &ContractAgeScore{txs: txs, now: now}
}

// Kind implements Scorer.
func (s *ContractAgeScore) Kind() Kind { return KindAge }

// Score implements Scorer. A contract with no transactions at all gets the
// lowest score instead of an error.
func (s *ContractAgeScore) Score(ctx context.Context, req Request) (Result, error) {
	tx, err := s.txs.FirstTransaction(ctx, req.ChainID, req.ContractAddress)
	if errors.Is(err, explorer.ErrNoTransactions) {
		return Result{Score: ScoreLow, Description: "unknown (no transactions)"}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("fetching first transaction: %w", err)
	}

	ts, err := strconv.ParseInt(tx.TimeStamp, 10, 64)
	if err != nil {
		return Result{}, &explorer.Error{
			Kind: explorer.KindDecode,
			Err:  fmt.Errorf("first transaction timestamp %q: %w", tx.TimeStamp, err),
		}
	}

	return AgeResult(s.now().Sub(time.Unix(ts, 0))), nil
}

// AgeResult maps the time since the first transaction to a Result.
func AgeResult(elapsed time.Duration) Result {
	switch {
	case elapsed > 2*Month:
		return Result{Score: ScoreHigh, Description: "older than 2 months"}
	case elapsed > Month:
		return Result{Score: ScoreMedium, Description: "older than 1 month"}
	default:
		return Result{Score: ScoreLow, Description: "less than 1 month old"}
	}
}
