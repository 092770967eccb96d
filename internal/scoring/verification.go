package scoring

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Verification descriptions.
const (
	DescVerified             = "verified"
	DescNotVerifiedEtherscan = "not verified on Etherscan"
	DescNotVerifiedSourcify  = "not verified on Sourcify"
	DescNotVerified          = "not verified"
)

// VerificationScore rates a contract by whether its source is verified on
// the chain's explorer and on Sourcify. Both lookups run concurrently.
type VerificationScore struct {
	etherscan VerificationSource
	sourcify  VerificationSource
}

// NewVerificationScore creates the verification scorer.
func NewVerificationScore(etherscan, sourcify VerificationSource) *VerificationScore {
	return &VerificationScore{etherscan: etherscan, sourcify: sourcify}
}

// Kind implements Scorer.
func (s *VerificationScore) Kind() Kind { return KindVerification }

// Score implements Scorer.
func (s *VerificationScore) Score(ctx context.Context, req Request) (Result, error) {
	var onEtherscan, onSourcify bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ok, err := s.etherscan.IsVerified(gctx, req.ChainID, req.ContractAddress)
		if err != nil {
			return fmt.Errorf("checking etherscan verification: %w", err)
		}
		onEtherscan = ok
		return nil
	})
	g.Go(func() error {
		ok, err := s.sourcify.IsVerified(gctx, req.ChainID, req.ContractAddress)
		if err != nil {
			return fmt.Errorf("checking sourcify verification: %w", err)
		}
		onSourcify = ok
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return VerificationResult(onEtherscan, onSourcify), nil
}

// VerificationResult combines the two verification flags. A missing
// Etherscan verification is reported before a missing Sourcify one.
func VerificationResult(onEtherscan, onSourcify bool) Result {
	switch {
	case !onEtherscan && !onSourcify:
		return Result{Score: ScoreLow, Description: DescNotVerified}
	case !onEtherscan:
		return Result{Score: ScoreMedium, Description: DescNotVerifiedEtherscan}
	case !onSourcify:
		return Result{Score: ScoreMedium, Description: DescNotVerifiedSourcify}
	default:
		return Result{Score: ScoreHigh, Description: DescVerified}
	}
}
