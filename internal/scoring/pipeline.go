package scoring

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pendergraft/trustscore/internal/observability/metrics"
)

// Scored pairs a sub-score with its kind.
type Scored struct {
	Kind   Kind
	Result Result
}

// Evaluation is the output of a pipeline run.
type Evaluation struct {
	Aggregate int
	// Results are in evaluation order.
	Results []Scored
}

// Pipeline runs a fixed set of scorers and aggregates them with a weight
// table whose keys were checked against the scorers at construction.
type Pipeline struct {
	scorers []Scorer
	weights WeightTable
}

// NewPipeline validates weights against the scorers' kinds.
func NewPipeline(weights WeightTable, scorers ...Scorer) (*Pipeline, error) {
	kinds := make([]Kind, 0, len(scorers))
	byKind := make(map[Kind]Scorer, len(scorers))
	for _, s := range scorers {
		kinds = append(kinds, s.Kind())
		byKind[s.Kind()] = s
	}
	if err := weights.Validate(kinds); err != nil {
		return nil, err
	}

	ordered := make([]Scorer, 0, len(scorers))
	for _, k := range weights.Kinds() {
		ordered = append(ordered, byKind[k])
	}
	return &Pipeline{scorers: ordered, weights: weights}, nil
}

// Sources are the external lookups the built-in scorers read from.
type Sources struct {
	Transactions TransactionSource
	Etherscan    VerificationSource
	Sourcify     VerificationSource
	Clock        Clock
}

// Build creates a pipeline for a preset with the scorers its table names.
func Build(preset Preset, src Sources) (*Pipeline, error) {
	weights, err := WeightsFor(preset)
	if err != nil {
		return nil, err
	}

	var scorers []Scorer
	for _, k := range weights.Kinds() {
		switch k {
		case KindPopularity:
			scorers = append(scorers, NewTransactionCountScore(src.Transactions))
		case KindInteractions:
			scorers = append(scorers, NewInteractionScore(src.Transactions))
		case KindAge:
			scorers = append(scorers, NewContractAgeScore(src.Transactions, src.Clock))
		case KindVerification:
			scorers = append(scorers, NewVerificationScore(src.Etherscan, src.Sourcify))
		}
	}
	return NewPipeline(weights, scorers...)
}

// Kinds returns the active sub-scores in evaluation order.
func (p *Pipeline) Kinds() []Kind {
	return p.weights.Kinds()
}

// Evaluate runs every scorer concurrently and aggregates once all have
// finished. The first failure cancels the others and is returned.
func (p *Pipeline) Evaluate(ctx context.Context, req Request) (*Evaluation, error) {
	results := make([]Result, len(p.scorers))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range p.scorers {
		i, s := i, s
		g.Go(func() error {
			r, err := s.Score(gctx, req)
			if err != nil {
				return fmt.Errorf("%s score: %w", s.Kind(), err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byKind := make(map[Kind]Result, len(results))
	eval := &Evaluation{Results: make([]Scored, len(results))}
	for i, s := range p.scorers {
		byKind[s.Kind()] = results[i]
		eval.Results[i] = Scored{Kind: s.Kind(), Result: results[i]}
		metrics.SubScore(string(s.Kind()), results[i].Score)
	}

	agg, err := p.weights.Aggregate(byKind)
	if err != nil {
		return nil, err
	}
	eval.Aggregate = agg
	return eval, nil
}
