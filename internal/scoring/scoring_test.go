package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/trustscore/internal/chains"
	"github.com/pendergraft/trustscore/internal/explorer"
)

const (
	contractAddr = "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	userAddr     = "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"
)

var testRequest = Request{
	ChainID:         "eip155:1",
	ContractAddress: contractAddr,
	UserAddress:     userAddr,
}

// mockSource implements TransactionSource for testing
type mockSource struct {
	mu       sync.Mutex
	pageRows map[int]int
	pageErr  error
	offsets  []int

	first    *explorer.Transaction
	firstErr error

	account    []explorer.Transaction
	accountErr error
}

func (m *mockSource) ContractTransactions(ctx context.Context, chainID chains.ChainID, address string, offset int) ([]explorer.Transaction, error) {
	m.mu.Lock()
	m.offsets = append(m.offsets, offset)
	m.mu.Unlock()
	if m.pageErr != nil {
		return nil, m.pageErr
	}
	return make([]explorer.Transaction, m.pageRows[offset]), nil
}

func (m *mockSource) FirstTransaction(ctx context.Context, chainID chains.ChainID, address string) (*explorer.Transaction, error) {
	if m.firstErr != nil {
		return nil, m.firstErr
	}
	return m.first, nil
}

func (m *mockSource) AccountTransactions(ctx context.Context, chainID chains.ChainID, address string) ([]explorer.Transaction, error) {
	if m.accountErr != nil {
		return nil, m.accountErr
	}
	return m.account, nil
}

// mockVerifier implements VerificationSource for testing
type mockVerifier struct {
	verified bool
	err      error
}

func (m *mockVerifier) IsVerified(ctx context.Context, chainID chains.ChainID, address string) (bool, error) {
	return m.verified, m.err
}

func txsTo(to string, n int) []explorer.Transaction {
	txs := make([]explorer.Transaction, n)
	for i := range txs {
		txs[i] = explorer.Transaction{To: to}
	}
	return txs
}

func TestTransactionCountScore(t *testing.T) {
	tests := []struct {
		name        string
		rows        map[int]int
		wantScore   int
		wantDesc    string
		wantOffsets []int
	}{
		{
			name:        "full page of 100",
			rows:        map[int]int{100: 100},
			wantScore:   3,
			wantDesc:    "100+ transactions",
			wantOffsets: []int{100},
		},
		{
			name:        "99 then full page of 50",
			rows:        map[int]int{100: 99, 50: 50},
			wantScore:   2,
			wantDesc:    "50+ transactions",
			wantOffsets: []int{100, 50},
		},
		{
			name:        "fewer than 50",
			rows:        map[int]int{100: 49, 50: 49},
			wantScore:   1,
			wantDesc:    "fewer than 50 transactions",
			wantOffsets: []int{100, 50},
		},
		{
			name:        "empty history",
			rows:        map[int]int{},
			wantScore:   1,
			wantOffsets: []int{100, 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &mockSource{pageRows: tt.rows}
			got, err := NewTransactionCountScore(src).Score(context.Background(), testRequest)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, got.Score)
			if tt.wantDesc != "" {
				assert.Equal(t, tt.wantDesc, got.Description)
			}
			assert.Equal(t, tt.wantOffsets, src.offsets)
		})
	}
}

func TestTransactionCountScore_PropagatesErrors(t *testing.T) {
	src := &mockSource{pageErr: &explorer.Error{Kind: explorer.KindTransport, StatusCode: 500}}
	_, err := NewTransactionCountScore(src).Score(context.Background(), testRequest)
	assert.True(t, errors.Is(err, explorer.ErrTransport))
}

func TestInteractionScore_Thresholds(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{5, 2},
		{6, 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d interactions", tt.count), func(t *testing.T) {
			src := &mockSource{account: append(txsTo(contractAddr, tt.count), txsTo(userAddr, 3)...)}
			got, err := NewInteractionScore(src).Score(context.Background(), testRequest)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Score)
		})
	}
}

func TestInteractionScore_IgnoresAddressCase(t *testing.T) {
	src := &mockSource{account: append(
		txsTo(strings.ToLower(contractAddr), 4),
		txsTo(contractAddr, 2)...,
	)}
	got, err := NewInteractionScore(src).Score(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Score)
	assert.Equal(t, "6 previous interactions", got.Description)
}

func TestInteractionScore_SkipsContractCreations(t *testing.T) {
	src := &mockSource{account: txsTo("", 10)}
	got, err := NewInteractionScore(src).Score(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score)
	assert.Equal(t, "no previous interactions", got.Description)
}

func TestInteractionResult_Descriptions(t *testing.T) {
	assert.Equal(t, "1 previous interaction", InteractionResult(1).Description)
	assert.Equal(t, "2 previous interactions", InteractionResult(2).Description)
}

func TestContractAgeScore(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name string
		age  time.Duration
		want int
	}{
		{"29 days", 29 * day, 1},
		{"exactly 30 days", 30 * day, 1},
		{"31 days", 31 * day, 2},
		{"exactly 60 days", 60 * day, 2},
		{"61 days", 61 * day, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := &explorer.Transaction{TimeStamp: fmt.Sprint(now.Add(-tt.age).Unix())}
			scorer := NewContractAgeScore(&mockSource{first: first}, func() time.Time { return now })

			got, err := scorer.Score(context.Background(), testRequest)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Score)
		})
	}
}

func TestContractAgeScore_NoTransactions(t *testing.T) {
	src := &mockSource{firstErr: &explorer.Error{Kind: explorer.KindUpstreamDataMissing, Err: explorer.ErrNoTransactions}}
	got, err := NewContractAgeScore(src, nil).Score(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score)
	assert.Contains(t, got.Description, "unknown")
}

func TestContractAgeScore_BadTimestamp(t *testing.T) {
	src := &mockSource{first: &explorer.Transaction{TimeStamp: "yesterday"}}
	_, err := NewContractAgeScore(src, nil).Score(context.Background(), testRequest)
	assert.True(t, errors.Is(err, explorer.ErrDecode))
}

func TestContractAgeScore_PropagatesOtherErrors(t *testing.T) {
	src := &mockSource{firstErr: &explorer.Error{Kind: explorer.KindUpstreamDataMissing, Err: errors.New("Max rate limit reached")}}
	_, err := NewContractAgeScore(src, nil).Score(context.Background(), testRequest)
	assert.True(t, errors.Is(err, explorer.ErrUpstreamDataMissing))
}

func TestVerificationScore_TruthTable(t *testing.T) {
	tests := []struct {
		etherscan bool
		sourcify  bool
		wantScore int
		wantDesc  string
	}{
		{true, true, 3, "verified"},
		{false, true, 2, "not verified on Etherscan"},
		{true, false, 2, "not verified on Sourcify"},
		{false, false, 1, "not verified"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("etherscan=%v sourcify=%v", tt.etherscan, tt.sourcify), func(t *testing.T) {
			scorer := NewVerificationScore(&mockVerifier{verified: tt.etherscan}, &mockVerifier{verified: tt.sourcify})
			got, err := scorer.Score(context.Background(), testRequest)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantDesc, got.Description)
		})
	}
}

func TestVerificationScore_PropagatesErrors(t *testing.T) {
	boom := &explorer.Error{Kind: explorer.KindDecode}
	scorer := NewVerificationScore(&mockVerifier{verified: true}, &mockVerifier{err: boom})
	_, err := scorer.Score(context.Background(), testRequest)
	assert.True(t, errors.Is(err, explorer.ErrDecode))
	assert.Contains(t, err.Error(), "sourcify")
}

func TestAggregate_FloorsWeightedMean(t *testing.T) {
	weights := WeightTable{KindPopularity: 1, KindInteractions: 1}

	got, err := weights.Aggregate(map[Kind]Result{
		KindPopularity:   {Score: 2},
		KindInteractions: {Score: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, got, "exact 2.0 stays 2")

	got, err = weights.Aggregate(map[Kind]Result{
		KindPopularity:   {Score: 3},
		KindInteractions: {Score: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, got, "2.5 floors to 2")

	full, err := WeightsFor(PresetFull)
	require.NoError(t, err)
	got, err = full.Aggregate(map[Kind]Result{
		KindPopularity:   {Score: 3},
		KindInteractions: {Score: 3},
		KindAge:          {Score: 3},
		KindVerification: {Score: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, got, "27/10 floors to 2")
}

func TestAggregate_AlwaysInRange(t *testing.T) {
	for _, preset := range Presets() {
		weights, err := WeightsFor(preset)
		require.NoError(t, err)
		kinds := weights.Kinds()

		var walk func(i int, acc map[Kind]Result)
		walk = func(i int, acc map[Kind]Result) {
			if i == len(kinds) {
				got, err := weights.Aggregate(acc)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, got, 1)
				assert.LessOrEqual(t, got, 3)
				return
			}
			for s := ScoreLow; s <= ScoreHigh; s++ {
				acc[kinds[i]] = Result{Score: s}
				walk(i+1, acc)
			}
			delete(acc, kinds[i])
		}
		walk(0, map[Kind]Result{})
	}
}

func TestAggregate_RejectsMismatchedResults(t *testing.T) {
	weights := WeightTable{KindPopularity: 1, KindInteractions: 1}

	_, err := weights.Aggregate(map[Kind]Result{KindPopularity: {Score: 3}})
	assert.True(t, errors.Is(err, ErrWeightMismatch))

	_, err = weights.Aggregate(map[Kind]Result{
		KindPopularity:   {Score: 3},
		KindInteractions: {Score: 3},
		KindAge:          {Score: 3},
	})
	assert.True(t, errors.Is(err, ErrWeightMismatch))
}

func TestAggregate_RejectsOutOfRangeScores(t *testing.T) {
	weights := WeightTable{KindPopularity: 1}
	_, err := weights.Aggregate(map[Kind]Result{KindPopularity: {Score: 0}})
	assert.True(t, errors.Is(err, ErrInvalidScore))
}

func TestWeightTable_Validate(t *testing.T) {
	assert.Error(t, WeightTable{}.Validate(nil))
	assert.Error(t, WeightTable{KindPopularity: 0}.Validate([]Kind{KindPopularity}))
	assert.Error(t, WeightTable{"reputation": 1}.Validate([]Kind{"reputation"}))
	assert.Error(t, WeightTable{KindPopularity: 1}.Validate([]Kind{KindPopularity, KindPopularity}))
	assert.NoError(t, WeightTable{KindPopularity: 1}.Validate([]Kind{KindPopularity}))
}

func TestWeightsFor(t *testing.T) {
	w, err := WeightsFor(PresetActivity)
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindPopularity, KindInteractions}, w.Kinds())

	// callers get a copy
	w[KindPopularity] = 100
	again, _ := WeightsFor(PresetActivity)
	assert.Equal(t, 1, again[KindPopularity])

	_, err = WeightsFor("nope")
	assert.True(t, errors.Is(err, ErrUnknownPreset))
}

func TestNewPipeline_RejectsMismatch(t *testing.T) {
	src := &mockSource{}
	_, err := NewPipeline(WeightTable{KindPopularity: 1, KindAge: 1}, NewTransactionCountScore(src))
	assert.True(t, errors.Is(err, ErrWeightMismatch))

	_, err = NewPipeline(WeightTable{KindPopularity: 1}, NewTransactionCountScore(src), NewInteractionScore(src))
	assert.True(t, errors.Is(err, ErrWeightMismatch))
}

func TestBuild_Presets(t *testing.T) {
	src := Sources{Transactions: &mockSource{}, Etherscan: &mockVerifier{}, Sourcify: &mockVerifier{}}

	p, err := Build(PresetFull, src)
	require.NoError(t, err)
	assert.Equal(t, EvaluationOrder, p.Kinds())

	p, err = Build(PresetHistory, src)
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindPopularity, KindInteractions, KindAge}, p.Kinds())

	_, err = Build("nope", src)
	assert.True(t, errors.Is(err, ErrUnknownPreset))
}

func TestPipeline_Evaluate_AllHigh(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	src := &mockSource{
		pageRows: map[int]int{100: 100},
		first:    &explorer.Transaction{TimeStamp: fmt.Sprint(now.Add(-70 * 24 * time.Hour).Unix())},
		account:  txsTo(contractAddr, 6),
	}

	p, err := Build(PresetFull, Sources{
		Transactions: src,
		Etherscan:    &mockVerifier{verified: true},
		Sourcify:     &mockVerifier{verified: true},
		Clock:        func() time.Time { return now },
	})
	require.NoError(t, err)

	eval, err := p.Evaluate(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, 3, eval.Aggregate)
	require.Len(t, eval.Results, 4)
	for i, k := range EvaluationOrder {
		assert.Equal(t, k, eval.Results[i].Kind)
		assert.Equal(t, 3, eval.Results[i].Result.Score)
	}
}

func TestPipeline_Evaluate_FailsWithoutPartialResults(t *testing.T) {
	src := &mockSource{
		pageRows:   map[int]int{100: 100},
		accountErr: &explorer.Error{Kind: explorer.KindTransport, StatusCode: 502},
	}
	p, err := Build(PresetActivity, Sources{Transactions: src})
	require.NoError(t, err)

	eval, err := p.Evaluate(context.Background(), testRequest)
	assert.Nil(t, eval)
	assert.True(t, errors.Is(err, explorer.ErrTransport))
	assert.Contains(t, err.Error(), "interactions score")
}
