package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common errors returned by the aggregator.
var (
	ErrWeightMismatch = errors.New("weight table does not match active scores")
	ErrUnknownPreset  = errors.New("unknown scoring preset")
	ErrInvalidScore   = errors.New("score out of range")
)

// WeightTable maps each active sub-score to a positive weight.
type WeightTable map[Kind]int

// Preset names a compile-time weight table.
type Preset string

// Built-in presets.
const (
	PresetFull     Preset = "full"
	PresetHistory  Preset = "history"
	PresetActivity Preset = "activity"
)

// Preset weights.
const (
	weightFullPopularity   = 3
	weightFullInteractions = 2
	weightFullAge          = 2
	weightFullVerification = 3

	weightHistoryPopularity   = 2
	weightHistoryInteractions = 1
	weightHistoryAge          = 1

	weightActivityPopularity   = 1
	weightActivityInteractions = 1
)

var presets = map[Preset]WeightTable{
	PresetFull: {
		KindPopularity:   weightFullPopularity,
		KindInteractions: weightFullInteractions,
		KindAge:          weightFullAge,
		KindVerification: weightFullVerification,
	},
	PresetHistory: {
		KindPopularity:   weightHistoryPopularity,
		KindInteractions: weightHistoryInteractions,
		KindAge:          weightHistoryAge,
	},
	PresetActivity: {
		KindPopularity:   weightActivityPopularity,
		KindInteractions: weightActivityInteractions,
	},
}

// WeightsFor returns a copy of a preset's weight table.
func WeightsFor(p Preset) (WeightTable, error) {
	w, ok := presets[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, p)
	}
	out := make(WeightTable, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out, nil
}

// Presets lists the built-in preset names.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Kinds returns the table's keys in evaluation order.
func (w WeightTable) Kinds() []Kind {
	kinds := make([]Kind, 0, len(w))
	for _, k := range EvaluationOrder {
		if _, ok := w[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Total is the sum of all weights.
func (w WeightTable) Total() int {
	total := 0
	for _, v := range w {
		total += v
	}
	return total
}

// Validate checks that every weight is positive, every key is a known kind
// and that the keys match kinds exactly.
func (w WeightTable) Validate(kinds []Kind) error {
	if len(w) == 0 {
		return fmt.Errorf("%w: empty table", ErrWeightMismatch)
	}
	known := make(map[Kind]bool, len(EvaluationOrder))
	for _, k := range EvaluationOrder {
		known[k] = true
	}
	for k, v := range w {
		if !known[k] {
			return fmt.Errorf("%w: unknown score %q", ErrWeightMismatch, k)
		}
		if v <= 0 {
			return fmt.Errorf("%w: weight of %q must be positive", ErrWeightMismatch, k)
		}
	}

	seen := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		if seen[k] {
			return fmt.Errorf("%w: %q listed twice", ErrWeightMismatch, k)
		}
		seen[k] = true
		if _, ok := w[k]; !ok {
			return fmt.Errorf("%w: no weight for %q", ErrWeightMismatch, k)
		}
	}
	if len(seen) != len(w) {
		var missing []string
		for k := range w {
			if !seen[k] {
				missing = append(missing, string(k))
			}
		}
		sort.Strings(missing)
		return fmt.Errorf("%w: no score for %s", ErrWeightMismatch, strings.Join(missing, ", "))
	}
	return nil
}

// Aggregate returns floor(sum(score*weight) / sum(weight)).
// The result set must cover exactly the table's keys.
func (w WeightTable) Aggregate(results map[Kind]Result) (int, error) {
	kinds := make([]Kind, 0, len(results))
	for k := range results {
		kinds = append(kinds, k)
	}
	if err := w.Validate(kinds); err != nil {
		return 0, err
	}

	sum := 0
	for k, r := range results {
		if r.Score < ScoreLow || r.Score > ScoreHigh {
			return 0, fmt.Errorf("%w: %s scored %d", ErrInvalidScore, k, r.Score)
		}
		sum += r.Score * w[k]
	}
	// integer division floors because both operands are positive
	return sum / w.Total(), nil
}
