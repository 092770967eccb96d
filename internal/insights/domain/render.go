package domain

import (
	"github.com/pendergraft/trustscore/internal/scoring"
)

// Score markers.
const (
	MarkerGreen   = "🟩"
	MarkerOrange  = "🟧"
	MarkerRed     = "🟥"
	MarkerWarning = "⚠️"
)

// Fixed panel labels.
const (
	LabelOverall   = "Overall result"
	LabelSeparator = "details"
	LabelReason    = "Reason"
)

var subScoreLabels = map[scoring.Kind]string{
	scoring.KindPopularity:   "Contract popularity",
	scoring.KindInteractions: "Previous interactions",
	scoring.KindAge:          "Contract age",
	scoring.KindVerification: "Contract verification",
}

// Marker maps an ordinal score to its colour. Anything outside 2..3 is red.
func Marker(score int) string {
	switch score {
	case scoring.ScoreHigh:
		return MarkerGreen
	case scoring.ScoreMedium:
		return MarkerOrange
	default:
		return MarkerRed
	}
}

// Verdict is the word shown next to the overall result.
func Verdict(score int) string {
	switch score {
	case scoring.ScoreHigh:
		return "good"
	case scoring.ScoreMedium:
		return "average"
	default:
		return "poor"
	}
}

// SubScoreLabel is the human label of a sub-score.
func SubScoreLabel(kind scoring.Kind) string {
	if l, ok := subScoreLabels[kind]; ok {
		return l
	}
	return string(kind)
}

// Render lays out an evaluation: the overall line, a separator, then one
// line per sub-score in evaluation order.
func Render(eval *scoring.Evaluation) Insights {
	out := make(Insights, 0, len(eval.Results)+2)
	out = append(out,
		Insight{Label: Marker(eval.Aggregate) + " " + LabelOverall, Value: Verdict(eval.Aggregate)},
		Insight{Label: LabelSeparator, Value: ""},
	)
	for _, r := range eval.Results {
		out = append(out, Insight{
			Label: Marker(r.Result.Score) + " " + SubScoreLabel(r.Kind),
			Value: r.Result.Description,
		})
	}
	return out
}

// RenderUnavailable is the panel shown when no score could be computed.
func RenderUnavailable(reason string) Insights {
	return Insights{
		{Label: MarkerWarning + " " + LabelOverall, Value: "unavailable"},
		{Label: LabelSeparator, Value: ""},
		{Label: LabelReason, Value: reason},
	}
}
