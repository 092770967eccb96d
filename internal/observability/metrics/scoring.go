package metrics

import (
	"strconv"
	"time"
)

// ExplorerRequest records one explorer call and how it ended.
func ExplorerRequest(endpoint, outcome string) {
	if !enabled {
		return
	}
	explorerRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

// SubScore records a computed sub-score.
func SubScore(kind string, score int) {
	if !enabled {
		return
	}
	subScoreTotal.WithLabelValues(kind, strconv.Itoa(score)).Inc()
}

// Evaluation records a finished transaction review.
func Evaluation(outcome string, d time.Duration) {
	if !enabled {
		return
	}
	evaluationTotal.WithLabelValues(outcome).Inc()
	evaluationDuration.WithLabelValues(outcome).Observe(d.Seconds())
}
