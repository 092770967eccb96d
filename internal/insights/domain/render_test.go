package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/trustscore/internal/scoring"
)

func TestMarker(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{3, MarkerGreen},
		{2, MarkerOrange},
		{1, MarkerRed},
		{0, MarkerRed},
		{4, MarkerRed},
		{-1, MarkerRed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Marker(tt.score), "score %d", tt.score)
	}
}

func TestRender_Order(t *testing.T) {
	eval := &scoring.Evaluation{
		Aggregate: 2,
		Results: []scoring.Scored{
			{Kind: scoring.KindPopularity, Result: scoring.Result{Score: 3, Description: "100+ transactions"}},
			{Kind: scoring.KindInteractions, Result: scoring.Result{Score: 1, Description: "no previous interactions"}},
			{Kind: scoring.KindAge, Result: scoring.Result{Score: 2, Description: "older than 1 month"}},
		},
	}

	got := Render(eval)

	assert.Equal(t, []string{
		"🟧 Overall result",
		"details",
		"🟩 Contract popularity",
		"🟥 Previous interactions",
		"🟧 Contract age",
	}, got.Labels())

	v, ok := got.Get("🟧 Overall result")
	require.True(t, ok)
	assert.Equal(t, "average", v)
}

func TestInsights_JSONKeepsOrder(t *testing.T) {
	in := Insights{
		{Label: "zeta", Value: "1"},
		{Label: "alpha", Value: "2"},
		{Label: "mid \"quoted\"", Value: ""},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"1","alpha":"2","mid \"quoted\"":""}`, string(data))

	var out Insights
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestInsights_UnmarshalRejectsNonObject(t *testing.T) {
	var out Insights
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &out))
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &out))
}

func TestRenderUnavailable(t *testing.T) {
	got := RenderUnavailable(ReasonTransport)

	assert.Equal(t, []string{"⚠️ Overall result", "details", "Reason"}, got.Labels())
	v, _ := got.Get("Reason")
	assert.Equal(t, ReasonTransport, v)
}
