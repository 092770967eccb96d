// Package transport provides HTTP request/response types for the insights domain.
package transport

import (
	"github.com/pendergraft/trustscore/internal/chains"
	"github.com/pendergraft/trustscore/internal/insights/domain"
)

// InsightsRequest is the HTTP request body for a transaction review.
type InsightsRequest struct {
	Transaction domain.Transaction `json:"transaction"`
	ChainID     string             `json:"chainId"`
}

// InsightsResponse is the HTTP response body for a transaction review.
type InsightsResponse struct {
	Insights domain.Insights `json:"insights"`
}

// ChainsResponse lists the supported chains.
type ChainsResponse struct {
	Chains []chains.Explorer `json:"chains"`
}
