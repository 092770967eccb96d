package explorer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pendergraft/trustscore/internal/chains"
)

// DefaultSourcifyURL is the public Sourcify server.
const DefaultSourcifyURL = "https://sourcify.dev/server/"

// SourcifyPerfect is the status Sourcify reports for a full match.
const SourcifyPerfect = "perfect"

// SourcifyMatch is one element of a check-by-addresses response.
type SourcifyMatch struct {
	Address string `json:"address"`
	Status  string `json:"status"`
	// ChainIDs changed shape across Sourcify versions and is not read.
	ChainIDs json.RawMessage `json:"chainIds,omitempty"`
}

// Sourcify queries a Sourcify-style verification aggregator.
type Sourcify struct {
	client  *Client
	baseURL string
}

// NewSourcify creates a Sourcify adapter.
func NewSourcify(client *Client, baseURL string) *Sourcify {
	if baseURL == "" {
		baseURL = DefaultSourcifyURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Sourcify{client: client, baseURL: baseURL}
}

// Check returns the raw match list for an address on a chain.
func (s *Sourcify) Check(ctx context.Context, chainID chains.ChainID, address string) ([]SourcifyMatch, error) {
	return FetchJSON[[]SourcifyMatch](ctx, s.client, SourcifyCheckURL(s.baseURL, address, chainID.Reference()))
}

// IsVerified reports whether the first match is a perfect one.
// An empty response counts as not verified.
func (s *Sourcify) IsVerified(ctx context.Context, chainID chains.ChainID, address string) (bool, error) {
	matches, err := s.Check(ctx, chainID, address)
	if err != nil {
		return false, err
	}
	if len(matches) == 0 {
		return false, nil
	}
	return matches[0].Status == SourcifyPerfect, nil
}
