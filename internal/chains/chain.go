// Package chains provides CAIP-2 chain identifiers and the registry of
// block-explorer endpoints available for each supported chain.
package chains

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Common errors returned by the chains package.
var (
	ErrInvalidChainID   = errors.New("invalid chain ID")
	ErrUnsupportedChain = errors.New("chain not supported")
)

// NamespaceEIP155 is the CAIP-2 namespace for EVM chains.
const NamespaceEIP155 = "eip155"

// ChainID is a CAIP-2 chain identifier in the form namespace:reference,
// e.g. "eip155:1".
type ChainID string

// ParseChainID validates a CAIP-2 string and returns it as a ChainID.
func ParseChainID(s string) (ChainID, error) {
	namespace, reference, ok := strings.Cut(s, ":")
	if !ok || namespace == "" || reference == "" {
		return "", fmt.Errorf("%w: %q is not namespace:reference", ErrInvalidChainID, s)
	}
	if strings.Contains(reference, ":") {
		return "", fmt.Errorf("%w: %q has more than one separator", ErrInvalidChainID, s)
	}
	return ChainID(s), nil
}

// Namespace returns the part before the colon.
func (c ChainID) Namespace() string {
	namespace, _, _ := strings.Cut(string(c), ":")
	return namespace
}

// Reference returns the numeric chain reference for eip155 chains.
// Anything that does not parse as a positive integer yields 0.
func (c ChainID) Reference() int64 {
	_, reference, ok := strings.Cut(string(c), ":")
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(reference, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (c ChainID) String() string {
	return string(c)
}

// Explorer describes the Etherscan-compatible API serving one chain.
type Explorer struct {
	ChainID ChainID `json:"chainId" yaml:"chainId"`
	// BaseURL ends with a slash; the API path "api" is appended to it.
	BaseURL string `json:"explorer" yaml:"explorer"`
}

// Registry holds the explorer endpoints of all supported chains.
// It is built once at startup and only read afterwards.
type Registry struct {
	explorers map[ChainID]Explorer
}

// NewRegistry creates a registry from a chainId -> base URL table.
func NewRegistry(table map[string]string) (*Registry, error) {
	r := &Registry{explorers: make(map[ChainID]Explorer, len(table))}
	for raw, baseURL := range table {
		id, err := ParseChainID(raw)
		if err != nil {
			return nil, err
		}
		if baseURL == "" {
			return nil, fmt.Errorf("chain %s: empty explorer URL", id)
		}
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		r.explorers[id] = Explorer{ChainID: id, BaseURL: baseURL}
	}
	return r, nil
}

// Get retrieves the explorer for a chain.
func (r *Registry) Get(id ChainID) (Explorer, error) {
	e, ok := r.explorers[id]
	if !ok {
		return Explorer{}, fmt.Errorf("%w: %s", ErrUnsupportedChain, id)
	}
	return e, nil
}

// List returns all registered explorers sorted by chain ID.
func (r *Registry) List() []Explorer {
	list := make([]Explorer, 0, len(r.explorers))
	for _, e := range r.explorers {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ChainID < list[j].ChainID
	})
	return list
}

// DefaultExplorers is the built-in chain table used when no chains file is
// configured.
func DefaultExplorers() map[string]string {
	return map[string]string{
		"eip155:1":        "https://api.etherscan.io/",
		"eip155:5":        "https://api-goerli.etherscan.io/",
		"eip155:11155111": "https://api-sepolia.etherscan.io/",
		"eip155:10":       "https://api-optimistic.etherscan.io/",
		"eip155:56":       "https://api.bscscan.com/",
		"eip155:137":      "https://api.polygonscan.com/",
		"eip155:42161":    "https://api.arbiscan.io/",
	}
}
