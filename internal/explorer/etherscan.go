package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pendergraft/trustscore/internal/chains"
)

// Envelope is the {status, message, result} wrapper of Etherscan responses.
// Result stays raw because failed calls put a string where the list goes.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// resultNotVerified is the getabi result for contracts without verified source.
const resultNotVerified = "Contract source code not verified"

// reason returns the result when it is a string. Rejections ("Invalid API
// Key", "Max rate limit reached") come back as status "0" with the reason
// in place of the result.
func (env *Envelope) reason() (string, bool) {
	result := bytes.TrimSpace(env.Result)
	if len(result) == 0 || result[0] != '"' {
		return "", false
	}
	var reason string
	if err := json.Unmarshal(result, &reason); err != nil {
		return "", false
	}
	return strings.TrimSpace(reason), true
}

func (env *Envelope) rejection(rawURL string) error {
	reason, _ := env.reason()
	return &Error{
		Kind: KindUpstreamDataMissing,
		URL:  redact(rawURL),
		Err:  fmt.Errorf("status %q %s: %s", env.Status, env.Message, reason),
	}
}

// Transaction is one row of an Etherscan txlist response.
// Etherscan encodes every field, numbers included, as a string.
type Transaction struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	IsError         string `json:"isError"`
	ContractAddress string `json:"contractAddress"`
	FunctionName    string `json:"functionName,omitempty"`
}

// Etherscan queries the Etherscan-compatible explorer registered for a chain.
type Etherscan struct {
	client   *Client
	registry *chains.Registry
	apiKey   string
}

// NewEtherscan creates an Etherscan adapter. A single API key is shared by
// every chain in the registry.
func NewEtherscan(client *Client, registry *chains.Registry, apiKey string) *Etherscan {
	return &Etherscan{
		client:   client,
		registry: registry,
		apiKey:   apiKey,
	}
}

// ContractTransactions returns at most offset of the oldest transactions of
// a contract.
func (e *Etherscan) ContractTransactions(ctx context.Context, chainID chains.ChainID, address string, offset int) ([]Transaction, error) {
	base, err := e.baseURL(chainID)
	if err != nil {
		return nil, err
	}
	return e.txList(ctx, ContractTxsURL(base, e.apiKey, address, offset))
}

// FirstTransaction returns the oldest transaction of an address.
// An address without history yields ErrNoTransactions.
func (e *Etherscan) FirstTransaction(ctx context.Context, chainID chains.ChainID, address string) (*Transaction, error) {
	base, err := e.baseURL(chainID)
	if err != nil {
		return nil, err
	}
	rawURL := FirstTxURL(base, e.apiKey, address)
	txs, err := e.txList(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, &Error{Kind: KindUpstreamDataMissing, URL: redact(rawURL), Err: ErrNoTransactions}
	}
	return &txs[0], nil
}

// AccountTransactions returns the full transaction history of an address.
func (e *Etherscan) AccountTransactions(ctx context.Context, chainID chains.ChainID, address string) ([]Transaction, error) {
	base, err := e.baseURL(chainID)
	if err != nil {
		return nil, err
	}
	return e.txList(ctx, AccountTxsURL(base, e.apiKey, address))
}

// IsVerified reports whether the explorer has verified source for the
// contract. Status "1" on the getabi endpoint means verified and the
// "Contract source code not verified" result means not verified. Any other
// rejection is a KindUpstreamDataMissing error.
func (e *Etherscan) IsVerified(ctx context.Context, chainID chains.ChainID, address string) (bool, error) {
	base, err := e.baseURL(chainID)
	if err != nil {
		return false, err
	}
	rawURL := ContractABIURL(base, e.apiKey, address)
	env, err := FetchJSON[Envelope](ctx, e.client, rawURL)
	if err != nil {
		return false, err
	}
	if env.Status == "1" {
		return true, nil
	}
	if reason, ok := env.reason(); ok && strings.EqualFold(reason, resultNotVerified) {
		return false, nil
	}
	return false, env.rejection(rawURL)
}

func (e *Etherscan) baseURL(chainID chains.ChainID) (string, error) {
	ex, err := e.registry.Get(chainID)
	if err != nil {
		return "", err
	}
	return ex.BaseURL, nil
}

func (e *Etherscan) txList(ctx context.Context, rawURL string) ([]Transaction, error) {
	env, err := FetchJSON[Envelope](ctx, e.client, rawURL)
	if err != nil {
		return nil, err
	}

	result := bytes.TrimSpace(env.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, nil
	}

	if _, ok := env.reason(); ok {
		return nil, env.rejection(rawURL)
	}

	var txs []Transaction
	if err := json.Unmarshal(result, &txs); err != nil {
		return nil, &Error{Kind: KindDecode, URL: redact(rawURL), Err: err}
	}
	return txs, nil
}
