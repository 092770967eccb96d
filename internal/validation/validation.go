// Package validation provides input validation for trust-score requests.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pendergraft/trustscore/internal/chains"
)

var (
	// ErrMissingDestination is returned for transactions without a "to",
	// e.g. contract deployments.
	ErrMissingDestination = errors.New("transaction has no destination address")
	// ErrMissingSender is returned for transactions without a "from".
	ErrMissingSender = errors.New("transaction has no sender address")
)

// ValidateAddress validates an Ethereum address
func ValidateAddress(addr string) error {
	if len(addr) != 42 {
		return errors.New("invalid address length: must be 42 characters (0x + 40 hex)")
	}
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		return errors.New("invalid address: must start with 0x")
	}
	if !common.IsHexAddress(addr) {
		return errors.New("invalid address: contains non-hex characters")
	}
	return nil
}

// ValidateChainID validates a CAIP-2 chain ID and returns it parsed.
func ValidateChainID(id string) (chains.ChainID, error) {
	if id == "" {
		return "", errors.New("chain ID cannot be empty")
	}
	return chains.ParseChainID(id)
}

// ValidateTransaction checks the sender and destination of a transaction.
func ValidateTransaction(from, to string) error {
	if to == "" {
		return ErrMissingDestination
	}
	if from == "" {
		return ErrMissingSender
	}
	if err := ValidateAddress(to); err != nil {
		return fmt.Errorf("to: %w", err)
	}
	if err := ValidateAddress(from); err != nil {
		return fmt.Errorf("from: %w", err)
	}
	return nil
}
