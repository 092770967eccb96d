// Package domain contains the transaction-review handler and the rendering
// of trust scores into insight panels.
package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Transaction is the opaque transaction record supplied by the wallet host.
// Only "from" and "to" are read.
type Transaction map[string]any

// TransactionView is the part of a Transaction the scorers use.
type TransactionView struct {
	From string
	To   string
}

// View extracts the sender and destination. Missing or non-string fields
// come back empty.
func (t Transaction) View() TransactionView {
	str := func(key string) string {
		s, _ := t[key].(string)
		return s
	}
	return TransactionView{From: str("from"), To: str("to")}
}

// Insight is one line of the panel shown to the user.
type Insight struct {
	Label string
	Value string
}

// Insights is an ordered label -> text mapping. It encodes as a JSON object
// whose keys keep their order.
type Insights []Insight

// Get returns the value for a label.
func (in Insights) Get(label string) (string, bool) {
	for _, i := range in {
		if i.Label == label {
			return i.Value, true
		}
	}
	return "", false
}

// Labels returns the labels in presentation order.
func (in Insights) Labels() []string {
	labels := make([]string, len(in))
	for i, insight := range in {
		labels[i] = insight.Label
	}
	return labels
}

// MarshalJSON implements json.Marshaler.
func (in Insights) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, insight := range in {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(insight.Label)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(insight.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping key order.
func (in *Insights) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("insights: expected JSON object")
	}

	out := Insights{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("insights: unexpected key %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("insights: value of %q: %w", key, err)
		}
		out = append(out, Insight{Label: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*in = out
	return nil
}

// Outcomes reported for a review.
const (
	OutcomeOK                 = "ok"
	OutcomeInvalidTransaction = "invalid_transaction"
	OutcomeUnsupportedChain   = "unsupported_chain"
	OutcomeTimeout            = "timeout"
	OutcomeCanceled           = "canceled"
	OutcomeTransport          = "transport"
	OutcomeDecode             = "decode"
	OutcomeUpstreamMissing    = "upstream_data_missing"
	OutcomeInternal           = "internal"
)

// Response is returned to the wallet host.
type Response struct {
	Insights Insights `json:"insights"`

	// The fields below are for logs and metrics only.
	Outcome   string `json:"-"`
	Aggregate int    `json:"-"`
	// Err is the failure behind a fallback panel.
	Err error `json:"-"`
}
