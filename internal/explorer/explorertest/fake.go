// Package explorertest provides an in-process Etherscan and Sourcify
// stand-in for tests.
package explorertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// State is what the fake reports about one contract and one user.
type State struct {
	// ContractTxs is the total number of transactions of the contract.
	ContractTxs int
	// FirstTx is the timestamp of the contract's oldest transaction.
	FirstTx time.Time
	// Interactions is the number of user transactions sent to the contract.
	Interactions      int
	EtherscanVerified bool
	// SourcifyStatus is reported for the contract; "" means not found.
	SourcifyStatus string
	// FailStatus, if non-zero, is returned for every request.
	FailStatus int
	// Rejections maps an Etherscan action to the reason of a status "0"
	// rejection served in place of the normal result.
	Rejections map[string]string
}

// Healthy is a contract that scores 3 on every sub-score.
func Healthy(now time.Time) State {
	return State{
		ContractTxs:       500,
		FirstTx:           now.Add(-70 * 24 * time.Hour),
		Interactions:      6,
		EtherscanVerified: true,
		SourcifyStatus:    "perfect",
	}
}

// Explorer serves the Etherscan txlist/getabi endpoints under /api and
// Sourcify's check-by-addresses endpoint under /sourcify/.
type Explorer struct {
	Contract string
	User     string

	server   *httptest.Server
	requests atomic.Int64

	mu    sync.Mutex
	state State
}

// New starts a fake explorer that is closed when the test ends.
func New(t testing.TB, contract, user string, state State) *Explorer {
	t.Helper()
	e := &Explorer{Contract: contract, User: user, state: state}
	e.server = httptest.NewServer(http.HandlerFunc(e.serve))
	t.Cleanup(e.server.Close)
	return e
}

// URL is the explorer base URL, with a trailing slash.
func (e *Explorer) URL() string {
	return e.server.URL + "/"
}

// SourcifyURL is the Sourcify base URL, with a trailing slash.
func (e *Explorer) SourcifyURL() string {
	return e.server.URL + "/sourcify/"
}

// Requests returns the number of requests served so far.
func (e *Explorer) Requests() int64 {
	return e.requests.Load()
}

// Update changes the reported state.
func (e *Explorer) Update(fn func(*State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.state)
}

func (e *Explorer) snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Explorer) serve(w http.ResponseWriter, r *http.Request) {
	e.requests.Add(1)
	st := e.snapshot()

	if st.FailStatus != 0 {
		http.Error(w, http.StatusText(st.FailStatus), st.FailStatus)
		return
	}

	switch {
	case r.URL.Path == "/api":
		e.serveEtherscan(w, r, st)
	case r.URL.Path == "/sourcify/check-by-addresses":
		e.serveSourcify(w, r, st)
	default:
		http.NotFound(w, r)
	}
}

func (e *Explorer) serveEtherscan(w http.ResponseWriter, r *http.Request, st State) {
	q := r.URL.Query()
	address := q.Get("address")

	if reason, ok := st.Rejections[q.Get("action")]; ok {
		writeEnvelope(w, "0", "NOTOK", strconv.Quote(reason))
		return
	}

	switch q.Get("action") {
	case "getabi":
		if st.EtherscanVerified && strings.EqualFold(address, e.Contract) {
			writeEnvelope(w, "1", "OK", `[]`)
			return
		}
		writeEnvelope(w, "0", "NOTOK", `"Contract source code not verified"`)

	case "txlist":
		var txs []map[string]string
		switch {
		case strings.EqualFold(address, e.Contract):
			n := st.ContractTxs
			if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset < n {
				n = offset
			}
			for i := 0; i < n; i++ {
				txs = append(txs, map[string]string{
					"hash":      "0x" + strconv.FormatInt(int64(i+1), 16),
					"from":      e.User,
					"to":        strings.ToLower(e.Contract),
					"timeStamp": strconv.FormatInt(st.FirstTx.Unix()+int64(i), 10),
				})
			}
		case strings.EqualFold(address, e.User):
			for i := 0; i < st.Interactions; i++ {
				txs = append(txs, map[string]string{"from": e.User, "to": strings.ToLower(e.Contract)})
			}
			txs = append(txs, map[string]string{"from": e.User, "to": "0x000000000000000000000000000000000000dead"})
		}
		if len(txs) == 0 {
			writeEnvelope(w, "0", "No transactions found", `[]`)
			return
		}
		result, _ := json.Marshal(txs)
		writeEnvelope(w, "1", "OK", string(result))

	default:
		writeEnvelope(w, "0", "NOTOK", `"Error! Missing Or invalid Action name"`)
	}
}

func (e *Explorer) serveSourcify(w http.ResponseWriter, r *http.Request, st State) {
	address := r.URL.Query().Get("addresses")
	match := map[string]any{"address": address, "status": "false"}
	if st.SourcifyStatus != "" && strings.EqualFold(address, e.Contract) {
		match["status"] = st.SourcifyStatus
		match["chainIds"] = []string{r.URL.Query().Get("chainIds")}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode([]any{match})
}

func writeEnvelope(w http.ResponseWriter, status, message, result string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"` + status + `","message":"` + message + `","result":` + result + `}`))
}
