//go:build e2e

package e2e

import (
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pendergraft/trustscore/internal/config"
	"github.com/pendergraft/trustscore/internal/explorer/explorertest"
	"github.com/pendergraft/trustscore/internal/scoring"
	"github.com/pendergraft/trustscore/internal/server"
	"github.com/pendergraft/trustscore/pkg/client"
)

const (
	contractAddr = "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	userAddr     = "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// TestContext holds the running stack of one test
type TestContext struct {
	Explorer   *explorertest.Explorer
	TestServer *httptest.Server
	Client     *client.Client
}

// setup starts a fake explorer and an in-process server wired to it.
func setup(t *testing.T, state explorertest.State, preset scoring.Preset) *TestContext {
	t.Helper()
	fake := explorertest.New(t, contractAddr, userAddr, state)

	cfg := &config.Config{
		Server: config.ServerConfig{MaxBodyBytes: 64 * 1024},
		Explorer: config.ExplorerConfig{
			APIKey:      "e2e-key",
			SourcifyURL: fake.SourcifyURL(),
			Timeout:     2 * time.Second,
			MaxRetries:  1,
			Chains:      map[string]string{"eip155:1": fake.URL()},
		},
		Scoring:   config.ScoringConfig{Preset: preset, Timeout: 5 * time.Second},
		Logging:   config.LoggingConfig{Level: "debug", Format: "text"},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc, err := server.BuildService(cfg, logger, server.Deps{Clock: func() time.Time { return testNow }})
	require.NoError(t, err)

	srv := server.New(cfg, svc, logger)
	t.Cleanup(srv.Close)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &TestContext{
		Explorer:   fake,
		TestServer: ts,
		Client:     client.New(ts.URL),
	}
}

func reviewTx() client.Transaction {
	return client.Transaction{"from": userAddr, "to": contractAddr, "value": "0x0", "data": "0xa9059cbb"}
}
