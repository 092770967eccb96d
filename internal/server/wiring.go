package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pendergraft/trustscore/internal/chains"
	"github.com/pendergraft/trustscore/internal/config"
	"github.com/pendergraft/trustscore/internal/explorer"
	insightsDomain "github.com/pendergraft/trustscore/internal/insights/domain"
	"github.com/pendergraft/trustscore/internal/scoring"
)

// Deps are optional overrides for BuildService. Zero values use the
// production defaults.
type Deps struct {
	HTTPClient *http.Client
	Clock      scoring.Clock
}

// BuildService wires the chain registry, the explorer adapters and the
// scoring pipeline selected by cfg into a transaction-review service
// wrapped with logging.
func BuildService(cfg *config.Config, logger *slog.Logger, deps Deps) (insightsDomain.Service, error) {
	registry, err := chains.NewRegistry(cfg.Explorer.Chains)
	if err != nil {
		return nil, fmt.Errorf("building chain registry: %w", err)
	}

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Explorer.Timeout}
	}
	client := explorer.New(
		explorer.WithHTTPClient(httpClient),
		explorer.WithMaxRetries(cfg.Explorer.MaxRetries),
		explorer.WithLogger(logger),
	)

	etherscan := explorer.NewEtherscan(client, registry, cfg.Explorer.APIKey)
	pipeline, err := scoring.Build(cfg.Scoring.Preset, scoring.Sources{
		Transactions: etherscan,
		Etherscan:    etherscan,
		Sourcify:     explorer.NewSourcify(client, cfg.Explorer.SourcifyURL),
		Clock:        deps.Clock,
	})
	if err != nil {
		return nil, fmt.Errorf("building %s pipeline: %w", cfg.Scoring.Preset, err)
	}

	logger.Info("scoring pipeline ready",
		"preset", cfg.Scoring.Preset,
		"scores", pipeline.Kinds(),
		"chains", len(registry.List()),
	)

	svc := insightsDomain.NewService(pipeline, registry, cfg.Scoring.Timeout)
	return insightsDomain.LoggingMiddleware(logger)(svc), nil
}
