// Package analyze orchestrates one wallet analysis: asset lookup, the
// transaction fetch, price resolution and report assembly.
package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/walletflow/internal/chains"
	"github.com/yourorg/walletflow/internal/config"
	"github.com/yourorg/walletflow/internal/fetch"
	"github.com/yourorg/walletflow/internal/flow"
	"github.com/yourorg/walletflow/internal/model"
	"github.com/yourorg/walletflow/internal/price"
	"github.com/yourorg/walletflow/internal/report"
)

// Service runs wallet analyses. All per-request state is local; the only
// shared collaborator is the price resolver's cache.
type Service struct {
	cfg      config.Config
	resolver *price.Resolver

	// newFetcher is swappable so tests can substitute fake providers
	newFetcher func(cfg config.Config, asset chains.Asset) fetch.Fetcher
}

// NewService creates the analysis service.
func NewService(cfg config.Config, resolver *price.Resolver) *Service {
	return &Service{
		cfg:        cfg,
		resolver:   resolver,
		newFetcher: fetch.New,
	}
}

// Analyze runs one wallet analysis. Input validation happens before any
// network call; a transaction-fetch failure aborts the analysis, while a
// price-resolution failure only degrades the report's USD columns.
func (s *Service) Analyze(ctx context.Context, req model.AnalyzeRequest) (model.Report, error) {
	wallet := strings.TrimSpace(req.Wallet)
	coin := strings.ToUpper(strings.TrimSpace(req.Coin))
	if wallet == "" || coin == "" {
		return model.Report{}, model.ErrInvalidInput
	}

	asset, err := chains.Lookup(coin)
	if err != nil {
		return model.Report{}, err
	}
	if err := chains.ValidateAddress(asset, wallet); err != nil {
		return model.Report{}, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	records, err := s.newFetcher(s.cfg, asset).Fetch(ctx, wallet, req.Limit)
	if err != nil {
		return model.Report{}, fmt.Errorf("fetching %s transactions: %w", asset.Symbol, err)
	}

	usdPrice, priceErr := s.resolver.Resolve(ctx, asset)
	if priceErr != nil {
		logrus.Warnf("Price resolution failed for %s: %v", asset.Symbol, priceErr)
	}

	totals := flow.Aggregate(records, wallet, asset)

	logrus.WithFields(logrus.Fields{
		"wallet":  wallet,
		"coin":    asset.Symbol,
		"records": len(records),
		"inflow":  totals.Inflow,
		"outflow": totals.Outflow,
	}).Info("Wallet analysis complete")

	return report.Build(wallet, asset, totals, usdPrice, priceErr == nil, req.Limit), nil
}
