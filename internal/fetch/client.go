// Package fetch provides per-chain-family clients for retrieving a wallet's
// transaction history from the indexing providers.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	jsoniter "github.com/json-iterator/go"
	"github.com/yourorg/walletflow/internal/chains"
	"github.com/yourorg/walletflow/internal/config"
	"github.com/yourorg/walletflow/internal/model"
)

// json decodes provider payloads; ConfigCompatibleWithStandardLibrary keeps
// encoding/json semantics for the looser provider shapes.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxPageSize is the largest page the cursor-paginated providers accept.
const maxPageSize = 100

// Fetcher retrieves and normalizes a bounded number of transaction records
// for a wallet. limit <= 0 means all available records.
type Fetcher interface {
	Fetch(ctx context.Context, wallet string, limit int) ([]model.Record, error)
}

// New selects the fetcher variant for an asset family.
func New(cfg config.Config, asset chains.Asset) Fetcher {
	switch asset.Family {
	case chains.FamilyUTXO:
		return NewUTXOFetcher(cfg)
	case chains.FamilySolana:
		return NewSolanaFetcher(cfg)
	default:
		return NewNativeFetcher(cfg, asset)
	}
}

// newRetryClient creates an HTTP client with retry capabilities and a
// per-call timeout so a hung provider cannot stall a request forever.
func newRetryClient(cfg config.Config) *http.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = cfg.RetryMax
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 3 * time.Second
	c.HTTPClient.Timeout = cfg.RequestTimeout
	c.Logger = nil
	return c.StandardClient()
}

// pageSize returns the page to request next: min(maxPageSize, remaining).
func pageSize(limit, fetched int) int {
	if limit <= 0 {
		return maxPageSize
	}
	remaining := limit - fetched
	if remaining > maxPageSize {
		return maxPageSize
	}
	return remaining
}

// checkStatus drains the body into a ProviderError on non-success responses.
func checkStatus(provider string, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &model.ProviderError{Provider: provider, StatusCode: resp.StatusCode, Body: string(body)}
}

// pageFn fetches one page for a cursor-paginated endpoint, returning the
// normalized records plus the next-page cursor (empty when exhausted).
type pageFn func(ctx context.Context, cursor string, size int) ([]model.Record, string, error)

// collectPages walks a cursor-paginated endpoint until the provider signals
// no more pages or the caller's limit is reached. The result never exceeds
// limit when limit > 0.
func collectPages(ctx context.Context, limit int, fetch pageFn) ([]model.Record, error) {
	var all []model.Record
	cursor := ""
	for {
		records, next, err := fetch(ctx, cursor, pageSize(limit, len(all)))
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}
