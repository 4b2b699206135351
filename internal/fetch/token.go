package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/walletflow/internal/chains"
	"github.com/yourorg/walletflow/internal/config"
	"github.com/yourorg/walletflow/internal/model"
)

// TokenFetcher retrieves ERC-20 token transfers for a wallet from the
// Moralis deep-index API. It shares the native fetcher's cursor protocol
// and transfer shape; only the endpoint differs.
type TokenFetcher struct {
	baseURL    string
	apiKey     string
	chain      string
	httpClient *http.Client
}

// NewTokenFetcher creates a fetcher for a wallet's ERC-20 transfer history.
func NewTokenFetcher(cfg config.Config, asset chains.Asset) *TokenFetcher {
	return &TokenFetcher{
		baseURL:    cfg.MoralisBaseURL,
		apiKey:     cfg.MoralisAPIKey,
		chain:      asset.ChainID,
		httpClient: newRetryClient(cfg),
	}
}

// Fetch pages through the wallet's token transfers. Amounts stay in the
// token's base units.
func (f *TokenFetcher) Fetch(ctx context.Context, wallet string, limit int) ([]model.Record, error) {
	endpoint := fmt.Sprintf("%s/api/v2.2/%s/erc20/transfers", f.baseURL, url.PathEscape(wallet))
	return collectPages(ctx, limit, func(ctx context.Context, cursor string, size int) ([]model.Record, string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, "", fmt.Errorf("error creating request: %w", err)
		}
		q := req.URL.Query()
		q.Set("chain", f.chain)
		q.Set("limit", strconv.Itoa(size))
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-API-Key", f.apiKey)

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("error fetching token transfers: %w", err)
		}
		defer resp.Body.Close()

		if err := checkStatus("Moralis", resp); err != nil {
			return nil, "", err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, "", fmt.Errorf("error reading response: %w", err)
		}
		txs, next, err := decodeTransferPage(body)
		if err != nil {
			return nil, "", err
		}

		records := make([]model.Record, 0, len(txs))
		for _, tx := range txs {
			records = append(records, tx.record())
		}
		logrus.Debugf("Moralis %s token page: %d records, cursor=%q", f.chain, len(records), next)
		return records, next, nil
	})
}
