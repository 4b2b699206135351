package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/walletflow/internal/config"
	"github.com/yourorg/walletflow/internal/model"
)

// UTXOFetcher retrieves Bitcoin wallet totals from a BlockCypher-style
// explorer. The explorer returns pre-aggregated lifetime totals in
// satoshis, so there is no pagination and no per-transaction iteration.
type UTXOFetcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewUTXOFetcher creates a fetcher for the BTC explorer.
func NewUTXOFetcher(cfg config.Config) *UTXOFetcher {
	return &UTXOFetcher{
		baseURL:    cfg.BlockCypherURL,
		httpClient: newRetryClient(cfg),
	}
}

// Fetch returns the wallet's lifetime totals as two synthetic records, the
// received total addressed to the wallet and the sent total addressed from
// it. The limit is ignored: the explorer only exposes aggregates.
func (f *UTXOFetcher) Fetch(ctx context.Context, wallet string, limit int) ([]model.Record, error) {
	url := fmt.Sprintf("%s/addrs/%s", f.baseURL, wallet)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching BTC transactions: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus("BlockCypher", resp); err != nil {
		return nil, err
	}

	var addr struct {
		TotalReceived float64 `json:"total_received"`
		TotalSent     float64 `json:"total_sent"`
		NTx           int     `json:"n_tx"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&addr); err != nil {
		return nil, fmt.Errorf("error decoding BlockCypher response: %w", err)
	}

	logrus.Debugf("BlockCypher totals for %s: received=%f sent=%f txs=%d",
		wallet, addr.TotalReceived, addr.TotalSent, addr.NTx)

	w := strings.ToLower(wallet)
	return []model.Record{
		{Amount: addr.TotalReceived, To: w},
		{Amount: addr.TotalSent, From: w},
	}, nil
}
