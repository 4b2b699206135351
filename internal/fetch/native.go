package fetch

import (
	"bytes"
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

// NativeFetcher retrieves native-currency transactions for account-model
// chains from the Moralis deep-index API using cursor pagination.
type NativeFetcher struct {
	baseURL    string
	apiKey     string
	chain      string
	httpClient *http.Client
}

// NewNativeFetcher creates a fetcher for an EVM chain's native transfers.
func NewNativeFetcher(cfg config.Config, asset chains.Asset) *NativeFetcher {
	return &NativeFetcher{
		baseURL:    cfg.MoralisBaseURL,
		apiKey:     cfg.MoralisAPIKey,
		chain:      asset.ChainID,
		httpClient: newRetryClient(cfg),
	}
}

// Fetch pages through the wallet's native transactions. Record amounts stay
// in wei; the flow aggregator applies the 1e18 scale.
func (f *NativeFetcher) Fetch(ctx context.Context, wallet string, limit int) ([]model.Record, error) {
	endpoint := fmt.Sprintf("%s/api/v2.2/%s", f.baseURL, url.PathEscape(wallet))
	return collectPages(ctx, limit, func(ctx context.Context, cursor string, size int) ([]model.Record, string, error) {
		return f.fetchPage(ctx, endpoint, cursor, size)
	})
}

func (f *NativeFetcher) fetchPage(ctx context.Context, endpoint, cursor string, size int) ([]model.Record, string, error) {
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
		return nil, "", fmt.Errorf("error fetching native transactions: %w", err)
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
	logrus.Debugf("Moralis %s page: %d records, cursor=%q", f.chain, len(records), next)
	return records, next, nil
}

// moralisTransfer covers the field-name variants the deep-index API uses
// for the same concepts across endpoint versions.
type moralisTransfer struct {
	Value       string `json:"value"`
	NativeValue string `json:"native_value"`
	ToAddress   string `json:"to_address"`
	To          string `json:"to"`
	FromAddress string `json:"from_address"`
	From        string `json:"from"`
}

// record normalizes a provider transfer into the common shape, picking
// whichever value/address spelling the provider used.
func (t moralisTransfer) record() model.Record {
	raw := t.Value
	if raw == "" || raw == "0" {
		if t.NativeValue != "" {
			raw = t.NativeValue
		}
	}
	amount, _ := strconv.ParseFloat(raw, 64)

	to := t.ToAddress
	if to == "" {
		to = t.To
	}
	from := t.FromAddress
	if from == "" {
		from = t.From
	}
	return model.Record{Amount: amount, To: to, From: from}
}

// decodeTransferPage handles the two shapes the provider returns: the usual
// {"result": [...], "cursor": "..."} envelope, or a bare array on some
// legacy endpoints.
func decodeTransferPage(body []byte) ([]moralisTransfer, string, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var txs []moralisTransfer
		if err := json.Unmarshal(body, &txs); err != nil {
			return nil, "", fmt.Errorf("error decoding response: %w", err)
		}
		return txs, "", nil
	}

	var page struct {
		Cursor string            `json:"cursor"`
		Result []moralisTransfer `json:"result"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, "", fmt.Errorf("error decoding response: %w", err)
	}
	return page.Result, page.Cursor, nil
}
