package fetch

import (
	"context"
	stdjson "encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/walletflow/internal/config"
	"github.com/yourorg/walletflow/internal/model"
)

// SolanaFetcher retrieves a wallet's flow from the Solana gateway. The
// gateway exposes three endpoints consumed here: native balance, SOL
// transfer history and swap history. A positive balance becomes one
// synthetic inflow record; transfers and swaps follow, in that order, and
// the merged list is truncated to the caller's limit.
type SolanaFetcher struct {
	gatewayURL string
	apiKey     string
	httpClient *http.Client
}

// NewSolanaFetcher creates a fetcher for the Solana gateway.
func NewSolanaFetcher(cfg config.Config) *SolanaFetcher {
	return &SolanaFetcher{
		gatewayURL: cfg.SolanaGatewayURL,
		apiKey:     cfg.MoralisAPIKey,
		httpClient: newRetryClient(cfg),
	}
}

// Fetch merges balance, transfers and swaps into one record list. A failed
// balance call aborts the fetch; failed transfer or swap sub-calls degrade
// to empty pages instead. Amounts are whole SOL as the gateway reports.
func (f *SolanaFetcher) Fetch(ctx context.Context, wallet string, limit int) ([]model.Record, error) {
	balance, err := f.fetchBalance(ctx, wallet)
	if err != nil {
		return nil, err
	}

	var records []model.Record
	if balance > 0 {
		records = append(records, model.Record{Amount: balance, To: strings.ToLower(wallet)})
	}

	if limit <= 0 || len(records) < limit {
		transfers, err := collectPages(ctx, remaining(limit, len(records)), func(ctx context.Context, cursor string, size int) ([]model.Record, string, error) {
			return f.fetchTransferPage(ctx, wallet, cursor, size)
		})
		if err != nil {
			logrus.Warnf("Solana transfers unavailable for %s: %v", wallet, err)
		}
		records = append(records, transfers...)
	}

	if limit <= 0 || len(records) < limit {
		swaps, err := collectPages(ctx, remaining(limit, len(records)), func(ctx context.Context, cursor string, size int) ([]model.Record, string, error) {
			return f.fetchSwapPage(ctx, wallet, cursor, size)
		})
		if err != nil {
			logrus.Warnf("Solana swaps unavailable for %s: %v", wallet, err)
		}
		records = append(records, swaps...)
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// remaining converts an overall limit into the budget left for a sub-fetch.
func remaining(limit, used int) int {
	if limit <= 0 {
		return 0
	}
	return limit - used
}

func (f *SolanaFetcher) fetchBalance(ctx context.Context, wallet string) (float64, error) {
	endpoint := fmt.Sprintf("%s/account/mainnet/%s/balance", f.gatewayURL, url.PathEscape(wallet))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", f.apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error fetching SOL balance: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus("SolanaGateway", resp); err != nil {
		return 0, err
	}

	// The gateway has returned the SOL amount both as a string and as a
	// number; json.Number accepts either.
	var body struct {
		Solana stdjson.Number `json:"solana"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("error decoding balance response: %w", err)
	}
	balance, _ := body.Solana.Float64()
	return balance, nil
}

func (f *SolanaFetcher) fetchTransferPage(ctx context.Context, wallet, cursor string, size int) ([]model.Record, string, error) {
	var page struct {
		Cursor string `json:"cursor"`
		Result []struct {
			Type        string         `json:"type"`
			Amount      stdjson.Number `json:"amount"`
			ToAddress   string         `json:"to_address"`
			FromAddress string         `json:"from_address"`
		} `json:"result"`
	}
	if err := f.getPage(ctx, wallet, "transfers", cursor, size, &page); err != nil {
		return nil, "", err
	}

	w := strings.ToLower(wallet)
	var records []model.Record
	for _, t := range page.Result {
		// The transfer feed mixes SPL token movements in; only native
		// SOL transfers are part of this asset's flow.
		if t.Type != "sol" {
			continue
		}
		amount, _ := t.Amount.Float64()
		to := strings.ToLower(t.ToAddress)
		from := strings.ToLower(t.FromAddress)
		if to != w && from != w {
			continue
		}
		records = append(records, model.Record{Amount: amount, To: to, From: from})
	}
	return records, page.Cursor, nil
}

func (f *SolanaFetcher) fetchSwapPage(ctx context.Context, wallet, cursor string, size int) ([]model.Record, string, error) {
	var page struct {
		Cursor string `json:"cursor"`
		Result []struct {
			TransactionType string  `json:"transactionType"`
			PairAddress     string  `json:"pairAddress"`
			Sold            swapLeg `json:"sold"`
			Bought          swapLeg `json:"bought"`
		} `json:"result"`
	}
	if err := f.getPage(ctx, wallet, "swaps", cursor, size, &page); err != nil {
		return nil, "", err
	}

	w := strings.ToLower(wallet)
	var records []model.Record
	for _, s := range page.Result {
		switch s.TransactionType {
		case "buy":
			// Buying a token spends SOL: the wallet is the seller leg.
			if s.Sold.Symbol == "SOL" {
				amount, _ := s.Sold.Amount.Float64()
				records = append(records, model.Record{
					Amount: amount,
					From:   w,
					To:     strings.ToLower(s.PairAddress),
				})
			}
		case "sell":
			if s.Bought.Symbol == "SOL" {
				amount, _ := s.Bought.Amount.Float64()
				records = append(records, model.Record{
					Amount: amount,
					To:     w,
					From:   strings.ToLower(s.PairAddress),
				})
			}
		}
	}
	return records, page.Cursor, nil
}

type swapLeg struct {
	Symbol string         `json:"symbol"`
	Amount stdjson.Number `json:"amount"`
}

// getPage performs one gateway history request and decodes into out.
func (f *SolanaFetcher) getPage(ctx context.Context, wallet, kind, cursor string, size int, out interface{}) error {
	endpoint := fmt.Sprintf("%s/account/mainnet/%s/%s", f.gatewayURL, url.PathEscape(wallet), kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	q := req.URL.Query()
	q.Set("limit", strconv.Itoa(size))
	q.Set("order", "DESC")
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", f.apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error fetching SOL %s: %w", kind, err)
	}
	defer resp.Body.Close()

	if err := checkStatus("SolanaGateway", resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding %s response: %w", kind, err)
	}
	return nil
}
