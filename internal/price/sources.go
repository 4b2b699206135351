package price

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	jsoniter "github.com/json-iterator/go"
	"github.com/yourorg/walletflow/internal/chains"
	"github.com/yourorg/walletflow/internal/config"
	"github.com/yourorg/walletflow/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Source is one independent price provider. Sources are tried in fixed
// priority order by the resolver; an error from one source just moves the
// resolver to the next.
type Source interface {
	Name() string
	Fetch(ctx context.Context, asset chains.Asset) (float64, error)
}

// Sources builds the fallback chain in priority order: the chain-indexing
// provider's own price endpoint first (most canonical for on-chain assets),
// then the CoinGecko aggregator, then two exchange spot feeds.
func Sources(cfg config.Config) []Source {
	client := newClient(cfg)
	return []Source{
		&MoralisSource{baseURL: cfg.MoralisBaseURL, gatewayURL: cfg.SolanaGatewayURL, apiKey: cfg.MoralisAPIKey, httpClient: client},
		&CoinGeckoSource{baseURL: cfg.CoinGeckoURL, httpClient: client},
		&BinanceSource{baseURL: cfg.BinanceURL, httpClient: client},
		&CoinbaseSource{baseURL: cfg.CoinbaseURL, httpClient: client},
	}
}

func newClient(cfg config.Config) *http.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = cfg.RetryMax
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 3 * time.Second
	c.HTTPClient.Timeout = cfg.RequestTimeout
	c.Logger = nil
	return c.StandardClient()
}

// get issues a GET and decodes the JSON body into out, treating any
// non-200 status as a source failure.
func get(ctx context.Context, client *http.Client, name, endpoint string, header http.Header, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &model.ProviderError{Provider: name, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding %s response: %w", name, err)
	}
	return nil
}

// MoralisSource queries the chain-indexing provider's price endpoint. For
// EVM chains it prices the wrapped-native token contract; for Solana it
// prices the canonical wSOL mint through the gateway. BTC has no such
// endpoint and always falls through to the public sources.
type MoralisSource struct {
	baseURL    string
	gatewayURL string
	apiKey     string
	httpClient *http.Client
}

func (s *MoralisSource) Name() string { return "moralis" }

func (s *MoralisSource) Fetch(ctx context.Context, asset chains.Asset) (float64, error) {
	if asset.PriceContract == "" {
		return 0, fmt.Errorf("no indexing-provider price endpoint for %s", asset.Symbol)
	}

	var endpoint string
	if asset.Family == chains.FamilySolana {
		endpoint = fmt.Sprintf("%s/token/mainnet/%s/price", s.gatewayURL, asset.PriceContract)
	} else {
		endpoint = fmt.Sprintf("%s/api/v2.2/erc20/%s/price?chain=%s",
			s.baseURL, asset.PriceContract, url.QueryEscape(asset.ChainID))
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("X-API-Key", s.apiKey)

	var body struct {
		USDPrice float64 `json:"usdPrice"`
	}
	if err := get(ctx, s.httpClient, s.Name(), endpoint, header, &body); err != nil {
		return 0, err
	}
	if body.USDPrice <= 0 {
		return 0, fmt.Errorf("moralis returned no usable price for %s", asset.Symbol)
	}
	return body.USDPrice, nil
}

// CoinGeckoSource queries the CoinGecko simple-price aggregator.
type CoinGeckoSource struct {
	baseURL    string
	httpClient *http.Client
}

func (s *CoinGeckoSource) Name() string { return "coingecko" }

func (s *CoinGeckoSource) Fetch(ctx context.Context, asset chains.Asset) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=usd",
		s.baseURL, url.QueryEscape(asset.CoinGeckoID))

	var body map[string]map[string]float64
	if err := get(ctx, s.httpClient, s.Name(), endpoint, nil, &body); err != nil {
		return 0, err
	}
	price, ok := body[asset.CoinGeckoID]["usd"]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("coingecko returned no usd price for %s", asset.CoinGeckoID)
	}
	return price, nil
}

// BinanceSource queries the Binance spot ticker for the USDT pair.
type BinanceSource struct {
	baseURL    string
	httpClient *http.Client
}

func (s *BinanceSource) Name() string { return "binance" }

func (s *BinanceSource) Fetch(ctx context.Context, asset chains.Asset) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%sUSDT", s.baseURL, asset.Symbol)

	var body struct {
		Price string `json:"price"`
	}
	if err := get(ctx, s.httpClient, s.Name(), endpoint, nil, &body); err != nil {
		return 0, err
	}
	price, err := strconv.ParseFloat(body.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing binance price %q: %w", body.Price, err)
	}
	return price, nil
}

// CoinbaseSource queries the Coinbase spot price endpoint for the USD pair.
type CoinbaseSource struct {
	baseURL    string
	httpClient *http.Client
}

func (s *CoinbaseSource) Name() string { return "coinbase" }

func (s *CoinbaseSource) Fetch(ctx context.Context, asset chains.Asset) (float64, error) {
	endpoint := fmt.Sprintf("%s/v2/prices/%s-USD/spot", s.baseURL, asset.Symbol)

	var body struct {
		Data struct {
			Amount string `json:"amount"`
		} `json:"data"`
	}
	if err := get(ctx, s.httpClient, s.Name(), endpoint, nil, &body); err != nil {
		return 0, err
	}
	price, err := strconv.ParseFloat(body.Data.Amount, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing coinbase price %q: %w", body.Data.Amount, err)
	}
	return price, nil
}
