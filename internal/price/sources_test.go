package price

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/walletflow/internal/chains"
	"github.com/yourorg/walletflow/internal/config"
)

func testClient() *http.Client {
	return newClient(config.Config{RequestTimeout: 2 * time.Second})
}

func lookup(t *testing.T, symbol string) chains.Asset {
	t.Helper()
	asset, err := chains.Lookup(symbol)
	require.NoError(t, err)
	return asset
}

func TestMoralisSource_EVM(t *testing.T) {
	var gotPath, gotChain, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotChain = r.URL.Query().Get("chain")
		gotKey = r.Header.Get("X-API-Key")
		w.Write([]byte(`{"usdPrice": 2000.5}`))
	}))
	defer srv.Close()

	src := &MoralisSource{baseURL: srv.URL, gatewayURL: srv.URL, apiKey: "test-key", httpClient: testClient()}
	price, err := src.Fetch(context.Background(), lookup(t, "ETH"))
	require.NoError(t, err)
	assert.Equal(t, 2000.5, price)
	assert.Equal(t, "/api/v2.2/erc20/0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2/price", gotPath)
	assert.Equal(t, "eth", gotChain)
	assert.Equal(t, "test-key", gotKey)
}

func TestMoralisSource_Solana(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"usdPrice": 135.2}`))
	}))
	defer srv.Close()

	src := &MoralisSource{baseURL: srv.URL, gatewayURL: srv.URL, apiKey: "k", httpClient: testClient()}
	price, err := src.Fetch(context.Background(), lookup(t, "SOL"))
	require.NoError(t, err)
	assert.Equal(t, 135.2, price)
	assert.Equal(t, "/token/mainnet/So11111111111111111111111111111111111111112/price", gotPath)
}

func TestMoralisSource_NoEndpointForBTC(t *testing.T) {
	src := &MoralisSource{httpClient: testClient()}
	_, err := src.Fetch(context.Background(), lookup(t, "BTC"))
	assert.Error(t, err, "BTC has no indexing-provider price endpoint")
}

func TestMoralisSource_ZeroPriceRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"usdPrice": 0}`))
	}))
	defer srv.Close()

	src := &MoralisSource{baseURL: srv.URL, gatewayURL: srv.URL, httpClient: testClient()}
	_, err := src.Fetch(context.Background(), lookup(t, "ETH"))
	assert.Error(t, err)
}

func TestCoinGeckoSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"bitcoin": {"usd": 63150.0}}`))
	}))
	defer srv.Close()

	src := &CoinGeckoSource{baseURL: srv.URL, httpClient: testClient()}
	price, err := src.Fetch(context.Background(), lookup(t, "BTC"))
	require.NoError(t, err)
	assert.Equal(t, 63150.0, price)
}

func TestCoinGeckoSource_MissingAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	src := &CoinGeckoSource{baseURL: srv.URL, httpClient: testClient()}
	_, err := src.Fetch(context.Background(), lookup(t, "BTC"))
	assert.Error(t, err)
}

func TestBinanceSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol": "ETHUSDT", "price": "1999.87000000"}`))
	}))
	defer srv.Close()

	src := &BinanceSource{baseURL: srv.URL, httpClient: testClient()}
	price, err := src.Fetch(context.Background(), lookup(t, "ETH"))
	require.NoError(t, err)
	assert.Equal(t, 1999.87, price)
}

func TestCoinbaseSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/prices/SOL-USD/spot", r.URL.Path)
		w.Write([]byte(`{"data": {"base": "SOL", "currency": "USD", "amount": "134.55"}}`))
	}))
	defer srv.Close()

	src := &CoinbaseSource{baseURL: srv.URL, httpClient: testClient()}
	price, err := src.Fetch(context.Background(), lookup(t, "SOL"))
	require.NoError(t, err)
	assert.Equal(t, 134.55, price)
}

func TestSource_NonSuccessStatusIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	src := &BinanceSource{baseURL: srv.URL, httpClient: testClient()}
	_, err := src.Fetch(context.Background(), lookup(t, "ETH"))
	assert.Error(t, err)
}

func TestSourcesOrder(t *testing.T) {
	sources := Sources(config.Config{RequestTimeout: time.Second})
	require.Len(t, sources, 4)
	assert.Equal(t, "moralis", sources[0].Name())
	assert.Equal(t, "coingecko", sources[1].Name())
	assert.Equal(t, "binance", sources[2].Name())
	assert.Equal(t, "coinbase", sources[3].Name())
}
