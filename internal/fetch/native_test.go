package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/walletflow/internal/chains"
	"github.com/yourorg/walletflow/internal/config"
	"github.com/yourorg/walletflow/internal/model"
)

const testWallet = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

func testConfig(baseURL string) config.Config {
	return config.Config{
		MoralisBaseURL:   baseURL,
		SolanaGatewayURL: baseURL,
		BlockCypherURL:   baseURL,
		MoralisAPIKey:    "test-key",
		RequestTimeout:   2 * time.Second,
	}
}

func ethAsset(t *testing.T) chains.Asset {
	t.Helper()
	asset, err := chains.Lookup("ETH")
	require.NoError(t, err)
	return asset
}

// transferPageServer serves sequential cursor pages of synthetic transfers,
// recording the limit and cursor of each request.
func transferPageServer(t *testing.T, pages [][]model.Record, limits *[]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limits != nil {
			size, _ := strconv.Atoi(r.URL.Query().Get("limit"))
			*limits = append(*limits, size)
		}
		idx := 0
		if c := r.URL.Query().Get("cursor"); c != "" {
			idx, _ = strconv.Atoi(c)
		}
		require.Less(t, idx, len(pages), "requested page past the end")

		cursor := ""
		if idx < len(pages)-1 {
			cursor = strconv.Itoa(idx + 1)
		}
		fmt.Fprintf(w, `{"cursor": %q, "result": [`, cursor)
		for i, rec := range pages[idx] {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"value": "%.0f", "to_address": %q, "from_address": %q}`,
				rec.Amount, rec.To, rec.From)
		}
		fmt.Fprint(w, `]}`)
	}))
}

func syntheticPage(n int, amount float64) []model.Record {
	page := make([]model.Record, n)
	for i := range page {
		page[i] = model.Record{Amount: amount, To: testWallet, From: "0xabc"}
	}
	return page
}

func TestNativeFetcher_SinglePage(t *testing.T) {
	var gotKey, gotChain string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotChain = r.URL.Query().Get("chain")
		fmt.Fprint(w, `{"cursor": "", "result": [
			{"value": "1500000000000000000", "to_address": "0xAAA", "from_address": "0xBBB"}
		]}`)
	}))
	defer srv.Close()

	f := NewNativeFetcher(testConfig(srv.URL), ethAsset(t))
	records, err := f.Fetch(context.Background(), testWallet, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1.5e18, records[0].Amount)
	assert.Equal(t, "0xAAA", records[0].To)
	assert.Equal(t, "0xBBB", records[0].From)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "eth", gotChain)
}

func TestNativeFetcher_LimitCapsPagination(t *testing.T) {
	var limits []int
	srv := transferPageServer(t, [][]model.Record{
		syntheticPage(100, 1),
		syntheticPage(100, 1),
		syntheticPage(100, 1),
	}, &limits)
	defer srv.Close()

	f := NewNativeFetcher(testConfig(srv.URL), ethAsset(t))
	records, err := f.Fetch(context.Background(), testWallet, 150)
	require.NoError(t, err)
	assert.Len(t, records, 150, "result must be truncated to the limit")
	assert.Equal(t, []int{100, 50}, limits, "second page requests only the remainder")
}

func TestNativeFetcher_UnlimitedWalksAllPages(t *testing.T) {
	var limits []int
	srv := transferPageServer(t, [][]model.Record{
		syntheticPage(100, 1),
		syntheticPage(100, 1),
		syntheticPage(30, 1),
	}, &limits)
	defer srv.Close()

	f := NewNativeFetcher(testConfig(srv.URL), ethAsset(t))
	records, err := f.Fetch(context.Background(), testWallet, 0)
	require.NoError(t, err)
	assert.Len(t, records, 230)
	assert.Equal(t, []int{100, 100, 100}, limits)
}

func TestNativeFetcher_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "invalid address"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	f := NewNativeFetcher(testConfig(srv.URL), ethAsset(t))
	_, err := f.Fetch(context.Background(), testWallet, 10)
	var provErr *model.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "Moralis", provErr.Provider)
	assert.Equal(t, http.StatusBadRequest, provErr.StatusCode)
}

func TestNativeFetcher_BareArrayResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"value": "2000000000000000000", "to": "0xAAA", "from": "0xBBB"}]`)
	}))
	defer srv.Close()

	f := NewNativeFetcher(testConfig(srv.URL), ethAsset(t))
	records, err := f.Fetch(context.Background(), testWallet, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2e18, records[0].Amount)
	assert.Equal(t, "0xAAA", records[0].To, "legacy to/from spellings must be honored")
}

func TestMoralisTransferRecord_NativeValueFallback(t *testing.T) {
	rec := moralisTransfer{NativeValue: "42", To: "0xAAA", From: "0xBBB"}.record()
	assert.Equal(t, 42.0, rec.Amount)

	rec = moralisTransfer{Value: "0", NativeValue: "7", ToAddress: "0xAAA"}.record()
	assert.Equal(t, 7.0, rec.Amount, "zero value falls back to native_value")
}
