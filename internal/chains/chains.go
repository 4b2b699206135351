// Package chains contains the fixed asset registry: the mapping from coin
// symbols to chain identifiers, decimal conventions and price-source
// identifiers. The table is immutable at runtime.
package chains

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/yourorg/walletflow/internal/model"
)

// Family selects which transaction fetcher variant applies to an asset.
type Family int

const (
	// FamilyNative covers EVM account-model chains (ETH, BNB, ...)
	FamilyNative Family = iota
	// FamilyUTXO covers Bitcoin-style explorers with aggregate totals
	FamilyUTXO
	// FamilySolana covers the balance/transfer/swap gateway model
	FamilySolana
)

// Asset describes one supported coin and how to reach its providers.
type Asset struct {
	// Symbol is the upper-case ticker, e.g. "ETH"
	Symbol string

	// ChainID is the indexing provider's chain slug; empty for BTC
	ChainID string

	Family Family

	// Decimals is the asset's fractional-digit convention (8 for BTC,
	// 9 for SOL, 18 for EVM natives)
	Decimals int

	// UnitScale is the power-of-ten divisor from the unit the provider
	// reports to the display unit. The Solana gateway already reports
	// whole SOL, so SOL uses 1 despite its 9 decimals.
	UnitScale float64

	// CoinGeckoID is the asset's id on the CoinGecko simple-price API
	CoinGeckoID string

	// PriceContract is the token contract queried on the chain-indexing
	// provider's price endpoint: the wrapped-native contract on EVM
	// chains, the canonical wSOL mint on Solana. Empty for BTC, which
	// has no indexing-provider price endpoint.
	PriceContract string
}

// registry is the fixed symbol table. BTC is listed first and special-cased
// onto the UTXO path; everything else routes through the account or Solana
// gateway fetchers.
var registry = map[string]Asset{
	"BTC": {Symbol: "BTC", Family: FamilyUTXO, Decimals: 8, UnitScale: 1e8, CoinGeckoID: "bitcoin"},
	"ETH": {Symbol: "ETH", ChainID: "eth", Family: FamilyNative, Decimals: 18, UnitScale: 1e18,
		CoinGeckoID: "ethereum", PriceContract: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"},
	"BNB": {Symbol: "BNB", ChainID: "bsc", Family: FamilyNative, Decimals: 18, UnitScale: 1e18,
		CoinGeckoID: "binancecoin", PriceContract: "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"},
	"MATIC": {Symbol: "MATIC", ChainID: "polygon", Family: FamilyNative, Decimals: 18, UnitScale: 1e18,
		CoinGeckoID: "matic-network", PriceContract: "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270"},
	"SOL": {Symbol: "SOL", ChainID: "solana", Family: FamilySolana, Decimals: 9, UnitScale: 1,
		CoinGeckoID: "solana", PriceContract: "So11111111111111111111111111111111111111112"},
	"AVAX": {Symbol: "AVAX", ChainID: "avalanche", Family: FamilyNative, Decimals: 18, UnitScale: 1e18,
		CoinGeckoID: "avalanche-2", PriceContract: "0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7"},
	"FTM": {Symbol: "FTM", ChainID: "fantom", Family: FamilyNative, Decimals: 18, UnitScale: 1e18,
		CoinGeckoID: "fantom", PriceContract: "0x21be370D5312f44cB42ce377BC9b8a0cEF1A4C83"},
	"ARB": {Symbol: "ARB", ChainID: "arbitrum", Family: FamilyNative, Decimals: 18, UnitScale: 1e18,
		CoinGeckoID: "arbitrum", PriceContract: "0x912CE59144191C1204E64559FE8253a0e49E6548"},
	"OP": {Symbol: "OP", ChainID: "optimism", Family: FamilyNative, Decimals: 18, UnitScale: 1e18,
		CoinGeckoID: "optimism", PriceContract: "0x4200000000000000000000000000000000000042"},
}

// supportedOrder fixes the enumeration order in error messages, BTC first.
var supportedOrder = []string{"BTC", "ETH", "BNB", "MATIC", "SOL", "AVAX", "FTM", "ARB", "OP"}

// Supported returns the supported coin symbols in a stable order.
func Supported() []string {
	out := make([]string, len(supportedOrder))
	copy(out, supportedOrder)
	return out
}

// Lookup resolves a coin symbol (case-insensitive) to its asset entry.
func Lookup(symbol string) (Asset, error) {
	asset, ok := registry[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return Asset{}, &model.UnsupportedAssetError{
			Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
			Supported: Supported(),
		}
	}
	return asset, nil
}

// ValidateAddress performs the cheap, offline shape check possible for a
// wallet address before any network call. EVM addresses are checked with
// go-ethereum's hex validation; BTC and Solana addresses are opaque to us
// and only checked for presence.
func ValidateAddress(asset Asset, wallet string) error {
	if strings.TrimSpace(wallet) == "" {
		return fmt.Errorf("empty wallet address")
	}
	if asset.Family == FamilyNative && !common.IsHexAddress(wallet) {
		return fmt.Errorf("%q is not a valid %s address", wallet, asset.Symbol)
	}
	return nil
}
