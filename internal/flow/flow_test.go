package flow

import (
	"testing"

	"github.com/yourorg/walletflow/internal/chains"
	"github.com/yourorg/walletflow/internal/model"
)

func TestAggregate(t *testing.T) {
	eth := mustLookup(t, "ETH")
	sol := mustLookup(t, "SOL")
	btc := mustLookup(t, "BTC")

	tests := []struct {
		name    string
		records []model.Record
		wallet  string
		asset   chains.Asset
		inflow  float64
		outflow float64
	}{
		{
			name:    "no matching records",
			records: []model.Record{{Amount: 5, From: "0xaaa", To: "0xbbb"}},
			wallet:  "0xccc",
			asset:   sol,
		},
		{
			name:    "empty input",
			records: nil,
			wallet:  "0xccc",
			asset:   eth,
		},
		{
			name: "inbound counted once toward inflow",
			records: []model.Record{
				{Amount: 1.5e18, From: "0xaaa", To: "0xABC"},
			},
			wallet: "0xabc",
			asset:  eth,
			inflow: 1.5,
		},
		{
			name: "inbound and outbound attributed separately",
			records: []model.Record{
				{Amount: 1.5e18, From: "0xaaa", To: "0xabc"},
				{Amount: 0.5e18, From: "0xabc", To: "0xbbb"},
			},
			wallet:  "0xABC",
			asset:   eth,
			inflow:  1.5,
			outflow: 0.5,
		},
		{
			name: "self transfer counts as inflow only",
			records: []model.Record{
				{Amount: 2e18, From: "0xabc", To: "0xabc"},
			},
			wallet: "0xabc",
			asset:  eth,
			inflow: 2,
		},
		{
			name: "zero amounts skipped",
			records: []model.Record{
				{Amount: 0, From: "0xaaa", To: "0xabc"},
				{Amount: 1e18, From: "0xaaa", To: "0xabc"},
			},
			wallet: "0xabc",
			asset:  eth,
			inflow: 1,
		},
		{
			name: "satoshi scale applied",
			records: []model.Record{
				{Amount: 250000000, To: "bc1qxyz"},
				{Amount: 100000000, From: "bc1qxyz"},
			},
			wallet:  "BC1QXYZ",
			asset:   btc,
			inflow:  2.5,
			outflow: 1,
		},
		{
			name: "sol amounts already in display units",
			records: []model.Record{
				{Amount: 3.25, To: "walletsol"},
			},
			wallet: "walletsol",
			asset:  sol,
			inflow: 3.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.records, tt.wallet, tt.asset)
			if got.Inflow != tt.inflow {
				t.Errorf("Inflow got = %v, want %v", got.Inflow, tt.inflow)
			}
			if got.Outflow != tt.outflow {
				t.Errorf("Outflow got = %v, want %v", got.Outflow, tt.outflow)
			}
			if got.Decimals != tt.asset.Decimals {
				t.Errorf("Decimals got = %v, want %v", got.Decimals, tt.asset.Decimals)
			}
		})
	}
}

func TestAggregateRoundsToEightDigits(t *testing.T) {
	sol := mustLookup(t, "SOL")
	records := []model.Record{{Amount: 0.123456789, To: "wallet"}}

	got := Aggregate(records, "wallet", sol)
	if got.Inflow != 0.12345679 {
		t.Errorf("Inflow got = %v, want 0.12345679", got.Inflow)
	}
}

func TestRound8(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.123456789, 0.12345679},
		{0.123456784, 0.12345678},
		{1.0, 1.0},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round8(tt.in); got != tt.want {
			t.Errorf("Round8(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func mustLookup(t *testing.T, symbol string) chains.Asset {
	t.Helper()
	asset, err := chains.Lookup(symbol)
	if err != nil {
		t.Fatalf("Lookup(%s): %v", symbol, err)
	}
	return asset
}
