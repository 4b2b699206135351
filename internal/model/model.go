// Package model defines the core data structures for the wallet flow analyzer.
package model

// Record is the normalized form of a single provider transaction entry.
// Provider-specific response shapes (Moralis native transfers, ERC-20
// transfers, Solana gateway records, BlockCypher aggregate totals) are
// adapted into this shape at the fetch boundary so the aggregation logic
// never sees provider quirks.
type Record struct {
	// Amount in the unit the provider reports (wei for EVM chains,
	// satoshis for BTC, whole SOL for the Solana gateway). The flow
	// aggregator applies the per-asset unit scale.
	Amount float64 `json:"amount"`

	// From is the sending address, empty when unknown
	From string `json:"from_address"`

	// To is the receiving address, empty when unknown
	To string `json:"to_address"`
}

// FlowTotals holds the inflow/outflow sums for a wallet, in the asset's
// display unit, rounded to 8 fractional digits.
type FlowTotals struct {
	Inflow   float64 `json:"inflow"`
	Outflow  float64 `json:"outflow"`
	Decimals int     `json:"decimals"`
}

// Net returns the net flow (inflow minus outflow).
func (t FlowTotals) Net() float64 {
	return t.Inflow - t.Outflow
}

// AnalyzeRequest is the inbound request for a wallet analysis.
type AnalyzeRequest struct {
	Wallet string `json:"wallet"`
	Coin   string `json:"coin"`

	// Limit caps how many transaction records are analyzed.
	// Zero or negative means all available records.
	Limit int `json:"limit"`
}

// Report is the final analysis result returned to the caller. Monetary
// fields are pre-formatted strings so the wire format stays stable
// regardless of float representation.
type Report struct {
	Wallet      string `json:"wallet"`
	Coin        string `json:"coin"`
	Received    string `json:"received"`
	ReceivedUSD string `json:"receivedUsd"`
	Sent        string `json:"sent"`
	SentUSD     string `json:"sentUsd"`
	Net         string `json:"net"`
	NetUSD      string `json:"netUsd"`

	// TransactionsAnalyzed is the effective record limit, or the string
	// "all" when the caller requested an unbounded analysis.
	TransactionsAnalyzed interface{} `json:"transactionsAnalyzed"`

	// Warning is set when the report is degraded, e.g. no price source
	// could be reached and the USD columns are unavailable.
	Warning string `json:"warning,omitempty"`
}
