// Package flow turns normalized transaction records into inflow/outflow
// totals for a wallet.
package flow

import (
	"math"
	"strings"

	"github.com/yourorg/walletflow/internal/chains"
	"github.com/yourorg/walletflow/internal/model"
)

// Aggregate accumulates records into flow totals for a wallet. Each record
// counts once, toward inflow when the wallet is the recipient or outflow
// when it is the sender; a record matching both (a self-transfer in
// provider data) counts as inflow only, because the inflow branch is
// checked first. Amounts are divided by the asset's unit scale and the
// final totals are rounded independently to 8 fractional digits.
func Aggregate(records []model.Record, wallet string, asset chains.Asset) model.FlowTotals {
	scale := asset.UnitScale
	if scale <= 0 {
		scale = 1
	}

	w := strings.ToLower(wallet)
	var inflow, outflow float64
	for _, rec := range records {
		if rec.Amount == 0 {
			continue
		}
		amount := rec.Amount / scale
		switch {
		case strings.ToLower(rec.To) == w:
			inflow += amount
		case strings.ToLower(rec.From) == w:
			outflow += amount
		}
	}

	return model.FlowTotals{
		Inflow:   Round8(inflow),
		Outflow:  Round8(outflow),
		Decimals: asset.Decimals,
	}
}

// Round8 rounds to 8 fractional digits, the finest precision any supported
// asset reports.
func Round8(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}
