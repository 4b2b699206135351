// Package report composes aggregated flow and a resolved price into the
// final analysis result.
package report

import (
	"strconv"
	"strings"

	"github.com/yourorg/walletflow/internal/chains"
	"github.com/yourorg/walletflow/internal/model"
)

// usdUnavailable marks USD columns when no price source could be reached.
const usdUnavailable = "unavailable"

// priceWarning is attached to degraded reports instead of failing the
// whole request.
const priceWarning = "live price unavailable from all sources; USD values omitted"

// Build composes the final report. priceOK=false degrades the USD columns
// to an explicit unavailable marker with a warning, leaving the native
// totals intact. limit <= 0 reports "all" for transactionsAnalyzed.
func Build(wallet string, asset chains.Asset, totals model.FlowTotals, usdPrice float64, priceOK bool, limit int) model.Report {
	r := model.Report{
		Wallet:   wallet,
		Coin:     asset.Symbol,
		Received: formatAmount(totals.Inflow),
		Sent:     formatAmount(totals.Outflow),
		Net:      formatAmount(totals.Net()),
	}

	if priceOK {
		receivedUSD := totals.Inflow * usdPrice
		sentUSD := totals.Outflow * usdPrice
		r.ReceivedUSD = formatUSD(receivedUSD)
		r.SentUSD = formatUSD(sentUSD)
		r.NetUSD = formatUSD(receivedUSD - sentUSD)
	} else {
		r.ReceivedUSD = usdUnavailable
		r.SentUSD = usdUnavailable
		r.NetUSD = usdUnavailable
		r.Warning = priceWarning
	}

	if limit > 0 {
		r.TransactionsAnalyzed = limit
	} else {
		r.TransactionsAnalyzed = "all"
	}
	return r
}

// formatAmount renders a native-unit amount with 8 fractional digits.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 8, 64)
}

// formatUSD renders a dollar value with two decimals and thousands
// separators, e.g. 3000 -> "3,000.00".
func formatUSD(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}
