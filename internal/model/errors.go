package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput indicates a request that is rejected before any network
// call, e.g. a missing wallet address or coin symbol.
var ErrInvalidInput = errors.New("wallet address and coin symbol are required")

// ErrPriceUnavailable indicates every configured price source failed.
// This is a soft failure: the analysis still completes with the USD
// columns marked unavailable.
var ErrPriceUnavailable = errors.New("unable to fetch price from any source")

// UnsupportedAssetError is returned when the requested coin symbol is not
// in the asset registry.
type UnsupportedAssetError struct {
	Symbol    string
	Supported []string
}

func (e *UnsupportedAssetError) Error() string {
	return fmt.Sprintf("%s is not supported. Supported coins: %s",
		e.Symbol, strings.Join(e.Supported, ", "))
}

// ProviderError is a non-success response from a transaction or price
// provider. It is fatal to the fetch it occurred in.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error: status %d, body: %s", e.Provider, e.StatusCode, e.Body)
}

// IsRateLimited reports whether an error looks like a provider rate limit.
// Providers signal this inconsistently, so the check is text-based; the
// HTTP boundary rewrites such errors to a user-facing retry message
// instead of leaking raw provider text.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) && pe.StatusCode == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "status 429")
}
