package crawler

import (
	"math"
	"strconv"
	"strings"
)

// PriceRules controls how raw price text is normalized into euros
type PriceRules struct {
	NegotiableMarker    string
	LocalCurrencyMarker string
	// LocalThreshold is the magnitude above which a bare number is read as dinars
	LocalThreshold int
	// LocalPerReference is the number of dinars per euro
	LocalPerReference float64
}

// DefaultPriceRules returns the dinar/euro rules of the marketplace
func DefaultPriceRules() PriceRules {
	return PriceRules{
		NegotiableMarker:    "dogovor",
		LocalCurrencyMarker: "din",
		LocalThreshold:      5000,
		LocalPerReference:   117.4,
	}
}

// NormalizePrice normalizes raw price text with the default rules
func NormalizePrice(raw string) (int, bool) {
	return DefaultPriceRules().Normalize(raw)
}

// Normalize returns the price in euros, or false when the text carries no price.
func (r PriceRules) Normalize(raw string) (int, bool) {
	lower := strings.ToLower(raw)
	if strings.TrimSpace(lower) == "" || strings.Contains(lower, r.NegotiableMarker) {
		return 0, false
	}

	digits := strings.Map(func(c rune) rune {
		if c >= '0' && c <= '9' {
			return c
		}
		return -1
	}, raw)
	if digits == "" {
		return 0, false
	}

	magnitude, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}

	if strings.Contains(lower, r.LocalCurrencyMarker) || magnitude > float64(r.LocalThreshold) {
		magnitude = math.RoundToEven(magnitude / r.LocalPerReference)
	}
	// A zero result is as good as no price.
	if magnitude < 1 || magnitude > math.MaxInt32 {
		return 0, false
	}
	return int(magnitude), true
}
