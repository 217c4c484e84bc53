package crawler

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		raw   string
		want  int
		valid bool
	}{
		{"", 0, false},
		{"   ", 0, false},
		{"Po dogovoru", 0, false},
		{"DOGOVOR", 0, false},
		{"Kontakt", 0, false},
		{"450", 450, true},
		{"450 €", 450, true},
		{"1.200 €", 1200, true},
		{"5000", 5000, true},
		{"53000 din", 451, true},
		{"53.000 DIN", 451, true},
		{"6000", 51, true},
		{"12.500 din", 106, true},
		{"100 din", 1, true},
		{"0", 0, false},
		{"50 din", 0, false},
		{"99999999999999", 0, false},
	}

	for _, tt := range tests {
		got, ok := NormalizePrice(tt.raw)
		assert.Equal(t, tt.valid, ok, "NormalizePrice(%q) validity", tt.raw)
		assert.Equal(t, tt.want, got, "NormalizePrice(%q)", tt.raw)
	}
}

func TestNormalizePriceIdempotent(t *testing.T) {
	for _, raw := range []string{"450", "53000 din", "6000", "1.200 €", "4999"} {
		first, ok := NormalizePrice(raw)
		assert.True(t, ok, raw)

		second, ok := NormalizePrice(strconv.Itoa(first))
		assert.True(t, ok, raw)
		assert.Equal(t, first, second, "re-normalizing %q", raw)
	}
}

func TestPriceRulesCustom(t *testing.T) {
	rules := PriceRules{
		NegotiableMarker:    "negotiable",
		LocalCurrencyMarker: "kn",
		LocalThreshold:      1000,
		LocalPerReference:   7.5,
	}

	got, ok := rules.Normalize("75 kn")
	assert.True(t, ok)
	assert.Equal(t, 10, got)

	got, ok = rules.Normalize("1500")
	assert.True(t, ok)
	assert.Equal(t, 200, got)

	_, ok = rules.Normalize("Negotiable")
	assert.False(t, ok)
}
