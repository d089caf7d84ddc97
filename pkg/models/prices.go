package models

import "fmt"

// Rand is the subset of math/rand used for price and key generation.
// Abstracted for deterministic testing.
type Rand interface {
	Intn(n int) int
}

// Synthetic key space: one of four prefixes plus a number in
// [SyntheticKeyLow, SyntheticKeyHigh). These keys exist only to generate
// background churn on the change feed; they are never tracked.
const (
	SyntheticKeyLow  = 10000
	SyntheticKeyHigh = 15000
)

var syntheticPrefixes = []string{"A", "K", "S", "Z"}

// RandomSyntheticKey returns a random non-tracked key.
func RandomSyntheticKey(r Rand) string {
	prefix := syntheticPrefixes[r.Intn(len(syntheticPrefixes))]
	return fmt.Sprintf("%s%d", prefix, SyntheticKeyLow+r.Intn(SyntheticKeyHigh-SyntheticKeyLow))
}

// SyntheticKeys returns every synthetic key, for dataset seeding.
func SyntheticKeys() []string {
	keys := make([]string, 0, len(syntheticPrefixes)*(SyntheticKeyHigh-SyntheticKeyLow))
	for n := SyntheticKeyLow; n < SyntheticKeyHigh; n++ {
		for _, prefix := range syntheticPrefixes {
			keys = append(keys, fmt.Sprintf("%s%d", prefix, n))
		}
	}
	return keys
}

// RandomPrice returns a plausible price for symbol: 90-99 for MDB, 20-89
// for everything else.
func RandomPrice(r Rand, symbol string) float64 {
	if symbol == "MDB" {
		return float64(90 + r.Intn(10))
	}
	return float64(20 + r.Intn(70))
}

// RandomSeedPrice returns the low initial price synthetic records are
// seeded with.
func RandomSeedPrice(r Rand) float64 {
	return float64(10 + r.Intn(10))
}
