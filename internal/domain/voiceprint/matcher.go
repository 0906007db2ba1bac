package voiceprint

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Distance is the Euclidean distance between two fingerprints. Both must
// come from the same extractor configuration; a dimension mismatch is a
// programming error and panics.
func Distance(a, b Fingerprint) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("voiceprint: fingerprint dimension mismatch: %d vs %d", len(a), len(b)))
	}
	return floats.Distance(a, b, 2)
}

// Matches reports whether two fingerprints belong to the same speaker under
// the given threshold. Accepts iff the distance is strictly below threshold.
// Symmetric in its fingerprint arguments.
func Matches(a, b Fingerprint, threshold float64) bool {
	return Distance(a, b) < threshold
}
