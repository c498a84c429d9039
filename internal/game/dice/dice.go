// Package dice provides the randomness abstraction consumed by the combat
// engine and the NPC decision policy.
//
// No package-level generator exists: every roll takes its Source explicitly so
// that a seeded Source reproduces a match exactly.
package dice

// Source is the randomness provider for critical rolls, AI draws and flavor picks.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float64 in [0.0, 1.0).
	Float64() float64
}

// Percentile rolls a uniform integer in [0, 100).
//
// Precondition: src must be non-nil.
// Postcondition: 0 <= result < 100.
func Percentile(src Source) int {
	return src.Intn(100)
}

// Chance reports whether a uniform draw in [0, 1) falls below p.
// A p <= 0 never succeeds and p >= 1 always succeeds; a draw is consumed either way.
//
// Precondition: src must be non-nil.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}
