package faces

import "math"

// Matcher compares a candidate detection against the enrolled signatures.
// It is a capability interface so a real embedding-distance matcher can be
// substituted without touching the decision or cooldown logic.
type Matcher interface {
	// Match returns the first enrolled name whose signature matches the
	// candidate box, or ok=false when nothing matches.
	Match(candidate BoundingBox, known []KnownSignature) (name string, ok bool)
}

// DefaultTolerance is the normalized-coordinate tolerance used when a
// ToleranceMatcher is constructed with a zero tolerance.
const DefaultTolerance = 0.05

// ToleranceMatcher matches when both the normalized horizontal and vertical
// offsets of the candidate box are within Tolerance of a stored signature.
// First match wins; there is no distance ranking.
//
// This is a deliberately cheap stand-in for real face-embedding comparison.
// It has no discriminative power worth speaking of — a face in roughly the
// same part of the frame as an enrolled reference will match — and the
// tolerance is not calibrated.  Do not harden it; replace it.
type ToleranceMatcher struct {
	Tolerance float64
}

func (m ToleranceMatcher) Match(candidate BoundingBox, known []KnownSignature) (string, bool) {
	tol := m.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	for _, sig := range known {
		if math.Abs(sig.Box.XMin-candidate.XMin) < tol &&
			math.Abs(sig.Box.YMin-candidate.YMin) < tol {
			return sig.Name, true
		}
	}
	return "", false
}
