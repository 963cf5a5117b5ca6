package availability

import (
	"fmt"
	"time"
)

// Policy selects how interval boundaries are compared.
type Policy string

const (
	// PolicyStrict treats intervals as half-open. Back-to-back bookings are allowed.
	PolicyStrict Policy = "strict"
	// PolicyInclusive treats touching boundaries as a clash.
	PolicyInclusive Policy = "inclusive"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyStrict, "":
		return PolicyStrict, nil
	case PolicyInclusive:
		return PolicyInclusive, nil
	default:
		return "", fmt.Errorf("unknown overlap policy %q", s)
	}
}

// Overlaps reports whether [startA, endA) and [startB, endB) share an instant.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

func (p Policy) Overlaps(startA, endA, startB, endB time.Time) bool {
	if p == PolicyInclusive {
		return !startA.After(endB) && !startB.After(endA)
	}
	return Overlaps(startA, endA, startB, endB)
}
