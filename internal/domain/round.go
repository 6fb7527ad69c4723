package domain

import "fmt"

// ValidateRound accepts 0 (everybody) up to RoundNotEligible-1.
func ValidateRound(r int) error {
	if r < 0 || r >= RoundNotEligible {
		return fmt.Errorf("round %d outside [0, %d): %w", r, RoundNotEligible, ErrInvalidRound)
	}
	return nil
}

// RoundThreshold is the assigned credit level at which an applicant leaves
// round r.
func RoundThreshold(r int) float64 {
	if r <= 0 {
		return 0
	}
	return (float64(r-1) + 0.5) * CreditsPerSubject
}
