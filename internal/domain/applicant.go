package domain

import (
	"fmt"
	"strings"
)

type Applicant struct {
	ID        string
	Num       int
	Surname   string
	GivenName string
	Category  string

	// Quota is the workload the applicant has to cover, in credits.
	Quota    float64
	Assigned float64
	Round    int
	Finished bool
}

// FullName returns "GivenName Surname", the form used in holder lists.
func (a *Applicant) FullName() string {
	return strings.TrimSpace(a.GivenName + " " + a.Surname)
}

// Difference is assigned minus quota: negative while the quota is not met.
func (a *Applicant) Difference() float64 {
	return a.Assigned - a.Quota
}

// AssignedPercent returns the fraction of the quota covered, or 0 without quota.
func (a *Applicant) AssignedPercent() float64 {
	if a.Quota <= 0 {
		return 0
	}
	return 100 * a.Assigned / a.Quota
}

func (a *Applicant) IsCollaborator() bool {
	c := Category(strings.TrimSpace(a.Category))
	return c == CategoryCollaborator || c == CategoryCollaboratorFemale
}

func (a *Applicant) IsProtected() bool {
	for _, m := range protectedMarkers {
		if strings.Contains(a.Category, m) {
			return true
		}
	}
	return false
}

// ResetRound sets the round and finished flag for an applicant with nothing
// assigned yet.
func (a *Applicant) ResetRound() {
	a.Finished = false
	switch {
	case a.IsCollaborator():
		a.Round = RoundNotEligible
	case a.Quota == 0:
		a.Round = RoundNotEligible
		a.Finished = true
	case a.IsProtected():
		a.Round = FirstProtectedRound
	default:
		a.Round = 1
	}
}

// UpdateRound recomputes the next eligible round from the assigned credits.
func (a *Applicant) UpdateRound() {
	if a.Quota == 0 || a.IsCollaborator() {
		a.Round = RoundNotEligible
		return
	}
	r := int(a.Assigned/CreditsPerSubject+0.5) + 1
	if a.IsProtected() {
		r += FirstProtectedRound - 1
		if r < FirstProtectedRound {
			r = FirstProtectedRound
		}
	}
	a.Round = r
}

// AddCredits credits the applicant with a new selection.
func (a *Applicant) AddCredits(amount float64) {
	a.Assigned += amount
	a.UpdateRound()
}

// RemoveCredits undoes a selection.
func (a *Applicant) RemoveCredits(amount float64) error {
	if a.Assigned < amount-RoundTolerance {
		return fmt.Errorf("applicant %s has %.4f assigned, removing %.4f: %w",
			a.ID, a.Assigned, amount, ErrInsufficientCredits)
	}
	a.Assigned -= amount
	if a.Assigned < RoundTolerance && a.Assigned > -RoundTolerance {
		a.Assigned = 0
	}
	a.UpdateRound()
	return nil
}

// EligibleIn reports whether the applicant may select during round r.
// Round 0 opens the selection to everybody.
func (a *Applicant) EligibleIn(r int) bool {
	if r == 0 {
		return true
	}
	return a.Round <= r && !a.Finished
}

// BeyondRound reports whether the applicant's next round is later than the
// current one, which is worth a warning before recording a selection.
func (a *Applicant) BeyondRound(current int) bool {
	return current != 0 && a.Round > current
}
