package service

import (
	"fmt"

	"github.com/nicocardiel/repdoc/internal/domain"
)

func (s *assignmentService) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Course:     s.board.Course(),
		Blocked:    s.blocked,
		Totals:     s.board.Totals(),
		Applicants: len(s.board.Applicants()),
		Entries:    len(s.board.Entries()),
	}
	for _, d := range s.board.Degrees() {
		sum.Degrees = append(sum.Degrees, *d)
	}
	for _, e := range s.board.Entries() {
		if e.Active() {
			sum.ActiveEntries++
		}
	}
	return sum
}

func (s *assignmentService) EligibleApplicants(round int) ([]domain.Applicant, error) {
	if err := domain.ValidateRound(round); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Applicant
	for _, a := range s.board.EligibleApplicants(round) {
		out = append(out, *a)
	}
	return out, nil
}

func (s *assignmentService) ApplicantDetail(id string) (*ApplicantDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.board.Applicant(id)
	if err != nil {
		return nil, fmt.Errorf("applicant detail: %w", err)
	}
	detail := &ApplicantDetail{Applicant: *a}
	for _, e := range s.board.ActiveEntriesFor(id) {
		detail.Selections = append(detail.Selections, *e)
	}
	return detail, nil
}

func (s *assignmentService) AvailableDegrees() []domain.Degree {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Degree
	for _, d := range s.board.AvailableDegrees() {
		out = append(out, *d)
	}
	return out
}

func (s *assignmentService) AvailableSubjects(degreeID string, excludeReserved bool) []domain.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Subject
	for _, sub := range s.board.AvailableSubjects(degreeID, excludeReserved) {
		out = append(out, *sub)
	}
	return out
}

// Entries returns a copy of the whole ledger in append order.
func (s *assignmentService) Entries() []domain.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LedgerEntry, 0, len(s.board.Entries()))
	for _, e := range s.board.Entries() {
		out = append(out, *e)
	}
	return out
}
