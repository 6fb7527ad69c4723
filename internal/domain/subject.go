package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Subject struct {
	ID       string
	DegreeID string
	Num      int

	CourseYear string
	Semester   string
	Code       string
	Name       string
	Area       string
	Comments   string
	Group      string
	Schedule   string

	InitialCredits   float64
	AvailableCredits float64

	// Reserved subjects are kept for becario/colaborador applicants.
	Reserved bool

	PreviousHolder string
	Seniority      string

	// NewHolders accumulates "A + B - A" as selections and removals happen.
	NewHolders string
}

// Debit takes amount credits from the subject.
func (s *Subject) Debit(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("debit %.4f from %s: %w", amount, s.ID, ErrInvalidCredits)
	}
	if s.AvailableCredits < amount-RoundTolerance {
		return fmt.Errorf("subject %s has %.4f, requested %.4f: %w",
			s.ID, s.AvailableCredits, amount, ErrInsufficientCredits)
	}
	s.AvailableCredits -= amount
	if math.Abs(s.AvailableCredits) < RoundTolerance {
		s.AvailableCredits = 0
	}
	return nil
}

// Credit gives amount credits back to the subject.
func (s *Subject) Credit(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("credit %.4f to %s: %w", amount, s.ID, ErrInvalidCredits)
	}
	next := s.AvailableCredits + amount
	if next > s.InitialCredits+RoundTolerance {
		return fmt.Errorf("subject %s: %.4f + %.4f > %.4f: %w",
			s.ID, s.AvailableCredits, amount, s.InitialCredits, ErrCreditOverflow)
	}
	if math.Abs(next-s.InitialCredits) < RoundTolerance {
		next = s.InitialCredits
	}
	s.AvailableCredits = next
	return nil
}

// HasAvailable reports whether credits are left.
func (s *Subject) HasAvailable() bool {
	return s.AvailableCredits > RoundTolerance
}

func (s *Subject) AddHolder(name string) {
	if strings.TrimSpace(s.NewHolders) == "" {
		s.NewHolders = name
		return
	}
	s.NewHolders += " + " + name
}

func (s *Subject) DropHolder(name string) {
	s.NewHolders += " - " + name
}

// SeniorityWarning reports whether the previous holder has kept the subject
// long enough (or the value is unreadable) to deserve a warning.
func (s *Subject) SeniorityWarning() bool {
	v := strings.TrimSpace(s.Seniority)
	if v == "" || v == "-" {
		return false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return true
	}
	return n >= SeniorityWarningYears
}
