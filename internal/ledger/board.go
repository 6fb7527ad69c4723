// Package ledger keeps the in-memory balances of an assignment session and
// moves credits between subjects and applicants as ledger entries are
// applied, replayed or reverted.
package ledger

import (
	"fmt"
	"math"
	"time"

	"github.com/nicocardiel/repdoc/internal/catalog"
	"github.com/nicocardiel/repdoc/internal/domain"
)

// Board is the working state of one academic year: the catalog tables plus
// every ledger entry applied on top of them. It is not safe for concurrent
// use; callers serialize access.
type Board struct {
	course string

	degrees    []*domain.Degree
	degreeByID map[string]*domain.Degree

	subjects      map[string][]*domain.Subject
	subjectByID   map[string]*domain.Subject
	applicants    []*domain.Applicant
	applicantByID map[string]*domain.Applicant

	entries   []*domain.LedgerEntry
	entryByID map[string]*domain.LedgerEntry

	ids *IDSet

	// undo holds the subject state touched by the last Apply or Revert so
	// Discard and Restore can put it back exactly.
	undo *undoRecord
}

type undoRecord struct {
	entryID   string
	subjectID string
	holders   string
}

// NewBoard copies the catalog tables, resets balances and rounds, and checks
// that identifiers are unique across all tables.
func NewBoard(c *catalog.Catalog) (*Board, error) {
	b := &Board{
		course:        c.Course,
		degreeByID:    make(map[string]*domain.Degree, len(c.Degrees)),
		subjects:      make(map[string][]*domain.Subject, len(c.Degrees)),
		subjectByID:   make(map[string]*domain.Subject),
		applicantByID: make(map[string]*domain.Applicant, len(c.Applicants)),
		entryByID:     make(map[string]*domain.LedgerEntry),
	}

	if err := catalog.CheckUniqueIDs(c.IDs()); err != nil {
		return nil, err
	}
	b.ids = NewIDSet(c.IDs())

	for _, d := range c.Degrees {
		dc := *d
		b.degrees = append(b.degrees, &dc)
		b.degreeByID[dc.ID] = &dc

		list := make([]*domain.Subject, 0, len(c.Subjects[d.ID]))
		for _, s := range c.Subjects[d.ID] {
			sc := *s
			sc.DegreeID = dc.ID
			sc.AvailableCredits = sc.InitialCredits
			sc.NewHolders = ""
			list = append(list, &sc)
			b.subjectByID[sc.ID] = &sc
		}
		b.subjects[dc.ID] = list
		dc.Recompute(list)
	}

	for _, a := range c.Applicants {
		ac := *a
		ac.Assigned = 0
		ac.ResetRound()
		b.applicants = append(b.applicants, &ac)
		b.applicantByID[ac.ID] = &ac
	}
	return b, nil
}

func (b *Board) Course() string { return b.course }

// Replay applies a previously persisted ledger in order. Removed entries are
// kept for the audit trail but move no credits. The first failure aborts the
// whole replay.
func (b *Board) Replay(entries []*domain.LedgerEntry) error {
	for _, e := range entries {
		if err := b.ids.Add(e.ID); err != nil {
			return fmt.Errorf("%w: entry %s: %w", domain.ErrReplay, e.ID, err)
		}
		if err := b.apply(e); err != nil {
			return fmt.Errorf("%w: entry %s: %w", domain.ErrReplay, e.ID, err)
		}
		b.entries = append(b.entries, e)
		b.entryByID[e.ID] = e
	}
	return nil
}

// Apply records a new entry and moves its credits. The entry ID must have
// been allocated with NewID or be otherwise unused.
func (b *Board) Apply(e *domain.LedgerEntry) error {
	if _, ok := b.entryByID[e.ID]; ok {
		return fmt.Errorf("ledger entry %s: %w", e.ID, domain.ErrDuplicateID)
	}
	if e.IsRemoved() {
		return fmt.Errorf("ledger entry %s: %w", e.ID, domain.ErrAlreadyRemoved)
	}
	b.remember(e)
	if err := b.apply(e); err != nil {
		b.undo = nil
		return err
	}
	b.ids.Reserve(e.ID)
	b.entries = append(b.entries, e)
	b.entryByID[e.ID] = e
	return nil
}

func (b *Board) apply(e *domain.LedgerEntry) error {
	administrative := e.DegreeID == domain.NullID || e.IsAdministrative()
	if !administrative && e.IsRemoved() {
		return nil
	}

	a, ok := b.applicantByID[e.ApplicantID]
	if !ok {
		return fmt.Errorf("applicant %s: %w", e.ApplicantID, domain.ErrNotFound)
	}
	if administrative {
		finished, err := e.FinishedState()
		if err != nil {
			return err
		}
		a.Finished = finished
		return nil
	}

	d, ok := b.degreeByID[e.DegreeID]
	if !ok {
		return fmt.Errorf("degree %s: %w", e.DegreeID, domain.ErrNotFound)
	}
	s, ok := b.subjectByID[e.SubjectID]
	if !ok || s.DegreeID != d.ID {
		return fmt.Errorf("subject %s in degree %s: %w", e.SubjectID, e.DegreeID, domain.ErrNotFound)
	}

	if err := s.Debit(e.Credits); err != nil {
		return err
	}
	s.AddHolder(a.FullName())
	d.Recompute(b.subjects[d.ID])
	a.AddCredits(e.Credits)
	return nil
}

// Revert logically removes an active entry, giving its credits back to the
// subject and taking them from the applicant.
func (b *Board) Revert(entryID string, at time.Time, round int) (*domain.LedgerEntry, error) {
	e, ok := b.entryByID[entryID]
	if !ok {
		return nil, fmt.Errorf("ledger entry %s: %w", entryID, domain.ErrNotFound)
	}
	if e.IsRemoved() {
		return nil, fmt.Errorf("ledger entry %s: %w", entryID, domain.ErrAlreadyRemoved)
	}
	if e.IsAdministrative() {
		return nil, fmt.Errorf("ledger entry %s: %w", entryID, domain.ErrAdministrativeEntry)
	}

	a := b.applicantByID[e.ApplicantID]
	s := b.subjectByID[e.SubjectID]
	d := b.degreeByID[e.DegreeID]
	if a == nil || s == nil || d == nil {
		return nil, fmt.Errorf("ledger entry %s references unknown rows: %w", entryID, domain.ErrNotFound)
	}

	if err := a.RemoveCredits(e.Credits); err != nil {
		return nil, err
	}
	if err := s.Credit(e.Credits); err != nil {
		a.AddCredits(e.Credits)
		return nil, err
	}
	if err := e.MarkRemoved(at, round); err != nil {
		return nil, err
	}
	b.remember(e)
	s.DropHolder(a.FullName())
	d.Recompute(b.subjects[d.ID])
	return e, nil
}

// Restore undoes a Revert whose persistence failed.
func (b *Board) Restore(entryID string) error {
	e, ok := b.entryByID[entryID]
	if !ok || !e.IsRemoved() {
		return fmt.Errorf("ledger entry %s: %w", entryID, domain.ErrNotFound)
	}
	e.RemovedAt = nil
	e.RoundRemoved = nil
	if err := b.apply(e); err != nil {
		return err
	}
	b.rollbackHolders(e)
	return nil
}

// Discard drops the most recent entry if it is entryID. It undoes an Apply
// whose persistence failed.
func (b *Board) Discard(entryID string) error {
	n := len(b.entries)
	if n == 0 || b.entries[n-1].ID != entryID {
		return fmt.Errorf("ledger entry %s is not the last one: %w", entryID, domain.ErrNotFound)
	}
	e := b.entries[n-1]
	a := b.applicantByID[e.ApplicantID]
	if e.IsAdministrative() {
		a.Finished = !a.Finished
	} else {
		s := b.subjectByID[e.SubjectID]
		if err := a.RemoveCredits(e.Credits); err != nil {
			return err
		}
		if err := s.Credit(e.Credits); err != nil {
			return err
		}
		s.DropHolder(a.FullName())
		b.degreeByID[e.DegreeID].Recompute(b.subjects[e.DegreeID])
		b.rollbackHolders(e)
	}
	b.entries = b.entries[:n-1]
	delete(b.entryByID, entryID)
	return nil
}

// remember saves the holder text of e's subject before it changes.
func (b *Board) remember(e *domain.LedgerEntry) {
	b.undo = nil
	if s, ok := b.subjectByID[e.SubjectID]; ok {
		b.undo = &undoRecord{entryID: e.ID, subjectID: s.ID, holders: s.NewHolders}
	}
}

// rollbackHolders puts back the holder text saved for e, if any.
func (b *Board) rollbackHolders(e *domain.LedgerEntry) {
	u := b.undo
	b.undo = nil
	if u == nil || u.entryID != e.ID {
		return
	}
	if s, ok := b.subjectByID[u.subjectID]; ok {
		s.NewHolders = u.holders
	}
}

// NewID returns an identifier not used by any table or entry.
func (b *Board) NewID() string {
	return b.ids.New()
}

// Verify checks that subject and applicant balances match the active
// entries.
func (b *Board) Verify() error {
	bySubject := make(map[string]float64)
	byApplicant := make(map[string]float64)
	for _, e := range b.entries {
		if !e.Active() {
			continue
		}
		bySubject[e.SubjectID] += e.Credits
		byApplicant[e.ApplicantID] += e.Credits
	}
	for id, s := range b.subjectByID {
		chosen := s.InitialCredits - s.AvailableCredits
		if math.Abs(chosen-bySubject[id]) > domain.RoundTolerance {
			return fmt.Errorf("subject %s: chosen %.4f, ledger %.4f", id, chosen, bySubject[id])
		}
		if s.AvailableCredits > s.InitialCredits+domain.RoundTolerance {
			return fmt.Errorf("subject %s: available %.4f > initial %.4f", id, s.AvailableCredits, s.InitialCredits)
		}
	}
	for id, a := range b.applicantByID {
		if math.Abs(a.Assigned-byApplicant[id]) > domain.RoundTolerance {
			return fmt.Errorf("applicant %s: assigned %.4f, ledger %.4f", id, a.Assigned, byApplicant[id])
		}
	}
	return nil
}
