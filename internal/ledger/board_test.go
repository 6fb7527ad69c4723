package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/nicocardiel/repdoc/internal/catalog"
	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Course: "2025-2026",
		Degrees: []*domain.Degree{
			{ID: "d1", Num: 1, Name: "Física"},
			{ID: "d2", Num: 2, Name: "Matemáticas"},
		},
		Subjects: map[string][]*domain.Subject{
			"d1": {
				{ID: "s1", DegreeID: "d1", Num: 1, Name: "Mecánica", InitialCredits: 6, AvailableCredits: 6},
				{ID: "s2", DegreeID: "d1", Num: 2, Name: "Óptica", InitialCredits: 4.5, AvailableCredits: 4.5, Reserved: true},
			},
			"d2": {
				{ID: "s3", DegreeID: "d2", Num: 1, Name: "Astrofísica", InitialCredits: 9, AvailableCredits: 9},
			},
		},
		Applicants: []*domain.Applicant{
			{ID: "p1", Num: 1, Surname: "Ruiz", GivenName: "Ana", Category: "CU", Quota: 24},
			{ID: "p2", Num: 2, Surname: "Martín", GivenName: "Eva", Category: "RyC", Quota: 6},
			{ID: "p3", Num: 3, Surname: "López", GivenName: "Juan", Category: "Colaborador", Quota: 4.5},
		},
	}
}

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	b, err := NewBoard(testCatalog())
	require.NoError(t, err)
	return b
}

func selection(t *testing.T, b *Board, applicantID, subjectID string, credits float64) *domain.LedgerEntry {
	t.Helper()
	a, err := b.Applicant(applicantID)
	require.NoError(t, err)
	s, err := b.Subject(subjectID)
	require.NoError(t, err)
	return domain.NewSelectionEntry(b.NewID(), a, s, credits, "", testNow, 1)
}

func TestNewBoard_InitialState(t *testing.T) {
	b := newTestBoard(t)

	d1, err := b.Degree("d1")
	require.NoError(t, err)
	assert.InDelta(t, 10.5, d1.InitialCredits, 1e-9)
	assert.InDelta(t, 10.5, d1.AvailableCredits, 1e-9)
	assert.InDelta(t, 4.5, d1.ReservedCredits, 1e-9)

	p1, _ := b.Applicant("p1")
	p2, _ := b.Applicant("p2")
	p3, _ := b.Applicant("p3")
	assert.Equal(t, 1, p1.Round)
	assert.Equal(t, domain.FirstProtectedRound, p2.Round)
	assert.Equal(t, domain.RoundNotEligible, p3.Round)
}

func TestNewBoard_DoesNotAliasCatalog(t *testing.T) {
	c := testCatalog()
	b, err := NewBoard(c)
	require.NoError(t, err)

	e := selection(t, b, "p1", "s1", 6)
	require.NoError(t, b.Apply(e))
	assert.Equal(t, 6.0, c.Subjects["d1"][0].AvailableCredits)
}

func TestNewBoard_DuplicateIDs(t *testing.T) {
	c := testCatalog()
	c.Applicants[0].ID = "s3"
	_, err := NewBoard(c)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestApply_MovesCredits(t *testing.T) {
	b := newTestBoard(t)

	require.NoError(t, b.Apply(selection(t, b, "p1", "s1", 4.5)))

	s1, _ := b.Subject("s1")
	d1, _ := b.Degree("d1")
	p1, _ := b.Applicant("p1")
	assert.InDelta(t, 1.5, s1.AvailableCredits, 1e-9)
	assert.InDelta(t, 4.5, d1.ChosenCredits, 1e-9)
	assert.InDelta(t, 4.5, p1.Assigned, 1e-9)
	assert.InDelta(t, -19.5, p1.Difference(), 1e-9)
	assert.Equal(t, 2, p1.Round)
	assert.Equal(t, "Ana Ruiz", s1.NewHolders)
	require.NoError(t, b.Verify())
}

func TestApply_InsufficientCredits(t *testing.T) {
	b := newTestBoard(t)

	err := b.Apply(selection(t, b, "p1", "s2", 5))
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)
	assert.Empty(t, b.Entries())
	require.NoError(t, b.Verify())
}

func TestApply_ReservedCreditsTracked(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.Apply(selection(t, b, "p1", "s2", 1.5)))

	d1, _ := b.Degree("d1")
	assert.InDelta(t, 3, d1.ReservedCredits, 1e-9)
	assert.InDelta(t, 3, b.Totals().Reserved, 1e-9)
}

func TestRevert_RestoresExactCredits(t *testing.T) {
	b := newTestBoard(t)
	e := selection(t, b, "p1", "s1", 2.25)
	require.NoError(t, b.Apply(e))
	require.NoError(t, b.Apply(selection(t, b, "p2", "s1", 1.5)))

	reverted, err := b.Revert(e.ID, testNow.Add(time.Hour), 2)
	require.NoError(t, err)
	assert.True(t, reverted.IsRemoved())
	assert.Equal(t, 2, *reverted.RoundRemoved)

	s1, _ := b.Subject("s1")
	p1, _ := b.Applicant("p1")
	assert.InDelta(t, 4.5, s1.AvailableCredits, 1e-9)
	assert.Equal(t, 0.0, p1.Assigned)
	assert.Equal(t, 1, p1.Round)
	assert.Equal(t, "Ana Ruiz + Eva Martín - Ana Ruiz", s1.NewHolders)
	require.NoError(t, b.Verify())

	_, err = b.Revert(e.ID, testNow, 2)
	assert.ErrorIs(t, err, domain.ErrAlreadyRemoved)
}

func TestRevert_AdministrativeEntry(t *testing.T) {
	b := newTestBoard(t)
	p1, _ := b.Applicant("p1")
	e := domain.NewFinishedEntry(b.NewID(), p1, true, testNow, 1)
	require.NoError(t, b.Apply(e))
	assert.True(t, p1.Finished)

	_, err := b.Revert(e.ID, testNow, 1)
	assert.ErrorIs(t, err, domain.ErrAdministrativeEntry)
}

func TestRevert_Unknown(t *testing.T) {
	b := newTestBoard(t)
	_, err := b.Revert("nope", testNow, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplay_SkipsRemovedAndAppliesAdministrative(t *testing.T) {
	b := newTestBoard(t)
	p1, _ := b.Applicant("p1")
	s3, _ := b.Subject("s3")

	removedAt := testNow.Add(time.Minute)
	round := 1
	removed := domain.NewSelectionEntry("b1", p1, s3, 9, "", testNow, 1)
	removed.RemovedAt = &removedAt
	removed.RoundRemoved = &round

	entries := []*domain.LedgerEntry{
		removed,
		domain.NewSelectionEntry("b2", p1, s3, 4.5, "", testNow, 1),
		domain.NewFinishedEntry("b3", p1, true, testNow, 2),
	}
	require.NoError(t, b.Replay(entries))

	assert.InDelta(t, 4.5, s3.AvailableCredits, 1e-9)
	assert.InDelta(t, 4.5, p1.Assigned, 1e-9)
	assert.True(t, p1.Finished)
	assert.Len(t, b.Entries(), 3)
	require.NoError(t, b.Verify())
}

func TestReplay_FailsOnInsufficientCredits(t *testing.T) {
	b := newTestBoard(t)
	p1, _ := b.Applicant("p1")
	s1, _ := b.Subject("s1")

	entries := []*domain.LedgerEntry{
		domain.NewSelectionEntry("b1", p1, s1, 4.5, "", testNow, 1),
		domain.NewSelectionEntry("b2", p1, s1, 4.5, "", testNow, 1),
	}
	err := b.Replay(entries)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrReplay)
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)
	assert.Contains(t, err.Error(), "b2")
}

func TestReplay_UnknownExplanation(t *testing.T) {
	b := newTestBoard(t)
	p1, _ := b.Applicant("p1")
	e := domain.NewFinishedEntry("b1", p1, true, testNow, 1)
	e.Explanation = "otra cosa"

	err := b.Replay([]*domain.LedgerEntry{e})
	assert.ErrorIs(t, err, domain.ErrReplay)
}

func TestReplay_EntryIDCollidesWithCatalog(t *testing.T) {
	b := newTestBoard(t)
	p1, _ := b.Applicant("p1")
	s1, _ := b.Subject("s1")

	err := b.Replay([]*domain.LedgerEntry{domain.NewSelectionEntry("d2", p1, s1, 1, "", testNow, 1)})
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestReplay_Deterministic(t *testing.T) {
	source := newTestBoard(t)
	require.NoError(t, source.Apply(selection(t, source, "p1", "s1", 4.5)))
	require.NoError(t, source.Apply(selection(t, source, "p2", "s3", 3)))
	gone := selection(t, source, "p1", "s3", 6)
	require.NoError(t, source.Apply(gone))
	_, err := source.Revert(gone.ID, testNow, 2)
	require.NoError(t, err)
	require.NoError(t, source.Apply(selection(t, source, "p1", "s2", 1.5)))

	first := newTestBoard(t)
	second := newTestBoard(t)
	require.NoError(t, first.Replay(source.Entries()))
	require.NoError(t, second.Replay(source.Entries()))

	for _, id := range []string{"s1", "s2", "s3"} {
		a, _ := first.Subject(id)
		bb, _ := second.Subject(id)
		orig, _ := source.Subject(id)
		assert.Equal(t, a.AvailableCredits, bb.AvailableCredits, id)
		assert.InDelta(t, orig.AvailableCredits, a.AvailableCredits, 1e-9, id)
	}
	for _, id := range []string{"p1", "p2", "p3"} {
		a, _ := first.Applicant(id)
		bb, _ := second.Applicant(id)
		assert.Equal(t, a.Assigned, bb.Assigned, id)
		assert.Equal(t, a.Round, bb.Round, id)
	}
	assert.Equal(t, first.Totals(), second.Totals())
	require.NoError(t, first.Verify())
}

func TestDiscard_UndoesLastApply(t *testing.T) {
	b := newTestBoard(t)
	e := selection(t, b, "p1", "s1", 3)
	require.NoError(t, b.Apply(e))
	require.NoError(t, b.Discard(e.ID))

	s1, _ := b.Subject("s1")
	p1, _ := b.Applicant("p1")
	assert.Equal(t, 6.0, s1.AvailableCredits)
	assert.Equal(t, 0.0, p1.Assigned)
	assert.Empty(t, s1.NewHolders)
	assert.Empty(t, b.Entries())
}

func TestDiscard_KeepsEarlierHolders(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.Apply(selection(t, b, "p2", "s1", 1)))
	e := selection(t, b, "p1", "s1", 3)
	require.NoError(t, b.Apply(e))
	require.NoError(t, b.Discard(e.ID))

	s1, _ := b.Subject("s1")
	assert.Equal(t, "Eva Martín", s1.NewHolders)
}

func TestRestore_UndoesRevert(t *testing.T) {
	b := newTestBoard(t)
	e := selection(t, b, "p1", "s1", 3)
	require.NoError(t, b.Apply(e))
	_, err := b.Revert(e.ID, testNow, 1)
	require.NoError(t, err)

	require.NoError(t, b.Restore(e.ID))
	assert.False(t, e.IsRemoved())
	require.NoError(t, b.Verify())

	s1, _ := b.Subject("s1")
	assert.Equal(t, "Ana Ruiz", s1.NewHolders)

	replayed := newTestBoard(t)
	require.NoError(t, replayed.Replay(b.Entries()))
	r1, _ := replayed.Subject("s1")
	assert.Equal(t, s1.NewHolders, r1.NewHolders)
}

func TestReplay_RemovedEntryOfDepartedApplicant(t *testing.T) {
	b := newTestBoard(t)
	s1, _ := b.Subject("s1")
	gone := &domain.Applicant{ID: "p9", Surname: "Gil", GivenName: "Luis", Category: "TU"}

	removedAt := testNow.Add(time.Hour)
	round := 2
	e := domain.NewSelectionEntry("b1", gone, s1, 3, "", testNow, 1)
	e.RemovedAt = &removedAt
	e.RoundRemoved = &round

	require.NoError(t, b.Replay([]*domain.LedgerEntry{e}))
	assert.Equal(t, 6.0, s1.AvailableCredits)
	assert.Len(t, b.Entries(), 1)
	require.NoError(t, b.Verify())
}

func TestEligibleApplicants(t *testing.T) {
	b := newTestBoard(t)

	assert.Len(t, b.EligibleApplicants(0), 3)
	assert.Equal(t, []string{"p1"}, applicantIDs(b.EligibleApplicants(1)))
	assert.Equal(t, []string{"p1", "p2"}, applicantIDs(b.EligibleApplicants(3)))

	p1, _ := b.Applicant("p1")
	require.NoError(t, b.Apply(domain.NewFinishedEntry(b.NewID(), p1, true, testNow, 1)))
	assert.Equal(t, []string{"p2"}, applicantIDs(b.EligibleApplicants(3)))
}

func TestAvailableSubjects(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.Apply(selection(t, b, "p1", "s3", 9)))

	assert.Len(t, b.AvailableSubjects("d1", false), 2)
	assert.Len(t, b.AvailableSubjects("d1", true), 1)
	assert.Empty(t, b.AvailableSubjects("d2", false))

	degrees := b.AvailableDegrees()
	require.Len(t, degrees, 1)
	assert.Equal(t, "d1", degrees[0].ID)
}

func TestNewID_NeverCollides(t *testing.T) {
	b := newTestBoard(t)
	taken := []string{"d1", "d2", "s1", "s2", "s3", "p1", "p2", "p3"}

	// Force the generator to replay existing identifiers first.
	seq := append([]string{}, taken...)
	seq = append(seq, "fresh-1", "fresh-1", "fresh-2")
	b.ids.gen = func() string {
		id := seq[0]
		seq = seq[1:]
		return id
	}

	assert.Equal(t, "fresh-1", b.NewID())
	assert.Equal(t, "fresh-2", b.NewID())
}

func TestNewID_ManyDraws(t *testing.T) {
	b := newTestBoard(t)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := b.NewID()
		require.False(t, seen[id], fmt.Sprintf("draw %d repeated %s", i, id))
		seen[id] = true
	}
}

func applicantIDs(list []*domain.Applicant) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}
