package catalog_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nicocardiel/repdoc/internal/catalog"
	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/nicocardiel/repdoc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func loadDefault(t *testing.T) *catalog.Catalog {
	t.Helper()
	schema, err := catalog.SchemaFor(testutil.TestCourse)
	require.NoError(t, err)
	c, err := catalog.Load(testutil.WriteWorkbook(t, testutil.DefaultWorkbookSpec()), schema)
	require.NoError(t, err)
	return c
}

func TestLoad_Degrees(t *testing.T) {
	c := loadDefault(t)

	require.Len(t, c.Degrees, 2)
	assert.Equal(t, "titu-fis", c.Degrees[0].ID)
	assert.Equal(t, "Grado en Física", c.Degrees[0].Name)
	assert.Equal(t, 1, c.Degrees[0].Num)
	assert.Equal(t, 2, c.Degrees[1].Num)
}

func TestLoad_SubjectsFillDown(t *testing.T) {
	c := loadDefault(t)

	subjects := c.Subjects["titu-fis"]
	require.Len(t, subjects, 3)

	groupB := subjects[1]
	assert.Equal(t, "asig-mec-b", groupB.ID)
	assert.Equal(t, "1", groupB.CourseYear)
	assert.Equal(t, "1", groupB.Semester)
	assert.Equal(t, "800490", groupB.Code)
	assert.Equal(t, "Mecánica", groupB.Name)
	assert.Equal(t, "B", groupB.Group)
	assert.True(t, groupB.Reserved)
	assert.Equal(t, 4.5, groupB.InitialCredits)
	assert.Equal(t, groupB.InitialCredits, groupB.AvailableCredits)
	assert.Equal(t, 2, groupB.Num)

	assert.Equal(t, "Laboratorio", subjects[2].Comments)
	assert.Equal(t, "", subjects[0].Comments)
}

func TestLoad_ApplicantsQuotaInCredits(t *testing.T) {
	c := loadDefault(t)

	require.Len(t, c.Applicants, 4)
	ana := c.Applicants[0]
	assert.Equal(t, "prof-ana", ana.ID)
	assert.Equal(t, "Ruiz", ana.Surname)
	assert.Equal(t, "Ana", ana.GivenName)
	assert.Equal(t, "CU", ana.Category)
	assert.InDelta(t, 24, ana.Quota, 1e-9)
	assert.Equal(t, 0.0, c.Applicants[3].Quota)
}

func TestLoad_DuplicateIDsAcrossTables(t *testing.T) {
	wb := testutil.DefaultWorkbookSpec()
	wb.Applicants[0].ID = "asig-opt"

	schema, err := catalog.SchemaFor(testutil.TestCourse)
	require.NoError(t, err)
	_, err = catalog.Load(testutil.WriteWorkbook(t, wb), schema)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	assert.Contains(t, err.Error(), "asig-opt")
}

func TestLoad_MissingDegreeSheet(t *testing.T) {
	path := testutil.WriteWorkbook(t, testutil.DefaultWorkbookSpec())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Resumen Encargo", "B7", "titu-x"))
	require.NoError(t, f.SetCellValue("Resumen Encargo", "C7", "Grado sin hoja"))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	schema, err := catalog.SchemaFor(testutil.TestCourse)
	require.NoError(t, err)
	_, err = catalog.Load(path, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Grado sin hoja")
}

func TestLoad_LeadingEmptyFillDownCell(t *testing.T) {
	wb := testutil.DefaultWorkbookSpec()
	wb.Degrees[1].Subjects[0].CourseYear = ""

	schema, err := catalog.SchemaFor(testutil.TestCourse)
	require.NoError(t, err)
	_, err = catalog.Load(testutil.WriteWorkbook(t, wb), schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing above")
}

func TestSchemaFor(t *testing.T) {
	s, err := catalog.SchemaFor("2021-2022")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3, 4, 23}, s.Applicants.Columns)
	assert.Equal(t, 7, s.Applicants.SkipRows)

	_, err = catalog.SchemaFor("1999-2000")
	assert.ErrorIs(t, err, domain.ErrUnknownCourse)
}

func TestCourses_Sorted(t *testing.T) {
	courses := catalog.Courses()
	require.NotEmpty(t, courses)
	assert.Equal(t, "2019-2020", courses[0])
	assert.Equal(t, "2025-2026", courses[len(courses)-1])
}

func TestCheckUniqueIDs(t *testing.T) {
	assert.NoError(t, catalog.CheckUniqueIDs([]string{"a", "b", "c"}))
	err := catalog.CheckUniqueIDs([]string{"a", "b", "a", "c", "b"})
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
	assert.Contains(t, err.Error(), "a, b")
}

func TestLedgerWorkbook_RoundTripPreservesOrderAndRemoval(t *testing.T) {
	added := time.Date(2025, 6, 2, 9, 30, 0, 0, time.Local)
	removed := added.Add(2 * time.Hour)
	round := 2

	entries := []*domain.LedgerEntry{
		{ID: "b2", ApplicantID: "prof-ana", DegreeID: "titu-fis", SubjectID: "asig-mec",
			AddedAt: added, RoundAdded: 1, Credits: 6, Explanation: "",
			Surname: "Ruiz", GivenName: "Ana", Category: "CU",
			CourseYear: "1", Semester: "1", Code: "800490", SubjectName: "Mecánica", Area: "FTA",
			InitialCredits: 6, Group: "A",
			RemovedAt: &removed, RoundRemoved: &round},
		domain.NewFinishedEntry("b1", &domain.Applicant{ID: "prof-ana", Surname: "Ruiz", GivenName: "Ana"}, true, added, 2),
	}

	path := filepath.Join(t.TempDir(), catalog.DefaultLedgerFile)
	require.NoError(t, catalog.WriteLedger(path, entries))

	got, err := catalog.ReadLedger(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "b2", got[0].ID)
	assert.Equal(t, 6.0, got[0].Credits)
	require.NotNil(t, got[0].RemovedAt)
	assert.Equal(t, removed.Format(domain.LedgerTimeLayout), got[0].RemovedAt.Format(domain.LedgerTimeLayout))
	assert.Equal(t, 2, *got[0].RoundRemoved)
	assert.Equal(t, "Mecánica", got[0].SubjectName)

	assert.Equal(t, "b1", got[1].ID)
	assert.True(t, got[1].IsAdministrative())
	assert.False(t, got[1].IsRemoved())
	assert.Equal(t, string(domain.ExplanationFinished), got[1].Explanation)
}

func TestReadLedger_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, catalog.WriteLedger(path, nil))

	got, err := catalog.ReadLedger(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadLedger_MissingColumn(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"uuid_bita", "uuid_prof"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"b1", "prof-ana"}))
	path := filepath.Join(t.TempDir(), "old.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := catalog.ReadLedger(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}
