package catalog

import (
	"fmt"
	"sort"

	"github.com/nicocardiel/repdoc/internal/domain"
)

// TableLayout locates one table inside a workbook sheet. Columns are
// zero-based and listed in the order the reader expects them.
type TableLayout struct {
	Sheet    string
	SkipRows int
	Columns  []int
}

// Schema describes where each source table lives for an academic year.
type Schema struct {
	Course string

	// Degrees columns: id, name.
	Degrees TableLayout

	// Subjects columns: course year, semester, code, name, area, id,
	// initial credits, comments, group, schedule, reserved flag, previous
	// holder, seniority. Sheet is ignored: each degree has its own sheet
	// named after it.
	Subjects TableLayout

	// Applicants columns: id, surname, given name, category, quota.
	Applicants TableLayout

	// QuotaDivisor converts the quota column (teaching hours) to credits.
	QuotaDivisor float64
}

const (
	degreeSheet    = "Resumen Encargo"
	applicantSheet = "Asignación"
)

var subjectColumns = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}

var applicantColumnsByCourse = map[string][]int{
	"2019-2020": {0, 1, 2, 3, 19},
	"2020-2021": {0, 1, 2, 3, 21},
	"2021-2022": {0, 2, 3, 4, 23},
	"2022-2023": {0, 2, 3, 4, 19},
	"2023-2024": {0, 2, 3, 4, 19},
	"2024-2025": {0, 2, 3, 4, 19},
	"2025-2026": {0, 2, 3, 4, 19},
}

// SchemaFor returns the workbook layout used in the given academic year.
func SchemaFor(course string) (*Schema, error) {
	cols, ok := applicantColumnsByCourse[course]
	if !ok {
		return nil, fmt.Errorf("course %q: %w", course, domain.ErrUnknownCourse)
	}
	return &Schema{
		Course: course,
		Degrees: TableLayout{
			Sheet:    degreeSheet,
			SkipRows: 4,
			Columns:  []int{1, 2},
		},
		Subjects: TableLayout{
			SkipRows: 5,
			Columns:  subjectColumns,
		},
		Applicants: TableLayout{
			Sheet:    applicantSheet,
			SkipRows: 7,
			Columns:  cols,
		},
		QuotaDivisor: 10,
	}, nil
}

// Courses lists every academic year with a known layout, oldest first.
func Courses() []string {
	out := make([]string, 0, len(applicantColumnsByCourse))
	for c := range applicantColumnsByCourse {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
