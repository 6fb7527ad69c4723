// Package catalog reads the degree, subject and applicant tables from the
// department workbook, and reads and writes the ledger workbook.
package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Catalog is the freshly loaded state of an academic year, before any
// ledger entry is applied.
type Catalog struct {
	Course     string
	Degrees    []*domain.Degree
	Subjects   map[string][]*domain.Subject // by degree ID, in sheet order
	Applicants []*domain.Applicant
}

// Load opens the workbook at path and reads the three source tables.
func Load(path string, schema *Schema) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()
	return read(f, schema)
}

// LoadReader is Load for an already opened stream.
func LoadReader(r io.Reader, schema *Schema) (*Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()
	return read(f, schema)
}

func read(f *excelize.File, schema *Schema) (*Catalog, error) {
	c := &Catalog{
		Course:   schema.Course,
		Subjects: make(map[string][]*domain.Subject),
	}

	degrees, err := readDegrees(f, schema.Degrees)
	if err != nil {
		return nil, err
	}
	c.Degrees = degrees

	for _, d := range degrees {
		subjects, err := readSubjects(f, schema.Subjects, d)
		if err != nil {
			return nil, err
		}
		c.Subjects[d.ID] = subjects
	}

	applicants, err := readApplicants(f, schema.Applicants, schema.QuotaDivisor)
	if err != nil {
		return nil, err
	}
	c.Applicants = applicants

	if errs := Validate(c); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}
	return c, nil
}

// tableRows returns the selected columns of every row after the skipped
// header rows. Missing trailing cells come back as "".
func tableRows(f *excelize.File, sheet string, layout TableLayout) ([][]string, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) <= layout.SkipRows {
		return nil, nil
	}
	out := make([][]string, 0, len(rows)-layout.SkipRows)
	for _, row := range rows[layout.SkipRows:] {
		rec := make([]string, len(layout.Columns))
		for i, col := range layout.Columns {
			if col < len(row) {
				rec[i] = strings.TrimSpace(row[col])
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func readDegrees(f *excelize.File, layout TableLayout) ([]*domain.Degree, error) {
	rows, err := tableRows(f, layout.Sheet, layout)
	if err != nil {
		return nil, err
	}
	var degrees []*domain.Degree
	for _, rec := range rows {
		if rec[0] == "" {
			continue
		}
		degrees = append(degrees, &domain.Degree{
			ID:   rec[0],
			Num:  len(degrees) + 1,
			Name: rec[1],
		})
	}
	return degrees, nil
}

func readSubjects(f *excelize.File, layout TableLayout, d *domain.Degree) ([]*domain.Subject, error) {
	rows, err := tableRows(f, d.Name, layout)
	if err != nil {
		return nil, fmt.Errorf("degree %q: %w", d.Name, err)
	}

	var subjects []*domain.Subject
	var last [4]string
	for i, rec := range rows {
		if rec[5] == "" {
			continue
		}
		line := layout.SkipRows + i + 1

		// Course year, semester, code and name are only written on the
		// first row of a run of groups.
		for k := 0; k < 4; k++ {
			if rec[k] == "" {
				if last[k] == "" {
					return nil, fmt.Errorf("sheet %q row %d: empty cell with nothing above to fill from", d.Name, line)
				}
				rec[k] = last[k]
			}
			last[k] = rec[k]
		}

		credits, err := parseFloat(rec[6])
		if err != nil {
			return nil, fmt.Errorf("sheet %q row %d: initial credits: %w", d.Name, line, err)
		}
		reserved, err := parseFlag(rec[10])
		if err != nil {
			return nil, fmt.Errorf("sheet %q row %d: bec/col flag: %w", d.Name, line, err)
		}

		subjects = append(subjects, &domain.Subject{
			ID:               rec[5],
			DegreeID:         d.ID,
			Num:              len(subjects) + 1,
			CourseYear:       rec[0],
			Semester:         rec[1],
			Code:             rec[2],
			Name:             rec[3],
			Area:             rec[4],
			InitialCredits:   credits,
			AvailableCredits: credits,
			Comments:         rec[7],
			Group:            rec[8],
			Schedule:         rec[9],
			Reserved:         reserved,
			PreviousHolder:   rec[11],
			Seniority:        rec[12],
		})
	}
	return subjects, nil
}

func readApplicants(f *excelize.File, layout TableLayout, divisor float64) ([]*domain.Applicant, error) {
	rows, err := tableRows(f, layout.Sheet, layout)
	if err != nil {
		return nil, err
	}
	if divisor == 0 {
		divisor = 1
	}

	var applicants []*domain.Applicant
	for i, rec := range rows {
		if rec[0] == "" {
			continue
		}
		quota := 0.0
		if rec[4] != "" {
			quota, err = parseFloat(rec[4])
			if err != nil {
				return nil, fmt.Errorf("sheet %q row %d: quota: %w", layout.Sheet, layout.SkipRows+i+1, err)
			}
		}
		applicants = append(applicants, &domain.Applicant{
			ID:        rec[0],
			Num:       len(applicants) + 1,
			Surname:   rec[1],
			GivenName: rec[2],
			Category:  rec[3],
			Quota:     quota / divisor,
		})
	}
	return applicants, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func parseFlag(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	v, err := parseFloat(s)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}
