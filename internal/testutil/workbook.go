package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// TestCourse is an academic year whose layout WriteWorkbook produces.
const TestCourse = "2025-2026"

type WorkbookSubject struct {
	ID             string
	CourseYear     string
	Semester       string
	Code           string
	Name           string
	Area           string
	Credits        float64
	Comments       string
	Group          string
	Schedule       string
	Reserved       bool
	PreviousHolder string
	Seniority      string
}

type WorkbookDegree struct {
	ID       string
	Name     string
	Subjects []WorkbookSubject
}

type WorkbookApplicant struct {
	ID        string
	Surname   string
	GivenName string
	Category  string
	// QuotaHours is divided by 10 on load.
	QuotaHours float64
}

type WorkbookSpec struct {
	Degrees    []WorkbookDegree
	Applicants []WorkbookApplicant
}

// DefaultWorkbookSpec is a small department: two degrees and one applicant
// per round rule (regular, RyC, collaborator, no quota).
func DefaultWorkbookSpec() WorkbookSpec {
	return WorkbookSpec{
		Degrees: []WorkbookDegree{
			{
				ID:   "titu-fis",
				Name: "Grado en Física",
				Subjects: []WorkbookSubject{
					{ID: "asig-mec", CourseYear: "1", Semester: "1", Code: "800490", Name: "Mecánica", Area: "FTA", Credits: 6, Group: "A", PreviousHolder: "Pilar Sanz", Seniority: "2"},
					{ID: "asig-mec-b", Group: "B", Area: "FTA", Credits: 4.5, Reserved: true, PreviousHolder: "Luis Gil", Seniority: "7"},
					{ID: "asig-opt", CourseYear: "2", Semester: "2", Code: "800500", Name: "Óptica", Area: "FTA", Credits: 3, Comments: "Laboratorio"},
				},
			},
			{
				ID:   "titu-mat",
				Name: "Grado en Matemáticas",
				Subjects: []WorkbookSubject{
					{ID: "asig-ast", CourseYear: "3", Semester: "1", Code: "800600", Name: "Astrofísica", Area: "FTA", Credits: 9, Reserved: true, Seniority: "desconocida"},
				},
			},
		},
		Applicants: []WorkbookApplicant{
			{ID: "prof-ana", Surname: "Ruiz", GivenName: "Ana", Category: "CU", QuotaHours: 240},
			{ID: "prof-eva", Surname: "Martín", GivenName: "Eva", Category: "Inv. RyC", QuotaHours: 60},
			{ID: "prof-col", Surname: "López", GivenName: "Juan", Category: "Colaborador", QuotaHours: 45},
			{ID: "prof-emer", Surname: "Pérez", GivenName: "Rosa", Category: "Emérita", QuotaHours: 0},
		},
	}
}

// WriteWorkbook writes wb as a department workbook under t.TempDir() and
// returns its path.
func WriteWorkbook(t *testing.T, wb WorkbookSpec) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	set := func(sheet string, col, row int, v any) {
		t.Helper()
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("set %s!%s: %v", sheet, cell, err)
		}
	}
	newSheet := func(name string) {
		t.Helper()
		if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet %q: %v", name, err)
		}
	}

	newSheet("Resumen Encargo")
	set("Resumen Encargo", 1, 1, "Resumen del encargo docente")
	for i, d := range wb.Degrees {
		row := 5 + i
		set("Resumen Encargo", 1, row, d.ID)
		set("Resumen Encargo", 2, row, d.Name)
	}

	for _, d := range wb.Degrees {
		newSheet(d.Name)
		set(d.Name, 1, 1, d.Name)
		for i, s := range d.Subjects {
			row := 6 + i
			reserved := 0
			if s.Reserved {
				reserved = 1
			}
			values := []any{s.CourseYear, s.Semester, s.Code, s.Name, s.Area, s.ID,
				s.Credits, s.Comments, s.Group, s.Schedule, reserved, s.PreviousHolder, s.Seniority}
			for k, v := range values {
				if str, ok := v.(string); ok && str == "" {
					continue
				}
				set(d.Name, 1+k, row, v)
			}
		}
	}

	newSheet("Asignación")
	set("Asignación", 0, 1, "Asignación docente")
	for i, a := range wb.Applicants {
		row := 8 + i
		set("Asignación", 0, row, a.ID)
		set("Asignación", 2, row, a.Surname)
		set("Asignación", 3, row, a.GivenName)
		set("Asignación", 4, row, a.Category)
		set("Asignación", 19, row, a.QuotaHours)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("delete default sheet: %v", err)
	}

	path := filepath.Join(t.TempDir(), "encargo.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
