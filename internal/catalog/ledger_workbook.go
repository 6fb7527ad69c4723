package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/xuri/excelize/v2"
)

// DefaultLedgerFile is the ledger workbook name used when none is given.
const DefaultLedgerFile = "repdoc_bitacora.xlsx"

const ledgerSheet = "bitacora"

// LedgerColumns is the header row of the ledger workbook.
var LedgerColumns = []string{
	"uuid_bita", "uuid_prof", "uuid_titu", "uuid_asig",
	"date_added", "round_added", "date_removed", "round_removed",
	"creditos_elegidos", "explicacion",
	"apellidos", "nombre", "categoria",
	"curso", "semestre", "codigo", "asignatura", "area",
	"creditos_iniciales", "comentarios", "grupo",
}

// WriteLedger stores the entries, in order, as a fresh workbook at path.
func WriteLedger(path string, entries []*domain.LedgerEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return fmt.Errorf("naming ledger sheet: %w", err)
	}

	header := make([]any, len(LedgerColumns))
	for i, c := range LedgerColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(ledgerSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing ledger header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := LedgerRow(e)
		if err := f.SetSheetRow(ledgerSheet, cell, &row); err != nil {
			return fmt.Errorf("writing ledger entry %s: %w", e.ID, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving ledger workbook %s: %w", path, err)
	}
	return nil
}

// LedgerRow returns the cells of one ledger row in LedgerColumns order.
func LedgerRow(e *domain.LedgerEntry) []any {
	var removedAt, roundRemoved any = domain.NoneMarker, domain.NoneMarker
	if e.RemovedAt != nil {
		removedAt = e.RemovedAt.Format(domain.LedgerTimeLayout)
	}
	if e.RoundRemoved != nil {
		roundRemoved = *e.RoundRemoved
	}
	return []any{
		e.ID, e.ApplicantID, e.DegreeID, e.SubjectID,
		e.AddedAt.Format(domain.LedgerTimeLayout), e.RoundAdded, removedAt, roundRemoved,
		e.Credits, e.Explanation,
		e.Surname, e.GivenName, e.Category,
		e.CourseYear, e.Semester, e.Code, e.SubjectName, e.Area,
		e.InitialCredits, e.Comments, e.Group,
	}
}

// ReadLedger loads the entries of a ledger workbook in file order. Columns
// are located by header name, so older files without round columns load
// with round 0.
func ReadLedger(path string) ([]*domain.LedgerEntry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("ledger %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		idx[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"uuid_bita", "uuid_prof", "uuid_titu", "uuid_asig", "date_added", "creditos_elegidos"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("ledger %s: missing column %q", path, required)
		}
	}

	var entries []*domain.LedgerEntry
	for i, row := range rows[1:] {
		r := ledgerRecord{row: row, idx: idx}
		if r.get("uuid_bita") == "" {
			continue
		}
		e, err := r.entry()
		if err != nil {
			return nil, fmt.Errorf("ledger %s row %d: %w", path, i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

type ledgerRecord struct {
	row []string
	idx map[string]int
}

func (r ledgerRecord) get(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.row) {
		return ""
	}
	v := strings.TrimSpace(r.row[i])
	if v == "nan" || v == "NaN" {
		return ""
	}
	return v
}

func (r ledgerRecord) entry() (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{
		ID:          r.get("uuid_bita"),
		ApplicantID: r.get("uuid_prof"),
		DegreeID:    r.get("uuid_titu"),
		SubjectID:   r.get("uuid_asig"),
		Explanation: r.get("explicacion"),
		Surname:     r.get("apellidos"),
		GivenName:   r.get("nombre"),
		Category:    r.get("categoria"),
		CourseYear:  r.get("curso"),
		Semester:    r.get("semestre"),
		Code:        r.get("codigo"),
		SubjectName: r.get("asignatura"),
		Area:        r.get("area"),
		Comments:    r.get("comentarios"),
		Group:       r.get("grupo"),
	}

	var err error
	if e.AddedAt, err = parseLedgerTime(r.get("date_added")); err != nil {
		return nil, fmt.Errorf("date_added: %w", err)
	}
	if e.RoundAdded, err = parseRound(r.get("round_added")); err != nil {
		return nil, fmt.Errorf("round_added: %w", err)
	}
	if e.Credits, err = parseOptionalFloat(r.get("creditos_elegidos")); err != nil {
		return nil, fmt.Errorf("creditos_elegidos: %w", err)
	}
	if e.InitialCredits, err = parseOptionalFloat(r.get("creditos_iniciales")); err != nil {
		return nil, fmt.Errorf("creditos_iniciales: %w", err)
	}

	if removed := r.get("date_removed"); removed != "" && removed != domain.NoneMarker {
		at, err := parseLedgerTime(removed)
		if err != nil {
			return nil, fmt.Errorf("date_removed: %w", err)
		}
		round, err := parseRound(r.get("round_removed"))
		if err != nil {
			return nil, fmt.Errorf("round_removed: %w", err)
		}
		e.RemovedAt = &at
		e.RoundRemoved = &round
	}
	return e, nil
}

func parseLedgerTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(domain.LedgerTimeLayout, s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	// Cells typed as dates come back as Excel serial numbers.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func parseRound(s string) (int, error) {
	if s == "" || s == domain.NoneMarker {
		return 0, nil
	}
	v, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return parseFloat(s)
}
