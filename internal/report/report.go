// Package report renders the static HTML pages, the PDF result listing and
// the ledger snapshot published after every change to an assignment board.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/nicocardiel/repdoc/internal/catalog"
	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/nicocardiel/repdoc/internal/ledger"
	"github.com/yuin/goldmark"
)

//go:embed templates/*.html
var templateFS embed.FS

// File names written to the output directory.
const (
	FileIndex       = "index.html"
	FileDegrees     = "repdoc_titulaciones.html"
	FileAvailable   = "repdoc_disponibles.html"
	FileApplicants  = "repdoc_profesores.html"
	FileAssignment  = "repdoc_asignacion.html"
	FileResult      = "repdoc_resultado.html"
	FileResultPDF   = "repdoc_resultado.pdf"
	FileLedger      = "repdoc_bitacora.html"
	FileExecutions  = "last_execution_command.txt"
	updatedAtLayout = "2006-01-02 15:04:05"
)

type Options struct {
	OutputDir string
	Title     string
	NotesFile string
	PDF       bool
	Version   string
}

// Input is the board state to render plus the execution history of the
// course.
type Input struct {
	Board       *ledger.Board
	Round       int
	Executions  []*domain.Execution
	GeneratedAt time.Time
}

type Generator struct {
	opts  Options
	md    goldmark.Markdown
	pages map[string]*template.Template
	index *template.Template
}

var pageTemplates = []string{
	"titulaciones", "titulacion", "profesores", "asignacion", "resultado", "bitacora",
}

func NewGenerator(opts Options) (*Generator, error) {
	if opts.Title == "" {
		opts.Title = "Reparto Docente FTA"
	}
	funcs := template.FuncMap{
		"credits":     func(v float64) string { return fmt.Sprintf("%.4f", v) },
		"inc":         func(i int) int { return i + 1 },
		"unavailable": func() template.CSS { return template.CSS(colorUnavailable) },
	}

	g := &Generator{
		opts:  opts,
		md:    newMarkdown(),
		pages: make(map[string]*template.Template, len(pageTemplates)),
	}
	for _, name := range pageTemplates {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		g.pages[name] = t
	}
	index, err := template.New("index").ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}
	g.index = index
	return g, nil
}

func (g *Generator) OutputDir() string { return g.opts.OutputDir }

// Generate rewrites every report for the board and returns the paths
// written, in a stable order.
func (g *Generator) Generate(in Input) ([]string, error) {
	if in.Board == nil {
		return nil, fmt.Errorf("generate reports: nil board")
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now()
	}
	if err := os.MkdirAll(g.opts.OutputDir, 0o755); err != nil {
		return nil, err
	}

	notes, err := g.renderNotes()
	if err != nil {
		return nil, err
	}

	var files []string
	write := func(name string, data []byte) error {
		path := filepath.Join(g.opts.OutputDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		files = append(files, path)
		return nil
	}
	render := func(tmpl, name string, palette Palette, body any) error {
		p := page{
			Title:     fmt.Sprintf("%s, curso %s", g.opts.Title, in.Board.Course()),
			Heading:   g.opts.Title,
			Course:    in.Board.Course(),
			UpdatedAt: in.GeneratedAt.Format(updatedAtLayout),
			Version:   g.opts.Version,
			Palette:   palette,
			Body:      body,
		}
		var buf bytes.Buffer
		if err := g.pages[tmpl].ExecuteTemplate(&buf, "layout", p); err != nil {
			return fmt.Errorf("rendering %s: %w", name, err)
		}
		return write(name, buf.Bytes())
	}

	var buf bytes.Buffer
	if err := g.index.ExecuteTemplate(&buf, "index", page{Heading: g.opts.Title, Course: in.Board.Course()}); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", FileIndex, err)
	}
	if err := write(FileIndex, buf.Bytes()); err != nil {
		return nil, err
	}

	degrees := degreesBody{
		Notes:   notes,
		Degrees: buildDegrees(in.Board),
		Totals:  in.Board.Totals(),
		PDF:     g.opts.PDF,
	}
	if err := render("titulaciones", FileDegrees, paletteDegrees, degrees); err != nil {
		return nil, err
	}

	var available subjectsBody
	available.OnlyAvailable = true
	for _, d := range in.Board.Degrees() {
		sec := buildSubjects(in.Board, d, false)
		if err := render("titulacion", degreeLink(d), paletteSubjects, subjectsBody{Sections: []subjectSection{sec}}); err != nil {
			return nil, err
		}
		if d.HasAvailable() {
			available.Sections = append(available.Sections, buildSubjects(in.Board, d, true))
		}
	}
	if err := render("titulacion", FileAvailable, paletteSubjects, available); err != nil {
		return nil, err
	}

	applicants := buildApplicants(in.Board, in.Round)
	if err := render("profesores", FileApplicants, paletteApplicants, applicants); err != nil {
		return nil, err
	}
	if err := render("asignacion", FileAssignment, paletteAssignment, applicants); err != nil {
		return nil, err
	}

	result := buildResult(in.Board)
	if err := render("resultado", FileResult, paletteSubjects, result); err != nil {
		return nil, err
	}
	if g.opts.PDF {
		path := filepath.Join(g.opts.OutputDir, FileResultPDF)
		if err := writeResultPDF(path, g.opts.Title, in.Board.Course(), result); err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	if err := render("bitacora", FileLedger, paletteLedger, buildLedger(in.Board)); err != nil {
		return nil, err
	}

	ledgerPath := filepath.Join(g.opts.OutputDir, catalog.DefaultLedgerFile)
	if err := catalog.WriteLedger(ledgerPath, in.Board.Entries()); err != nil {
		return nil, err
	}
	files = append(files, ledgerPath)

	if err := write(FileExecutions, executionHistory(in.Executions)); err != nil {
		return nil, err
	}
	return files, nil
}
