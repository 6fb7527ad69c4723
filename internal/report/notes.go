package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// renderNotes converts the markdown notice shown above the degree summary.
// An empty path yields no notice.
func (g *Generator) renderNotes() (template.HTML, error) {
	if g.opts.NotesFile == "" {
		return "", nil
	}
	src, err := os.ReadFile(g.opts.NotesFile)
	if err != nil {
		return "", fmt.Errorf("reading notes %s: %w", g.opts.NotesFile, err)
	}
	var buf bytes.Buffer
	if err := g.md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("rendering notes %s: %w", g.opts.NotesFile, err)
	}
	return template.HTML(buf.String()), nil
}
