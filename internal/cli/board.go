package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nicocardiel/repdoc/internal/cli/formatter"
	"github.com/nicocardiel/repdoc/internal/domain"
	"github.com/nicocardiel/repdoc/internal/service"
)

type boardTab int

const (
	tabDegrees boardTab = iota
	tabApplicants
	tabLedger
	tabCount
)

func (t boardTab) String() string {
	switch t {
	case tabDegrees:
		return "Titulaciones"
	case tabApplicants:
		return "Profesores"
	default:
		return "Bitácora"
	}
}

type boardKeyMap struct {
	Next      key.Binding
	Prev      key.Binding
	RoundUp   key.Binding
	RoundDown key.Binding
	Refresh   key.Binding
	Quit      key.Binding
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.RoundUp, k.RoundDown, k.Refresh, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Prev}}
}

func defaultBoardKeys() boardKeyMap {
	return boardKeyMap{
		Next:      key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next view")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab", "previous view")),
		RoundUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "next round")),
		RoundDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "previous round")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// boardSnapshot is what the board renders; refresh replaces it.
type boardSnapshot struct {
	summary    service.Summary
	applicants []domain.Applicant
	entries    []domain.LedgerEntry
}

type boardRefreshedMsg struct {
	snapshot boardSnapshot
	err      error
}

// boardModel is the read-only summary board: degree totals, the applicant
// roster as seen in the current round, and the latest ledger entries.
type boardModel struct {
	svc      service.AssignmentService
	keys     boardKeyMap
	help     help.Model
	tab      boardTab
	round    int
	width    int
	snapshot boardSnapshot
	err      error
}

func newBoardModel(svc service.AssignmentService, round int) boardModel {
	return boardModel{
		svc:   svc,
		keys:  defaultBoardKeys(),
		help:  help.New(),
		round: round,
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.refresh
}

func (m boardModel) refresh() tea.Msg {
	applicants, err := m.svc.EligibleApplicants(0)
	if err != nil {
		return boardRefreshedMsg{err: err}
	}
	return boardRefreshedMsg{snapshot: boardSnapshot{
		summary:    m.svc.Summary(),
		applicants: applicants,
		entries:    m.svc.Entries(),
	}}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case boardRefreshedMsg:
		m.snapshot, m.err = msg.snapshot, msg.err
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.tab = (m.tab + 1) % tabCount
		case key.Matches(msg, m.keys.Prev):
			m.tab = (m.tab + tabCount - 1) % tabCount
		case key.Matches(msg, m.keys.RoundUp):
			if m.round < domain.RoundNotEligible-1 {
				m.round++
			}
		case key.Matches(msg, m.keys.RoundDown):
			if m.round > 0 {
				m.round--
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refresh
		}
	}
	return m, nil
}

const boardLedgerRows = 15

func (m boardModel) View() string {
	var b strings.Builder

	tabs := make([]string, 0, tabCount)
	for t := tabDegrees; t < tabCount; t++ {
		label := " " + t.String() + " "
		if t == m.tab {
			label = formatter.StyleHeader.Render("[" + t.String() + "]")
		} else {
			label = formatter.Dim(label)
		}
		tabs = append(tabs, label)
	}
	fmt.Fprintf(&b, "%s  %s  %s\n\n",
		formatter.Bold("Curso "+m.snapshot.summary.Course),
		strings.Join(tabs, " "),
		formatter.Dim(fmt.Sprintf("ronda %d", m.round)))

	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render(m.err.Error()))
		b.WriteString("\n")
	}

	switch m.tab {
	case tabDegrees:
		b.WriteString(formatter.FormatDegrees(m.snapshot.summary.Degrees, m.snapshot.summary.Totals))
	case tabApplicants:
		b.WriteString(formatter.FormatApplicants(m.snapshot.applicants, m.round))
	case tabLedger:
		b.WriteString(m.ledgerView())
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m boardModel) ledgerView() string {
	entries := m.snapshot.entries
	if len(entries) == 0 {
		return formatter.Dim("La bitácora está vacía.") + "\n"
	}
	var b strings.Builder
	shown := 0
	for i := len(entries) - 1; i >= 0 && shown < boardLedgerRows; i-- {
		line := formatter.FormatEntry(&entries[i])
		if entries[i].IsRemoved() {
			line = formatter.Dim(line)
		}
		fmt.Fprintf(&b, "%s %s\n", formatter.TruncID(entries[i].ID), line)
		shown++
	}
	if len(entries) > shown {
		fmt.Fprintf(&b, "%s\n", formatter.Dim(fmt.Sprintf("… %d más", len(entries)-shown)))
	}
	return b.String()
}
