package chart

import (
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/stepwrap/internal/stats"
)

// Input is everything the chart view renders.
type Input struct {
	Title   string
	Summary stats.DayOfWeekSummary

	// Goal draws a per-weekday progress bar when positive.
	Goal int

	// Trend is daily steps in date order, shown as a sparkline when set.
	Trend []float64
}

type keyMap struct {
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Quit} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var defaultKeys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Model is the interactive chart window.
type Model struct {
	in       Input
	width    int
	height   int
	chart    barchart.Model
	goalBar  progress.Model
	keys     keyMap
	help     help.Model
	quitting bool
}

// NewModel creates a chart model at the default size.
func NewModel(in Input) Model {
	m := Model{
		in:   in,
		keys: defaultKeys,
		help: help.New(),
		goalBar: progress.New(
			progress.WithGradient("#ffff00", "#00ff00"),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
	m.resize(defaultWidth, defaultHeight+goalRows(in))
	return m
}

func goalRows(in Input) int {
	if in.Goal <= 0 {
		return 0
	}
	return 7 + 2
}

func (m *Model) resize(w, h int) {
	m.width = w
	m.height = h

	// Title, trend and help take fixed rows; the chart gets the rest.
	reserved := 3 + goalRows(m.in)
	if len(m.in.Trend) > 0 {
		reserved += sparklineHeight + 2
	}
	m.chart = newBarChart(m.in.Summary, w-2, h-reserved)
	m.goalBar.Width = max(min(w-24, 40), 10)
	m.help.Width = w
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.body() + "\n" + m.help.View(m.keys)
}

func (m Model) body() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.in.Title))
	b.WriteString("\n\n")
	b.WriteString(m.chart.View())
	b.WriteString("\n")

	if m.in.Goal > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Goal " + printer.Sprintf("%d", m.in.Goal)))
		b.WriteString("\n")
		for _, wd := range stats.WeekOrder() {
			var avg float64
			if a, ok := m.in.Summary.Lookup(wd); ok {
				avg = a.Average
			}
			pct := min(avg/float64(m.in.Goal), 1)
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
				labelStyle.Width(5).Render(wd.String()[:3]),
				m.goalBar.ViewAs(pct),
				" "+FormatAverage(avg),
			))
			b.WriteString("\n")
		}
	}

	if len(m.in.Trend) > 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Daily steps"))
		b.WriteString("\n")
		b.WriteString(trendLine(m.in.Trend, m.width-2))
		b.WriteString("\n")
	}
	return b.String()
}

// Render returns the chart without the key help, for non-interactive output.
func Render(in Input, width int) string {
	m := NewModel(in)
	if width > 0 {
		m.resize(width, m.height)
	}
	return m.body()
}
