package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idelchi/dirsize/internal/dirsize"
)

const maxBarWidth = 60

// progressMsg carries a scanner update into the program.
type progressMsg dirsize.Progress

// finishedMsg tells the program that Scan has returned.
type finishedMsg struct{}

//nolint:gochecknoglobals // Styles
var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

// progressModel renders scan progress and forwards cancel keys.
type progressModel struct {
	spinner   spinner.Model
	bar       progress.Model
	status    dirsize.Progress
	cancel    func()
	canceling bool
}

func newProgressModel(cancel func()) progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = titleStyle

	return progressModel{
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		cancel:  cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.canceling {
				m.canceling = true
				m.cancel()
			}
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case progressMsg:
		m.status = dirsize.Progress(msg)
	case finishedMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.status.Done {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(titleStyle.Render("dirsize"))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(float64(m.status.Percentage) / 100)) //nolint:mnd // percent to ratio
	b.WriteString("\n")

	if m.canceling {
		b.WriteString(warnStyle.Render("Canceling…"))
	} else {
		b.WriteString(statusStyle.Render(truncate(m.status.Message, m.bar.Width+20)))
		b.WriteString(mutedStyle.Render("  (q to cancel)"))
	}

	b.WriteString("\n")

	return b.String()
}

// truncate shortens s to n runes, keeping the end which names the current entry.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}

	return "…" + string(r[len(r)-n+1:])
}
