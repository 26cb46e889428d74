// Package tui renders the live dashboard in the terminal.
// The model fetches stats, threats, and activity through the API client on
// start and every 30 seconds, and renders a frame only once all sections
// resolve (or marks the frame degraded when one fails).
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/osintlab/osint-platform/pkg/client"
)

const refreshInterval = 30 * time.Second

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			MarginRight(2)

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cardValueStyle = lipgloss.NewStyle().
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	severityHigh = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	severityMedium = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	degradedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)
)

// frameMsg delivers one dashboard fetch result.
type frameMsg struct {
	frame *client.Dashboard
	err   error
}

// tickMsg fires the periodic refresh.
type tickMsg time.Time

// Model is the bubbletea model for the dashboard view.
type Model struct {
	api        *client.Client
	spinner    spinner.Model
	frame      *client.Dashboard
	err        error
	lastUpdate time.Time
	loading    bool
	quitting   bool
	width      int
}

// NewModel creates the dashboard model for an authenticated client.
func NewModel(api *client.Client) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		api:     api,
		spinner: sp,
		loading: true,
	}
}

// Init starts the spinner, the first fetch, and the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch(), tick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, m.fetch()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tea.Batch(m.fetch(), tick())

	case frameMsg:
		// A response arriving after quit is discarded
		if m.quitting {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.frame = msg.frame
		m.lastUpdate = time.Now()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("OSINT Platform Dashboard"))
	b.WriteString("\n")

	if m.loading && m.frame == nil {
		b.WriteString(m.spinner.View() + " Loading dashboard...\n")
		return b.String()
	}

	if m.err != nil && m.frame == nil {
		b.WriteString(severityHigh.Render("Error: ") + m.err.Error() + "\n")
		b.WriteString(dimStyle.Render("Press r to retry, q to quit") + "\n")
		return b.String()
	}

	if m.frame != nil {
		b.WriteString(m.renderStats())
		b.WriteString(m.renderThreats())
		b.WriteString(m.renderActivity())

		if len(m.frame.Degraded) > 0 {
			b.WriteString("\n" + degradedStyle.Render(
				"Partial data: failed to load "+strings.Join(m.frame.Degraded, ", ")) + "\n")
		}
	}

	b.WriteString("\n" + dimStyle.Render(fmt.Sprintf(
		"Updated %s · auto-refresh every %s · q to quit",
		m.lastUpdate.Format("15:04:05"), refreshInterval)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderStats() string {
	if m.frame.Stats == nil {
		return degradedStyle.Render("Stats unavailable") + "\n"
	}
	s := m.frame.Stats

	cards := []string{
		statCard("Total Posts", fmt.Sprintf("%d", s.TotalPosts)),
		statCard("Active Threats", fmt.Sprintf("%d", s.ActiveThreats)),
		statCard("Trending Topics", fmt.Sprintf("%d", s.TrendingTopics)),
		statCard("System Health", fmt.Sprintf("%.1f%%", s.SystemHealth)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n"
}

func statCard(label, value string) string {
	content := cardLabelStyle.Render(label) + "\n" + cardValueStyle.Render(value)
	return cardStyle.Render(content)
}

func (m Model) renderThreats() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Recent Threats") + "\n")

	if len(m.frame.Threats) == 0 {
		b.WriteString(dimStyle.Render("  No threats detected") + "\n")
		return b.String()
	}

	for _, t := range m.frame.Threats {
		badge := severityMedium.Render("[" + t.Severity + "]")
		if t.Severity == "high" {
			badge = severityHigh.Render("[" + t.Severity + "]")
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			badge, t.Title, dimStyle.Render("("+t.Platform+", "+t.TimeAgo+")")))
	}
	return b.String()
}

func (m Model) renderActivity() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Collection Activity") + "\n")

	if len(m.frame.Activity) == 0 {
		b.WriteString(dimStyle.Render("  No activity recorded") + "\n")
		return b.String()
	}

	for _, point := range m.frame.Activity {
		bar := strings.Repeat("█", clamp(point.Posts, 0, 40))
		b.WriteString(fmt.Sprintf("  %s %3d %s\n", point.Date, point.Posts, bar))
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// fetch loads one dashboard frame in the background.
func (m Model) fetch() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		frame, err := api.FetchDashboard(ctx, 5, 7)
		return frameMsg{frame: frame, err: err}
	}
}

// tick schedules the next auto-refresh.
func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
