// Package tui renders the live watch view.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/field-day-tracker/internal/app"
	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5f9fb0")).Bold(true)
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d"))
	tripStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f39c12")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Faint(true)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the bubbletea model of the watch view.
type Model struct {
	app    *app.App
	status string
}

// New returns a watch view over a.
func New(a *app.App) Model {
	return Model{app: a}
}

// Run starts the watch view and blocks until the user quits.
func Run(a *app.App) error {
	_, err := tea.NewProgram(New(a), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// Another view may have written since the last second.
		if m.app.Sync() {
			m.status = "reloaded"
		}
		return m, tick()

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "s":
			m.status = m.apply("start day", func() bool { return m.app.Activity.StartDay() })
		case "r":
			m.status = m.apply("resume", func() bool { return m.app.Activity.Resume() })
		default:
			if n, err := strconv.Atoi(key); err == nil {
				names := m.app.Activity.Activities()
				if n >= 1 && n <= len(names) {
					name := names[n-1]
					var travel bool
					unsub := m.app.Bus.OnTravelSelected(func() { travel = true })
					m.status = m.apply("switch to "+name, func() bool { return m.app.Activity.SwitchActivity(name) })
					unsub()
					if travel {
						m.status += " (start the trip with fdt trip start <from>)"
					}
				}
			}
		}
	}
	return m, nil
}

func (m Model) apply(what string, fn func() bool) string {
	var ok bool
	m.app.Do(func() error {
		ok = fn()
		return nil
	})
	if !ok {
		return what + ": not possible now"
	}
	return what
}

func (m Model) View() string {
	var b strings.Builder
	m.app.View(func() {
		a := m.app
		st := a.Activity.State()

		head := fmt.Sprintf("fdt  %s  %s  %s", a.User().Name, a.Day.Project(), timecalc.FormatClock(a.Activity.TotalElapsed()))
		b.WriteString(headerStyle.Render(head))
		b.WriteString("\n\n")

		for i, name := range a.Activity.Activities() {
			line := fmt.Sprintf("%d  %-12s %s", i+1, name, timecalc.FormatClock(a.Activity.Elapsed(name)))
			if seg, ok := st.PerActivity[name]; ok && len(seg.Items) > 0 {
				line += fmt.Sprintf("  (%d items)", len(seg.Items))
			}
			if st.Running && name == st.CurrentActivity {
				b.WriteString(runningStyle.Render("> " + line))
			} else {
				b.WriteString(idleStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}

		b.WriteString("\n")
		if leg, ok := a.Trips.Active(); ok {
			b.WriteString(tripStyle.Render(fmt.Sprintf("Trip from %s  %s", leg.StartName, timecalc.FormatClock(a.Trips.ActiveElapsed()))))
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("Legs today: %d  %.2f km\n", len(a.Trips.Legs()), a.Trips.TotalKm()))
		if !st.Running {
			b.WriteString(idleStyle.Render("Day not started.") + "\n")
		} else if st.CurrentActivity == model.Travel && st.LastNonTravelActivity != "" {
			b.WriteString(idleStyle.Render("r resumes "+st.LastNonTravelActivity) + "\n")
		}
	})
	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	b.WriteString("\n" + footerStyle.Render("1-9: switch  s: start day  r: resume  q: quit"))
	return b.String()
}
