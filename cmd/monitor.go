// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/coldwatch/tempguard/pkg/m307"
)

var flagMonitorInterval time.Duration

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live status display",
	Long: `Poll the device status on an interval and show it full-screen.
Press 'r' to poll immediately, 'q' to quit.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().DurationVarP(&flagMonitorInterval, "interval", "i", 10*time.Second, "Polling interval")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	return withClient(func(client *m307.Client) error {
		m := newMonitorModel(client, flagMonitorInterval)
		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err := p.Run()
		return err
	})
}

// Messages
type monitorTickMsg time.Time

type monitorStatusMsg struct {
	status *m307.StatusRecord
	err    error
	at     time.Time
}

// monitorModel is the Bubble Tea model for the live status display
type monitorModel struct {
	client   *m307.Client
	interval time.Duration

	spin    spinner.Model
	polling bool

	status   *m307.StatusRecord
	lastErr  error
	lastPoll time.Time
	polls    int
	failures int

	width    int
	height   int
	quitting bool
}

func newMonitorModel(client *m307.Client, interval time.Duration) monitorModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	return monitorModel{
		client:   client,
		interval: interval,
		spin:     sp,
		width:    80,
		height:   24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.pollCmd(),
		tea.EnterAltScreen,
	)
}

func (m monitorModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

// pollCmd reads the device status off the UI goroutine.
func (m monitorModel) pollCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		st, err := client.ReadStatus()
		return monitorStatusMsg{status: st, err: err, at: time.Now()}
	}
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if !m.polling {
				m.polling = true
				return m, m.pollCmd()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case monitorTickMsg:
		if m.polling {
			return m, m.tickCmd()
		}
		m.polling = true
		return m, tea.Batch(m.pollCmd(), m.tickCmd())

	case monitorStatusMsg:
		m.polling = false
		m.polls++
		m.lastPoll = msg.at
		m.lastErr = msg.err
		if msg.err != nil {
			m.failures++
		} else {
			m.status = msg.status
		}
		if m.polls == 1 {
			return m, m.tickCmd()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("TEMPGUARD MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf(
		"Polling every %s | 'r' poll now, 'q' quit", m.interval)))
	s.WriteString("\n\n")

	if m.polling {
		s.WriteString(m.spin.View())
		s.WriteString(headerStyle.Render(" polling..."))
		s.WriteString("\n\n")
	} else if !m.lastPoll.IsZero() {
		s.WriteString(headerStyle.Render(fmt.Sprintf(
			"Last poll %s | %d polls, %d failed",
			m.lastPoll.Format("15:04:05"), m.polls, m.failures)))
		s.WriteString("\n\n")
	}

	if m.lastErr != nil {
		s.WriteString(alarmStyle.Render(fmt.Sprintf("POLL FAILED: %v", m.lastErr)))
		s.WriteString("\n\n")
	}

	if m.status != nil {
		s.WriteString(boxStyle.Width(min(m.width-2, 60)).Render(m.renderStatus()))
		s.WriteString("\n")
	}

	return s.String()
}

func (m monitorModel) renderStatus() string {
	st := m.status
	unit := st.Unit.String()

	var s strings.Builder
	line := func(label, value string) {
		s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(label+":"), value))
	}
	temp := func(label string, ch m307.TempChannel) {
		v := ch.Reading.String()
		if ch.Reading.State == m307.TempOK {
			v += " °" + unit
		}
		line(label, valueStyle.Render(v)+alarmSuffix(ch.InAlarm, ch.MinutesOutOfLimits))
	}

	temp("Temp sensor 1", st.TempSensor1)
	temp("Temp sensor 2", st.TempSensor2)
	temp("Internal temp", st.InternalTemp)
	line("Humidity", valueStyle.Render(st.InternalHumidity.Reading.String())+
		alarmSuffix(st.InternalHumidity.InAlarm, st.InternalHumidity.MinutesOutOfLimits))
	line("Door 1", valueStyle.Render(st.Door1.State.String())+alarmSuffix(st.Door1.InAlarm, st.Door1.MinutesOutOfLimits))
	line("Door 2", valueStyle.Render(st.Door2.State.String())+alarmSuffix(st.Door2.InAlarm, st.Door2.MinutesOutOfLimits))

	power := valueStyle.Render("OK")
	if !st.MainPower {
		power = alarmStyle.Render("FAILED")
	}
	line("Main power", power)
	line("Battery", valueStyle.Render(fmt.Sprintf("%.2f V", st.BatteryVoltage)))

	return strings.TrimRight(s.String(), "\n")
}
