// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 The euc-charging authors

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/githuba42r/euc-charging/pkg/eucproto"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for informational events
}

// TUI model
type model struct {
	connInfo      string
	statsInterval int
	showAll       bool
	stats         *eucproto.Statistics
	errorLog      []eventLogEntry
	logView       viewport.Model
	maxLogEntries int
	synchronized  bool
	family        eucproto.Family
	invalidBytes  int
	width         int
	height        int
	quitting      bool
	lastTelemetry *eucproto.Telemetry
}

// Messages
type tickMsg time.Time
type resultMsg struct {
	result eucproto.Result
}
type syncMsg struct {
	family       eucproto.Family
	invalidBytes int
}

func initialModel(connInfo string, statsInterval int, showAll bool) model {
	return model{
		connInfo:      connInfo,
		statsInterval: statsInterval,
		showAll:       showAll,
		stats:         eucproto.NewStatistics(),
		errorLog:      make([]eventLogEntry, 0),
		logView:       viewport.New(76, 8),
		maxLogEntries: 100,
		synchronized:  false,
		family:        eucproto.FamilyUnknown,
		invalidBytes:  0,
		width:         80,
		height:        24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		// Remaining keys scroll the event log
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := m.height - 18 // Reserve space for header, stats and telemetry
		if logHeight < 5 {
			logHeight = 5
		}
		m.logView.Width = m.width - 8
		m.logView.Height = logHeight
		m.refreshLog()

	case tickMsg:
		// Update statistics rates
		m.stats.CalculateRates()
		return m, tickCmd()

	case syncMsg:
		m.synchronized = true
		m.family = msg.family
		m.invalidBytes = msg.invalidBytes
		if msg.invalidBytes > 0 {
			m.addLogEntry(fmt.Sprintf("Detected %s after skipping %d invalid bytes", msg.family, msg.invalidBytes), false)
		} else {
			m.addLogEntry(fmt.Sprintf("Detected %s", msg.family), false)
		}

	case resultMsg:
		res := msg.result
		if res.Err != nil {
			if m.synchronized {
				m.stats.Update(res)
				m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", res.Err), true)
			}
		} else if res.Telemetry != nil {
			m.stats.Update(res)
			m.lastTelemetry = res.Telemetry

			if m.showAll {
				// Valid reading (only if --show-all)
				m.addLogEntry(fmt.Sprintf("%.2fV %.2fA %.1fkm/h (valid)",
					res.Telemetry.Voltage, res.Telemetry.Current, res.Telemetry.Speed), false)
			}
		}
	}

	return m, nil
}

func (m *model) addLogEntry(message string, isError bool) {
	entry := eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	// Keep only last N entries
	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}

	m.refreshLog()
}

// refreshLog rebuilds the viewport content from the event log
func (m *model) refreshLog() {
	logContent := strings.Builder{}

	if len(m.errorLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i, entry := range m.errorLog {
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if i > 0 {
				logContent.WriteString("\n")
			}
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	atBottom := m.logView.AtBottom()
	m.logView.SetContent(logContent.String())
	if atBottom {
		m.logView.GotoBottom()
	}
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("EUCLOG - LIVE MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | ↑/↓ scroll, 'q' to quit",
		m.connInfo, func() string {
			if m.showAll {
				return "All readings"
			}
			return "Errors only"
		}())))
	s.WriteString("\n\n")

	// Sync status
	if !m.synchronized {
		s.WriteString(warningStyle.Render("⏳ Waiting for protocol detection..."))
		s.WriteString("\n\n")
	} else {
		s.WriteString(statsValueStyle.Render(fmt.Sprintf("✓ %s (%s)", m.family, m.family.Manufacturer())))
		if m.invalidBytes > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (skipped %d invalid bytes)", m.invalidBytes)))
		}
		s.WriteString("\n\n")
	}

	// Statistics
	m.stats.CalculateRates()
	var validPercent, errorPercent float64
	totalErrors := m.stats.ChecksumErrors + m.stats.ResyncEvents + m.stats.DecryptDesyncs + m.stats.UnknownStreams
	if m.stats.TotalResults > 0 {
		validPercent = float64(m.stats.ValidFrames) * 100.0 / float64(m.stats.TotalResults)
		errorPercent = float64(totalErrors) * 100.0 / float64(m.stats.TotalResults)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalResults)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidFrames, validPercent)),
		statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", totalErrors, errorPercent)),
	))

	if m.stats.ChecksumErrors > 0 || m.stats.DecryptDesyncs > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Checksum Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.ChecksumErrors)),
			statsLabelStyle.Render("Decrypt Desyncs:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.DecryptDesyncs)),
		))
	}

	if m.stats.ResyncEvents > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s (%s: %d)\n",
			statsLabelStyle.Render("Resyncs:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.ResyncEvents)),
			headerStyle.Render("bytes dropped"), m.stats.BytesDropped,
		))
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Frame Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f frames/s", m.stats.FrameRate)),
		statsLabelStyle.Render("Error Rate:"), func() string {
			if m.stats.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
			}
			return statsValueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Telemetry section (only shown once a reading decoded)
	if m.lastTelemetry != nil {
		s.WriteString(statsLabelStyle.Render("Latest Reading:"))
		s.WriteString("\n")

		t := m.lastTelemetry
		telemetryContent := strings.Builder{}

		if t.Model != "" {
			telemetryContent.WriteString(fmt.Sprintf("%s %s",
				statsLabelStyle.Render("Model:"), statsValueStyle.Render(t.Model)))
			if t.FirmwareVersion != "" {
				telemetryContent.WriteString(fmt.Sprintf("   %s %s",
					statsLabelStyle.Render("Firmware:"), statsValueStyle.Render(t.FirmwareVersion)))
			}
			telemetryContent.WriteString("\n")
		}

		voltage := fmt.Sprintf("%.2f V", t.Voltage)
		if t.SystemVoltage > 0 {
			voltage += fmt.Sprintf(" / %.1f V pack", t.SystemVoltage)
		}
		telemetryContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Voltage:"), statsValueStyle.Render(voltage),
			statsLabelStyle.Render("Battery:"), statsValueStyle.Render(fmt.Sprintf("%.0f %%", t.BatteryPercent)),
		))

		telemetryContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Current:"), statsValueStyle.Render(fmt.Sprintf("%.2f A", t.Current)),
			statsLabelStyle.Render("Speed:"), statsValueStyle.Render(fmt.Sprintf("%.1f km/h", t.Speed)),
		))

		telemetryContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Trip:"), statsValueStyle.Render(fmt.Sprintf("%.3f km", t.TripDistance)),
			statsLabelStyle.Render("Odometer:"), statsValueStyle.Render(fmt.Sprintf("%.3f km", t.TotalDistance)),
		))

		bottomLine := fmt.Sprintf("%s %s", statsLabelStyle.Render("Temperature:"),
			statsValueStyle.Render(fmt.Sprintf("%.1f °C", t.Temperature)))
		if t.HasPWM {
			pwm := statsValueStyle.Render(fmt.Sprintf("%.1f %%", t.PWM))
			if t.PWM > 80 {
				pwm = errorStyle.Render(fmt.Sprintf("%.1f %%", t.PWM))
			}
			bottomLine += fmt.Sprintf("   %s %s", statsLabelStyle.Render("PWM:"), pwm)
		}
		telemetryContent.WriteString(bottomLine)
		telemetryContent.WriteString("\n")

		if t.Charging {
			telemetryContent.WriteString(warningStyle.Render("⚡ CHARGING"))
			if t.ChargeMode > 0 {
				telemetryContent.WriteString(headerStyle.Render(fmt.Sprintf(" (mode %d)", t.ChargeMode)))
			}
			telemetryContent.WriteString("\n")
		}

		s.WriteString(boxStyle.Render(telemetryContent.String()))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")
	s.WriteString(boxStyle.Width(m.width - 4).Render(m.logView.View()))

	return s.String()
}
