package presenter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"route-dashboard/internal/domain"
)

var (
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleStep    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	styleInfo    = lipgloss.NewStyle()
	styleDetail  = lipgloss.NewStyle().Faint(true).PaddingLeft(2)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleDebug   = lipgloss.NewStyle().Faint(true).Italic(true)
	styleLarge   = lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.NormalBorder())

	styleProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	styleTime     = lipgloss.NewStyle().Faint(true)
	styleLabel    = lipgloss.NewStyle().Faint(true)
	styleValue    = lipgloss.NewStyle().Bold(true)
	styleCard     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// TerminalStyle returns the lipgloss style for a log style tag.
func TerminalStyle(s domain.Style) lipgloss.Style {
	switch s {
	case domain.StyleHeader:
		return styleHeader
	case domain.StyleStep:
		return styleStep
	case domain.StyleDetail:
		return styleDetail
	case domain.StyleSuccess:
		return styleSuccess
	case domain.StyleWarning:
		return styleWarning
	case domain.StyleError:
		return styleError
	case domain.StyleProgress:
		return styleProgress
	case domain.StyleDebug:
		return styleDebug
	case domain.StyleSuccessLarge:
		return styleLarge.BorderForeground(lipgloss.Color("10")).Foreground(lipgloss.Color("10"))
	case domain.StyleErrorLarge:
		return styleLarge.BorderForeground(lipgloss.Color("9")).Foreground(lipgloss.Color("9"))
	}
	return styleInfo
}

// RenderLine renders one log line for a terminal.
func RenderLine(l LogLine) string {
	text := TerminalStyle(l.Style).Render(l.Text)
	if l.Time == "" {
		return text
	}
	return styleTime.Render(l.Time) + " " + text
}

// RenderSummary renders the statistic cards side by side.
func RenderSummary(cards []SummaryCard) string {
	blocks := make([]string, 0, len(cards))
	for _, c := range cards {
		blocks = append(blocks, styleCard.Render(styleLabel.Render(c.Label)+"\n"+styleValue.Render(c.Value)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

// RenderMethods renders the heuristic comparison table.
func RenderMethods(methods []MethodMetric) string {
	var b strings.Builder
	for _, m := range methods {
		marker := " "
		if m.Best {
			marker = "*"
		}
		line := fmt.Sprintf("%s %-8s distance %10s", marker, m.Method, m.Distance)
		if m.Makespan != "" {
			line += fmt.Sprintf("  makespan %10s", m.Makespan)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderDriverCard renders a per-driver card.
func RenderDriverCard(c DriverCard) string {
	title := styleValue.Render(c.Title)
	if c.Color != "" {
		title = styleValue.Foreground(lipgloss.Color(c.Color)).Render(c.Title)
	}
	body := fmt.Sprintf("%s\n%s %s\n%s %s",
		title,
		styleLabel.Render("Distance:"), c.Distance,
		styleLabel.Render("Stops:"), c.Stops,
	)
	return styleCard.Render(body)
}
