// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/thinkly/internal/telemetry"
	"github.com/jeranaias/thinkly/internal/ui/styles"
	"github.com/jeranaias/thinkly/internal/util"
)

// =============================================================================
// DASHBOARD
// =============================================================================

// RenderDashboard lays out the analytics view: summary cards, message
// types, model usage and hourly activity.
func RenderDashboard(stats telemetry.Stats, theme *styles.Theme, width int) string {
	if width < 40 {
		width = 40
	}

	cards := []string{
		statCard(theme, "Messages", fmt.Sprintf("%d", stats.TotalMessages),
			fmt.Sprintf("%d you · %d assistant", stats.UserMessages, stats.AssistantMessages)),
		statCard(theme, "Tokens", fmt.Sprintf("~%d", stats.TotalTokens), reportedLine(stats)),
		statCard(theme, "Avg response", FormatDuration(stats.AverageResponse),
			fmt.Sprintf("%d replies measured", stats.ResponseSamples)),
		statCard(theme, "Errors", fmt.Sprintf("%d", stats.ErrorMessages),
			fmt.Sprintf("%.0f%% of replies", stats.ErrorRate()*100)),
	}

	var top string
	if width >= 100 {
		top = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	} else {
		top = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1]),
			lipgloss.JoinHorizontal(lipgloss.Top, cards[2], cards[3]),
		)
	}

	barWidth := width/2 - 24
	if barWidth < 10 {
		barWidth = 10
	}

	sections := []string{
		top,
		section(theme, "Message types", renderTypes(stats, theme, barWidth)),
		section(theme, "Model usage", renderModelUsage(stats, theme, barWidth)),
		section(theme, "Activity by hour", renderHourly(stats, theme)),
	}
	return strings.Join(sections, "\n\n")
}

func statCard(theme *styles.Theme, title, value, detail string) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.CardTitle.Render(title),
		theme.CardValue.Render(value),
		theme.Muted.Render(detail),
	)
	return theme.Card.Width(24).Render(body)
}

func section(theme *styles.Theme, title, body string) string {
	return theme.RoleLabel.Render(title) + "\n" + body
}

func reportedLine(stats telemetry.Stats) string {
	if stats.ReportedTokens == 0 {
		return "estimated from text"
	}
	return fmt.Sprintf("%d reported by providers", stats.ReportedTokens)
}

type barRow struct {
	label string
	value int
	color lipgloss.Color
}

func renderBars(rows []barRow, theme *styles.Theme, barWidth int) string {
	if len(rows) == 0 {
		return theme.Muted.Render("No messages yet")
	}
	peak := 0
	for _, r := range rows {
		if r.value > peak {
			peak = r.value
		}
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		filled, empty := styles.RenderBar(barWidth, float64(r.value), float64(peak))
		lines = append(lines, fmt.Sprintf("%s %s%s %d",
			util.PadRight(util.TruncateWidth(r.label, 10), 10),
			lipgloss.NewStyle().Foreground(r.color).Render(filled),
			theme.BarEmpty.Render(empty),
			r.value,
		))
	}
	return strings.Join(lines, "\n")
}

func renderTypes(stats telemetry.Stats, theme *styles.Theme, barWidth int) string {
	var rows []barRow
	p := theme.Palette
	for _, r := range []barRow{
		{"Text", stats.Types.Text, p.Primary},
		{"Code", stats.Types.Code, p.Secondary},
		{"Error", stats.Types.Error, p.Error},
	} {
		if r.value > 0 {
			rows = append(rows, r)
		}
	}
	return renderBars(rows, theme, barWidth)
}

func renderModelUsage(stats telemetry.Stats, theme *styles.Theme, barWidth int) string {
	rows := make([]barRow, 0, len(stats.ModelUsage))
	for _, m := range stats.ModelUsage {
		rows = append(rows, barRow{m.Name, m.Count, theme.ProviderColor(m.Model)})
	}
	return renderBars(rows, theme, barWidth)
}

func renderHourly(stats telemetry.Stats, theme *styles.Theme) string {
	if stats.TotalMessages == 0 {
		return theme.Muted.Render("No messages yet")
	}
	// Two cells per hour, 48 columns.
	var spark strings.Builder
	for _, r := range styles.Sparkline(stats.Hourly[:]) {
		spark.WriteRune(r)
		spark.WriteRune(r)
	}
	axis := fmt.Sprintf("%-12s%-12s%-12s%-10s%s", "0", "6", "12", "18", "23")
	hour, count := stats.PeakHour()
	peak := fmt.Sprintf("peak %02d:00 (%d)", hour, count)
	return theme.Bar.Render(spark.String()) + "\n" +
		theme.Muted.Render(util.PadRight(axis, 48)) + "  " + theme.Muted.Render(peak)
}

// FormatDuration renders a duration compactly, "-" for zero.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}
