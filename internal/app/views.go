package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ensurax-tui/internal/api"
	"ensurax-tui/internal/chat"
	"ensurax-tui/internal/metrics"

	"github.com/charmbracelet/lipgloss"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

func (m Model) View() string {
	if !m.ready {
		return "Booting ensurax-tui..."
	}

	header := m.renderHeader()
	statusLine := m.renderStatusLine()

	dockCols := 0
	if m.dock.Visible() {
		dockCols = minInt(m.dock.Cells(), maxInt(20, m.width-minDashboardCols))
	}
	dashboardW := maxInt(minDashboardCols, m.width-dockCols-2)

	body := m.renderActiveTab(dashboardW)
	if m.dock.Visible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderDock(dockCols))
	}

	help := m.th.muted.Render(
		"tab switch view · ctrl+e range · ctrl+r refresh · ctrl+d assistant · ctrl+t theme · ctrl+l clear chat · ctrl+c quit",
	)

	return strings.Join([]string{header, statusLine, body, help}, "\n")
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, 5)
	for _, t := range []tab{tabOverview, tabClaims, tabRisk, tabOps, tabC360} {
		if t == m.activeTab {
			tabs = append(tabs, m.th.tabActive.Render(t.label()))
		} else {
			tabs = append(tabs, m.th.tabIdle.Render(t.label()))
		}
	}

	health := m.th.muted.Render("API ?")
	if m.healthKnown {
		if m.healthUp {
			health = m.th.healthUp.Render("API up")
		} else {
			health = m.th.healthDown.Render("API down")
		}
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		m.th.header.Render("EnsuraX Dashboard"),
		strings.Join(tabs, ""),
		m.th.subHeader.Render("  range: "+m.quick.label()+"  "),
		health,
	)
}

func (m Model) renderStatusLine() string {
	if strings.TrimSpace(m.errorText) != "" {
		return m.th.errorText.Render(m.errorText)
	}
	prefix := "*"
	if m.anythingLoading() || m.session.Sending() {
		prefix = m.spinner.View()
	}
	body := strings.TrimSpace(m.statusText)
	if body == "" {
		body = "Ready"
	}
	return m.th.status.Render(prefix + " " + body)
}

func (m Model) renderActiveTab(width int) string {
	switch m.activeTab {
	case tabClaims:
		return m.renderClaims(width)
	case tabRisk:
		return m.renderRisk(width)
	case tabOps:
		return m.renderOps(width)
	case tabC360:
		return m.renderC360(width)
	default:
		return m.renderOverview(width)
	}
}

func (m Model) renderPanel(title, body string, width int) string {
	style := m.th.panel.Width(maxInt(20, width))
	return style.Render(m.th.panelTitle.Render(title) + "\n" + body)
}

func (m Model) renderOverview(width int) string {
	if m.overview == nil {
		return m.renderPanel("Overview", m.loadingOrEmpty(m.overviewLoading), width)
	}

	cardW := maxInt(22, (width-8)/2)
	data := m.overview

	gwp := m.kpiCard(
		"Gross Written Premium",
		formatCurrency(metrics.Sum(data.GWP)),
		data.GWP,
		cardW,
	)
	lossRatio := m.kpiCard(
		"Loss Ratio",
		formatPct(metrics.WeightedRatio(data.LossRatio)),
		metrics.RatioSeries(data.LossRatio),
		cardW,
	)
	frequency := m.kpiCard(
		"Claims Frequency",
		formatPct(metrics.WeightedRatio(data.ClaimsFrequency)),
		metrics.RatioSeries(data.ClaimsFrequency),
		cardW,
	)
	settlement := m.kpiCard(
		"Avg Settlement Days",
		fmt.Sprintf("%.1f", metrics.Average(data.AvgSettlementDays)),
		data.AvgSettlementDays,
		cardW,
	)

	top := lipgloss.JoinHorizontal(lipgloss.Top, gwp, lossRatio)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, frequency, settlement)
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

// kpiCard is one headline metric: period total or weighted value, the
// latest-vs-previous delta badge, and a sparkline over the series.
func (m Model) kpiCard(title, value string, series []api.SeriesPoint, width int) string {
	change, direction := metrics.Delta(series)
	badge := m.th.badgeUp.Render("▲ " + formatDelta(math.Abs(change)))
	if direction == metrics.Down {
		badge = m.th.badgeDown.Render("▼ " + formatDelta(math.Abs(change)))
	}

	lines := []string{
		m.th.kpiValue.Render(value) + "  " + badge,
		m.th.muted.Render(sparkline(metrics.Values(series), maxInt(8, width-4))),
	}
	return m.renderPanel(title, strings.Join(lines, "\n"), width)
}

func (m Model) renderClaims(width int) string {
	if !m.claimsLoaded {
		return m.renderPanel("Claims", m.loadingOrEmpty(m.claimsLoading), width)
	}

	halfW := maxInt(24, (width-8)/2)

	paidLines := make([]string, 0, len(m.claimsPaidVsReserve)+1)
	paidLines = append(paidLines, m.th.muted.Render(padRight("period", 10)+padLeft("paid", 14)+padLeft("reserve", 14)))
	for _, point := range tailTwoSeries(m.claimsPaidVsReserve, 12) {
		paidLines = append(paidLines, padRight(point.Period, 10)+
			padLeft(formatCurrency(point.A), 14)+
			padLeft(formatCurrency(point.B), 14))
	}
	if len(m.claimsPaidVsReserve) == 0 {
		paidLines = append(paidLines, m.th.muted.Render("No data for this range."))
	}

	openClosed := metrics.RatioSeries(m.claimsOpenClosed)
	ratioBody := m.th.kpiValue.Render(formatPct(metrics.WeightedRatio(m.claimsOpenClosed))) + "\n" +
		m.th.muted.Render(sparkline(metrics.Values(openClosed), maxInt(8, halfW-4)))

	severity := m.renderBars(metrics.ToMaxScale(m.claimsSeverity), halfW-6, false)

	left := m.renderPanel("Paid vs Reserve", strings.Join(paidLines, "\n"), halfW)
	right := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderPanel("Open vs Closed", ratioBody, halfW),
		m.renderPanel("Severity Histogram", severity, halfW),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderRisk(width int) string {
	if !m.riskLoaded {
		return m.renderPanel("Risk", m.loadingOrEmpty(m.riskLoading), width)
	}

	halfW := maxInt(24, (width-8)/2)
	byPeril := m.renderBars(metrics.ToMaxScale(m.riskByPeril), halfW-6, false)
	catExposure := m.renderBars(metrics.ToTotalScale(m.riskCatExposure), halfW-6, true)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderPanel("Claims by Peril", byPeril, halfW),
		m.renderPanel("Catastrophe Exposure", catExposure, halfW),
	)
}

func (m Model) renderOps(width int) string {
	if !m.opsLoaded {
		return m.renderPanel("Operations", m.loadingOrEmpty(m.opsLoading), width)
	}

	halfW := maxInt(24, (width-8)/2)

	fnol := m.kpiCard("FNOL Volume", formatNumber(metrics.Sum(m.opsFNOL)), m.opsFNOL, halfW)
	sla := m.renderPanel("SLA Breaches (latest month)", m.renderSLACard(), halfW)
	backlog := m.renderPanel("Backlog by Age", m.renderBars(metrics.ToMaxScale(m.opsBacklog), halfW-6, false), halfW)

	left := lipgloss.JoinVertical(lipgloss.Left, fnol, backlog)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, sla)
}

func (m Model) renderSLACard() string {
	if len(m.opsSLA) == 0 {
		return m.th.muted.Render("No SLA data for this range.")
	}
	latest := m.opsSLA[len(m.opsSLA)-1]
	lines := []string{
		m.th.muted.Render(latest.Period),
		padRight(">30 days", 14) + m.th.kpiValue.Render(formatNumber(latest.BreachesGt30d)),
		padRight(">60 days", 14) + m.th.kpiValue.Render(formatNumber(latest.BreachesGt60d)),
		padRight("still open", 14) + formatNumber(latest.StillOpen),
		padRight("reported", 14) + formatNumber(latest.TotalReported),
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderC360(width int) string {
	if !m.c360Loaded {
		return m.renderPanel("Customer 360", m.loadingOrEmpty(m.c360Loading), width)
	}

	halfW := maxInt(24, (width-8)/2)

	retention := m.kpiCard(
		"Retention",
		formatPct(metrics.Latest(m.c360Retention)),
		m.c360Retention,
		halfW,
	)
	crossSell := m.renderPanel("Cross-sell Mix", m.renderBars(metrics.ToTotalScale(m.c360CrossSell), halfW-6, true), halfW)
	channels := m.renderPanel("Channel Mix", m.renderBars(metrics.ToTotalScale(m.c360ChannelMix), halfW-6, true), halfW)
	demographics := m.renderPanel("Demographics", m.renderDemographics(12), halfW)

	left := lipgloss.JoinVertical(lipgloss.Left, retention, crossSell)
	right := lipgloss.JoinVertical(lipgloss.Left, channels, demographics)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderDemographics(maxRows int) string {
	if len(m.c360Demographics) == 0 {
		return m.th.muted.Render("No demographic data.")
	}
	lines := make([]string, 0, maxRows+1)
	lines = append(lines, m.th.muted.Render(padRight("age band", 10)+padRight("county", 14)+padLeft("customers", 10)))
	for idx, row := range m.c360Demographics {
		if idx >= maxRows {
			lines = append(lines, m.th.muted.Render(fmt.Sprintf("... %d more rows", len(m.c360Demographics)-maxRows)))
			break
		}
		lines = append(lines, padRight(row.AgeBand, 10)+padRight(row.CountyName, 14)+padLeft(formatNumber(row.Customers), 10))
	}
	return strings.Join(lines, "\n")
}

// renderBars draws one horizontal bar per share. Shares already carry the
// 0-100 display percentage; showPct appends it for total-scale breakdowns.
func (m Model) renderBars(shares []metrics.Share, width int, showPct bool) string {
	if len(shares) == 0 {
		return m.th.muted.Render("No data for this range.")
	}

	labelW := 0
	for _, share := range shares {
		labelW = maxInt(labelW, len(share.Key))
	}
	labelW = minInt(labelW, 18)
	barW := maxInt(6, width-labelW-12)

	lines := make([]string, 0, len(shares))
	for _, share := range shares {
		filled := int(math.Round(share.Pct / 100 * float64(barW)))
		filled = clampInt(filled, 0, barW)
		bar := m.th.barFill.Render(strings.Repeat("█", filled)) +
			m.th.barTrack.Render(strings.Repeat("░", barW-filled))
		line := padRight(truncate(share.Key, labelW), labelW+1) + bar
		if showPct {
			line += padLeft(fmt.Sprintf("%.1f%%", share.Pct), 7)
		} else {
			line += padLeft(formatNumber(share.Value), 11)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDock(cols int) string {
	handle := m.th.muted.Render("│")
	if m.dock.Dragging() {
		handle = m.th.status.Render("┃")
	}

	sendHint := "enter to send"
	if m.session.Sending() {
		sendHint = m.spinner.View() + " waiting for the assistant..."
	}

	body := strings.Join([]string{
		m.transcript.View(),
		m.composer.View(),
		m.th.muted.Render(sendHint),
	}, "\n")

	panel := m.renderPanel("Assistant", body, maxInt(20, cols-2))
	lines := strings.Split(panel, "\n")
	for idx := range lines {
		lines[idx] = handle + lines[idx]
	}
	return strings.Join(lines, "\n")
}

// refreshTranscript rebuilds the chat viewport from the session transcript,
// expanding stored forecast payloads into tables.
func (m *Model) refreshTranscript() {
	if m.session == nil {
		return
	}
	width := maxInt(20, m.transcript.Width)
	blocks := make([]string, 0, len(m.session.Messages()))
	for _, message := range m.session.Messages() {
		blocks = append(blocks, m.renderChatMessage(message, width))
	}
	atBottom := m.transcript.AtBottom()
	m.transcript.SetContent(strings.Join(blocks, "\n\n"))
	if atBottom {
		m.transcript.GotoBottom()
	}
}

func (m Model) renderChatMessage(message chat.Message, width int) string {
	if message.Role == chat.RoleUser {
		return m.th.userMsg.Render("You") + "\n" + wrap(message.Content, width)
	}

	reply := chat.InterpretContent(message.Content)
	if reply.Kind == chat.ReplyForecast {
		parts := []string{m.th.botMsg.Render("Assistant (forecast)")}
		parts = append(parts, m.renderForecastTable(reply.Rows, width))
		if strings.TrimSpace(reply.Summary) != "" {
			parts = append(parts, wrap(reply.Summary, width))
		}
		return strings.Join(parts, "\n")
	}
	return m.th.botMsg.Render("Assistant") + "\n" + wrap(reply.Text, width)
}

func (m Model) renderForecastTable(rows []map[string]any, width int) string {
	if len(rows) == 0 {
		return m.th.muted.Render("(empty forecast)")
	}

	axisKey, valueKey := chat.AxisKeys(rows)
	colW := clampInt((width-2)/2, 8, 20)

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, m.th.muted.Render(padRight(axisKey, colW)+padLeft(valueKey, colW)))
	for _, row := range rows {
		lines = append(lines, padRight(cellString(row[axisKey]), colW)+padLeft(cellString(row[valueKey]), colW))
	}
	return strings.Join(lines, "\n")
}

func (m Model) loadingOrEmpty(loading bool) string {
	if loading {
		return m.spinner.View() + " Loading..."
	}
	return m.th.muted.Render("No data loaded yet. Press ctrl+r to fetch.")
}

// sparkline maps a series onto block runes. Flat series render as a low
// band instead of dividing by a zero span.
func sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat(" ", maxInt(1, width))
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	low, high := values[0], values[0]
	for _, v := range values[1:] {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}
	span := high - low
	if span == 0 {
		span = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - low) / span * float64(len(sparkRunes)-1))
		sb.WriteRune(sparkRunes[clampInt(idx, 0, len(sparkRunes)-1)])
	}
	return sb.String()
}

func tailTwoSeries(points []api.TwoSeriesPoint, n int) []api.TwoSeriesPoint {
	if len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}

func cellString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		if value == math.Trunc(value) && math.Abs(value) < 1e15 {
			return formatNumber(value)
		}
		return strconv.FormatFloat(value, 'f', 2, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func formatCurrency(v float64) string {
	return "$" + formatNumber(v)
}

// formatPct renders a fractional ratio as a percentage with one decimal.
func formatPct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

// formatDelta keeps precision for small period-over-period moves, which
// ratio series produce as fractions.
func formatDelta(v float64) string {
	if v < 10 {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return formatNumber(v)
}

// formatNumber renders a value with thousands separators and no decimals.
func formatNumber(v float64) string {
	negative := v < 0
	whole := strconv.FormatFloat(math.Abs(math.Round(v)), 'f', 0, 64)

	var sb strings.Builder
	if negative {
		sb.WriteByte('-')
	}
	for idx, digit := range whole {
		if idx > 0 && (len(whole)-idx)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(digit)
	}
	return sb.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 1 {
		return s[:width]
	}
	return s[:width-1] + "…"
}

func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			if len(current)+1+len(word) > width {
				lines = append(lines, current)
				current = word
				continue
			}
			current += " " + word
		}
		lines = append(lines, current)
	}
	return strings.Join(lines, "\n")
}
