package app

import "github.com/charmbracelet/lipgloss"

// theme carries the palette for one of the two persisted color schemes.
type theme struct {
	name string

	header     lipgloss.Style
	subHeader  lipgloss.Style
	status     lipgloss.Style
	errorText  lipgloss.Style
	muted      lipgloss.Style
	kpiValue   lipgloss.Style
	badgeUp    lipgloss.Style
	badgeDown  lipgloss.Style
	tabActive  lipgloss.Style
	tabIdle    lipgloss.Style
	panel      lipgloss.Style
	panelTitle lipgloss.Style
	barFill    lipgloss.Style
	barTrack   lipgloss.Style
	userMsg    lipgloss.Style
	botMsg     lipgloss.Style
	healthUp   lipgloss.Style
	healthDown lipgloss.Style
}

func themeByName(name string) theme {
	if name == "dark" {
		return darkTheme()
	}
	return lightTheme()
}

func (t theme) next() theme {
	if t.name == "dark" {
		return lightTheme()
	}
	return darkTheme()
}

func lightTheme() theme {
	accent := lipgloss.Color("#1E293B")
	muted := lipgloss.Color("#64748B")
	border := lipgloss.Color("#94A3B8")
	return theme{
		name:      "light",
		header:    lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1),
		subHeader: lipgloss.NewStyle().Foreground(muted),
		status:    lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB")).Bold(true),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(muted),
		kpiValue:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		badgeUp:   lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")).Bold(true),
		badgeDown: lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true),
		tabActive: lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true).Padding(0, 1),
		tabIdle:   lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().Bold(true).Foreground(accent),
		barFill:    lipgloss.NewStyle().Foreground(accent),
		barTrack:   lipgloss.NewStyle().Foreground(lipgloss.Color("#E2E8F0")),
		userMsg:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		botMsg:     lipgloss.NewStyle().Foreground(lipgloss.Color("#334155")),
		healthUp:   lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")).Bold(true),
		healthDown: lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true),
	}
}

func darkTheme() theme {
	accent := lipgloss.Color("#50E3C2")
	muted := lipgloss.Color("#8CA1AE")
	border := lipgloss.Color("#2D6A80")
	return theme{
		name:      "dark",
		header:    lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1),
		subHeader: lipgloss.NewStyle().Foreground(muted),
		status:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F6AE2D")).Bold(true),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(muted),
		kpiValue:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		badgeUp:   lipgloss.NewStyle().Foreground(lipgloss.Color("#44E7AE")).Bold(true),
		badgeDown: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		tabActive: lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true).Padding(0, 1),
		tabIdle:   lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().Bold(true).Foreground(accent),
		barFill:    lipgloss.NewStyle().Foreground(accent),
		barTrack:   lipgloss.NewStyle().Foreground(lipgloss.Color("#13232C")),
		userMsg:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		botMsg:     lipgloss.NewStyle().Foreground(lipgloss.Color("#C9D4DB")),
		healthUp:   lipgloss.NewStyle().Foreground(lipgloss.Color("#44E7AE")).Bold(true),
		healthDown: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	}
}
