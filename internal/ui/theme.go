package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles of the list view.
type Theme struct {
	Name     string
	TitleBar lipgloss.Style
	Status   lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Watched  lipgloss.Style
	Dim      lipgloss.Style
	Error    lipgloss.Style
	Prompt   lipgloss.Style
}

// themeRegistry maps theme names to constructors.
var themeRegistry = map[string]func(bool) Theme{
	"classic": Classic,
	"rainbow": Rainbow,
	"mono":    Monochrome,
	"green":   GreenTerminal,
	"nocolor": NoColor,
}

// ThemeNames returns the list of available theme names.
func ThemeNames() []string {
	return []string{"classic", "rainbow", "mono", "green", "nocolor"}
}

// GetTheme returns a theme by name. Returns Classic if name not found.
func GetTheme(name string, noColor bool) Theme {
	// NO_COLOR environment variable overrides theme selection
	if noColor {
		return NoColor(noColor)
	}
	if fn, ok := themeRegistry[name]; ok {
		return fn(noColor)
	}
	return Classic(noColor)
}

// ValidTheme returns true if the theme name is valid.
func ValidTheme(name string) bool {
	_, ok := themeRegistry[name]
	return ok
}

// Classic is the default look: reversed title and status bars and a red
// selection on the terminal's own colors.
func Classic(noColor bool) Theme {
	if noColor {
		return NoColor(noColor)
	}
	reset := lipgloss.NewStyle()
	red := lipgloss.Color("1")
	return Theme{
		Name:     "classic",
		TitleBar: reset.Reverse(true),
		Status:   reset.Reverse(true),
		Item:     reset,
		Selected: reset.Foreground(red).Bold(true),
		Watched:  reset.Foreground(lipgloss.Color("8")),
		Dim:      reset.Foreground(lipgloss.Color("8")),
		Error:    reset.Foreground(red).Reverse(true),
		Prompt:   reset.Bold(true),
	}
}

// Rainbow is a colorful theme.
func Rainbow(noColor bool) Theme {
	if noColor {
		return NoColor(noColor)
	}
	return Theme{
		Name:     "rainbow",
		TitleBar: lipgloss.NewStyle().Foreground(lipgloss.Color("#8EEBFF")).Bold(true),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD166")),
		Item:     lipgloss.NewStyle().Foreground(lipgloss.Color("#E6E6FA")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6FF7")).Bold(true),
		Watched:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5CFF5C")),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6F93")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F56")).Bold(true),
		Prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA7C4")).Bold(true),
	}
}

// Monochrome is a grayscale theme using white, gray, and dark gray.
func Monochrome(noColor bool) Theme {
	if noColor {
		return NoColor(noColor)
	}
	return Theme{
		Name:     "mono",
		TitleBar: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
		Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")),
		Item:     lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC")),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true).Underline(true),
		Watched:  lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true).Underline(true),
		Prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
	}
}

// GreenTerminal is a classic green-on-black terminal theme.
func GreenTerminal(noColor bool) Theme {
	if noColor {
		return NoColor(noColor)
	}
	brightGreen := lipgloss.Color("#00FF00")
	mediumGreen := lipgloss.Color("#00CC00")
	darkGreen := lipgloss.Color("#008800")
	dimGreen := lipgloss.Color("#005500")

	return Theme{
		Name:     "green",
		TitleBar: lipgloss.NewStyle().Foreground(brightGreen).Bold(true).Reverse(true),
		Status:   lipgloss.NewStyle().Foreground(mediumGreen).Reverse(true),
		Item:     lipgloss.NewStyle().Foreground(mediumGreen),
		Selected: lipgloss.NewStyle().Foreground(brightGreen).Bold(true),
		Watched:  lipgloss.NewStyle().Foreground(darkGreen),
		Dim:      lipgloss.NewStyle().Foreground(dimGreen),
		Error:    lipgloss.NewStyle().Foreground(brightGreen).Bold(true).Reverse(true),
		Prompt:   lipgloss.NewStyle().Foreground(brightGreen).Bold(true),
	}
}

// NoColor is a high-contrast theme for NO_COLOR environments.
// Uses only bold, underline, and reverse instead of colors.
func NoColor(_ bool) Theme {
	reset := lipgloss.NewStyle()
	return Theme{
		Name:     "nocolor",
		TitleBar: reset.Reverse(true),
		Status:   reset.Reverse(true),
		Item:     reset,
		Selected: reset.Bold(true),
		Watched:  reset,
		Dim:      reset,
		Error:    reset.Bold(true),
		Prompt:   reset.Bold(true),
	}
}
