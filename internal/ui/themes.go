package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a terminal palette. Colors are xterm 256-color indexes so the
// same value drives both raw escape codes and lipgloss styles.
type Theme struct {
	Name    string
	Accent  string
	Muted   string
	Success string
	Warning string
	Error   string
	Info    string
}

var (
	DarkTheme = Theme{
		Name:    "dark",
		Accent:  "39",
		Muted:   "245",
		Success: "82",
		Warning: "220",
		Error:   "196",
		Info:    "141",
	}

	LightTheme = Theme{
		Name:    "light",
		Accent:  "27",
		Muted:   "240",
		Success: "28",
		Warning: "130",
		Error:   "124",
		Info:    "54",
	}

	// NoColorTheme turns every accessor into the empty string.
	NoColorTheme = Theme{Name: "none"}

	themeMu      sync.RWMutex
	currentTheme = DarkTheme
)

func (t Theme) plain() bool { return t.Name == NoColorTheme.Name }

// fg returns the escape code selecting color as foreground.
func (t Theme) fg(color string) string {
	if t.plain() || color == "" {
		return ""
	}
	return "\033[38;5;" + color + "m"
}

func (t Theme) sgr(code string) string {
	if t.plain() {
		return ""
	}
	return "\033[" + code + "m"
}

// Styles are the lipgloss styles of the active theme.
type Styles struct {
	// Title renders section banners.
	Title lipgloss.Style
}

// GetStyles returns the styles of the active theme. Without colors every
// style renders its input unchanged.
func GetStyles() Styles {
	t := GetCurrentTheme()
	if t.plain() {
		return Styles{Title: lipgloss.NewStyle()}
	}
	return Styles{Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Warning))}
}

func GetCurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme.
func SetCurrentTheme(t Theme) {
	themeMu.Lock()
	defer themeMu.Unlock()
	currentTheme = t
}

// InitTheme picks the theme for this process: none when noColor is set or
// NO_COLOR is present in the environment, otherwise the dark or light
// palette matching the terminal background.
func InitTheme(noColor bool) {
	_, envNoColor := os.LookupEnv("NO_COLOR")
	switch {
	case noColor || envNoColor:
		SetCurrentTheme(NoColorTheme)
	case lipgloss.HasDarkBackground():
		SetCurrentTheme(DarkTheme)
	default:
		SetCurrentTheme(LightTheme)
	}
}
