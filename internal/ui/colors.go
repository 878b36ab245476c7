package ui

// Escape code accessors. They read the active theme on every call, so a
// theme change applies to output written afterwards.

func ColorReset() string     { return GetCurrentTheme().sgr("0") }
func ColorBold() string      { return GetCurrentTheme().sgr("1") }
func ColorUnderline() string { return GetCurrentTheme().sgr("4") }

func ColorRed() string     { return paint(func(t Theme) string { return t.Error }) }
func ColorGreen() string   { return paint(func(t Theme) string { return t.Success }) }
func ColorYellow() string  { return paint(func(t Theme) string { return t.Warning }) }
func ColorMagenta() string { return paint(func(t Theme) string { return t.Info }) }
func ColorGrey() string    { return paint(func(t Theme) string { return t.Muted }) }

// ColorBlue and ColorCyan both map to the accent color.
func ColorBlue() string { return paint(func(t Theme) string { return t.Accent }) }
func ColorCyan() string { return paint(func(t Theme) string { return t.Accent }) }

func paint(pick func(Theme) string) string {
	t := GetCurrentTheme()
	return t.fg(pick(t))
}
