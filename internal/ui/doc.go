// Package ui holds the terminal palettes of mpcalc and the escape code
// accessors and lipgloss styles built from them.
package ui
