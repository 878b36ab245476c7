package cli

import (
	"os"
	"testing"

	"github.com/agbru/mpcalc/internal/ui"
)

// TestMain pins the theme to plain text so output assertions do not depend
// on the terminal.
func TestMain(m *testing.M) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	os.Exit(m.Run())
}
