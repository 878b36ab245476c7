// Value formatting for terminal output.

package cli

import (
	"strings"

	"github.com/agbru/mpcalc/internal/format"
)

// formatValue prepares a rendered number for the terminal. Long values are
// shortened to their edges unless verbose is set; decimal values get
// thousands separators. The second result reports truncation.
func formatValue(s string, verbose bool) (string, bool) {
	if !verbose && len(strings.TrimPrefix(s, "-")) > TruncationLimit {
		return format.TruncateDigits(s, TruncationLimit, DisplayEdges), true
	}
	if len(s) > TruncationLimit {
		return s, false
	}
	return format.FormatNumberString(s), false
}
