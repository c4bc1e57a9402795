package outwriter

import (
	"os"

	"github.com/huangsam/perfpipe/internal/contract"
	"golang.org/x/term"
)

// getMaxTableNameWidth calculates the maximum width for test names in the rows table
// based on terminal width and the fixed columns.
func getMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Version + Timestamp + Group + four metric columns
	baseWidth := 10 + 21 + 20 + 4*14

	// Table borders, separators and padding
	baseWidth += 20

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 50 {
		return 50
	}
	return available
}
