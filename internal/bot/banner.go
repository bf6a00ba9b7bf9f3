package bot

import (
	"fmt"
	"strings"

	"github.com/mazznoer/colorgrad"
)

// Version is reported by the banner and /version.
var Version = "0.1.0"

// GetBanner returns a colorized ASCII art banner
func GetBanner(version string) string {
	banner := `
  ____    ___    ____    ___
 / ___|  / _ \  |  _ \  |_ _|
| |     | | | | | | | |  | |
| |___  | |_| | | |_| |  | |
 \____|  \___/  |____/  |___|
 .  .  finance answers with sources  [v` + version + `]
`
	grad, _ := colorgrad.NewGradient().
		HtmlColors("#0b8a5fff", "#f2d16bff").
		Build()

	lines := strings.Split(banner, "\n")

	maxLen := 0
	for _, line := range lines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}

	colors := grad.Colors(uint(maxLen))
	var b strings.Builder

	for _, line := range lines {
		for i, ch := range []rune(line) {
			r, g, bl, _ := colors[i].RGBA255()
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm%c", r, g, bl, ch)
		}
		b.WriteString("\x1b[0m\n")
	}

	return b.String()
}
