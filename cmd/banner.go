package cmd

import (
	"fmt"
	"io"

	"github.com/jacklau/termmeter/internal/style"
)

const banner = `
 _____                                _
/__   \___ _ __ _ __ ___   /\/\   ___| |_ ___ _ __
  / /\/ _ \ '__| '_ ` + "`" + ` _ \ /    \ / _ \ __/ _ \ '__|
 / / |  __/ |  | | | | | / /\/\ \  __/ ||  __/ |
 \/   \___|_|  |_| |_| |_\/    \/\___|\__\___|_|
+-------------------------------------------------+
|                    TermMeter                    |
|                   ===========                   |
+-------------------------------------------------+
| A text-based progress meter for tracking the    |
| progress of tasks in the terminal.              |
+-------------------------------------------------+
`

// printBanner writes the bold green banner.
func printBanner(w io.Writer, s style.Styler) {
	fmt.Fprintln(w, s.Decorate([]style.Token{style.Bold, style.Green}, banner))
}
