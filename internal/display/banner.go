// Package display formats sizes, names and the startup banner for console
// output.
package display

import (
	"fmt"
	"io"

	"github.com/backmassage/normdedup/internal/term"
)

const banner = `                                 _          _
 _ __   ___  _ __ _ __ ___   __| | ___  __| |_   _ _ __
| '_ \ / _ \| '__| '_ ` + "`" + ` _ \ / _` + "`" + ` |/ _ \/ _` + "`" + ` | | | | '_ \
| | | | (_) | |  | | | | | | (_| |  __/ (_| | |_| | |_) |
|_| |_|\___/|_|  |_| |_| |_|\__,_|\___|\__,_|\__,_| .__/
                                                  |_|
`

// PrintBanner writes the ASCII art banner, in magenta when colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta.Sprint(banner))
}
