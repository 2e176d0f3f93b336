package colors

import (
	"fmt"
	"sync/atomic"
)

// enabled indicates whether Colorize emits ANSI escape codes.
var enabled atomic.Bool

// init enables coloring if the platform's stdout supports ANSI escape codes.
func init() {
	EnableColor()
}

// DisableColor turns off ANSI coloring for every subsequent call to Colorize. This is used when the user asks for
// plain output or when stdout is not a terminal.
func DisableColor() {
	enabled.Store(false)
}

// Enabled indicates whether ANSI coloring is currently enabled.
func Enabled() bool {
	return enabled.Load()
}

// Colorize returns the string form of s wrapped in ANSI code c. If coloring is disabled, the plain string is returned.
func Colorize(s any, c Color) string {
	if !enabled.Load() {
		return fmt.Sprintf("%v", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
