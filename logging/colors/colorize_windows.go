//go:build windows

package colors

import (
	"os"

	"golang.org/x/sys/windows"
)

// EnableColor turns on ANSI coloring if the Windows console attached to stdout has virtual terminal processing
// enabled.
func EnableColor() {
	var mode uint32
	handle := windows.Handle(os.Stdout.Fd())
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		enabled.Store(false)
		return
	}
	enabled.Store(mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0)
}
