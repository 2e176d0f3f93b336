//go:build !windows

package colors

// EnableColor turns on ANSI coloring. Non-windows terminals support ANSI escape codes natively.
func EnableColor() {
	enabled.Store(true)
}
