//go:build windows

package config

import (
	"os"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

// colorConsole switches console into VT processing mode, available since
// Windows 10, and reports whether colors can be used.
func colorConsole(stream *os.File) bool {
	if !term.IsTerminal(int(stream.Fd())) {
		return false
	}
	if windows.RtlGetVersion().MajorVersion < 10 {
		return false
	}

	h := windows.Handle(stream.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
