//go:build windows

package config

import (
	"golang.org/x/sys/windows"
)

// virtualTerminal reports whether stdout accepts ANSI escape sequences,
// turning virtual terminal processing on when the console supports it.
func virtualTerminal() bool {
	handle, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil {
		return false
	}

	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return false
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return true
	}
	return windows.SetConsoleMode(handle, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
