//go:build !windows

package config

func virtualTerminal() bool {
	return true
}
