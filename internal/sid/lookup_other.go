//go:build !windows

package sid

func platformLookup() Lookup {
	return nil
}
