//go:build !windows

package perms

import "io/fs"

// FromFileInfo returns the POSIX mode of fi.
func FromFileInfo(fi fs.FileInfo, path string) Perms {
	return Unix(fi.Mode())
}
