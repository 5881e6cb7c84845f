//go:build !windows

package entry

import (
	"io/fs"
	"time"
)

// Birth time is not exposed through syscall.Stat_t on every Unix, so it is
// left unset.
func createdTime(fs.FileInfo) time.Time {
	return time.Time{}
}
