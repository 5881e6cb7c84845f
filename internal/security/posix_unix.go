//go:build unix

package security

import (
	"fmt"
	"os"
	"syscall"
)

func posixDescriptor(path string, info SecurityInformation) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("get file security %s: %w", path, err)
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("get file security %s: %w", path, ErrNotSupported)
	}
	return FromMode(fi.Mode(), st.Uid, st.Gid).Select(info).Bytes(), nil
}
