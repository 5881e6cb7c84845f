//go:build linux

package security

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/pkg/xattr"
)

// Extended attributes the Linux CIFS client exposes descriptors through.
const (
	CIFS_XATTR_CIFS_ACL       = "system.cifs_acl"
	CIFS_XATTR_CIFS_NTSD      = "system.cifs_ntsd"
	CIFS_XATTR_CIFS_NTSD_FULL = "system.cifs_ntsd_full"
)

// queryFile reads the descriptor from CIFS extended attributes and falls
// back to the POSIX owner and mode on other file systems.
func queryFile(path string, info SecurityInformation) ([]byte, error) {
	key := CIFS_XATTR_CIFS_NTSD
	switch {
	case info&SACL_SECURITY_INFORMATION != 0:
		key = CIFS_XATTR_CIFS_NTSD_FULL
	case info == DACL_SECURITY_INFORMATION:
		key = CIFS_XATTR_CIFS_ACL
	}

	raw, err := xattr.Get(path, key)
	if err == nil {
		// The CIFS client returns owner, group and DACL together.
		sel, err := SelectRaw(raw, info)
		if err != nil {
			return nil, fmt.Errorf("get file security %s: %w", path, err)
		}
		return sel, nil
	}
	if errors.Is(err, xattr.ENOATTR) || errors.Is(err, syscall.ENOTSUP) || errors.Is(err, syscall.EOPNOTSUPP) {
		return posixDescriptor(path, info)
	}
	return nil, fmt.Errorf("get file security %s: %w", path, err)
}
