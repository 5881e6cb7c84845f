//go:build windows

package security

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	advapi32             = windows.NewLazySystemDLL("advapi32.dll")
	procGetFileSecurityW = advapi32.NewProc("GetFileSecurityW")
)

func getFileSecurity(path *uint16, info SecurityInformation, buf []byte, needed *uint32) error {
	var p uintptr
	if len(buf) > 0 {
		p = uintptr(unsafe.Pointer(&buf[0]))
	}
	r1, _, e1 := procGetFileSecurityW.Call(
		uintptr(unsafe.Pointer(path)),
		uintptr(info),
		p,
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(needed)),
	)
	if r1 == 0 {
		return e1
	}
	return nil
}

// queryFile asks for the needed length with an empty buffer, allocates it
// and asks again. Anything but ERROR_INSUFFICIENT_BUFFER on the first call
// is a failure, as is any failure of the second.
func queryFile(path string, info SecurityInformation) ([]byte, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, fmt.Errorf("get file security %s: %w", path, err)
	}

	var needed uint32
	err = getFileSecurity(p, info, nil, &needed)
	if err == nil || !errors.Is(err, windows.ERROR_INSUFFICIENT_BUFFER) {
		if err == nil {
			err = ErrNotSupported
		}
		return nil, fmt.Errorf("get file security %s: %w", path, err)
	}

	buf := make([]byte, needed)
	if err := getFileSecurity(p, info, buf, &needed); err != nil {
		return nil, fmt.Errorf("get file security %s: %w", path, err)
	}
	return buf, nil
}
