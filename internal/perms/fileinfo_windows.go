//go:build windows

package perms

import (
	"io/fs"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procGetBinaryType = kernel32.NewProc("GetBinaryTypeW")
)

// FromFileInfo reads the Windows attributes of fi. File systems that do
// not carry them fall back to the POSIX mode.
func FromFileInfo(fi fs.FileInfo, path string) Perms {
	data, ok := fi.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return Unix(fi.Mode())
	}
	exe := !fi.IsDir() && (isBinary(path) || ExecutableName(fi.Name()))
	return Windows(data.FileAttributes, exe)
}

func isBinary(path string) bool {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	var kind uint32
	r1, _, _ := procGetBinaryType.Call(uintptr(unsafe.Pointer(p)), uintptr(unsafe.Pointer(&kind)))
	return r1 != 0
}
