//go:build linux

package proctitle

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Set renames the current thread group via PR_SET_NAME so the server shows up
// as title in ps and top. The kernel keeps at most 15 bytes.
func Set(title string) error {
	title, err := normalize(title)
	if err != nil {
		return err
	}
	if len(os.Args) > 0 {
		os.Args[0] = title
	}
	name := make([]byte, kernelNameMax+1)
	copy(name, title)
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&name[0])), 0, 0, 0)
}
