//go:build unix

package dirsize

import (
	"golang.org/x/sys/unix"
)

// lstatMeta reads the logical size and block allocation of path without
// following symlinks.
func lstatMeta(path string) (FileMeta, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return FileMeta{}, err
	}

	//nolint:unconvert // field widths differ between platforms
	return FileMeta{Size: int64(st.Size), Blocks: int64(st.Blocks)}, nil
}
