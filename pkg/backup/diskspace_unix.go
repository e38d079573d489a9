//go:build unix

package backup

import "golang.org/x/sys/unix"

// statfsFreeSpace asks the kernel for available bytes on dir's filesystem.
func statfsFreeSpace(dir string) (int64, bool) {
	var stat unix.Statfs_t

	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, false
	}

	return int64(stat.Bavail) * int64(stat.Bsize), true
}
