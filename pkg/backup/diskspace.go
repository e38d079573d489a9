package backup

import (
	"os/exec"
	"strconv"
	"strings"
)

// freeSpaceMargin is kept free on top of the estimated payload.
const freeSpaceMargin = 10 * 1024 * 1024

// freeSpace reports available bytes on the filesystem holding dir. ok is
// false when neither the statfs call nor the df fallback could answer;
// "unknown" never means "zero free" and never blocks a backup.
func freeSpace(dir string) (int64, bool) {
	if free, ok := statfsFreeSpace(dir); ok {
		return free, true
	}

	return dfFreeSpace(dir)
}

// dfFreeSpace is the shell fallback: `df -k` on the target directory.
func dfFreeSpace(dir string) (int64, bool) {
	out, err := exec.Command("df", "-k", dir).Output()
	if err != nil {
		return 0, false
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) < 2 {
		return 0, false
	}

	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 4 {
		return 0, false
	}

	availableKB, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return 0, false
	}

	return availableKB * 1024, true
}
