//go:build !unix

package backup

// statfsFreeSpace has no portable implementation here; the df fallback (or
// the silent skip) takes over.
func statfsFreeSpace(_ string) (int64, bool) {
	return 0, false
}
