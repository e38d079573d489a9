package backup

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// timestampLayout is the wall-clock form stored in snapshot metadata.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// backupIDPattern is the single authoritative grammar binding a logical
// backup id to its physical location:
// backup_{workflowId}_{fs-safe timestamp}_{8-hex nonce}.
// Workflow ids may themselves contain underscores, so the fixed-shape
// timestamp and nonce anchor the parse from the right.
var backupIDPattern = regexp.MustCompile(
	`^backup_(.+)_(\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z)_([0-9a-f]{8})$`)

// fsTimestamp converts a wall-clock time into its filesystem-safe form:
// colons and dots replaced by hyphens.
func fsTimestamp(t time.Time) string {
	formatted := t.UTC().Format(timestampLayout)
	formatted = strings.ReplaceAll(formatted, ":", "-")

	return strings.ReplaceAll(formatted, ".", "-")
}

// newNonce returns 8 hex characters of randomness. The nonce keeps two
// near-simultaneous snapshots of the same workflow from colliding on a
// filename.
func newNonce() (string, error) {
	buf := make([]byte, 4)

	_, err := rand.Read(buf)
	if err != nil {
		return "", fmt.Errorf("failed to generate backup nonce: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// MakeBackupID derives the backup id from its triple. The same triple derives
// the file name; the two never desynchronize because both come from here.
func MakeBackupID(workflowID, timestamp, nonce string) string {
	return fmt.Sprintf("backup_%s_%s_%s", workflowID, timestamp, nonce)
}

// ParseBackupID splits a backup id back into its triple. Ids that do not
// match the grammar are rejected outright, never guessed at.
func ParseBackupID(backupID string) (workflowID, timestamp, nonce string, err error) {
	match := backupIDPattern.FindStringSubmatch(backupID)
	if match == nil {
		return "", "", "", fmt.Errorf("%w: %q", ErrInvalidBackupID, backupID)
	}

	return match[1], match[2], match[3], nil
}

// snapshotFileName is the physical name for a snapshot: {timestamp}_{nonce}.json.
func snapshotFileName(timestamp, nonce string) string {
	return timestamp + "_" + nonce + ".json"
}
