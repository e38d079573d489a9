package pathguard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSafePath_InsideRoot(t *testing.T) {
	root := t.TempDir()

	err := ValidateSafePath(filepath.Join(root, "wf-1", "snapshot.json"), root)
	assert.NoError(t, err)
}

func TestValidateSafePath_RootItself(t *testing.T) {
	root := t.TempDir()

	err := ValidateSafePath(root, root)
	assert.NoError(t, err)
}

func TestValidateSafePath_TraversalEscapes(t *testing.T) {
	root := t.TempDir()

	err := ValidateSafePath(filepath.Join(root, "..", "outside.json"), root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathOutsideRoot)
}

func TestValidateSafePath_TraversalInsideSegment(t *testing.T) {
	root := t.TempDir()

	// Dot-dot segments that still resolve under the root are fine.
	err := ValidateSafePath(filepath.Join(root, "a", "..", "b.json"), root)
	assert.NoError(t, err)
}

func TestValidateSafePath_AbsoluteOutside(t *testing.T) {
	root := t.TempDir()

	err := ValidateSafePath("/etc/passwd", root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathOutsideRoot)
}

func TestValidateSafePath_SymlinkTarget(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	target := filepath.Join(outside, "real.json")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0o600))

	link := filepath.Join(root, "link.json")
	require.NoError(t, os.Symlink(target, link))

	err := ValidateSafePath(link, root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathIsSymlink)
}

func TestValidateSafePath_SymlinkParent(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	link := filepath.Join(root, "dir")
	require.NoError(t, os.Symlink(outside, link))

	err := ValidateSafePath(filepath.Join(link, "snapshot.json"), root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathIsSymlink)
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "workflow-123", "workflow-123"},
		{"underscores kept", "my_workflow", "my_workflow"},
		{"slashes replaced", "a/b/c", "a_b_c"},
		{"traversal neutralized", "../../etc", "etc"},
		{"spaces replaced", "my workflow", "my_workflow"},
		{"unicode replaced", "wörk", "w_rk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeIdentifier(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeIdentifier_Empty(t *testing.T) {
	for _, input := range []string{"", "...", "///", "__"} {
		_, err := SanitizeIdentifier(input)
		assert.ErrorIs(t, err, ErrEmptyIdentifier, "input %q", input)
	}
}
