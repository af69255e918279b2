package skewpatch_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/skewpatch/skewpatch"
)

func TestLibraryInterface(t *testing.T) {
	dir := packageTree(t)
	b := filepath.Join(dir, "b.py")

	t.Run("dry run", func(t *testing.T) {
		summary, err := skewpatch.Patch(skewpatch.Config{Dir: dir, DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, []string{b}, summary.Patched)
		assert.NoFileExists(t, b+".backup")
	})

	t.Run("patch", func(t *testing.T) {
		summary, err := skewpatch.Patch(skewpatch.Config{Dir: dir})
		require.NoError(t, err)
		assert.Equal(t, []string{b}, summary.Patched)
		assert.Equal(t, []string{b + ".backup"}, summary.Backups)
	})

	t.Run("restore ignores dry run", func(t *testing.T) {
		summary, err := skewpatch.Restore(skewpatch.Config{Dir: dir, DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, []string{b}, summary.Restored)
		assert.Equal(t, bContent, readFile(t, b))
	})
}

func TestLibraryInterfaceLocatesPackage(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script interpreter is not supported on windows")
	}
	dir := packageTree(t)
	python := filepath.Join(t.TempDir(), "python3")
	script := "#!/bin/sh\necho \"" + filepath.Join(dir, "__init__.py") + "\"\n"
	require.NoError(t, os.WriteFile(python, []byte(script), 0755))

	summary, err := skewpatch.Patch(skewpatch.Config{Python: python})
	require.NoError(t, err)
	assert.Equal(t, dir, summary.Dir)
	assert.Equal(t, []string{filepath.Join(dir, "b.py")}, summary.Patched)

	summary, err = skewpatch.Restore(skewpatch.Config{Python: python})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.py")}, summary.Restored)
}
