package patcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/skewpatch/internal/rules"
)

const interpreterSource = `def check_timestamps(self):
    if self.is_skewed():
        raise MesonException("Clock skew detected")
    return True
`

const patchedInterpreterSource = `def check_timestamps(self):
    if self.is_skewed():
        pass  # PATCHED: Skip clock skew check - raise MesonException("Clock skew detected")
    return True
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPatchLines(t *testing.T) {
	lines := strings.Split(interpreterSource, "\n")
	changes := PatchLines(lines, rules.Default())

	require.Len(t, changes, 1)
	assert.Equal(t, 3, changes[0].Line)
	assert.Equal(t, `        raise MesonException("Clock skew detected")`, changes[0].Before)
	assert.Equal(t, patchedInterpreterSource, strings.Join(lines, "\n"))

	again := PatchLines(lines, rules.Default())
	assert.Empty(t, again)
}

func TestPatchFile(t *testing.T) {
	t.Run("patches and backs up", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "interpreter.py")
		writeFile(t, path, interpreterSource)

		res, err := New(rules.Default(), dir, false).PatchFile(path)
		require.NoError(t, err)

		assert.True(t, res.Matched)
		assert.True(t, res.Record.Modified)
		assert.Equal(t, path+".backup", res.Backup)
		assert.Equal(t, patchedInterpreterSource, readFile(t, path))
		assert.Equal(t, interpreterSource, readFile(t, path+".backup"))
	})

	t.Run("leaves files without the target alone", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "build.py")
		writeFile(t, path, "raise MesonException('other')\n")

		res, err := New(rules.Default(), dir, false).PatchFile(path)
		require.NoError(t, err)

		assert.False(t, res.Matched)
		assert.False(t, res.Record.Modified)
		assert.NoFileExists(t, path+".backup")
	})

	t.Run("backs up a file that only mentions the target", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mlog.py")
		writeFile(t, path, "warning('Clock skew detected')\n")

		res, err := New(rules.Default(), dir, false).PatchFile(path)
		require.NoError(t, err)

		assert.True(t, res.Matched)
		assert.False(t, res.Record.Modified)
		assert.FileExists(t, path+".backup")
		assert.Equal(t, "warning('Clock skew detected')\n", readFile(t, path))
	})

	t.Run("keeps an existing backup", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "interpreter.py")
		writeFile(t, path, interpreterSource)
		writeFile(t, path+".backup", "older original")

		res, err := New(rules.Default(), dir, false).PatchFile(path)
		require.NoError(t, err)

		assert.Empty(t, res.Backup)
		assert.Equal(t, "older original", readFile(t, path+".backup"))
		assert.Equal(t, patchedInterpreterSource, readFile(t, path))
	})

	t.Run("keeps the file mode", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "msetup.py")
		writeFile(t, path, interpreterSource)
		require.NoError(t, os.Chmod(path, 0755))

		_, err := New(rules.Default(), dir, false).PatchFile(path)
		require.NoError(t, err)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "interpreter.py")
		writeFile(t, path, interpreterSource)

		res, err := New(rules.Default(), dir, true).PatchFile(path)
		require.NoError(t, err)

		assert.True(t, res.Record.Modified)
		assert.Empty(t, res.Backup)
		assert.NoFileExists(t, path+".backup")
		assert.Equal(t, interpreterSource, readFile(t, path))
		assert.Contains(t, res.Diff, "--- a/interpreter.py")
		assert.Contains(t, res.Diff, "+++ b/interpreter.py")
		assert.Contains(t, res.Diff, `-        raise MesonException("Clock skew detected")`)
		assert.Contains(t, res.Diff, `+        pass  # PATCHED: Skip clock skew check`)
	})

	t.Run("missing file", func(t *testing.T) {
		dir := t.TempDir()
		_, err := New(rules.Default(), dir, false).PatchFile(filepath.Join(dir, "gone.py"))
		assert.Error(t, err)
	})
}

func TestPatchAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.py")
	b := filepath.Join(dir, "b.py")
	gone := filepath.Join(dir, "gone.py")
	writeFile(t, a, "print('hello')\n")
	writeFile(t, b, interpreterSource)

	var progress []int
	summary := New(rules.Default(), dir, false).PatchAll([]string{a, gone, b}, func(n int) {
		progress = append(progress, n)
	})

	assert.Equal(t, []int{1, 2, 3}, progress)
	assert.Equal(t, []string{b}, summary.Patched)
	assert.Equal(t, []string{b + ".backup"}, summary.Backups)
	require.Len(t, summary.Failed, 1)
	assert.Contains(t, summary.Failed, gone)

	second := New(rules.Default(), dir, false).PatchAll([]string{a, b}, nil)
	assert.Empty(t, second.Patched)
	assert.Empty(t, second.Backups)
	assert.Empty(t, second.Failed)
}
