package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("defaults to patch", func(t *testing.T) {
		cfg, err := parse(nil, &bytes.Buffer{})
		require.NoError(t, err)
		assert.False(t, cfg.Restore)
		assert.Equal(t, "mesonbuild", cfg.Package)
		assert.Equal(t, "python3", cfg.Python)
		assert.Empty(t, cfg.Exclude)
	})

	t.Run("restore argument", func(t *testing.T) {
		cfg, err := parse([]string{"restore"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.True(t, cfg.Restore)
	})

	t.Run("flags", func(t *testing.T) {
		cfg, err := parse([]string{"-d", "/opt/meson", "-x", "**/tests/**", "-x", "unittests", "--dry-run", "--strict"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "/opt/meson", cfg.Dir)
		assert.Equal(t, []string{"**/tests/**", "unittests"}, cfg.Exclude)
		assert.True(t, cfg.DryRun)
		assert.True(t, cfg.Strict)
	})

	t.Run("unknown argument", func(t *testing.T) {
		_, err := parse([]string{"undo"}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("too many arguments", func(t *testing.T) {
		_, err := parse([]string{"restore", "restore"}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("dry run with restore", func(t *testing.T) {
		_, err := parse([]string{"--dry-run", "restore"}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("help", func(t *testing.T) {
		out := &bytes.Buffer{}
		_, err := parse([]string{"--help"}, out)
		assert.True(t, errors.Is(err, pflag.ErrHelp))
		assert.Contains(t, out.String(), "Usage: skewpatch")
	})
}
