package skewpatch

import (
	"fmt"

	"github.com/sokinpui/skewpatch/cli"
	"github.com/sokinpui/skewpatch/model"
)

// Config for using skewpatch as a library.
type Config struct {
	// Directory to operate on. When empty the package is located with Python.
	Dir string
	// Package and interpreter used when Dir is empty.
	Package string
	Python  string
	// TOML rules file overriding the default patterns.
	RulesFile string
	// Globs of paths to skip, relative to the directory.
	Exclude []string
	// Compute diffs without touching any file.
	DryRun bool
}

func (c Config) toCLI(restore bool) *cli.Config {
	return &cli.Config{
		Dir:       c.Dir,
		Package:   c.Package,
		Python:    c.Python,
		RulesFile: c.RulesFile,
		Exclude:   c.Exclude,
		DryRun:    c.DryRun && !restore,
		Restore:   restore,
	}
}

// Patch disables the clock skew check under the configured directory.
func Patch(config Config) (model.Summary, error) {
	return run(config.toCLI(false))
}

// Restore puts back every file saved by a previous Patch.
func Restore(config Config) (model.Summary, error) {
	return run(config.toCLI(true))
}

func run(cfg *cli.Config) (model.Summary, error) {
	app, err := New(cfg)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to initialize skewpatch: %w", err)
	}
	return app.Execute()
}
