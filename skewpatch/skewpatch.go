package skewpatch

import (
	"fmt"
	"path/filepath"
	"runtime/debug"

	"github.com/sokinpui/skewpatch/cli"
	"github.com/sokinpui/skewpatch/internal/fs"
	"github.com/sokinpui/skewpatch/internal/locate"
	"github.com/sokinpui/skewpatch/internal/log"
	"github.com/sokinpui/skewpatch/internal/patcher"
	"github.com/sokinpui/skewpatch/internal/rules"
	"github.com/sokinpui/skewpatch/model"
)

// ProgressUpdate is a callback function to report progress.
type ProgressUpdate func(current, total int)

// App orchestrates the entire application logic.
type App struct {
	cfg              *cli.Config
	rules            rules.Rules
	locator          *locate.Locator
	progressCallback ProgressUpdate
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// New creates a new App instance.
func New(cfg *cli.Config) (*App, error) {
	r := rules.Default()
	if cfg.RulesFile != "" {
		loaded, err := rules.Load(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		r = loaded
	}
	r.Exclude = append(append([]string{}, r.Exclude...), cfg.Exclude...)
	if err := r.Validate(); err != nil {
		return nil, err
	}

	return &App{
		cfg:     cfg,
		rules:   r,
		locator: locate.New(cfg.Python, cfg.Package),
	}, nil
}

// SetProgressCallback sets a function to be called for progress updates.
func (a *App) SetProgressCallback(cb ProgressUpdate) {
	a.progressCallback = cb
}

// Rules returns the rule set in effect.
func (a *App) Rules() rules.Rules {
	return a.rules
}

// Execute runs the patch or restore operation selected by the config.
func (a *App) Execute() (summary model.Summary, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	dir, err := a.resolveDir()
	if err != nil {
		return model.Summary{}, err
	}

	if a.cfg.Restore {
		return a.restore(dir)
	}
	return a.patch(dir)
}

// resolveDir returns the explicit directory or locates the package.
func (a *App) resolveDir() (string, error) {
	var dir string
	var err error
	if a.cfg.Dir != "" {
		dir, err = locate.ExplicitDir(a.cfg.Dir)
		if err != nil {
			return "", fmt.Errorf("invalid directory: %w", err)
		}
	} else {
		dir, err = a.locator.PackageDir()
		if err != nil {
			return "", fmt.Errorf("error locating %s: %w", a.locator.Package, err)
		}
	}

	// WalkDir does not descend into a symlinked root.
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	log.Debug("operating on %s", dir)
	return dir, nil
}

func (a *App) walker(dir string, exclude []string) (*fs.Walker, error) {
	return fs.NewWalker(dir, a.rules.Extension, a.rules.Suffix, exclude)
}

// patch rewrites matching lines under dir.
func (a *App) patch(dir string) (model.Summary, error) {
	w, err := a.walker(dir, a.rules.Exclude)
	if err != nil {
		return model.Summary{}, err
	}
	sources, err := w.Sources()
	if err != nil {
		return model.Summary{}, err
	}

	p := patcher.New(a.rules, dir, a.cfg.DryRun)
	summary := p.PatchAll(sources, a.progressFor(len(sources)))
	summary.Dir = dir

	switch {
	case len(summary.Patched) == 0:
		summary.Message = "No clock skew checks found to patch."
	case a.cfg.DryRun:
		summary.Message = fmt.Sprintf("Dry run: %d file(s) would be patched.", len(summary.Patched))
	default:
		summary.Message = fmt.Sprintf("Patched successfully in %d file(s).", len(summary.Patched))
	}
	return summary, nil
}

// restore puts every backup under dir back in place. Excludes only limit
// patching; a backup left behind would keep its original patched.
func (a *App) restore(dir string) (model.Summary, error) {
	w, err := a.walker(dir, nil)
	if err != nil {
		return model.Summary{}, err
	}
	backups, err := w.Backups()
	if err != nil {
		return model.Summary{}, err
	}
	if len(backups) == 0 {
		return model.Summary{
			Operation: model.OperationRestore,
			Dir:       dir,
			Message:   "No backup files found to restore.",
		}, nil
	}

	summary := patcher.RestoreAll(backups, a.rules.Suffix, a.progressFor(len(backups)))
	summary.Dir = dir
	summary.Message = fmt.Sprintf("Restored %d file(s).", len(summary.Restored))
	return summary, nil
}

func (a *App) progressFor(total int) func(int) {
	if a.progressCallback == nil {
		return nil
	}
	a.progressCallback(0, total)
	return func(current int) {
		a.progressCallback(current, total)
	}
}
