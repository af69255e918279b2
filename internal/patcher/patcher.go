package patcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sokinpui/skewpatch/internal/fs"
	"github.com/sokinpui/skewpatch/internal/log"
	"github.com/sokinpui/skewpatch/internal/rules"
	"github.com/sokinpui/skewpatch/model"
)

// Result is the outcome of patching one file.
type Result struct {
	Record model.FileRecord
	// Matched is true when the file contains the rule target.
	Matched bool
	// Backup is the path of a backup created by this call, if any.
	Backup string
	// Diff is set in dry-run mode for files that would change.
	Diff string
}

// Patcher rewrites matching lines in place.
type Patcher struct {
	rules  rules.Rules
	root   string
	dryRun bool
}

// New creates a Patcher for files under root. In dry-run mode no file is
// written and no backup is created.
func New(r rules.Rules, root string, dryRun bool) *Patcher {
	return &Patcher{rules: r, root: root, dryRun: dryRun}
}

// PatchLines replaces every matching line in place and returns the changes.
// Lines carrying the sentinel are left alone.
func PatchLines(lines []string, r rules.Rules) []model.LineChange {
	var changes []model.LineChange
	for i, line := range lines {
		if !r.Matches(line) {
			continue
		}
		patched := r.Replacement(line)
		lines[i] = patched
		changes = append(changes, model.LineChange{
			Line:   i + 1,
			Before: line,
			After:  patched,
		})
	}
	return changes
}

// PatchFile processes a single file: back it up when it contains the target,
// rewrite matching lines, and write it back if anything changed.
func (p *Patcher) PatchFile(path string) (Result, error) {
	logger := log.With("file", path)
	res := Result{Record: model.FileRecord{Path: path}}

	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("failed to read: %w", err)
	}
	content := string(data)
	if !strings.Contains(content, p.rules.Target) {
		return res, nil
	}
	res.Matched = true
	logger.Debugf("found %q", p.rules.Target)

	if !p.dryRun {
		backup := fs.BackupPath(path, p.rules.Suffix)
		exists, err := fs.Exists(backup)
		if err != nil {
			return res, fmt.Errorf("failed to check backup: %w", err)
		}
		if !exists {
			if err := fs.CopyVerified(path, backup); err != nil {
				return res, fmt.Errorf("failed to back up to %s: %w", backup, err)
			}
			res.Backup = backup
			logger.Debugf("backed up to %s", backup)
		}
	}

	lines := strings.Split(content, "\n")
	changes := PatchLines(lines, p.rules)
	res.Record.Lines = lines
	res.Record.Changes = changes
	if len(changes) == 0 {
		return res, nil
	}
	for _, c := range changes {
		logger.Debugf("line %d: %s", c.Line, strings.TrimSpace(c.After))
	}

	patched := strings.Join(lines, "\n")
	if p.dryRun {
		name := fs.Relativize(p.root, []string{path})[0]
		diff, err := UnifiedDiff(filepath.ToSlash(name), content, patched)
		if err != nil {
			return res, fmt.Errorf("failed to build diff: %w", err)
		}
		res.Record.Modified = true
		res.Diff = diff
		return res, nil
	}

	if err := fs.WriteFilePreservingMode(path, []byte(patched)); err != nil {
		return res, fmt.Errorf("failed to write: %w", err)
	}
	res.Record.Modified = true
	return res, nil
}

// PatchAll patches every path in order. A failure on one file is recorded
// and the remaining files are still processed.
func (p *Patcher) PatchAll(paths []string, progressCb func(int)) model.Summary {
	summary := model.Summary{Operation: model.OperationPatch, DryRun: p.dryRun}

	processSequentially(paths, func(path string) (string, bool) {
		res, err := p.PatchFile(path)
		if res.Backup != "" {
			summary.Backups = append(summary.Backups, res.Backup)
		}
		if err != nil {
			log.Error("error processing %s: %v", path, err)
			summary.AddFailure(path, err)
			return path, false
		}
		if res.Record.Modified {
			summary.Patched = append(summary.Patched, path)
			if res.Diff != "" {
				if summary.Diffs == nil {
					summary.Diffs = make(map[string]string)
				}
				summary.Diffs[path] = res.Diff
			}
		}
		return path, true
	}, progressCb)

	return summary
}

// processSequentially runs processFn over items one at a time, reporting the
// number of processed items after each.
func processSequentially[T any](
	items []T,
	processFn func(item T) (path string, success bool),
	progressCb func(int),
) (succeeded, failed []string) {
	if len(items) == 0 {
		return nil, nil
	}

	for i, item := range items {
		path, success := processFn(item)
		if success {
			succeeded = append(succeeded, path)
		} else {
			failed = append(failed, path)
		}
		if progressCb != nil {
			progressCb(i + 1)
		}
	}

	return succeeded, failed
}
