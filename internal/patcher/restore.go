package patcher

import (
	"errors"
	"fmt"
	"os"

	"github.com/sokinpui/skewpatch/internal/fs"
	"github.com/sokinpui/skewpatch/internal/log"
	"github.com/sokinpui/skewpatch/model"
)

// ErrOriginalMissing is returned for a backup whose original file is gone.
var ErrOriginalMissing = errors.New("original file missing")

// RestoreFile copies a backup over its original and removes the backup.
// It returns the original path.
func RestoreFile(backup, suffix string) (string, error) {
	original, ok := fs.OriginalPath(backup, suffix)
	if !ok {
		return "", fmt.Errorf("%s is not a backup file", backup)
	}

	exists, err := fs.Exists(original)
	if err != nil {
		return original, fmt.Errorf("failed to stat original: %w", err)
	}
	if !exists {
		return original, ErrOriginalMissing
	}

	if err := fs.CopyVerified(backup, original); err != nil {
		return original, fmt.Errorf("failed to copy backup: %w", err)
	}
	if err := os.Remove(backup); err != nil {
		return original, fmt.Errorf("restored but failed to remove backup: %w", err)
	}
	log.Debug("restored %s", original)
	return original, nil
}

// RestoreAll restores every backup in order. Failures are recorded against
// the original path and the remaining backups are still processed.
func RestoreAll(backups []string, suffix string, progressCb func(int)) model.Summary {
	summary := model.Summary{Operation: model.OperationRestore}

	restored, _ := processSequentially(backups, func(backup string) (string, bool) {
		original, err := RestoreFile(backup, suffix)
		if err != nil {
			log.Error("error restoring %s: %v", backup, err)
			if original == "" {
				original = backup
			}
			summary.AddFailure(original, err)
			return original, false
		}
		return original, true
	}, progressCb)

	summary.Restored = restored
	return summary
}
