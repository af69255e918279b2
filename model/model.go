package model

// LineChange records one rewritten line. Line is 1-based.
type LineChange struct {
	Line   int
	Before string
	After  string
}

// FileRecord is a file's text split into lines, with the changes made to it.
type FileRecord struct {
	Path     string
	Lines    []string
	Modified bool
	Changes  []LineChange
}

// Operation names what a run did.
type Operation string

const (
	OperationPatch   Operation = "patch"
	OperationRestore Operation = "restore"
)

// Summary holds the results of an operation for display.
type Summary struct {
	Operation Operation
	Dir       string
	DryRun    bool
	// Patched lists files rewritten (or, in a dry run, that would be).
	Patched []string
	// Backups lists backup files created during this run.
	Backups  []string
	Restored []string
	// Failed maps a path to the error text that stopped its processing.
	Failed  map[string]string
	Message string
	// Diffs holds unified diffs keyed by path, filled only in a dry run.
	Diffs map[string]string
}

// AddFailure records a per-file failure.
func (s *Summary) AddFailure(path string, err error) {
	if s.Failed == nil {
		s.Failed = make(map[string]string)
	}
	s.Failed[path] = err.Error()
}

// Affected returns the paths the operation changed.
func (s *Summary) Affected() []string {
	if s.Operation == OperationRestore {
		return s.Restored
	}
	return s.Patched
}

// OK reports whether the operation changed at least one file and nothing
// failed.
func (s *Summary) OK() bool {
	return len(s.Affected()) > 0 && len(s.Failed) == 0
}
