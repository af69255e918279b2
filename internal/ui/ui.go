package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/sokinpui/skewpatch/internal/fs"
	"github.com/sokinpui/skewpatch/model"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
	DiffAddColor = color.New(color.FgGreen)
	DiffDelColor = color.New(color.FgRed)
)

// Stdout receives the list of affected files, everything else goes to stderr.
var Stdout io.Writer = os.Stdout

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(os.Stderr, "  "+format+"\n", a...)
}

// --- Summaries ---

// PrintSummary reports the outcome of a patch or restore run.
func PrintSummary(s model.Summary) {
	if s.Operation == model.OperationRestore {
		PrintRestoreSummary(s)
		return
	}
	PrintPatchSummary(s)
}

func PrintPatchSummary(s model.Summary) {
	Header("\n--- Patch Summary ---")
	if s.Dir != "" {
		Info("Directory: %s", s.Dir)
	}

	if s.DryRun {
		for _, path := range sortedKeys(s.Diffs) {
			PrintDiff(s.Diffs[path])
		}
	}

	if len(s.Backups) > 0 {
		Info("Backed up %d file(s):", len(s.Backups))
		for _, f := range fs.Relativize(s.Dir, s.Backups) {
			Path("- %s", f)
		}
	}

	if len(s.Patched) > 0 {
		Success("%s", s.Message)
		printPaths(s.Patched)
	} else {
		Warning("%s", s.Message)
	}

	printFailures("patch", s.Failed)
}

func PrintRestoreSummary(s model.Summary) {
	Header("\n--- Restore Summary ---")
	if s.Dir != "" {
		Info("Directory: %s", s.Dir)
	}

	if len(s.Restored) > 0 {
		Success("%s", s.Message)
		printPaths(s.Restored)
	} else {
		Info("%s", s.Message)
	}

	printFailures("restore", s.Failed)
}

// printPaths lists affected files on stdout so they can be piped.
func printPaths(paths []string) {
	for _, f := range paths {
		fmt.Fprintf(Stdout, "  - %s\n", f)
	}
}

func printFailures(verb string, failed map[string]string) {
	if len(failed) == 0 {
		return
	}
	Error("Failed to %s %d file(s):", verb, len(failed))
	for _, path := range sortedKeys(failed) {
		Error("  - %s: %s", path, failed[path])
	}
}

// PrintDiff writes a unified diff to stdout with added and removed lines
// colored.
func PrintDiff(diff string) {
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			HeaderColor.Fprintln(Stdout, line)
		case strings.HasPrefix(line, "+"):
			DiffAddColor.Fprintln(Stdout, line)
		case strings.HasPrefix(line, "-"):
			DiffDelColor.Fprintln(Stdout, line)
		default:
			fmt.Fprintln(Stdout, line)
		}
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
