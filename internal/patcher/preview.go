package patcher

import (
	"github.com/pmezard/go-difflib/difflib"
)

const previewContext = 3

// UnifiedDiff renders the change from before to after as a unified diff
// with a/ and b/ prefixed headers.
func UnifiedDiff(path, before, after string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  previewContext,
	}
	return difflib.GetUnifiedDiffString(diff)
}
