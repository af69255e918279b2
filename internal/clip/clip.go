package clip

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// Writer puts text on the system clipboard.
type Writer interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// System is the clipboard of the running desktop session.
var System Writer = systemClipboard{}

// CopyPaths writes one path per line to w. Nothing is written for an empty
// list.
func CopyPaths(w Writer, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if clipboard.Unsupported && w == System {
		return fmt.Errorf("no clipboard utility available")
	}
	if err := w.WriteAll(strings.Join(paths, "\n")); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return nil
}
