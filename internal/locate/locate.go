package locate

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sokinpui/skewpatch/internal/log"
)

const (
	DefaultInterpreter = "python3"
	DefaultPackage     = "mesonbuild"
)

// ErrNotInstalled is returned when the interpreter cannot import the package.
var ErrNotInstalled = errors.New("package not installed")

// packageNameRegex accepts dotted Python identifiers only, since the name is
// spliced into the interpreter's -c script.
var packageNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Locator resolves the install directory of a package through an interpreter.
type Locator struct {
	Interpreter string
	Package     string
}

// New creates a Locator, falling back to python3 and mesonbuild.
func New(interpreter, pkg string) *Locator {
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	if pkg == "" {
		pkg = DefaultPackage
	}
	return &Locator{Interpreter: interpreter, Package: pkg}
}

// Script returns the program passed to the interpreter's -c flag.
func (l *Locator) Script() string {
	return fmt.Sprintf("import %s; print(%s.__file__)", l.Package, l.Package)
}

// PackageDir runs the interpreter and returns the directory holding the
// package's module file.
func (l *Locator) PackageDir() (string, error) {
	if !packageNameRegex.MatchString(l.Package) {
		return "", fmt.Errorf("invalid package name %q", l.Package)
	}

	cmd := exec.Command(l.Interpreter, "-c", l.Script())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("locating %s with %s", l.Package, l.Interpreter)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s: %s", ErrNotInstalled, l.Package, lastLine(stderr.String()))
		}
		return "", fmt.Errorf("failed to run %s: %w", l.Interpreter, err)
	}

	moduleFile := strings.TrimSpace(stdout.String())
	if moduleFile == "" || moduleFile == "None" {
		// Namespace packages have no __file__.
		return "", fmt.Errorf("%w: %s has no module file", ErrNotInstalled, l.Package)
	}
	return filepath.Dir(moduleFile), nil
}

// ExplicitDir validates a user supplied directory instead of locating one.
func ExplicitDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("could not resolve %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat %q: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%q is not a directory", abs)
	}
	return abs, nil
}

// lastLine picks the final non-empty line of a traceback.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "exited with non-zero status"
}
