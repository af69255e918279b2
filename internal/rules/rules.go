package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultTarget    = "Clock skew detected"
	DefaultKeyword   = "raise"
	DefaultSentinel  = "PATCHED: Skip clock skew check"
	DefaultExtension = ".py"
	DefaultSuffix    = ".backup"
)

// ErrInvalid is returned when a rule set cannot be used.
var ErrInvalid = errors.New("invalid rules")

// Pair is a pair of substrings that must both appear on a line.
type Pair struct {
	Keyword string `toml:"keyword"`
	Target  string `toml:"target"`
}

// Matches reports whether line contains both halves of the pair.
func (p Pair) Matches(line string) bool {
	if p.Keyword == "" || p.Target == "" {
		return false
	}
	return strings.Contains(line, p.Target) && strings.Contains(line, p.Keyword)
}

// Rules describes what to look for and how to mark a patched line.
type Rules struct {
	// Target gates a file: files without it are never touched.
	Target    string   `toml:"target"`
	Keyword   string   `toml:"keyword"`
	Sentinel  string   `toml:"sentinel"`
	Extension string   `toml:"extension"`
	Suffix    string   `toml:"suffix"`
	Exclude   []string `toml:"exclude"`
	Alternate Pair     `toml:"alternate"`
}

// Default returns the clock skew rule set for mesonbuild.
func Default() Rules {
	return Rules{
		Target:    DefaultTarget,
		Keyword:   DefaultKeyword,
		Sentinel:  DefaultSentinel,
		Extension: DefaultExtension,
		Suffix:    DefaultSuffix,
		Alternate: Pair{
			Keyword: "raise MesonException",
			Target:  "Clock skew",
		},
	}
}

// Load reads a TOML rules file on top of the defaults.
func Load(path string) (Rules, error) {
	r := Default()
	meta, err := toml.DecodeFile(path, &r)
	if err != nil {
		return Rules{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Rules{}, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalid, strings.Join(keys, ", "))
	}
	if err := r.Validate(); err != nil {
		return Rules{}, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Validate checks that the rule set can match and mark lines.
func (r *Rules) Validate() error {
	switch {
	case r.Target == "":
		return fmt.Errorf("%w: target is empty", ErrInvalid)
	case r.Keyword == "":
		return fmt.Errorf("%w: keyword is empty", ErrInvalid)
	case r.Sentinel == "":
		return fmt.Errorf("%w: sentinel is empty", ErrInvalid)
	case r.Suffix == "":
		return fmt.Errorf("%w: backup suffix is empty", ErrInvalid)
	case strings.Contains(r.Sentinel, "\n"):
		return fmt.Errorf("%w: sentinel spans lines", ErrInvalid)
	}
	if r.Extension != "" && r.Extension[0] != '.' {
		r.Extension = "." + r.Extension
	}
	if r.Extension == r.Suffix {
		return fmt.Errorf("%w: extension and backup suffix are both %q", ErrInvalid, r.Suffix)
	}
	return nil
}

// Matches reports whether line should be replaced.
func (r Rules) Matches(line string) bool {
	if strings.Contains(line, r.Sentinel) {
		return false
	}
	primary := Pair{Keyword: r.Keyword, Target: r.Target}
	return primary.Matches(line) || r.Alternate.Matches(line)
}

// Replacement builds the no-op line that stands in for line. Leading
// whitespace and a trailing carriage return are kept as they were.
func (r Rules) Replacement(line string) string {
	eol := ""
	if strings.HasSuffix(line, "\r") {
		eol = "\r"
	}
	trimmed := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(trimmed)]
	return fmt.Sprintf("%spass  # %s - %s%s", indent, r.Sentinel, strings.TrimSpace(line), eol)
}
