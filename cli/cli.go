package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

// RestoreArg is the positional argument that selects the restore operation.
const RestoreArg = "restore"

// Config holds all the command-line flag values.
type Config struct {
	Dir         string
	Package     string
	Python      string
	RulesFile   string
	Exclude     []string
	DryRun      bool
	Copy        bool
	NoAnimation bool
	Verbose     bool
	Strict      bool
	Restore     bool
}

// ParseFlags defines and parses command-line flags using pflag. Usage and
// errors are printed to stderr.
func ParseFlags(args []string) (*Config, error) {
	return parse(args, os.Stderr)
}

func parse(args []string, usageOut io.Writer) (*Config, error) {
	cfg := &Config{}
	flags := pflag.NewFlagSet("skewpatch", pflag.ContinueOnError)
	flags.SetOutput(usageOut)

	// Define flags
	flags.StringVarP(&cfg.Dir, "dir", "d", "", "Directory to patch or restore (skips locating the package).")
	flags.StringVarP(&cfg.Package, "package", "p", "mesonbuild", "Python package to locate.")
	flags.StringVar(&cfg.Python, "python", "python3", "Interpreter used to locate the package.")
	flags.StringVar(&cfg.RulesFile, "rules", "", "TOML file overriding the default patch rules.")
	flags.StringSliceVarP(&cfg.Exclude, "exclude", "x", []string{}, "Glob of paths to skip, relative to the package directory (e.g., '**/test_*.py').")
	flags.BoolVarP(&cfg.DryRun, "dry-run", "n", false, "Print the diff that would be applied without changing anything.")
	flags.BoolVarP(&cfg.Copy, "copy", "c", false, "Copy the list of affected files to the clipboard.")
	flags.BoolVar(&cfg.NoAnimation, "no-animation", false, "Disable the loading spinner.")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable debug logging.")
	flags.BoolVar(&cfg.Strict, "strict", false, "Exit with status 1 when anything fails or nothing was changed.")

	flags.Usage = func() {
		fmt.Fprintln(usageOut, "Usage: skewpatch [flags] [restore]")
		fmt.Fprintln(usageOut, "\nDisable the clock skew check of an installed meson, or restore it.")
		fmt.Fprintln(usageOut, "\nExample: skewpatch --dry-run")
		fmt.Fprintln(usageOut, "         skewpatch restore")
		fmt.Fprintln(usageOut, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := parseArgs(cfg, flags.Args()); err != nil {
		// Report like pflag does for flag errors.
		fmt.Fprintln(usageOut, err)
		flags.Usage()
		return nil, err
	}

	return cfg, nil
}

func parseArgs(cfg *Config, rest []string) error {
	switch {
	case len(rest) > 1:
		return fmt.Errorf("error: expected at most one argument, got %d", len(rest))
	case len(rest) == 1 && rest[0] != RestoreArg:
		return fmt.Errorf("error: unknown argument %q (only %q is accepted)", rest[0], RestoreArg)
	case len(rest) == 1:
		cfg.Restore = true
	}

	if cfg.Restore && cfg.DryRun {
		return fmt.Errorf("error: --dry-run cannot be combined with %s", RestoreArg)
	}
	return nil
}
