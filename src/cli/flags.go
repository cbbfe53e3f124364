// Package cli contains sandworm's command-line option schema and the small
// helpers around it: KEY=VAL parsing and did-you-mean target suggestions
// (spec §6, §7's "Configuration error").
package cli

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	flags "github.com/thought-machine/go-flags"
)

// Options is the full CLI surface (spec §6): sandworm --version, init,
// build [TARGET] [-v] [-f FMT] [-p [N]] [KEY=VAL...], and
// clean [-v] [-f FMT] [KEY=VAL...].
type Options struct {
	Version bool `long:"version" description:"Print the sandworm engine version and exit."`
	Verbose bool `short:"v" long:"verbose" description:"Show debug-level logging."`

	Build struct {
		Format   string `short:"f" long:"format" default:"text" description:"Output format."`
		Parallel string `short:"p" long:"parallel" optional:"true" optional-value:"unbounded" description:"Build in parallel. With no N, worker count is unbounded."`
		Args     struct {
			Target string   `positional-arg-name:"target" description:"Target to build, or a KEY=VAL assignment."`
			Rest   []string `positional-arg-name:"vars" description:"KEY=VAL assignments."`
		} `positional-args:"true"`
	} `command:"build" description:"Builds a target."`

	Clean struct {
		Format string `short:"f" long:"format" default:"text" description:"Output format."`
		Args   struct {
			Vars []string `positional-arg-name:"vars" description:"KEY=VAL assignments."`
		} `positional-args:"true"`
	} `command:"clean" description:"Runs registered clean targets in reverse order."`

	Init struct {
	} `command:"init" description:"Creates a Wormfile template in the current directory."`
}

// ParseArgs parses args against opts and returns the parser together with
// any parse error. It prints nothing and does not exit; reporting the error
// is left to the caller.
func ParseArgs(opts *Options, args []string) (*flags.Parser, error) {
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.SubcommandsOptional = true
	_, err := parser.ParseArgs(args)
	return parser, err
}

// keyValPattern matches a valid Environment variable assignment key: spec
// §6's `[A-Za-z_][A-Za-z0-9_]*`.
var keyValPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// IsKeyVal reports whether s looks like a KEY=VAL assignment.
func IsKeyVal(s string) bool {
	return keyValPattern.MatchString(s)
}

// ParseKeyVal splits a validated KEY=VAL string into its key and value.
// The caller must have already confirmed IsKeyVal(s).
func ParseKeyVal(s string) (key, value string) {
	i := strings.IndexByte(s, '=')
	return s[:i], s[i+1:]
}

// ParseParallel interprets the --parallel/-p flag's string value per spec
// §6: "" (flag absent) isn't passed here at all; "unbounded" (the
// optional-value sentinel go-flags substitutes for a bare -p with no N)
// means unbounded; anything else must be a positive integer worker cap —
// an explicit "-p 0" is spec §6's "invalid worker count", not unbounded.
// ok is false for an invalid N.
func ParseParallel(value string) (workers int, ok bool) {
	if value == "unbounded" {
		return 0, true
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Die prints msg to stderr and exits 1, the uniform path for every
// "Configuration error" in spec §7.
func Die(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
