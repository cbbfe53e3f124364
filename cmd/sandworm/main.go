// Command sandworm is the CLI front-end for the build engine in
// github.com/nickeldan/sandworm/src: argument parsing, Wormfile discovery
// and the init template (spec §6). Everything it calls into — core, build,
// clean, wormfile — is a collaborator; this file only wires them together
// and maps outcomes to process exit codes.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	goflags "github.com/peterebden/go-cli-init/v5/flags"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/nickeldan/sandworm/src/build"
	"github.com/nickeldan/sandworm/src/clean"
	"github.com/nickeldan/sandworm/src/cli"
	"github.com/nickeldan/sandworm/src/core"
	"github.com/nickeldan/sandworm/src/logging"
	"github.com/nickeldan/sandworm/src/wormfile"
)

var log = logging.Get("main")

var opts cli.Options

var start time.Time

func main() {
	active := goflags.ParseFlagsOrDie("sandworm", &opts, nil)
	start = time.Now()

	logging.Init(opts.Verbose)
	if _, err := maxprocs.Set(maxprocs.Logger(log.Infof)); err != nil {
		log.Debugf("could not determine container CPU quota: %s", err)
	}

	if opts.Version {
		fmt.Println(core.Version.String())
		os.Exit(0)
	}

	switch active {
	case "init":
		runInit()
	case "clean":
		runClean()
	case "build":
		runBuild()
	default:
		cli.Die("no command given; run `sandworm --help`")
	}
}

// wormfileTemplate is what `sandworm init` writes out: source for a plugin
// the user builds with `go build -buildmode=plugin -o Wormfile.so Wormfile.go`
// (spec §6's "Wormfile contract", adapted to Go's plugin loading model per
// DESIGN.md).
const wormfileTemplate = `package main

import (
	"github.com/nickeldan/sandworm/src/core"
	"github.com/nickeldan/sandworm/src/support"
)

// LoadTargets populates env with this project's build targets. Return
// false to abort the build with exit code 1.
func LoadTargets(env *core.Environment) bool {
	_ = env.GetOr("SANDWORM_TARGET", "")
	_ = env.GetOr("SANDWORM_CLEAN", false)

	if toolchain, err := support.DiscoverCToolchain(); err == nil {
		env.LoadDefaults(toolchain.AsVars())
	}

	hello := core.NewFileTarget("hello.txt", nil, func(t *core.Target) bool {
		return true
	})
	if err := env.AddTarget(hello, true, true); err != nil {
		return false
	}
	return true
}
`

func runInit() {
	const name = "Wormfile.go"
	if _, err := os.Stat(name); err == nil {
		cli.Die("%s already exists", name)
	}
	if err := os.WriteFile(name, []byte(wormfileTemplate), 0o644); err != nil {
		cli.Die("could not create %s: %s", name, err)
	}
	fmt.Printf("Created %s; build it with:\n\tgo build -buildmode=plugin -o Wormfile.so %s\n", name, name)
}

// applyVars sets every KEY=VAL argument as a local Environment var, dying
// on anything that doesn't match spec §6's `[A-Za-z_][A-Za-z0-9_]*=` shape.
func applyVars(env *core.Environment, args []string) {
	for _, arg := range args {
		if !cli.IsKeyVal(arg) {
			cli.Die("invalid KEY=VAL argument: %s", arg)
		}
		k, v := cli.ParseKeyVal(arg)
		env.Set(k, v)
	}
}

func loadEnv(cleanRun bool, target string) *core.Environment {
	dir, err := os.Getwd()
	if err != nil {
		cli.Die("could not determine working directory: %s", err)
	}
	env := core.NewEnvironment(dir, nil)
	env.Set("SANDWORM_TARGET", target)
	env.Set("SANDWORM_CLEAN", cleanRun)

	if _, err := os.Stat(filepath.Join(dir, wormfile.FileName)); err != nil {
		cli.Die("no %s found in %s", wormfile.FileName, dir)
	}
	ok, err := wormfile.Load(dir, env)
	if err != nil {
		cli.Die("loading Wormfile: %s", err)
	}
	if !ok {
		os.Exit(1)
	}
	return env
}

func runBuild() {
	target := opts.Build.Args.Target
	rest := opts.Build.Args.Rest
	if target != "" && cli.IsKeyVal(target) {
		rest = append([]string{target}, rest...)
		target = ""
	}

	env := loadEnv(false, target)
	applyVars(env, rest)

	root := env.MainTarget()
	if target != "" {
		t, ok := env.Target(target)
		if !ok {
			names := env.TargetNames()
			cli.Die("no such target %q%s", target, cli.SuggestTarget(target, names))
		}
		root = t
	}
	if root == nil {
		cli.Die("no main target registered")
	}

	var ok bool
	if opts.Build.Parallel == "" {
		ok = build.Root(root)
	} else {
		workers, valid := cli.ParseParallel(opts.Build.Parallel)
		if !valid {
			cli.Die("invalid worker count %q", opts.Build.Parallel)
		}
		if cycle := core.DetectCycle(root); cycle != nil {
			logCycle(cycle)
			os.Exit(1)
		}
		ok = build.RunParallel(root, workers)
	}

	report("BUILD", ok)
	if !ok {
		os.Exit(1)
	}
}

func runClean() {
	env := loadEnv(true, "")
	applyVars(env, opts.Clean.Args.Vars)

	ok := clean.Run(env)
	report("CLEAN", ok)
	if !ok {
		os.Exit(1)
	}
}

// report prints the final banner for a build or clean run: a coloured
// "VERB SUCCESSFUL"/"VERB FAILED" line plus how long it took, spelled out
// with go-humanize rather than a raw time.Duration string (SPEC_FULL §11).
// With -f json it prints a single machine-readable line instead.
func report(verb string, ok bool) {
	elapsed := time.Since(start)
	format := opts.Build.Format
	if verb == "CLEAN" {
		format = opts.Clean.Format
	}

	if format == "json" {
		fmt.Printf(`{"ok":%v,"elapsed_ms":%d}`+"\n", ok, elapsed.Milliseconds())
		return
	}

	status := fmt.Sprintf("%s SUCCESSFUL", verb)
	paint := color.New(color.FgGreen, color.Bold).SprintFunc()
	if !ok {
		status = fmt.Sprintf("%s FAILED", verb)
		paint = color.New(color.FgRed, color.Bold).SprintFunc()
	}
	fmt.Printf("%s in %s\n", paint(status), humanize.RelTime(start, time.Now(), "", ""))
}

func logCycle(cycle []*core.Target) {
	names := make([]string, len(cycle))
	for i, t := range cycle {
		names[i] = t.FullName()
	}
	names = append(names, cycle[0].FullName())
	log.Errorf("dependency cycle found: %s", strings.Join(names, " -> "))
}
