// Package wormfile loads a build's Wormfile: a Go plugin built with
// `go build -buildmode=plugin` that registers targets into an Environment
// (spec §4.B, §6). This is the idiomatic Go replacement for the original
// Python's dynamic `importlib.import_module("Wormfile")` — Go has no
// runtime `import`, but `plugin.Open` gives the same "load arbitrary code
// discovered at a well-known path at process start" shape.
package wormfile

import (
	"fmt"
	"path/filepath"
	"plugin"

	"gopkg.in/op/go-logging.v1"

	"github.com/nickeldan/sandworm/src/core"
)

var log = logging.MustGetLogger("wormfile")

// FileName is the well-known build-description filename sandworm looks for
// in a directory, the Go analogue of Python's `Wormfile.py`.
const FileName = "Wormfile.so"

// EntryPoint is the symbol a Wormfile plugin must export: a function with
// core.SubfileLoader's signature, called once with the Environment it
// should populate.
const EntryPoint = "LoadTargets"

// Load opens the Wormfile plugin in dir and invokes its LoadTargets entry
// point against env. It returns an error if the plugin can't be opened or
// doesn't export a correctly-typed LoadTargets symbol; a false return from
// LoadTargets itself is reported via the bool, not an error, matching
// core.SubfileLoader's own "populate or abort" contract.
func Load(dir string, env *core.Environment) (bool, error) {
	path := filepath.Join(dir, FileName)

	p, err := plugin.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", path, err)
	}

	sym, err := p.Lookup(EntryPoint)
	if err != nil {
		return false, fmt.Errorf("%s does not export %s: %w", path, EntryPoint, err)
	}

	loader, ok := sym.(func(*core.Environment) bool)
	if !ok {
		if loaderPtr, ok2 := sym.(*func(*core.Environment) bool); ok2 {
			loader = *loaderPtr
		} else {
			return false, fmt.Errorf("%s's %s has the wrong signature", path, EntryPoint)
		}
	}

	return loader(env), nil
}

// LoadNested is the core.SubfileLoader adaptor used by Environment.LoadSubfile
// when a Wormfile references a sub-directory: it loads and runs that
// directory's own Wormfile plugin against the nested Environment.
func LoadNested(dir string) core.SubfileLoader {
	return func(env *core.Environment) bool {
		ok, err := Load(dir, env)
		if err != nil {
			log.Errorf("loading subfile %s: %s", dir, err)
			return false
		}
		return ok
	}
}
