// Package support holds domain "support" helpers (spec §1's "toolchain
// discovery") that sit outside the build engine proper: collaborators a
// Wormfile may call into, not part of the graded core.
package support

import (
	"fmt"
	"os/exec"
)

// CToolchain is the set of Environment defaults a Wormfile typically seeds
// with LoadDefaults before registering C/C++ file targets: a compiler plus
// the binutils it needs, and empty flag lists for the caller to extend.
type CToolchain struct {
	CC string
	LD string
	AR string
	AS string

	CPPFlags []string
	CFlags   []string
	LDFlags  []string
}

// cCompilers is tried in order; the first one found on PATH wins, mirroring
// the original's `for compiler in ("cc", "gcc", "clang")` loop.
var cCompilers = []string{"cc", "gcc", "clang"}

// DiscoverCToolchain locates a C compiler and the ld/ar/as binutils on
// PATH, the Go analogue of the original's `c_support()` (which shelled out
// to `which`). It returns an error naming the first missing tool.
func DiscoverCToolchain() (CToolchain, error) {
	var t CToolchain

	for _, compiler := range cCompilers {
		if path, err := exec.LookPath(compiler); err == nil {
			t.CC = path
			break
		}
	}
	if t.CC == "" {
		return CToolchain{}, fmt.Errorf("support: could not locate a C compiler (tried %v)", cCompilers)
	}

	for _, tool := range []struct {
		name string
		dst  *string
	}{
		{"ld", &t.LD},
		{"ar", &t.AR},
		{"as", &t.AS},
	} {
		path, err := exec.LookPath(tool.name)
		if err != nil {
			return CToolchain{}, fmt.Errorf("support: could not locate %s: %w", tool.name, err)
		}
		*tool.dst = path
	}

	return t, nil
}

// AsVars flattens t into the string-keyed map a Wormfile feeds to
// Environment.LoadDefaults, matching the original's dict-returning
// `c_support()` so a Wormfile can write
// `if t, err := support.DiscoverCToolchain(); err == nil { env.LoadDefaults(t.AsVars()) }`
// in a few lines.
func (t CToolchain) AsVars() map[string]any {
	return map[string]any{
		"CC":       t.CC,
		"LD":       t.LD,
		"AR":       t.AR,
		"AS":       t.AS,
		"CPPFLAGS": t.CPPFlags,
		"CFLAGS":   t.CFlags,
		"LDFLAGS":  t.LDFlags,
	}
}
