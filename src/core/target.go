// Package core implements the Sandworm build graph: targets, their
// environment, cycle detection and staleness. It is the data model every
// other package in this module schedules and runs against.
package core

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/op/go-logging.v1"
)

var log = logging.MustGetLogger("core")

// cwdMu serializes the chdir/build/chdir-back critical section in Target.Build.
// Please's multiprocessing-derived design isolates this per worker process;
// a single Go process shares one working directory across every goroutine,
// so the switch has to be a global critical section rather than per-worker
// state. See DESIGN.md for the full rationale.
var cwdMu sync.Mutex

// Builder produces a Target's artifact and reports whether it succeeded.
// A nil Builder means "no rule" (spec §3).
type Builder func(*Target) bool

// Kind supplies the polymorphic parts of a Target: whether its artifact
// already exists and when it was last modified. Plain targets and file
// targets each implement it.
type Kind interface {
	// FullName returns the canonical name for a target with this kind,
	// given the name it was registered under and its owning basedir.
	FullName(basedir, name string) string
	// Exists reports whether the target's artifact is present on disk.
	Exists(fullname string) bool
	// ModTime returns the artifact's last-modified time, if any.
	ModTime(fullname string) (time.Time, bool)
}

// Plain is the Kind for targets with no on-disk artifact of their own:
// aggregates, phony rules, anything whose staleness is purely a function
// of its dependencies.
type Plain struct{}

// FullName returns name unchanged; plain targets have no basedir-relative identity.
func (Plain) FullName(_, name string) string { return name }

// Exists always reports false for a plain target (spec §3).
func (Plain) Exists(string) bool { return false }

// ModTime is undefined for a plain target.
func (Plain) ModTime(string) (time.Time, bool) { return time.Time{}, false }

// File is the Kind for targets backed by a file on disk. Its fullname is
// the absolute path basedir/name.
type File struct{}

// FullName joins basedir and name into an absolute path.
func (File) FullName(basedir, name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(basedir, name)
}

// Exists reports whether the file is present.
func (File) Exists(fullname string) bool {
	_, err := os.Stat(fullname)
	return err == nil
}

// ModTime returns the file's modification time truncated to the second,
// matching spec §3's "integer mtime" staleness granularity.
func (File) ModTime(fullname string) (time.Time, bool) {
	info, err := os.Stat(fullname)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime().Truncate(time.Second), true
}

// Target is a node in the build graph: a name, a kind (plain or file), an
// ordered list of dependencies and an optional builder.
type Target struct {
	name         string
	kind         Kind
	dependencies []*Target
	builder      Builder

	mu       sync.Mutex
	env      *Environment
	built    bool

	existsOnce sync.Once
	exists     bool

	modTimeOnce sync.Once
	modTime     time.Time
	hasModTime  bool

	outOfDateOnce sync.Once
	outOfDate     bool
}

// NewTarget constructs a plain Target: no on-disk artifact of its own.
// dependencies is copied so the caller's slice may be reused or mutated.
func NewTarget(name string, dependencies []*Target, builder Builder) *Target {
	return newTarget(name, Plain{}, dependencies, builder)
}

// NewFileTarget constructs a Target whose fullname and staleness are backed
// by a file at basedir/name (or an absolute path, if name is one).
func NewFileTarget(name string, dependencies []*Target, builder Builder) *Target {
	return newTarget(name, File{}, dependencies, builder)
}

func newTarget(name string, kind Kind, dependencies []*Target, builder Builder) *Target {
	deps := make([]*Target, len(dependencies))
	copy(deps, dependencies)
	return &Target{
		name:         name,
		kind:         kind,
		dependencies: deps,
		builder:      builder,
	}
}

// Name returns the identifier the Target was registered under.
func (t *Target) Name() string { return t.name }

// Dependencies returns the Target's dependencies in registration order.
// The caller must not mutate the returned slice.
func (t *Target) Dependencies() []*Target { return t.dependencies }

// AddDependency appends dep to t's dependency list after construction.
// This is how forward references (and therefore cycles, spec §4.C) are
// built: a Wormfile can construct two Targets separately and link them
// together once both exist, the same way BuildTarget.AddDependency lets a
// parser wire up a graph incrementally.
func (t *Target) AddDependency(dep *Target) {
	t.mu.Lock()
	t.dependencies = append(t.dependencies, dep)
	t.mu.Unlock()
}

// Builder returns the Target's builder, or nil if it has no rule.
func (t *Target) Builder() Builder { return t.builder }

// Env returns the Environment this Target was added to, or nil if it
// hasn't been added to one yet.
func (t *Target) Env() *Environment {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.env
}

// setEnv attaches the owning Environment the first time the Target is added.
// Later calls, with the same or a different Environment, leave the first one
// in place and report nothing.
func (t *Target) setEnv(env *Environment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.env == nil {
		t.env = env
	}
}

// FullName returns the Target's canonical name (spec §3). It panics with
// ErrNoEnvironment if the Target has not yet been added to one, since
// fullname is basedir-relative for file targets.
func (t *Target) FullName() string {
	env := t.Env()
	if env == nil {
		panic(ErrNoEnvironment)
	}
	return t.kind.FullName(env.basedir, t.name)
}

// Kind exposes the Target's concrete kind, primarily so callers (and tests)
// can branch on plain-vs-file without a type switch on Target itself.
func (t *Target) Kind() Kind { return t.kind }

// Built reports whether Build has already succeeded for this Target.
func (t *Target) Built() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.built
}

func (t *Target) setBuilt() {
	t.mu.Lock()
	t.built = true
	t.mu.Unlock()
}

// Exists reports, memoized, whether the Target's artifact is already present.
func (t *Target) Exists() bool {
	t.existsOnce.Do(func() {
		if _, plain := t.kind.(Plain); plain {
			return // never exists; needs no Environment
		}
		t.exists = t.kind.Exists(t.FullName())
	})
	return t.exists
}

// LastModified returns, memoized, the Target's last-modified time.
func (t *Target) LastModified() (time.Time, bool) {
	t.modTimeOnce.Do(func() {
		if _, plain := t.kind.(Plain); plain {
			return // never has a modification time; needs no Environment
		}
		t.modTime, t.hasModTime = t.kind.ModTime(t.FullName())
	})
	return t.modTime, t.hasModTime
}

// OutOfDate reports, memoized, whether this Target must be rebuilt: it's
// missing, or any dependency is out of date, or any dependency is newer
// (spec §3's "out_of_date").
func (t *Target) OutOfDate() bool {
	t.outOfDateOnce.Do(func() {
		t.outOfDate = t.computeOutOfDate()
	})
	return t.outOfDate
}

func (t *Target) computeOutOfDate() bool {
	if !t.Exists() {
		return true
	}
	selfTime, selfHasTime := t.LastModified()
	for _, dep := range t.dependencies {
		if dep.OutOfDate() {
			return true
		}
		if depTime, depHasTime := dep.LastModified(); selfHasTime && depHasTime && depTime.After(selfTime) {
			return true
		}
	}
	return false
}

// Build runs this Target's builder with the process working directory
// temporarily switched to its owning Environment's basedir, restoring it on
// every exit path. It returns true on success and sets Built() true.
//
// A nil builder is a no-op: it succeeds iff the target already exists or has
// at least one dependency (a "phony aggregate", spec §3); otherwise it logs
// "no rule" and fails.
func (t *Target) Build() bool {
	env := t.Env()
	if env == nil {
		panic(ErrNoEnvironment)
	}

	if t.builder == nil {
		if t.Exists() || len(t.dependencies) > 0 {
			t.setBuilt()
			return true
		}
		log.Errorf("%s: %s", ErrNoRule, t.FullName())
		return false
	}

	ok := t.runBuilder(env.basedir)
	if ok {
		t.setBuilt()
	}
	return ok
}

func (t *Target) runBuilder(basedir string) (ok bool) {
	cwdMu.Lock()
	defer cwdMu.Unlock()

	prev, err := os.Getwd()
	if err != nil {
		log.Errorf("could not determine working directory building %s: %s", t.FullName(), err)
		return false
	}
	if err := os.Chdir(basedir); err != nil {
		log.Errorf("could not chdir to %s building %s: %s", basedir, t.FullName(), err)
		return false
	}
	defer func() {
		if err := os.Chdir(prev); err != nil {
			log.Errorf("could not restore working directory to %s: %s", prev, err)
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("builder for %s panicked: %v", t.FullName(), r)
			ok = false
		}
	}()

	return t.builder(t)
}
