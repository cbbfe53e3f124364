package core

import "errors"

// ErrRepeatedTarget is returned by Environment.AddTarget when a name already
// registered in that Environment is re-added with a different Target.
// Re-adding the identical Target is a no-op and returns nil.
var ErrRepeatedTarget = errors.New("sandworm: target already registered under that name")

// ErrMultipleMainTargets is returned by Environment.AddTarget when a call
// passes main=true for a Target other than the main target already set.
var ErrMultipleMainTargets = errors.New("sandworm: main target already set")

// ErrNoRule is the failure a Target.Build reports when it has no builder,
// no dependencies, and no existing artifact to stand in for one.
var ErrNoRule = errors.New("sandworm: no rule to build target")

// ErrNoEnvironment is an engine invariant violation: a Target was asked for
// state that depends on its owning Environment (fullname, basedir) before
// it was ever added to one.
var ErrNoEnvironment = errors.New("sandworm: target has not been added to an environment")
