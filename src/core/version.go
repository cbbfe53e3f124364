package core

import "github.com/coreos/go-semver/semver"

// Version is the current version of the sandworm engine, printed by
// `sandworm --version` (spec §6).
var Version = *semver.New("0.1.0")
