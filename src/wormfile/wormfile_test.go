package wormfile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nickeldan/sandworm/src/core"
)

func TestLoadMissingFileErrors(t *testing.T) {
	env := core.NewEnvironment(t.TempDir(), nil)
	ok, err := Load(t.TempDir(), env)
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestLoadNestedReturnsFalseOnMissingPlugin(t *testing.T) {
	env := core.NewEnvironment(t.TempDir(), nil)
	loader := LoadNested(t.TempDir())
	assert.False(t, loader(env))
}
