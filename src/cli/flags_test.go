package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsKeyVal(t *testing.T) {
	assert.True(t, IsKeyVal("FOO=bar"))
	assert.True(t, IsKeyVal("_foo=1"))
	assert.False(t, IsKeyVal("1foo=bar"))
	assert.False(t, IsKeyVal("foo"))
	assert.False(t, IsKeyVal("=bar"))
}

func TestParseKeyVal(t *testing.T) {
	k, v := ParseKeyVal("FOO=bar=baz")
	assert.Equal(t, "FOO", k)
	assert.Equal(t, "bar=baz", v)
}

func TestParseParallel(t *testing.T) {
	n, ok := ParseParallel("unbounded")
	assert.True(t, ok)
	assert.Equal(t, 0, n)

	n, ok = ParseParallel("4")
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	_, ok = ParseParallel("0")
	assert.False(t, ok, "explicit -p 0 is an invalid worker count, not unbounded")

	_, ok = ParseParallel("-1")
	assert.False(t, ok)

	_, ok = ParseParallel("banana")
	assert.False(t, ok)
}

func TestParseArgsBuildCommand(t *testing.T) {
	var opts Options
	_, err := ParseArgs(&opts, []string{"build", "-v", "main", "FOO=bar"})
	assert.NoError(t, err)
	assert.True(t, opts.Verbose)
	assert.Equal(t, "main", opts.Build.Args.Target)
	assert.Equal(t, []string{"FOO=bar"}, opts.Build.Args.Rest)
}

func TestParseArgsCleanCommand(t *testing.T) {
	var opts Options
	_, err := ParseArgs(&opts, []string{"clean"})
	assert.NoError(t, err)
}

func TestParseArgsVersionFlag(t *testing.T) {
	var opts Options
	_, err := ParseArgs(&opts, []string{"--version"})
	assert.NoError(t, err)
	assert.True(t, opts.Version)
}
