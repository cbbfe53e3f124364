package clean

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickeldan/sandworm/src/core"
)

func TestRunReverseOrder(t *testing.T) {
	dir := t.TempDir()
	env := core.NewEnvironment(dir, nil)
	path := filepath.Join(dir, "foo.txt")

	appender := func(word string) core.Builder {
		return func(*core.Target) bool {
			f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return false
			}
			defer f.Close()
			_, err = f.WriteString(word + "\n")
			return err == nil
		}
	}

	foo := core.NewTarget("foo", nil, appender("foo"))
	bar := core.NewTarget("bar", nil, appender("bar"))
	require.NoError(t, env.AddTarget(foo, false, true))
	require.NoError(t, env.AddTarget(bar, false, true))

	assert.True(t, Run(env))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bar\nfoo\n", string(contents))
}

func TestRunCycleFails(t *testing.T) {
	dir := t.TempDir()
	env := core.NewEnvironment(dir, nil)

	bar := core.NewTarget("bar", nil, nil)
	foo := core.NewTarget("foo", []*core.Target{bar}, nil)
	bar.AddDependency(foo)
	require.NoError(t, env.AddTarget(foo, false, true))

	assert.False(t, Run(env))
}

func TestRunAggregatesAcrossTargets(t *testing.T) {
	dir := t.TempDir()
	env := core.NewEnvironment(dir, nil)

	good := core.NewTarget("good", nil, func(*core.Target) bool { return true })
	bad := core.NewTarget("bad", nil, func(*core.Target) bool { return false })
	require.NoError(t, env.AddTarget(good, false, true))
	require.NoError(t, env.AddTarget(bad, false, true))

	assert.False(t, Run(env))
	assert.True(t, good.Built())
}

func TestRunEmptyCleanListSucceeds(t *testing.T) {
	env := core.NewEnvironment(t.TempDir(), nil)
	assert.True(t, Run(env))
}
