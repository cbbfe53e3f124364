package build

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickeldan/sandworm/src/core"
)

func newEnv(t *testing.T) *core.Environment {
	t.Helper()
	return core.NewEnvironment(t.TempDir(), nil)
}

func TestLinearizeOrdersDependenciesFirst(t *testing.T) {
	env := newEnv(t)
	var order []string
	record := func(name string) core.Builder {
		return func(*core.Target) bool {
			order = append(order, name)
			return true
		}
	}

	c := core.NewTarget("c", nil, record("c"))
	b := core.NewTarget("b", []*core.Target{c}, record("b"))
	a := core.NewTarget("a", []*core.Target{b}, record("a"))
	require.NoError(t, env.AddTarget(a, true, false))

	seq := Linearize(a)
	names := make([]string, len(seq))
	for i, t := range seq {
		names[i] = t.Name()
	}
	assert.Equal(t, []string{"c", "b", "a"}, names)
}

func TestLinearizeKeepsOutOfDateTarget(t *testing.T) {
	env := newEnv(t)
	c := core.NewTarget("c", nil, nil) // plain target: always out of date
	require.NoError(t, env.AddTarget(c, true, false))
	seq := Linearize(c)
	assert.Len(t, seq, 1)
}

func TestLinearizeDiamondVisitsSharedDepOnce(t *testing.T) {
	env := newEnv(t)
	shared := core.NewTarget("shared", nil, func(*core.Target) bool { return true })
	left := core.NewTarget("left", []*core.Target{shared}, func(*core.Target) bool { return true })
	right := core.NewTarget("right", []*core.Target{shared}, func(*core.Target) bool { return true })
	top := core.NewTarget("top", []*core.Target{left, right}, nil)
	require.NoError(t, env.AddTarget(top, true, false))

	seq := Linearize(top)
	count := 0
	for _, t := range seq {
		if t.Name() == "shared" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, "shared", seq[0].Name())
}

func TestRunSerialStopsOnFirstFailure(t *testing.T) {
	env := newEnv(t)
	var ran []string
	a := core.NewTarget("a", nil, func(*core.Target) bool {
		ran = append(ran, "a")
		return false
	})
	b := core.NewTarget("b", []*core.Target{a}, func(*core.Target) bool {
		ran = append(ran, "b")
		return true
	})
	require.NoError(t, env.AddTarget(b, true, false))

	assert.False(t, RunSerial(Linearize(b)))
	assert.Equal(t, []string{"a"}, ran)
}

func TestRunSerialSkipsAlreadyBuilt(t *testing.T) {
	env := newEnv(t)
	calls := 0
	a := core.NewTarget("a", nil, func(*core.Target) bool {
		calls++
		return true
	})
	require.NoError(t, env.AddTarget(a, true, false))

	seq := Linearize(a)
	require.True(t, RunSerial(seq))
	assert.Equal(t, 1, calls)

	// Rebuilding the same sequence should skip a (already Built()).
	require.True(t, RunSerial(seq))
	assert.Equal(t, 1, calls)
}

func TestRootReportsCycleFailure(t *testing.T) {
	env := newEnv(t)
	bar := core.NewTarget("bar", nil, nil)
	foo := core.NewTarget("foo", []*core.Target{bar}, nil)
	bar.AddDependency(foo) // foo -> bar -> foo
	require.NoError(t, env.AddTarget(foo, true, false))

	assert.False(t, Root(foo))
}

func TestRootEndToEndFileTarget(t *testing.T) {
	dir := t.TempDir()
	env := core.NewEnvironment(dir, nil)

	foo := core.NewFileTarget("foo.txt", nil, func(tt *core.Target) bool {
		return os.WriteFile(tt.FullName(), []byte("check\n"), 0644) == nil
	})
	require.NoError(t, env.AddTarget(foo, true, false))

	assert.True(t, Root(foo))

	contents, err := os.ReadFile(foo.FullName())
	require.NoError(t, err)
	assert.Equal(t, "check\n", string(contents))
}
