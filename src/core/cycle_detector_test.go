package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCycleNone(t *testing.T) {
	c := NewTarget("c", nil, nil)
	b := NewTarget("b", []*Target{c}, nil)
	a := NewTarget("a", []*Target{b, c}, nil)

	assert.Nil(t, DetectCycle(a))
}

func TestDetectCycleDirect(t *testing.T) {
	// foo -> bar -> foo
	bar := NewTarget("bar", nil, nil)
	foo := NewTarget("foo", []*Target{bar}, nil)
	bar.AddDependency(foo)

	cycle := DetectCycle(foo)
	assert.NotNil(t, cycle)
	assert.Contains(t, cycle, foo)
	assert.Contains(t, cycle, bar)
}

func TestDetectCycleIndirect(t *testing.T) {
	// a -> b -> c -> a
	a := NewTarget("a", nil, nil)
	c := NewTarget("c", []*Target{a}, nil)
	b := NewTarget("b", []*Target{c}, nil)
	a.AddDependency(b)

	cycle := DetectCycle(a)
	assert.NotNil(t, cycle)
	assert.Len(t, cycle, 3)
}

func TestDetectCycleSharedSubgraphNoCycle(t *testing.T) {
	// Diamond: top depends on left and right, both depend on shared. Not a
	// cycle even though shared is visited twice.
	shared := NewTarget("shared", nil, nil)
	left := NewTarget("left", []*Target{shared}, nil)
	right := NewTarget("right", []*Target{shared}, nil)
	top := NewTarget("top", []*Target{left, right}, nil)

	assert.Nil(t, DetectCycle(top))
}
