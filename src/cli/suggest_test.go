package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestTargetOrdersByDistance(t *testing.T) {
	msg := SuggestTarget("foo", []string{"bar", "fo", "foo"})
	assert.Equal(t, "\nMaybe you meant foo or fo ?", msg)
}

func TestSuggestTargetSkipsFarMatches(t *testing.T) {
	msg := SuggestTarget("buidl", []string{"build", "clean"})
	assert.Contains(t, msg, "build")
	assert.NotContains(t, msg, "clean")
}

func TestSuggestTargetEmptyWhenNothingClose(t *testing.T) {
	assert.Equal(t, "", SuggestTarget("zzzzzzz", []string{"build", "clean"}))
}

func TestSuggestTargetFormatsSingleMatch(t *testing.T) {
	msg := SuggestTarget("buidl", []string{"build"})
	assert.Equal(t, "\nMaybe you meant build ?", msg)
}

func TestSuggestTargetEmptyWhenNoMatch(t *testing.T) {
	assert.Equal(t, "", SuggestTarget("buidl", nil))
}
