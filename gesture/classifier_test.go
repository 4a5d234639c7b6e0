package gesture

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnTap_SingleTapNeverToggles(t *testing.T) {
	c := NewClassifier(DefaultDoubleTapWindow)

	for i, target := range []string{"a", "b", "c"} {
		assert.Equal(t, ActionNone, c.OnTap(target, int64(i*1000)), "target %s", target)
	}
}

func TestOnTap_PairWithinWindow(t *testing.T) {
	for _, delta := range []int64{0, 1, 150, 299, 300} {
		c := NewClassifier(DefaultDoubleTapWindow)

		require.Equal(t, ActionNone, c.OnTap("post", 1000))
		assert.Equal(t, ActionToggleLike, c.OnTap("post", 1000+delta), "delta %dms", delta)

		_, pending := c.Pending("post")
		assert.False(t, pending, "pair should clear pending tap (delta %dms)", delta)
	}
}

func TestOnTap_PairOutsideWindow(t *testing.T) {
	for _, delta := range []int64{301, 500, 10_000} {
		c := NewClassifier(DefaultDoubleTapWindow)

		assert.Equal(t, ActionNone, c.OnTap("post", 0))
		assert.Equal(t, ActionNone, c.OnTap("post", delta), "delta %dms", delta)

		ts, pending := c.Pending("post")
		require.True(t, pending)
		assert.Equal(t, delta, ts, "late tap becomes the new pending tap")
	}
}

func TestOnTap_BurstStartsFreshPair(t *testing.T) {
	c := NewClassifier(DefaultDoubleTapWindow)

	actions := []Action{
		c.OnTap("post", 0),
		c.OnTap("post", 100),
		c.OnTap("post", 250),
	}

	assert.Equal(t, []Action{ActionNone, ActionToggleLike, ActionNone}, actions)

	ts, pending := c.Pending("post")
	require.True(t, pending)
	assert.Equal(t, int64(250), ts)

	// The fourth tap completes the second pair.
	assert.Equal(t, ActionToggleLike, c.OnTap("post", 400))
}

func TestOnTap_TargetsAreIndependent(t *testing.T) {
	c := NewClassifier(DefaultDoubleTapWindow)

	assert.Equal(t, ActionNone, c.OnTap("a", 0))
	assert.Equal(t, ActionNone, c.OnTap("b", 50))
	assert.Equal(t, ActionToggleLike, c.OnTap("a", 100))

	ts, pending := c.Pending("b")
	require.True(t, pending)
	assert.Equal(t, int64(50), ts)
}

func TestOnTap_NonMonotonicTimestamp(t *testing.T) {
	c := NewClassifier(DefaultDoubleTapWindow)

	assert.Equal(t, ActionNone, c.OnTap("post", 5000))
	assert.NotPanics(t, func() {
		assert.Equal(t, ActionNone, c.OnTap("post", 4900))
	})

	ts, pending := c.Pending("post")
	require.True(t, pending)
	assert.Equal(t, int64(4900), ts)
}

func TestOnTap_ExtremeTimestampsNeverPair(t *testing.T) {
	c := NewClassifier(DefaultDoubleTapWindow)

	assert.Equal(t, ActionNone, c.OnTap("post", math.MaxInt64))
	assert.Equal(t, ActionNone, c.OnTap("post", math.MinInt64))
	assert.Equal(t, ActionNone, c.OnTap("other", math.MinInt64))
	assert.Equal(t, ActionNone, c.OnTap("other", math.MaxInt64))

	// Extremes still pair with themselves.
	assert.Equal(t, ActionToggleLike, c.OnTap("post", math.MinInt64))
}

func TestForget(t *testing.T) {
	c := NewClassifier(DefaultDoubleTapWindow)

	c.OnTap("post", 0)
	c.Forget("post")

	assert.Equal(t, ActionNone, c.OnTap("post", 10))
}

func TestNewClassifier_Window(t *testing.T) {
	assert.Equal(t, DefaultDoubleTapWindow, NewClassifier(0).Window())
	assert.Equal(t, DefaultDoubleTapWindow, NewClassifier(-time.Second).Window())
	assert.Equal(t, time.Millisecond, NewClassifier(time.Microsecond).Window())

	c := NewClassifier(500 * time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, c.Window())

	c.OnTap("post", 0)
	assert.Equal(t, ActionToggleLike, c.OnTap("post", 450))
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "none", ActionNone.String())
	assert.Equal(t, "toggle_like", ActionToggleLike.String())
}
