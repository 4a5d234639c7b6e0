package gesture

import "time"

// DefaultDoubleTapWindow is the widest gap between two taps that still counts as a double tap.
const DefaultDoubleTapWindow = 300 * time.Millisecond

// Action is the outcome of classifying a single tap.
type Action int

const (
	ActionNone Action = iota
	ActionToggleLike
)

func (a Action) String() string {
	switch a {
	case ActionToggleLike:
		return "toggle_like"
	default:
		return "none"
	}
}

// Classifier pairs consecutive taps on the same target into double taps.
//
// Timing state is kept per target id and lives as long as the classifier does,
// so owners should keep one classifier for the whole feed session. A Classifier
// is not safe for concurrent use.
type Classifier struct {
	windowMillis int64
	lastTap      map[string]int64
}

// NewClassifier returns a classifier using the given double tap window.
// A non-positive window falls back to DefaultDoubleTapWindow; anything shorter
// than a millisecond is rounded up to one.
func NewClassifier(window time.Duration) *Classifier {
	if window <= 0 {
		window = DefaultDoubleTapWindow
	}
	if window < time.Millisecond {
		window = time.Millisecond
	}
	return &Classifier{
		windowMillis: window.Milliseconds(),
		lastTap:      make(map[string]int64),
	}
}

// Window returns the configured double tap window.
func (c *Classifier) Window() time.Duration {
	return time.Duration(c.windowMillis) * time.Millisecond
}

// OnTap classifies a tap on targetID at timestamp (milliseconds on a monotonic epoch).
//
// A tap within the window of a pending tap on the same target yields
// ActionToggleLike and clears the pending tap, so a third rapid tap starts a
// fresh pair. Any other tap, including one whose timestamp is earlier than the
// pending one, becomes the new pending tap.
func (c *Classifier) OnTap(targetID string, timestamp int64) Action {
	if last, ok := c.lastTap[targetID]; ok {
		// Compare before subtracting so extreme timestamps cannot wrap.
		if timestamp >= last && timestamp-last <= c.windowMillis {
			delete(c.lastTap, targetID)
			return ActionToggleLike
		}
	}

	c.lastTap[targetID] = timestamp
	return ActionNone
}

// Pending reports the timestamp of the unpaired tap on targetID, if any.
func (c *Classifier) Pending(targetID string) (int64, bool) {
	ts, ok := c.lastTap[targetID]
	return ts, ok
}

// Forget drops the timing state for targetID.
func (c *Classifier) Forget(targetID string) {
	delete(c.lastTap, targetID)
}
