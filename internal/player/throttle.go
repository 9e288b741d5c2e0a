package player

// PositionThreshold is the minimum position delta, in milliseconds, between two
// passive position notifications.
const PositionThreshold int64 = 200

// positionThrottle suppresses position notifications that moved less than
// threshold since the last delivered value. It is not safe for concurrent use.
type positionThrottle struct {
	threshold int64
	last      int64
	primed    bool
}

func newPositionThrottle(threshold int64) *positionThrottle {
	return &positionThrottle{threshold: threshold}
}

// allow reports whether pos should be delivered and records it if so.
func (t *positionThrottle) allow(pos int64) bool {
	if t.primed {
		delta := pos - t.last
		if delta < 0 {
			delta = -delta
		}
		if delta < t.threshold {
			return false
		}
	}
	t.mark(pos)
	return true
}

// mark records pos as delivered without checking the threshold.
func (t *positionThrottle) mark(pos int64) {
	t.last = pos
	t.primed = true
}

// reset forces the next tick through, used after discontinuities.
func (t *positionThrottle) reset() {
	t.primed = false
}
