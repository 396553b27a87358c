package pipeline

// Clock is a monotonic logical counter. Each registered instance gets the
// next value, and that value is the Kahn tie-break, so ordering never depends
// on map iteration or wall time.
//
// The Pipeline is single-writer, so a plain counter is enough.
type Clock struct {
	seq int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	c.seq++
	return c.seq
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq
}
