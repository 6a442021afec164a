package vm

// LogicalTime is the recency signal used for eviction. It is not related to
// wall-clock time.
type LogicalTime uint64

// A LogicalClock counts the references that have been processed.
type LogicalClock struct {
	now LogicalTime
}

// Tick advances the clock by one and returns the new time.
func (c *LogicalClock) Tick() LogicalTime {
	c.now++
	return c.now
}

// Now returns the current time without advancing the clock.
func (c *LogicalClock) Now() LogicalTime {
	return c.now
}
