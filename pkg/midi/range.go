package midi

// beatRange is a half-open tick window one beat wide that can be stepped forward.
type beatRange struct {
	cnt int

	lowerBound int64
	upperBound int64
}

func newBeatRange(lowerBound int64, upperBound int64) *beatRange {
	return &beatRange{
		lowerBound: lowerBound,
		upperBound: upperBound,
	}
}

func (m *beatRange) stepBy(n int) {
	m.cnt += n
	step := m.upperBound - m.lowerBound

	m.upperBound += step * int64(n)
	m.lowerBound += step * int64(n)
}

func (m *beatRange) contains(item int64) bool {
	return item >= m.lowerBound && item < m.upperBound
}

func (m *beatRange) position() int {
	return m.cnt % 4
}

// QuarterPosition returns which quarter of a 4/4 bar (0-3) the absolute tick
// falls into.
func QuarterPosition(absTicks int64, ticksPerQuarterNote int64) int {
	if ticksPerQuarterNote <= 0 || absTicks < 0 {
		return 0
	}

	r := newBeatRange(0, ticksPerQuarterNote)
	for !r.contains(absTicks) {
		if absTicks > ticksPerQuarterNote {
			r.stepBy(int(absTicks / ticksPerQuarterNote))
		} else {
			r.stepBy(1)
		}
	}

	return r.position()
}

// AbsoluteTicks returns the running tick total at every event of the track.
func AbsoluteTicks(t *Track) []int64 {
	out := make([]int64, len(t.events))
	var abs int64
	for i, e := range t.events {
		abs += int64(e.TimeDelta)
		out[i] = abs
	}
	return out
}
