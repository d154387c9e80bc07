package midi

type timeFormat int

const (
	MetricalTF timeFormat = iota + 1
	TimeCodeTF
)

// Event is a message preceded by the ticks elapsed since the previous event
// of the same track.
type Event struct {
	TimeDelta uint32
	Message   Message
}

func (e Event) Equal(o Event) bool {
	if e.TimeDelta != o.TimeDelta {
		return false
	}
	if e.Message == nil || o.Message == nil {
		return e.Message == nil && o.Message == nil
	}
	return e.Message.equal(o.Message)
}

// Track is an append-only sequence of events.
type Track struct {
	events []Event
}

func NewTrack() *Track {
	return &Track{}
}

// Add appends an event. The delta-time must fit a 4-byte variable length
// quantity and the message must be a value built by this package.
func (t *Track) Add(timeDelta uint32, msg Message) error {
	if msg == nil {
		return constructionErrorf(0, "nil message")
	}
	if timeDelta > MaxVarLen {
		return constructionErrorf(msg.Status(), "delta-time %d exceeds %d", timeDelta, MaxVarLen)
	}
	if err := msg.validate(); err != nil {
		return err
	}
	t.events = append(t.events, Event{TimeDelta: timeDelta, Message: msg})
	return nil
}

func (t *Track) Len() int {
	return len(t.events)
}

func (t *Track) At(i int) Event {
	return t.events[i]
}

// Events returns a copy of the event list.
func (t *Track) Events() []Event {
	return append([]Event(nil), t.events...)
}

func (t *Track) Equal(o *Track) bool {
	if len(t.events) != len(o.events) {
		return false
	}
	for i := range t.events {
		if !t.events[i].Equal(o.events[i]) {
			return false
		}
	}
	return true
}

// Song is the in-memory form of a Standard MIDI File.
type Song struct {
	// Format is 0 (single track), 1 (simultaneous tracks) or 2 (independent tracks).
	Format uint16
	// Division is ticks per quarter note when positive. Negative values are
	// SMPTE based and carried through untouched.
	Division int16

	tracks []*Track
}

func NewSong(format uint16, division int16) *Song {
	return &Song{Format: format, Division: division}
}

// AddTrack appends a track. The song owns it from then on. A nil track is ignored.
func (s *Song) AddTrack(t *Track) {
	if t == nil {
		return
	}
	s.tracks = append(s.tracks, t)
}

func (s *Song) Tracks() []*Track {
	return append([]*Track(nil), s.tracks...)
}

func (s *Song) TimeFormat() timeFormat {
	if s.Division < 0 {
		return TimeCodeTF
	}
	return MetricalTF
}

// TicksPerQuarterNote returns the metrical division, 0 for SMPTE timing.
func (s *Song) TicksPerQuarterNote() uint16 {
	if s.Division < 0 {
		return 0
	}
	return uint16(s.Division)
}

// Equal compares format, division and every track's events in order.
func (s *Song) Equal(o *Song) bool {
	if s.Format != o.Format || s.Division != o.Division || len(s.tracks) != len(o.tracks) {
		return false
	}
	for i := range s.tracks {
		if !s.tracks[i].Equal(o.tracks[i]) {
			return false
		}
	}
	return true
}
