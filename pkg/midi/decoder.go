package midi

import (
	"io"

	"go.uber.org/zap"
)

const headerSize = 6

var (
	headerChunkID = [4]byte{0x4D, 0x54, 0x68, 0x64}
	trackChunkID  = [4]byte{0x4D, 0x54, 0x72, 0x6B}
)

type DecoderOption func(*Decoder)

// WithDecoderLogger makes the decoder report chunks at debug level.
func WithDecoderLogger(l *zap.Logger) DecoderOption {
	return func(d *Decoder) {
		d.log = l
	}
}

// Decoder reads a Standard MIDI File from a stream, front to back, without seeking.
type Decoder struct {
	r   *peekReader
	log *zap.Logger

	// runningStatus carries over from one track chunk to the next.
	runningStatus byte
	trackStart    int64
	trackSize     uint32
}

func NewDecoder(r io.Reader, opts ...DecoderOption) *Decoder {
	d := &Decoder{r: newPeekReader(r), log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reads the header chunk and as many track chunks as it announces.
// Any malformed input aborts the whole parse with a *ParseError.
func (d *Decoder) Decode() (*Song, error) {
	id, err := d.r.chunkID()
	if err != nil {
		return nil, err
	}
	if id != headerChunkID {
		return nil, d.r.errorf(ErrFmtNotSupported, "expected header chunk ID %q, got %q", headerChunkID[:], id[:])
	}

	size, err := d.r.uint32()
	if err != nil {
		return nil, err
	}
	if size != headerSize {
		return nil, d.r.errorf(ErrFmtNotSupported, "expected header size to be %d, was %d", headerSize, size)
	}

	var format, numTracks, division uint16
	for _, v := range []*uint16{&format, &numTracks, &division} {
		if *v, err = d.r.uint16(); err != nil {
			return nil, err
		}
	}
	d.runningStatus = 0
	if format > 2 {
		return nil, d.r.errorf(ErrFmtNotSupported, "unknown format %d", format)
	}

	d.log.Debug("header",
		zap.Uint16("format", format),
		zap.Uint16("tracks", numTracks),
		zap.Int16("division", int16(division)))

	song := NewSong(format, int16(division))
	for i := 0; i < int(numTracks); i++ {
		track, err := d.parseTrack()
		if err != nil {
			return nil, err
		}
		d.log.Debug("track", zap.Int("index", i), zap.Uint32("size", d.trackSize), zap.Int("events", track.Len()))
		song.AddTrack(track)
	}

	return song, nil
}

func (d *Decoder) parseTrack() (*Track, error) {
	id, err := d.r.chunkID()
	if err != nil {
		return nil, err
	}
	if id != trackChunkID {
		return nil, d.r.errorf(ErrUnexpectedData, "expected track chunk ID %q, got %q", trackChunkID[:], id[:])
	}

	if d.trackSize, err = d.r.uint32(); err != nil {
		return nil, err
	}
	d.trackStart = d.r.offset

	track := NewTrack()
	for d.consumed() < int64(d.trackSize) {
		e, err := d.parseEvent()
		if err != nil {
			return nil, err
		}
		if d.consumed() > int64(d.trackSize) {
			return nil, d.r.errorf(ErrTrackLength, "declared %d bytes, consumed %d", d.trackSize, d.consumed())
		}
		track.events = append(track.events, e)
	}

	return track, nil
}

func (d *Decoder) consumed() int64 {
	return d.r.offset - d.trackStart
}

func (d *Decoder) parseEvent() (Event, error) {
	timeDelta, err := d.r.varLen()
	if err != nil {
		return Event{}, err
	}

	// status byte give us the msg type and channel, unless running status applies.
	b, err := d.r.peek()
	if err != nil {
		return Event{}, err
	}
	if isStatusByte(b) {
		if _, err := d.r.ReadByte(); err != nil {
			return Event{}, err
		}
		d.runningStatus = b
	} else if d.runningStatus == 0 {
		return Event{}, d.r.errorf(ErrNoRunningStatus, "data byte 0x%02x", b)
	}

	status := d.runningStatus
	e := Event{TimeDelta: timeDelta}

	switch {
	case status == MetaStatus:
		metaType, err := d.r.ReadByte()
		if err != nil {
			return Event{}, err
		}
		payload, err := d.lengthPrefixed()
		if err != nil {
			return Event{}, err
		}
		e.Message = Meta{metaType: metaType, payload: payload}

	case status == SysExStatus || status == SysExEscapeStatus:
		payload, err := d.lengthPrefixed()
		if err != nil {
			return Event{}, err
		}
		e.Message = SystemExclusive{lead: status, payload: payload}

	case isVoiceMsgType(status >> 4):
		m := ChannelVoice{status: status}
		for i := 0; i < fixedDataSize(status); i++ {
			if m.data[i], err = d.data7(); err != nil {
				return Event{}, err
			}
		}
		e.Message = m

	default:
		return Event{}, d.r.errorf(ErrUnexpectedData, "status byte 0x%02x is not allowed in a track", status)
	}

	return e, nil
}

// lengthPrefixed reads the VLQ length and raw bytes shared by meta and sysex events.
func (d *Decoder) lengthPrefixed() ([]byte, error) {
	n, err := d.r.varLen()
	if err != nil {
		return nil, err
	}
	if remaining := int64(d.trackSize) - d.consumed(); int64(n) > remaining {
		return nil, d.r.errorf(ErrTrackLength, "event length %d exceeds the %d bytes left in the track", n, remaining)
	}
	return d.r.readN(int(n))
}

func (d *Decoder) data7() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b > 0x7F {
		return 0, d.r.errorf(ErrUnexpectedData, "data byte 0x%02x has the high bit set", b)
	}
	return b, nil
}
