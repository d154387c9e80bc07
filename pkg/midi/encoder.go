package midi

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"go.uber.org/zap"
)

type EncoderOption func(*Encoder)

// WithEncoderLogger makes the encoder report written chunks at debug level.
func WithEncoderLogger(l *zap.Logger) EncoderOption {
	return func(e *Encoder) {
		e.log = l
	}
}

// Encoder writes a Song as a Standard MIDI File using running status.
type Encoder struct {
	w   *bufio.Writer
	log *zap.Logger
}

func NewEncoder(w io.Writer, opts ...EncoderOption) *Encoder {
	e := &Encoder{w: bufio.NewWriter(w), log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode writes the header chunk followed by every track chunk and flushes.
func (e *Encoder) Encode(s *Song) error {
	if s.Format > 2 {
		return fmt.Errorf("%w - unknown format %d", ErrFmtNotSupported, s.Format)
	}
	if len(s.tracks) > 0xFFFF {
		return fmt.Errorf("%w - %d tracks do not fit the header", ErrFmtNotSupported, len(s.tracks))
	}

	var header [14]byte
	copy(header[0:4], headerChunkID[:])
	binary.BigEndian.PutUint32(header[4:8], headerSize)
	binary.BigEndian.PutUint16(header[8:10], s.Format)
	binary.BigEndian.PutUint16(header[10:12], uint16(len(s.tracks)))
	binary.BigEndian.PutUint16(header[12:14], uint16(s.Division))
	if _, err := e.w.Write(header[:]); err != nil {
		return err
	}

	for i, t := range s.tracks {
		n, err := e.writeTrack(t)
		if err != nil {
			return err
		}
		e.log.Debug("track", zap.Int("index", i), zap.Uint32("size", n), zap.Int("events", t.Len()))
	}

	return e.w.Flush()
}

// TrackSize returns the chunk length the encoder declares for t.
func TrackSize(t *Track) uint32 {
	c := chunkWriter{}
	c.track(t)
	return c.n
}

func (e *Encoder) writeTrack(t *Track) (uint32, error) {
	size := TrackSize(t)

	var header [8]byte
	copy(header[0:4], trackChunkID[:])
	binary.BigEndian.PutUint32(header[4:8], size)
	if _, err := e.w.Write(header[:]); err != nil {
		return 0, err
	}

	c := chunkWriter{w: e.w}
	c.track(t)
	if c.err != nil {
		return 0, c.err
	}
	if c.n != size {
		panic(fmt.Sprintf("midi: track measured %d bytes but wrote %d", size, c.n))
	}
	return size, nil
}

// chunkWriter walks a track applying the running status rule. Without w it
// only measures, which is how the chunk length is known before writing.
type chunkWriter struct {
	w   io.Writer
	n   uint32
	err error
	buf []byte
}

func (c *chunkWriter) track(t *Track) {
	var runningStatus byte
	for _, ev := range t.events {
		if c.err != nil {
			return
		}

		msg := ev.Message
		if err := msg.validate(); err != nil {
			panic(err)
		}

		// System and meta statuses are always written and still replace the
		// running status, so the next channel message repeats its status.
		status := msg.Status()
		explicit := status >= 0xF0 || status != runningStatus
		runningStatus = status

		if c.w == nil {
			c.n += uint32(varLenSize(ev.TimeDelta) + msg.Len())
			if explicit {
				c.n++
			}
			continue
		}

		c.buf = appendVarLen(c.buf[:0], ev.TimeDelta)
		if explicit {
			c.buf = append(c.buf, status)
		}
		c.buf = msg.appendTo(c.buf)
		c.write(c.buf)
	}
}

func (c *chunkWriter) write(p []byte) {
	c.n += uint32(len(p))
	_, c.err = c.w.Write(p)
}
