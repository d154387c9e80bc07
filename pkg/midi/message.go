package midi

import (
	"bytes"
	"fmt"
)

// Message is one MIDI message as stored in a track: a ChannelVoice, a
// SystemExclusive or a Meta value. The set is closed.
type Message interface {
	// Status returns the status byte the message is framed with.
	Status() byte
	// Len returns the number of bytes following the status byte.
	Len() int

	validate() error
	appendTo(buf []byte) []byte
	equal(Message) bool
}

// ChannelVoice is a channel voice message (0x80-0xEF) carrying one or two data bytes.
type ChannelVoice struct {
	status byte
	data   [2]byte
}

// NewChannelVoice builds a channel voice message. msgType is the high nibble
// of the status byte (e.g. NoteOnType) and data must hold exactly the number
// of bytes the type requires.
func NewChannelVoice(msgType, channel byte, data ...byte) (ChannelVoice, error) {
	status := msgType&0xF0 | channel&0x0F
	if !isVoiceMsgType(msgType>>4) || msgType&0x0F != 0 {
		return ChannelVoice{}, constructionErrorf(msgType, "not a channel voice type")
	}
	if channel > 0x0F {
		return ChannelVoice{}, constructionErrorf(status, "channel %d out of range", channel)
	}
	if want := fixedDataSize(status); len(data) != want {
		return ChannelVoice{}, constructionErrorf(status, "expected %d data bytes, got %d", want, len(data))
	}

	m := ChannelVoice{status: status}
	for i, b := range data {
		if b > 0x7F {
			return ChannelVoice{}, constructionErrorf(status, "data byte %d out of range: 0x%02x", i, b)
		}
		m.data[i] = b
	}
	return m, nil
}

// NoteOff returns a Note-Off message.
func NoteOff(channel, note, velocity byte) (ChannelVoice, error) {
	return NewChannelVoice(NoteOffType, channel, note, velocity)
}

// NoteOn returns a Note-On message.
func NoteOn(channel, note, velocity byte) (ChannelVoice, error) {
	return NewChannelVoice(NoteOnType, channel, note, velocity)
}

func PolyAftertouch(channel, note, pressure byte) (ChannelVoice, error) {
	return NewChannelVoice(PolyAftertouchType, channel, note, pressure)
}

func ControlChange(channel, controller, value byte) (ChannelVoice, error) {
	return NewChannelVoice(ControlChangeType, channel, controller, value)
}

func ProgramChange(channel, program byte) (ChannelVoice, error) {
	return NewChannelVoice(ProgramChangeType, channel, program)
}

func ChannelAftertouch(channel, pressure byte) (ChannelVoice, error) {
	return NewChannelVoice(ChannelAftertouchType, channel, pressure)
}

// PitchBend takes the unsigned 14-bit bend value, 0x2000 being center.
func PitchBend(channel byte, value uint16) (ChannelVoice, error) {
	if value > 0x3FFF {
		return ChannelVoice{}, constructionErrorf(PitchBendType|channel&0x0F, "pitch bend %d out of range", value)
	}
	return NewChannelVoice(PitchBendType, channel, byte(value&0x7F), byte(value>>7))
}

func (m ChannelVoice) Status() byte { return m.status }

// Type returns the high nibble of the status byte.
func (m ChannelVoice) Type() byte { return m.status & 0xF0 }

func (m ChannelVoice) Channel() byte { return m.status & 0x0F }

func (m ChannelVoice) Data1() byte { return m.data[0] }

// Data2 returns the second data byte, 0 for one-byte types.
func (m ChannelVoice) Data2() byte { return m.data[1] }

func (m ChannelVoice) Len() int { return fixedDataSize(m.status) }

// Data returns the data bytes.
func (m ChannelVoice) Data() []byte {
	return append([]byte(nil), m.data[:m.Len()]...)
}

func (m ChannelVoice) validate() error {
	if !isVoiceMsgType(m.status >> 4) {
		return constructionErrorf(m.status, "not a channel voice status")
	}
	if m.Len() == 1 && m.data[1] != 0 {
		return constructionErrorf(m.status, "unexpected second data byte")
	}
	return nil
}

func (m ChannelVoice) appendTo(buf []byte) []byte {
	return append(buf, m.data[:m.Len()]...)
}

func (m ChannelVoice) equal(o Message) bool {
	cv, ok := o.(ChannelVoice)
	return ok && cv == m
}

func (m ChannelVoice) String() string {
	var name string
	switch m.Type() {
	case NoteOffType:
		name = "NoteOff"
	case NoteOnType:
		name = "NoteOn"
	case PolyAftertouchType:
		name = "PolyAftertouch"
	case ControlChangeType:
		name = "ControlChange"
	case ProgramChangeType:
		name = "ProgramChange"
	case ChannelAftertouchType:
		name = "ChannelAftertouch"
	case PitchBendType:
		name = "PitchBend"
	}
	if m.Len() == 1 {
		return fmt.Sprintf("%s ch=%d %d", name, m.Channel(), m.Data1())
	}
	return fmt.Sprintf("%s ch=%d %d %d", name, m.Channel(), m.Data1(), m.Data2())
}

// SystemExclusive is a sysex message. The payload holds everything after the
// length, including a terminating 0xF7 when the producer wrote one.
type SystemExclusive struct {
	lead    byte
	payload []byte
}

// NewSysEx builds a sysex message led by 0xF0 or, for continuation and
// escape packets, 0xF7. The payload is copied.
func NewSysEx(lead byte, payload []byte) (SystemExclusive, error) {
	if lead != SysExStatus && lead != SysExEscapeStatus {
		return SystemExclusive{}, constructionErrorf(lead, "not a sysex status")
	}
	if len(payload) > MaxVarLen {
		return SystemExclusive{}, constructionErrorf(lead, "payload too long: %d", len(payload))
	}
	return SystemExclusive{lead: lead, payload: append([]byte{}, payload...)}, nil
}

func (m SystemExclusive) Status() byte { return m.lead }

func (m SystemExclusive) Len() int {
	return varLenSize(uint32(len(m.payload))) + len(m.payload)
}

// Payload returns a copy of the sysex bytes.
func (m SystemExclusive) Payload() []byte {
	return append([]byte{}, m.payload...)
}

func (m SystemExclusive) validate() error {
	if m.lead != SysExStatus && m.lead != SysExEscapeStatus {
		return constructionErrorf(m.lead, "not a sysex status")
	}
	return nil
}

func (m SystemExclusive) appendTo(buf []byte) []byte {
	buf = appendVarLen(buf, uint32(len(m.payload)))
	return append(buf, m.payload...)
}

func (m SystemExclusive) equal(o Message) bool {
	s, ok := o.(SystemExclusive)
	return ok && s.lead == m.lead && bytes.Equal(s.payload, m.payload)
}

func (m SystemExclusive) String() string {
	return fmt.Sprintf("SysEx 0x%02x % x", m.lead, m.payload)
}

// Meta is a file-only meta event, always framed with status 0xFF.
type Meta struct {
	metaType byte
	payload  []byte
}

// Meta event types. The codec carries them without interpretation.
const (
	MetaSequenceNumber    = 0x00
	MetaText              = 0x01
	MetaCopyright         = 0x02
	MetaTrackName         = 0x03
	MetaInstrumentName    = 0x04
	MetaLyric             = 0x05
	MetaMarker            = 0x06
	MetaCuePoint          = 0x07
	MetaChannelPrefix     = 0x20
	MetaEndOfTrack        = 0x2F
	MetaTempo             = 0x51
	MetaSMPTEOffset       = 0x54
	MetaTimeSignature     = 0x58
	MetaKeySignature      = 0x59
	MetaSequencerSpecific = 0x7F
)

// NewMeta builds a meta event of any type byte. The payload is copied.
func NewMeta(metaType byte, payload []byte) (Meta, error) {
	if len(payload) > MaxVarLen {
		return Meta{}, constructionErrorf(MetaStatus, "payload too long: %d", len(payload))
	}
	return Meta{metaType: metaType, payload: append([]byte{}, payload...)}, nil
}

// EndOfTrack returns the end-of-track meta event.
func EndOfTrack() Meta {
	return Meta{metaType: MetaEndOfTrack, payload: []byte{}}
}

func (m Meta) Status() byte { return MetaStatus }

func (m Meta) MetaType() byte { return m.metaType }

func (m Meta) Len() int {
	return 1 + varLenSize(uint32(len(m.payload))) + len(m.payload)
}

// Payload returns a copy of the meta data bytes.
func (m Meta) Payload() []byte {
	return append([]byte{}, m.payload...)
}

func (m Meta) validate() error {
	return nil
}

func (m Meta) appendTo(buf []byte) []byte {
	buf = append(buf, m.metaType)
	buf = appendVarLen(buf, uint32(len(m.payload)))
	return append(buf, m.payload...)
}

func (m Meta) equal(o Message) bool {
	mm, ok := o.(Meta)
	return ok && mm.metaType == m.metaType && bytes.Equal(mm.payload, m.payload)
}

func (m Meta) String() string {
	if m.IsText() {
		return fmt.Sprintf("Meta 0x%02x %q", m.metaType, m.payload)
	}
	return fmt.Sprintf("Meta 0x%02x % x", m.metaType, m.payload)
}
