package midi

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerBytes(format, numTracks, division uint16) []byte {
	b := []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6}
	b = binary.BigEndian.AppendUint16(b, format)
	b = binary.BigEndian.AppendUint16(b, numTracks)
	return binary.BigEndian.AppendUint16(b, division)
}

func trackBytes(declared uint32, events ...byte) []byte {
	b := []byte{'M', 'T', 'r', 'k'}
	b = binary.BigEndian.AppendUint32(b, declared)
	return append(b, events...)
}

func smfBytes(format, division uint16, tracks ...[]byte) []byte {
	b := headerBytes(format, uint16(len(tracks)), division)
	for _, events := range tracks {
		b = append(b, trackBytes(uint32(len(events)), events...)...)
	}
	return b
}

func decode(t *testing.T, data []byte) *Song {
	t.Helper()
	song, err := NewDecoder(bytes.NewReader(data)).Decode()
	require.NoError(t, err)
	return song
}

func requireParseError(t *testing.T, data []byte, want error) *ParseError {
	t.Helper()
	song, err := NewDecoder(bytes.NewReader(data)).Decode()
	require.Error(t, err)
	assert.Nil(t, song)

	var perr *ParseError
	require.True(t, errors.As(err, &perr), "got %T: %v", err, err)
	assert.True(t, errors.Is(err, want), "got %v, want %v", err, want)
	return perr
}

func TestDecoder_Decode(t *testing.T) {
	data := append(headerBytes(1, 1, 480),
		0x4D, 0x54, 0x72, 0x6B, 0x00, 0x00, 0x00, 0x09, 0x00, 0x90, 0x3C, 0x64, 0x83, 0x60, 0x80, 0x3C, 0x00)

	song := decode(t, data)
	assert.Equal(t, uint16(1), song.Format)
	assert.Equal(t, int16(480), song.Division)
	assert.Equal(t, uint16(480), song.TicksPerQuarterNote())
	require.Len(t, song.Tracks(), 1)

	track := song.Tracks()[0]
	require.Equal(t, 2, track.Len())

	on, _ := NoteOn(0, 60, 100)
	off, _ := NoteOff(0, 60, 0)
	assert.Equal(t, Event{TimeDelta: 0, Message: on}, track.At(0))
	assert.Equal(t, Event{TimeDelta: 480, Message: off}, track.At(1))
}

func TestDecoderRunningStatus(t *testing.T) {
	song := decode(t, smfBytes(0, 96, []byte{
		0x00, 0x91, 0x3C, 0x64,
		0x60, 0x3C, 0x00, // running status 0x91
		0x00, 0xC1, 0x05,
		0x10, 0x06, // running status 0xC1
		0x00, 0xFF, 0x2F, 0x00,
	}))

	track := song.Tracks()[0]
	require.Equal(t, 5, track.Len())

	on1, _ := NoteOn(1, 60, 100)
	on2, _ := NoteOn(1, 60, 0)
	pc1, _ := ProgramChange(1, 5)
	pc2, _ := ProgramChange(1, 6)
	want := []Event{
		{0, on1},
		{0x60, on2},
		{0, pc1},
		{0x10, pc2},
		{0, EndOfTrack()},
	}
	for i, e := range want {
		assert.True(t, e.Equal(track.At(i)), "event %d: %v != %v", i, e, track.At(i))
	}
}

func TestDecoderMetaAndSysEx(t *testing.T) {
	song := decode(t, smfBytes(1, 480, []byte{
		0x00, 0xFF, 0x03, 0x04, 'l', 'e', 'a', 'd',
		0x00, 0xF0, 0x03, 0x43, 0x12, 0xF7,
		0x81, 0x00, 0xF7, 0x02, 0x01, 0xF7,
		0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20,
		0x00, 0xFF, 0x2F, 0x00,
	}))

	track := song.Tracks()[0]
	require.Equal(t, 5, track.Len())

	name, ok := track.At(0).Message.(Meta)
	require.True(t, ok)
	assert.Equal(t, byte(MetaTrackName), name.MetaType())
	assert.Equal(t, []byte("lead"), name.Payload())

	sysex, ok := track.At(1).Message.(SystemExclusive)
	require.True(t, ok)
	assert.Equal(t, byte(SysExStatus), sysex.Status())
	assert.Equal(t, []byte{0x43, 0x12, 0xF7}, sysex.Payload(), "terminator stays in the payload")

	escape, ok := track.At(2).Message.(SystemExclusive)
	require.True(t, ok)
	assert.Equal(t, uint32(0x80), track.At(2).TimeDelta)
	assert.Equal(t, byte(SysExEscapeStatus), escape.Status())
	assert.Equal(t, []byte{0x01, 0xF7}, escape.Payload())

	tempo := track.At(3).Message.(Meta)
	assert.Equal(t, []byte{0x07, 0xA1, 0x20}, tempo.Payload())

	assert.True(t, track.At(4).Equal(Event{Message: EndOfTrack()}))
}

func TestDecoderHighMetaType(t *testing.T) {
	song := decode(t, smfBytes(1, 480, []byte{0x00, 0xFF, 0x90, 0x01, 0x7E}))

	m, ok := song.Tracks()[0].At(0).Message.(Meta)
	require.True(t, ok)
	assert.Equal(t, byte(0x90), m.MetaType())
	assert.Equal(t, []byte{0x7E}, m.Payload())
	assert.Equal(t, "Meta 0x90 7e", m.String())
}

func TestDecoderRunningStatusAfterMeta(t *testing.T) {
	// a data byte after a meta event reuses 0xFF as its status
	song := decode(t, smfBytes(1, 480, []byte{
		0x00, 0xFF, 0x01, 0x01, 'a',
		0x00, 0x02, 0x01, 'b',
	}))

	track := song.Tracks()[0]
	require.Equal(t, 2, track.Len())
	m := track.At(1).Message.(Meta)
	assert.Equal(t, byte(MetaCopyright), m.MetaType())
	assert.Equal(t, []byte("b"), m.Payload())
}

func TestDecoderRunningStatusAcrossTracks(t *testing.T) {
	song := decode(t, smfBytes(1, 480,
		[]byte{0x00, 0x90, 0x3C, 0x64},
		[]byte{0x00, 0x3C, 0x00},
	))

	tracks := song.Tracks()
	require.Len(t, tracks, 2)
	require.Equal(t, 1, tracks[1].Len())

	release, _ := NoteOn(0, 60, 0)
	assert.True(t, tracks[1].At(0).Equal(Event{0, release}))
}

func TestDecoderNoRunningStatusInFirstTrack(t *testing.T) {
	perr := requireParseError(t, smfBytes(1, 480, []byte{0x00, 0x3C, 0x64}), ErrNoRunningStatus)
	assert.Equal(t, int64(14+8+1), perr.Offset)
	assert.Contains(t, perr.Error(), "data byte 0x3c")
}

func TestDecoderMultipleTracks(t *testing.T) {
	song := decode(t, smfBytes(2, 96,
		[]byte{0x00, 0xFF, 0x2F, 0x00},
		[]byte{},
		[]byte{0x00, 0xB0, 0x07, 0x64, 0x00, 0xFF, 0x2F, 0x00},
	))

	assert.Equal(t, uint16(2), song.Format)
	tracks := song.Tracks()
	require.Len(t, tracks, 3)
	assert.Equal(t, 1, tracks[0].Len())
	assert.Equal(t, 0, tracks[1].Len())
	assert.Equal(t, 2, tracks[2].Len())
}

func TestDecoderIgnoresTrailingData(t *testing.T) {
	data := append(smfBytes(0, 96, []byte{0x00, 0xFF, 0x2F, 0x00}), 0xDE, 0xAD)
	song := decode(t, data)
	assert.Len(t, song.Tracks(), 1)
}

func TestDecoderPlainReader(t *testing.T) {
	data := smfBytes(0, 96, []byte{0x00, 0x90, 0x3C, 0x64, 0x10, 0x3C, 0x00, 0x00, 0xFF, 0x2F, 0x00})
	song, err := NewDecoder(iotest.OneByteReader(bytes.NewReader(data))).Decode()
	require.NoError(t, err)
	assert.Equal(t, 3, song.Tracks()[0].Len())
}

func TestDecoderTruncatedHeader(t *testing.T) {
	full := headerBytes(1, 0, 480)
	require.Len(t, full, 14)

	for i := 0; i < len(full); i++ {
		perr := requireParseError(t, full[:i], ErrShortRead)
		assert.LessOrEqual(t, perr.Offset, int64(i))
	}

	song := decode(t, full)
	assert.Empty(t, song.Tracks())
}

func TestDecoderErrors(t *testing.T) {
	eot := []byte{0x00, 0xFF, 0x2F, 0x00}

	tests := []struct {
		name   string
		data   []byte
		want   error
		offset int64
	}{
		{
			name:   "header magic",
			data:   append([]byte("MThx"), headerBytes(1, 0, 480)[4:]...),
			want:   ErrFmtNotSupported,
			offset: 4,
		},
		{
			name:   "header length",
			data:   append([]byte{'M', 'T', 'h', 'd', 0, 0, 0, 7}, 0, 1, 0, 0, 0x01, 0xE0, 0),
			want:   ErrFmtNotSupported,
			offset: 8,
		},
		{
			name:   "unknown format",
			data:   headerBytes(3, 0, 480),
			want:   ErrFmtNotSupported,
			offset: 14,
		},
		{
			name:   "track magic",
			data:   append(headerBytes(1, 1, 480), append([]byte("MTrx\x00\x00\x00\x04"), eot...)...),
			want:   ErrUnexpectedData,
			offset: 18,
		},
		{
			name:   "missing track",
			data:   append(headerBytes(1, 2, 480), trackBytes(4, eot...)...),
			want:   ErrShortRead,
			offset: 26,
		},
		{
			name:   "track longer than stream",
			data:   append(headerBytes(1, 1, 480), trackBytes(10, eot...)...),
			want:   ErrShortRead,
			offset: 26,
		},
		{
			name:   "track shorter than its events",
			data:   append(headerBytes(1, 1, 480), trackBytes(3, 0x00, 0x90, 0x3C, 0x64)...),
			want:   ErrTrackLength,
			offset: 26,
		},
		{
			name:   "meta length past track end",
			data:   append(headerBytes(1, 1, 480), trackBytes(6, 0x00, 0xFF, 0x01, 0x05, 'a', 'b', 'c', 'd', 'e')...),
			want:   ErrTrackLength,
			offset: 26,
		},
		{
			name:   "sysex cut short",
			data:   append(headerBytes(1, 1, 480), trackBytes(8, 0x00, 0xF0, 0x05, 0x43, 0x12)...),
			want:   ErrShortRead,
			offset: 27,
		},
		{
			name:   "delta-time overflow",
			data:   smfBytes(1, 480, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F, 0x90, 0x3C, 0x64}),
			want:   ErrVarLenOverflow,
			offset: 26,
		},
		{
			name:   "meta length overflow",
			data:   smfBytes(1, 480, []byte{0x00, 0xFF, 0x01, 0x80, 0x80, 0x80, 0x80, 0x00}),
			want:   ErrVarLenOverflow,
			offset: 29,
		},
		{
			name:   "no running status",
			data:   smfBytes(1, 480, []byte{0x00, 0x3C, 0x64}),
			want:   ErrNoRunningStatus,
			offset: 23,
		},
		{
			name:   "system common status",
			data:   smfBytes(1, 480, []byte{0x00, 0xF2, 0x00, 0x00}),
			want:   ErrUnexpectedData,
			offset: 24,
		},
		{
			name:   "status byte in data",
			data:   smfBytes(1, 480, []byte{0x00, 0x90, 0x3C, 0x90, 0x3C, 0x64}),
			want:   ErrUnexpectedData,
			offset: 26,
		},
		{
			name:   "event cut at chunk end",
			data:   smfBytes(1, 480, []byte{0x00, 0x90, 0x3C}),
			want:   ErrShortRead,
			offset: 25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := requireParseError(t, tt.data, tt.want)
			assert.Equal(t, tt.offset, perr.Offset)
			assert.Contains(t, perr.Error(), "(at ")
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	perr := requireParseError(t, smfBytes(1, 480, []byte{0x00, 0xF2, 0x00, 0x00}), ErrUnexpectedData)
	assert.Equal(t, "midi: unexpected data content - status byte 0xf2 is not allowed in a track (at 24)", perr.Error())

	perr = requireParseError(t, smfBytes(1, 480, []byte{0x00, 0x90, 0x3C, 0x90, 0x3C, 0x64}), ErrUnexpectedData)
	assert.Equal(t, "midi: unexpected data content - data byte 0x90 has the high bit set (at 26)", perr.Error())
}
