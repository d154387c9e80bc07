package midi

// Channel voice status types, high nibble of the status byte.
const (
	NoteOffType           = 0x80
	NoteOnType            = 0x90
	PolyAftertouchType    = 0xA0
	ControlChangeType     = 0xB0
	ProgramChangeType     = 0xC0
	ChannelAftertouchType = 0xD0
	PitchBendType         = 0xE0
)

// System status bytes that may appear in a track.
const (
	SysExStatus       = 0xF0
	SysExEscapeStatus = 0xF7
	MetaStatus        = 0xFF
)

func isVoiceMsgType(b byte) bool {
	return 0x8 <= b && b <= 0xE
}

func isStatusByte(b byte) bool {
	return b&0x80 != 0
}

// fixedDataSize returns the number of data bytes following a channel voice
// status byte. System and meta statuses have no fixed size.
func fixedDataSize(status byte) int {
	switch status & 0xF0 {
	case 0xF0:
		return 0
	case ProgramChangeType, ChannelAftertouchType:
		return 1
	default:
		return 2
	}
}
