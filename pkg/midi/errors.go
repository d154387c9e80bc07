package midi

import (
	"errors"
	"fmt"
)

var (
	// ErrFmtNotSupported is a generic error reporting an unknown format.
	ErrFmtNotSupported = errors.New("format not supported")
	// ErrUnexpectedData is a generic error reporting that the parser encountered unexpected data.
	ErrUnexpectedData = errors.New("unexpected data content")
	// ErrShortRead reports that the stream ended before the expected byte count.
	ErrShortRead = errors.New("insufficient stream")
	// ErrVarLenOverflow reports a variable length quantity longer than 4 bytes.
	ErrVarLenOverflow = errors.New("variable length quantity exceeds 4-byte limit")
	// ErrTrackLength reports a track whose events do not add up to its declared chunk length.
	ErrTrackLength = errors.New("track size information mismatch")
	// ErrNoRunningStatus reports a data byte where a status byte was required.
	ErrNoRunningStatus = errors.New("data byte without running status")
)

// ParseError is returned for every decoding failure. Offset is the number of
// bytes consumed from the stream when the failure was detected.
type ParseError struct {
	Offset int64
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("midi: %s (at %d)", e.Err, e.Offset)
	}
	return fmt.Sprintf("midi: %s - %s (at %d)", e.Err, e.Msg, e.Offset)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConstructionError is returned when a message or event cannot be built
// because its arguments disagree with the framing rules of its variant.
type ConstructionError struct {
	Status byte
	Msg    string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("midi: invalid message 0x%02x: %s", e.Status, e.Msg)
}

func constructionErrorf(status byte, format string, args ...interface{}) error {
	return &ConstructionError{Status: status, Msg: fmt.Sprintf(format, args...)}
}
