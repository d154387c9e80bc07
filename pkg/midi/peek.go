package midi

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

type byteReader interface {
	io.Reader
	io.ByteReader
}

// peekReader is a forward-only reader with one byte of lookahead. offset
// counts consumed bytes; a peeked byte is not consumed until read.
type peekReader struct {
	r      byteReader
	buf    byte
	peeked bool
	offset int64
}

func newPeekReader(r io.Reader) *peekReader {
	br, ok := r.(byteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &peekReader{r: br}
}

func (p *peekReader) errorf(err error, format string, args ...interface{}) *ParseError {
	return &ParseError{Offset: p.offset, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (p *peekReader) shortRead(err error, want int) *ParseError {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return p.errorf(ErrShortRead, "failed to read %d bytes", want)
	}
	return &ParseError{Offset: p.offset, Err: err}
}

func (p *peekReader) peek() (byte, error) {
	if p.peeked {
		return p.buf, nil
	}
	b, err := p.r.ReadByte()
	if err != nil {
		return 0, p.shortRead(err, 1)
	}
	p.buf = b
	p.peeked = true
	return b, nil
}

// ReadByte implements io.ByteReader. Errors are *ParseError.
func (p *peekReader) ReadByte() (byte, error) {
	if p.peeked {
		p.peeked = false
		p.offset++
		return p.buf, nil
	}
	b, err := p.r.ReadByte()
	if err != nil {
		return 0, p.shortRead(err, 1)
	}
	p.offset++
	return b, nil
}

// readN reads exactly n bytes. The destination grows with the data actually
// read so a bogus length cannot force a large allocation up front.
func (p *peekReader) readN(n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	if p.peeked {
		p.peeked = false
		p.offset++
		buf.WriteByte(p.buf)
	}

	rest := int64(n - buf.Len())
	copied, err := io.CopyN(&buf, p.r, rest)
	p.offset += copied
	if err != nil {
		return nil, p.shortRead(err, n)
	}
	return buf.Bytes(), nil
}

func (p *peekReader) chunkID() ([4]byte, error) {
	var id [4]byte
	b, err := p.readN(4)
	if err != nil {
		return id, err
	}
	copy(id[:], b)
	return id, nil
}

func (p *peekReader) uint16() (uint16, error) {
	b, err := p.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (p *peekReader) uint32() (uint32, error) {
	b, err := p.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// varLen returns the variable length value at the exact parser location.
func (p *peekReader) varLen() (uint32, error) {
	var val uint32
	for i := 0; i < maxVarLenBytes; i++ {
		b, err := p.ReadByte()
		if err != nil {
			return 0, err
		}
		val = val<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return val, nil
		}
	}
	return 0, p.errorf(ErrVarLenOverflow, "")
}
