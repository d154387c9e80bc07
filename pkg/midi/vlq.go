package midi

import "bytes"

const (
	// MaxVarLen is the largest value a 4-byte variable length quantity holds.
	MaxVarLen = 0x0FFFFFFF

	maxVarLenBytes = 4
)

// EncodeVarLen encodes n as a variable length quantity: 7-bit groups, most
// significant first, with the high bit set on every byte but the last.
// Values above MaxVarLen produce a sequence DecodeVarLen rejects.
func EncodeVarLen(n uint32) []byte {
	return appendVarLen(nil, n)
}

func appendVarLen(buf []byte, n uint32) []byte {
	var groups [5]byte
	i := len(groups) - 1
	groups[i] = byte(n & 0x7F)
	for n >>= 7; n != 0; n >>= 7 {
		i--
		groups[i] = byte(n&0x7F) | 0x80
	}
	return append(buf, groups[i:]...)
}

func varLenSize(n uint32) int {
	size := 1
	for n >>= 7; n != 0; n >>= 7 {
		size++
	}
	return size
}

// DecodeVarLen decodes the variable length quantity at the start of buf and
// reports how many bytes it occupied. Sequences with redundant leading 0x80
// bytes are accepted; EncodeVarLen always produces the shortest form.
func DecodeVarLen(buf []byte) (val uint32, n int, err error) {
	r := newPeekReader(bytes.NewReader(buf))
	val, err = r.varLen()
	if err != nil {
		return 0, int(r.offset), err
	}
	return val, int(r.offset), nil
}
