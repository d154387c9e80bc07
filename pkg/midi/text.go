package midi

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// IsText reports whether the meta event is one of the text types 0x01-0x0F.
func (m Meta) IsText() bool {
	return 0x01 <= m.metaType && m.metaType <= 0x0F
}

// NewTextMeta builds a text meta event, encoding text with enc. A nil enc
// stores the string bytes as they are.
func NewTextMeta(metaType byte, text string, enc encoding.Encoding) (Meta, error) {
	if metaType < 0x01 || metaType > 0x0F {
		return Meta{}, constructionErrorf(MetaStatus, "meta type 0x%02x is not a text type", metaType)
	}
	if enc == nil {
		return NewMeta(metaType, []byte(text))
	}

	buf, _, err := transform.Bytes(enc.NewEncoder(), []byte(text))
	if err != nil {
		return Meta{}, err
	}
	return NewMeta(metaType, buf)
}

// Text decodes the payload with enc. A nil enc returns the bytes as a string.
func (m Meta) Text(enc encoding.Encoding) (string, error) {
	if enc == nil {
		return string(m.payload), nil
	}

	buf, _, err := transform.Bytes(enc.NewDecoder(), m.payload)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
