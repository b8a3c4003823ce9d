package relation

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/kilndb/kilndb/internal/page"
)

// Schema is an ordered column-name / column-attribute list. Field order
// determines wire order.
type Schema []Column

// Validate reports whether row supplies every declared column (§9
// design note: this spec defines validate as a boolean predicate).
func (s Schema) Validate(row Row) bool {
	for _, c := range s {
		if _, ok := row[c.Name]; !ok {
			return false
		}
	}
	return true
}

// Marshal encodes row according to schema's column order.
func (s Schema) Marshal(row Row) ([]byte, error) {
	if !s.Validate(row) {
		return nil, errors.Wrap(ErrRelation, "row is missing a declared column")
	}
	buf := make([]byte, 0, 32)
	for _, c := range s {
		v := row[c.Name]
		if v.Type() != c.Type {
			return nil, errors.Wrapf(ErrRelation, "column %q: expected %s, got %s", c.Name, c.Type, v.Type())
		}
		switch c.Type {
		case ColInt:
			var tmp [4]byte
			binary.LittleEndian.PutUint32(tmp[:], uint32(v.Int()))
			buf = append(buf, tmp[:]...)
		case ColText:
			txt := v.Text()
			if len(txt) > 0xFFFF {
				return nil, errors.Wrapf(ErrRelation, "column %q: text too long", c.Name)
			}
			var tmp [2]byte
			binary.LittleEndian.PutUint16(tmp[:], uint16(len(txt)))
			buf = append(buf, tmp[:]...)
			buf = append(buf, txt...)
		case ColBoolean:
			if v.Bool() {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		default:
			return nil, errors.Wrapf(ErrRelation, "column %q: unimplementable type %v", c.Name, c.Type)
		}
	}
	if len(buf) > page.BlockSize {
		return nil, errors.Wrapf(ErrRelation, "row of %d bytes exceeds block size %d", len(buf), page.BlockSize)
	}
	return buf, nil
}

// Unmarshal decodes buf into a Row keyed by schema's column names.
func (s Schema) Unmarshal(buf []byte) (Row, error) {
	row := make(Row, len(s))
	off := 0
	for _, c := range s {
		switch c.Type {
		case ColInt:
			if off+4 > len(buf) {
				return nil, errors.Wrapf(ErrRelation, "column %q: truncated INT", c.Name)
			}
			row[c.Name] = IntValue(int32(binary.LittleEndian.Uint32(buf[off : off+4])))
			off += 4
		case ColText:
			if off+2 > len(buf) {
				return nil, errors.Wrapf(ErrRelation, "column %q: truncated TEXT length", c.Name)
			}
			n := int(binary.LittleEndian.Uint16(buf[off : off+2]))
			off += 2
			if off+n > len(buf) {
				return nil, errors.Wrapf(ErrRelation, "column %q: truncated TEXT body", c.Name)
			}
			row[c.Name] = TextValue(string(buf[off : off+n]))
			off += n
		case ColBoolean:
			if off+1 > len(buf) {
				return nil, errors.Wrapf(ErrRelation, "column %q: truncated BOOLEAN", c.Name)
			}
			row[c.Name] = BoolValue(buf[off] != 0)
			off++
		default:
			return nil, errors.Wrapf(ErrRelation, "column %q: unimplementable type %v", c.Name, c.Type)
		}
	}
	return row, nil
}
