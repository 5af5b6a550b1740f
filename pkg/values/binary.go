package values

import (
	"bytes"
	"encoding/binary"
	"math"
)

const (
	valueTag_Plaintext uint8 = 0
	valueTag_Future    uint8 = 1
)

// Reader is a bounds-checked little-endian cursor over a byte slice.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) Offset() int {
	return r.pos
}

func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, NewDecodeError("binary", "need %d bytes at offset %d, have %d", n, r.pos, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadString reads a u16 length-prefixed string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadU16()
	if err != nil {
		return "", err
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Writer accumulates little-endian encoded data.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) Write(b []byte) {
	w.buf.Write(b)
}

func (w *Writer) WriteU8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *Writer) WriteU16(v uint16) {
	w.buf.Write(binary.LittleEndian.AppendUint16(nil, v))
}

func (w *Writer) WriteU32(v uint32) {
	w.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
}

func (w *Writer) WriteU64(v uint64) {
	w.buf.Write(binary.LittleEndian.AppendUint64(nil, v))
}

func (w *Writer) WriteI64(v int64) {
	w.WriteU64(uint64(v))
}

// WriteString writes a u16 length-prefixed string.
func (w *Writer) WriteString(s string) error {
	if len(s) > math.MaxUint16 {
		return NewDecodeError("binary", "string of %d bytes exceeds u16 length", len(s))
	}
	w.WriteU16(uint16(len(s)))
	w.buf.WriteString(s)
	return nil
}

// DecodeValue decodes a complete binary Value, which must be a plaintext, and rejects trailing bytes.
func DecodeValue(b []byte) (*Plaintext, error) {
	r := NewReader(b)
	v, err := ReadValue(r)
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, NewDecodeError("value", "%d trailing bytes", r.Remaining())
	}
	return v, nil
}

// DecodePlaintext decodes a complete binary plaintext and rejects trailing bytes.
func DecodePlaintext(b []byte) (*Plaintext, error) {
	r := NewReader(b)
	v, err := ReadPlaintext(r)
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, NewDecodeError("plaintext", "%d trailing bytes", r.Remaining())
	}
	return v, nil
}

func ReadValue(r *Reader) (*Plaintext, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return nil, WithContext(err, "value")
	}
	switch tag {
	case valueTag_Plaintext:
		return ReadPlaintext(r)
	case valueTag_Future:
		return nil, NewDecodeError("value", "future values are not supported")
	default:
		return nil, NewDecodeError("value", "unknown value tag %d", tag)
	}
}

func ReadPlaintext(r *Reader) (*Plaintext, error) {
	return readPlaintext(r, 0)
}

func readPlaintext(r *Reader, depth int) (*Plaintext, error) {
	if depth > maxDepth {
		return nil, NewDecodeError("plaintext", "struct nesting exceeds %d", maxDepth)
	}
	tag, err := r.ReadU8()
	if err != nil {
		return nil, WithContext(err, "plaintext")
	}
	switch PlaintextKind(tag) {
	case PlaintextKind_Literal:
		l, err := ReadLiteral(r)
		if err != nil {
			return nil, err
		}
		return NewLiteralPlaintext(l), nil
	case PlaintextKind_Struct:
		return readStruct(r, depth)
	default:
		return nil, NewDecodeError("plaintext", "unknown plaintext tag %d", tag)
	}
}

func ReadLiteral(r *Reader) (Literal, error) {
	t, err := r.ReadU16()
	if err != nil {
		return Literal{}, WithContext(err, "literal")
	}
	lt := LiteralType(t)
	size := lt.Size()
	if size == 0 {
		if _, known := literalTypes[lt]; known {
			return Literal{}, NewDecodeError("literal", "unsupported literal type %s", lt)
		}
		return Literal{}, NewDecodeError("literal", "unknown literal type %d", t)
	}
	b, err := r.Bytes(size)
	if err != nil {
		return Literal{}, WithContext(err, "literal")
	}
	return NewLiteralFromBytes(lt, b)
}

func readStruct(r *Reader, depth int) (*Plaintext, error) {
	count, err := r.ReadU8()
	if err != nil {
		return nil, WithContext(err, "struct")
	}
	if count == 0 {
		return nil, NewDecodeError("struct", "struct has no members")
	}
	v := NewStructPlaintext()
	seen := make(map[string]struct{}, count)
	for i := 0; i < int(count); i++ {
		nameLen, err := r.ReadU8()
		if err != nil {
			return nil, WithContext(err, "struct")
		}
		nameBytes, err := r.Bytes(int(nameLen))
		if err != nil {
			return nil, WithContext(err, "struct")
		}
		name := string(nameBytes)
		if !validIdentifier(name) {
			return nil, NewDecodeError("struct", "invalid member identifier %q", name)
		}
		if _, dup := seen[name]; dup {
			return nil, NewDecodeError("struct", "duplicate member %q", name)
		}
		seen[name] = struct{}{}

		size, err := r.ReadU16()
		if err != nil {
			return nil, WithContext(err, name)
		}
		raw, err := r.Bytes(int(size))
		if err != nil {
			return nil, WithContext(err, name)
		}
		inner := NewReader(raw)
		member, err := readPlaintext(inner, depth+1)
		if err != nil {
			return nil, WithContext(err, name)
		}
		if inner.Remaining() != 0 {
			return nil, NewDecodeError(name, "member declared %d bytes, used %d", size, inner.Offset())
		}
		v.Members = append(v.Members, Member{Name: name, Value: member})
	}
	return v, nil
}

func validIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

// EncodeValue encodes p as a binary Value.
func EncodeValue(p *Plaintext) ([]byte, error) {
	w := NewWriter()
	if err := WriteValue(w, p); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodePlaintext encodes p as a binary plaintext without the value tag.
func EncodePlaintext(p *Plaintext) ([]byte, error) {
	w := NewWriter()
	if err := WritePlaintext(w, p); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func WriteValue(w *Writer, p *Plaintext) error {
	w.WriteU8(valueTag_Plaintext)
	return WritePlaintext(w, p)
}

func WritePlaintext(w *Writer, p *Plaintext) error {
	switch p.Kind {
	case PlaintextKind_Literal:
		if p.Literal.Type.Size() == 0 {
			return NewDecodeError("literal", "unsupported literal type %s", p.Literal.Type)
		}
		w.WriteU8(uint8(PlaintextKind_Literal))
		w.WriteU16(uint16(p.Literal.Type))
		w.Write(p.Literal.Bytes())
		return nil
	case PlaintextKind_Struct:
		if len(p.Members) == 0 || len(p.Members) > math.MaxUint8 {
			return NewDecodeError("struct", "cannot encode struct with %d members", len(p.Members))
		}
		w.WriteU8(uint8(PlaintextKind_Struct))
		w.WriteU8(uint8(len(p.Members)))
		for _, m := range p.Members {
			if !validIdentifier(m.Name) || len(m.Name) > math.MaxUint8 {
				return NewDecodeError("struct", "invalid member identifier %q", m.Name)
			}
			inner, err := EncodePlaintext(m.Value)
			if err != nil {
				return WithContext(err, m.Name)
			}
			if len(inner) > math.MaxUint16 {
				return NewDecodeError(m.Name, "member of %d bytes exceeds u16 length", len(inner))
			}
			w.WriteU8(uint8(len(m.Name)))
			w.Write([]byte(m.Name))
			w.WriteU16(uint16(len(inner)))
			w.Write(inner)
		}
		return nil
	default:
		return NewDecodeError("plaintext", "unknown plaintext kind %d", p.Kind)
	}
}
