package values

import (
	"encoding/binary"
	"math/big"
	"strings"

	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
)

// LiteralType is the variant tag of a literal, numbered as on the wire.
type LiteralType uint16

const (
	LiteralType_Address LiteralType = iota
	LiteralType_Boolean
	LiteralType_Field
	LiteralType_Group
	LiteralType_I8
	LiteralType_I16
	LiteralType_I32
	LiteralType_I64
	LiteralType_I128
	LiteralType_U8
	LiteralType_U16
	LiteralType_U32
	LiteralType_U64
	LiteralType_U128
	LiteralType_Scalar
	LiteralType_Signature
	LiteralType_String
)

const maxLiteralSize = 32

type literalTypeInfo struct {
	name   string
	size   int
	signed bool
	// numeric literals are rendered as <decimal><name>
	numeric bool
}

// signature and string are variable sized and have no place in staking values; size 0 marks them unsupported.
var literalTypes = map[LiteralType]literalTypeInfo{
	LiteralType_Address:   {name: "address", size: 32},
	LiteralType_Boolean:   {name: "boolean", size: 1},
	LiteralType_Field:     {name: "field", size: 32, numeric: true},
	LiteralType_Group:     {name: "group", size: 32, numeric: true},
	LiteralType_I8:        {name: "i8", size: 1, signed: true, numeric: true},
	LiteralType_I16:       {name: "i16", size: 2, signed: true, numeric: true},
	LiteralType_I32:       {name: "i32", size: 4, signed: true, numeric: true},
	LiteralType_I64:       {name: "i64", size: 8, signed: true, numeric: true},
	LiteralType_I128:      {name: "i128", size: 16, signed: true, numeric: true},
	LiteralType_U8:        {name: "u8", size: 1, numeric: true},
	LiteralType_U16:       {name: "u16", size: 2, numeric: true},
	LiteralType_U32:       {name: "u32", size: 4, numeric: true},
	LiteralType_U64:       {name: "u64", size: 8, numeric: true},
	LiteralType_U128:      {name: "u128", size: 16, numeric: true},
	LiteralType_Scalar:    {name: "scalar", size: 32, numeric: true},
	LiteralType_Signature: {name: "signature"},
	LiteralType_String:    {name: "string"},
}

// numeric suffixes, longest first so "u128" is tried before "u12"-like prefixes
var numericSuffixes = []LiteralType{
	LiteralType_Scalar,
	LiteralType_Field,
	LiteralType_Group,
	LiteralType_U128,
	LiteralType_I128,
	LiteralType_U64,
	LiteralType_I64,
	LiteralType_U32,
	LiteralType_I32,
	LiteralType_U16,
	LiteralType_I16,
	LiteralType_U8,
	LiteralType_I8,
}

func (t LiteralType) String() string {
	if info, ok := literalTypes[t]; ok {
		return info.name
	}
	return "unknown"
}

// Size returns the encoded size in bytes, or 0 when the type is not supported.
func (t LiteralType) Size() int {
	return literalTypes[t].size
}

// Literal is a single typed value held in its canonical little-endian byte form.
// Literals are comparable with ==.
type Literal struct {
	Type LiteralType
	data [maxLiteralSize]byte
}

func NewAddressLiteral(a aleo.Address) Literal {
	l := Literal{Type: LiteralType_Address}
	copy(l.data[:], a[:])
	return l
}

func NewU64Literal(v uint64) Literal {
	l := Literal{Type: LiteralType_U64}
	binary.LittleEndian.PutUint64(l.data[:8], v)
	return l
}

func NewU32Literal(v uint32) Literal {
	l := Literal{Type: LiteralType_U32}
	binary.LittleEndian.PutUint32(l.data[:4], v)
	return l
}

func NewBooleanLiteral(v bool) Literal {
	l := Literal{Type: LiteralType_Boolean}
	if v {
		l.data[0] = 1
	}
	return l
}

// NewLiteralFromBytes validates and copies the little-endian bytes of a literal.
func NewLiteralFromBytes(t LiteralType, b []byte) (Literal, error) {
	info, ok := literalTypes[t]
	if !ok {
		return Literal{}, NewDecodeError("literal", "unknown literal type %d", t)
	}
	if info.size == 0 {
		return Literal{}, NewDecodeError("literal", "unsupported literal type %s", info.name)
	}
	if len(b) != info.size {
		return Literal{}, NewDecodeError("literal", "%s expects %d bytes, got %d", info.name, info.size, len(b))
	}
	if t == LiteralType_Boolean && b[0] > 1 {
		return Literal{}, NewDecodeError("literal", "invalid boolean byte %d", b[0])
	}
	l := Literal{Type: t}
	copy(l.data[:], b)
	return l, nil
}

// Bytes returns the little-endian encoding of the literal value.
func (l Literal) Bytes() []byte {
	size := l.Type.Size()
	b := make([]byte, size)
	copy(b, l.data[:size])
	return b
}

func (l Literal) expect(t LiteralType) error {
	if l.Type != t {
		return NewDecodeError("literal", "expected %s, found %s", t, l.Type)
	}
	return nil
}

func (l Literal) Address() (aleo.Address, error) {
	var a aleo.Address
	if err := l.expect(LiteralType_Address); err != nil {
		return a, err
	}
	copy(a[:], l.data[:aleo.AddressSize])
	return a, nil
}

func (l Literal) U64() (uint64, error) {
	if err := l.expect(LiteralType_U64); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(l.data[:8]), nil
}

func (l Literal) U32() (uint32, error) {
	if err := l.expect(LiteralType_U32); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(l.data[:4]), nil
}

func (l Literal) Boolean() (bool, error) {
	if err := l.expect(LiteralType_Boolean); err != nil {
		return false, err
	}
	return l.data[0] == 1, nil
}

// bigInt interprets the literal bytes as a little-endian integer, two's complement when signed.
func (l Literal) bigInt() *big.Int {
	info := literalTypes[l.Type]
	be := make([]byte, info.size)
	for i := 0; i < info.size; i++ {
		be[info.size-1-i] = l.data[i]
	}
	v := new(big.Int).SetBytes(be)
	if info.signed && info.size > 0 && be[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(info.size*8)))
	}
	return v
}

func (l Literal) String() string {
	info, ok := literalTypes[l.Type]
	if !ok {
		return "unknown"
	}
	switch {
	case l.Type == LiteralType_Address:
		a, _ := l.Address()
		return a.String()
	case l.Type == LiteralType_Boolean:
		if l.data[0] == 1 {
			return "true"
		}
		return "false"
	case info.numeric:
		return l.bigInt().String() + info.name
	default:
		return info.name
	}
}

// ParseLiteral parses the text form of a literal, validating the value range of its type.
func ParseLiteral(s string) (Literal, error) {
	switch {
	case s == "":
		return Literal{}, NewDecodeError("literal", "empty literal")
	case s == "true":
		return NewBooleanLiteral(true), nil
	case s == "false":
		return NewBooleanLiteral(false), nil
	case strings.HasPrefix(s, aleo.AddressPrefix+"1"):
		a, err := aleo.ParseAddress(s)
		if err != nil {
			return Literal{}, NewDecodeError("literal", "%v", err)
		}
		return NewAddressLiteral(a), nil
	}

	for _, t := range numericSuffixes {
		info := literalTypes[t]
		if !strings.HasSuffix(s, info.name) {
			continue
		}
		return parseNumericLiteral(t, strings.TrimSuffix(s, info.name))
	}
	return Literal{}, NewDecodeError("literal", "unrecognized literal %q", s)
}

func parseNumericLiteral(t LiteralType, digits string) (Literal, error) {
	info := literalTypes[t]

	unsigned := strings.TrimPrefix(digits, "-")
	if unsigned == "" {
		return Literal{}, NewDecodeError("literal", "missing digits for %s", info.name)
	}
	for _, c := range unsigned {
		if c < '0' || c > '9' {
			return Literal{}, NewDecodeError("literal", "invalid digit %q in %s literal", c, info.name)
		}
	}
	negative := len(unsigned) != len(digits)
	if negative && !info.signed {
		return Literal{}, NewDecodeError("literal", "negative value for unsigned %s", info.name)
	}

	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Literal{}, NewDecodeError("literal", "invalid %s literal %q", info.name, digits)
	}

	bits := uint(info.size * 8)
	limit := new(big.Int).Lsh(big.NewInt(1), bits)
	if info.signed {
		half := new(big.Int).Rsh(limit, 1)
		if v.Cmp(half) >= 0 || v.Cmp(new(big.Int).Neg(half)) < 0 {
			return Literal{}, NewDecodeError("literal", "%s out of range for %s", digits, info.name)
		}
		if v.Sign() < 0 {
			v.Add(v, limit)
		}
	} else if v.Cmp(limit) >= 0 {
		return Literal{}, NewDecodeError("literal", "%s out of range for %s", digits, info.name)
	}

	be := v.FillBytes(make([]byte, info.size))
	l := Literal{Type: t}
	for i := 0; i < info.size; i++ {
		l.data[i] = be[info.size-1-i]
	}
	return l, nil
}
