package values

import (
	"encoding/hex"
	"testing"

	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testValidator = "aleo1lzv9f68n4hnldtg9rwc5yskkc8drnuynnvqhdquw5d0p6qt5myrqad7agl"
	testStaker    = "aleo1sln3ylyratwjext23gr5a94zhce77kfwz6kap49gakl90l9vnvqstf0tmr"
)

func Test_Literal(t *testing.T) {
	t.Run("Should parse and render integer literals", func(t *testing.T) {
		cases := []struct {
			text string
			typ  LiteralType
		}{
			{"0u8", LiteralType_U8},
			{"255u8", LiteralType_U8},
			{"65535u16", LiteralType_U16},
			{"4294967295u32", LiteralType_U32},
			{"18446744073709551615u64", LiteralType_U64},
			{"340282366920938463463374607431768211455u128", LiteralType_U128},
			{"-128i8", LiteralType_I8},
			{"127i8", LiteralType_I8},
			{"-9223372036854775808i64", LiteralType_I64},
			{"12field", LiteralType_Field},
			{"7scalar", LiteralType_Scalar},
		}
		for _, c := range cases {
			l, err := ParseLiteral(c.text)
			require.Nil(t, err, c.text)
			assert.Equal(t, c.typ, l.Type, c.text)
			assert.Equal(t, c.text, l.String())
		}
	})
	t.Run("Should reject out of range and malformed literals", func(t *testing.T) {
		cases := []string{
			"256u8",
			"18446744073709551616u64",
			"-1u64",
			"128i8",
			"-129i8",
			"u64",
			"1_000u64",
			"12abc",
			"0x10u64",
			"aleo1notanaddress",
			"",
		}
		for _, c := range cases {
			_, err := ParseLiteral(c)
			assert.ErrorIs(t, err, ErrDecode, c)
		}
	})
	t.Run("Should parse addresses and booleans", func(t *testing.T) {
		l, err := ParseLiteral(testValidator)
		require.Nil(t, err)
		a, err := l.Address()
		assert.Nil(t, err)
		assert.Equal(t, testValidator, a.String())
		assert.Equal(t, testValidator, l.String())

		b, err := ParseLiteral("true")
		require.Nil(t, err)
		v, err := b.Boolean()
		assert.Nil(t, err)
		assert.True(t, v)
	})
	t.Run("Should fail accessors on the wrong subtype", func(t *testing.T) {
		l := NewU32Literal(360)
		_, err := l.U64()
		assert.ErrorIs(t, err, ErrDecode)
		_, err = l.Address()
		assert.ErrorIs(t, err, ErrDecode)
		v, err := l.U32()
		assert.Nil(t, err)
		assert.Equal(t, uint32(360), v)
	})
	t.Run("Should compare literals by value", func(t *testing.T) {
		a, err := ParseLiteral("42u64")
		require.Nil(t, err)
		assert.Equal(t, NewU64Literal(42), a)
		assert.NotEqual(t, NewU32Literal(42), NewU64Literal(42))
	})
}

func Test_ParsePlaintext(t *testing.T) {
	t.Run("Should parse the node rendering of a bond state", func(t *testing.T) {
		text := "{\n  validator: " + testValidator + ",\n  microcredits: 10005940908u64\n}"
		p, err := ParsePlaintext(text)
		require.Nil(t, err)
		require.Nil(t, p.ExpectStruct("validator", "microcredits"))

		v, err := p.Member("validator")
		require.Nil(t, err)
		addr, err := v.Address()
		assert.Nil(t, err)
		assert.Equal(t, aleo.MustParseAddress(testValidator), addr)

		m, err := p.Member("microcredits")
		require.Nil(t, err)
		amount, err := m.U64()
		assert.Nil(t, err)
		assert.Equal(t, uint64(10005940908), amount)

		assert.Equal(t, text, p.String())
	})
	t.Run("Should accept compact whitespace", func(t *testing.T) {
		p, err := ParsePlaintext("{microcredits:5u64,height:9u32}")
		require.Nil(t, err)
		assert.Equal(t, "{\n  microcredits: 5u64,\n  height: 9u32\n}", p.String())
	})
	t.Run("Should render nested structs with deeper indentation", func(t *testing.T) {
		p, err := ParsePlaintext("{ a: { b: 1u8 }, c: true }")
		require.Nil(t, err)
		assert.Equal(t, "{\n  a: {\n    b: 1u8\n  },\n  c: true\n}", p.String())
	})
	t.Run("Should reject malformed structs", func(t *testing.T) {
		cases := []string{
			"{",
			"{}",
			"{ microcredits 5u64 }",
			"{ microcredits: 5u64, }",
			"{ microcredits: 5u64 } extra",
			"{ microcredits: 5u64, microcredits: 6u64 }",
			"{ 1abc: 5u64 }",
			"{ a: 5u64 ",
		}
		for _, c := range cases {
			_, err := ParsePlaintext(c)
			assert.ErrorIs(t, err, ErrDecode, c)
		}
	})
	t.Run("Should enforce exact member sets", func(t *testing.T) {
		p, err := ParsePlaintext("{ microcredits: 5u64, height: 9u32, extra: 1u8 }")
		require.Nil(t, err)
		assert.ErrorIs(t, p.ExpectStruct("microcredits", "height"), ErrDecode)

		_, err = p.Member("validator")
		assert.ErrorIs(t, err, ErrDecode)

		lit := NewLiteralPlaintext(NewU64Literal(1))
		assert.ErrorIs(t, lit.ExpectStruct("microcredits"), ErrDecode)
		_, err = lit.Member("microcredits")
		assert.ErrorIs(t, err, ErrDecode)
	})
	t.Run("Should annotate errors with the member path", func(t *testing.T) {
		_, err := ParsePlaintext("{ outer: { inner: 300u8 } }")
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "outer.inner.literal", de.Context)
	})
}

func Test_Binary(t *testing.T) {
	t.Run("Should decode a u64 literal value", func(t *testing.T) {
		raw, _ := hex.DecodeString("00" + "00" + "0c00" + "ac8a665402000000")
		p, err := DecodeValue(raw)
		require.Nil(t, err)
		v, err := p.U64()
		assert.Nil(t, err)
		assert.Equal(t, uint64(10005940908), v)
	})
	t.Run("Should decode an unbond state struct", func(t *testing.T) {
		raw, _ := hex.DecodeString(
			"00" + "01" + "02" +
				"0c" + hex.EncodeToString([]byte("microcredits")) + "0b00" + "00" + "0c00" + "ac8a665402000000" +
				"06" + hex.EncodeToString([]byte("height")) + "0700" + "00" + "0b00" + "68010000",
		)
		p, err := DecodeValue(raw)
		require.Nil(t, err)
		require.Nil(t, p.ExpectStruct("microcredits", "height"))
		assert.Equal(t, "{\n  microcredits: 10005940908u64,\n  height: 360u32\n}", p.String())

		encoded, err := EncodeValue(p)
		require.Nil(t, err)
		assert.Equal(t, raw, encoded)
	})
	t.Run("Should round trip a bond state through binary", func(t *testing.T) {
		p, err := ParsePlaintext("{ validator: " + testValidator + ", microcredits: 42u64 }")
		require.Nil(t, err)
		raw, err := EncodeValue(p)
		require.Nil(t, err)
		decoded, err := DecodeValue(raw)
		require.Nil(t, err)
		assert.True(t, p.Equal(decoded))
	})
	t.Run("Should reject truncated and malformed encodings", func(t *testing.T) {
		valid, err := EncodeValue(NewStructPlaintext(
			Member{Name: "microcredits", Value: NewLiteralPlaintext(NewU64Literal(7))},
			Member{Name: "height", Value: NewLiteralPlaintext(NewU32Literal(9))},
		))
		require.Nil(t, err)
		for i := 0; i < len(valid); i++ {
			_, err := DecodeValue(valid[:i])
			assert.ErrorIs(t, err, ErrDecode, "prefix length %d", i)
		}

		cases := map[string]string{
			"unknown value tag":      "07" + "00" + "0c00" + "0100000000000000",
			"future value":           "01",
			"unknown plaintext tag":  "00" + "05",
			"unknown literal type":   "00" + "00" + "6300" + "01",
			"string literal":         "00" + "00" + "1000" + "00",
			"invalid boolean":        "00" + "00" + "0100" + "02",
			"trailing bytes":         "00" + "00" + "0900" + "01" + "ff",
			"member length mismatch": "00" + "01" + "01" + "01" + hex.EncodeToString([]byte("a")) + "0500" + "00" + "0900" + "01",
			"empty struct":           "00" + "01" + "00",
		}
		for name, h := range cases {
			raw, _ := hex.DecodeString(h)
			_, err := DecodeValue(raw)
			assert.ErrorIs(t, err, ErrDecode, name)
		}
	})
	t.Run("Should read length prefixed strings", func(t *testing.T) {
		w := NewWriter()
		require.Nil(t, w.WriteString("credits.aleo"))
		w.WriteU32(360)

		r := NewReader(w.Bytes())
		s, err := r.ReadString()
		assert.Nil(t, err)
		assert.Equal(t, "credits.aleo", s)
		v, err := r.ReadU32()
		assert.Nil(t, err)
		assert.Equal(t, uint32(360), v)
		assert.Equal(t, 0, r.Remaining())

		_, err = r.ReadU8()
		assert.ErrorIs(t, err, ErrDecode)
	})
}
