package block

import (
	"os"
	"strings"
	"testing"

	"github.com/NethermindEth/staking-sidecar/pkg/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validatorText  = "aleo1qyqszqgpqyqszqgpqyqszqgpqyqszqgpqyqszqgpqyqszqgpqyqs5dt756"
	stakerText     = "aleo1qgpqyqszqgpqyqszqgpqyqszqgpqyqszqgpqyqszqgpqyqszqgpqemvepj"
	withdrawalText = "aleo1qvpsxqcrqvpsxqcrqvpsxqcrqvpsxqcrqvpsxqcrqvpsxqcrqvpsuf4rhs"
)

func loadBlock(t *testing.T) []byte {
	data, err := os.ReadFile("testdata/block.json")
	require.Nil(t, err)
	return data
}

func assertFixtureBlock(t *testing.T, b *Block) {
	assert.Equal(t, uint32(1000), b.Height)
	assert.Equal(t, int64(1725462816), b.Timestamp)
	require.Len(t, b.Transactions, 4)

	bond := b.Transactions[0]
	assert.Equal(t, "at1bond", bond.ID)
	assert.True(t, bond.IsAccepted())
	assert.True(t, bond.IsExecute())
	require.Len(t, bond.Transitions, 2)
	assert.Equal(t, "credits.aleo", bond.Transitions[0].Program)
	assert.Equal(t, "bond_public", bond.Transitions[0].Function)
	require.Len(t, bond.Transitions[0].Inputs, 3)

	v, err := bond.Transitions[0].Inputs[0].Plaintext()
	require.Nil(t, err)
	addr, err := v.Address()
	assert.Nil(t, err)
	assert.Equal(t, validatorText, addr.String())

	amount, err := bond.Transitions[0].Inputs[2].Plaintext()
	require.Nil(t, err)
	n, err := amount.U64()
	assert.Nil(t, err)
	assert.Equal(t, uint64(5000000), n)

	assert.Equal(t, TransactionStatus_Rejected, b.Transactions[1].Status)
	assert.Empty(t, b.Transactions[1].Transitions)
	assert.Equal(t, TransactionType_Deploy, b.Transactions[2].Type)
	assert.Empty(t, b.Transactions[2].Transitions)

	mixed := b.Transactions[3]
	require.Len(t, mixed.Transitions, 3)
	private := mixed.Transitions[0].Inputs[1]
	assert.Equal(t, Visibility_Private, private.Visibility)
	assert.Equal(t, "ciphertext1qgqdata", private.Raw)
	_, err = private.Plaintext()
	assert.ErrorIs(t, err, ErrOpaqueInput)

	record := mixed.Transitions[0].Inputs[0]
	assert.Equal(t, Visibility_Record, record.Visibility)
	assert.Equal(t, "", record.Raw)
}

func Test_DecodeJSON(t *testing.T) {
	t.Run("Should decode the fixture block with the checked decoder", func(t *testing.T) {
		b, err := DecodeJSON(loadBlock(t))
		require.Nil(t, err)
		assertFixtureBlock(t, b)
	})
	t.Run("Should decode the fixture block with the unchecked decoder", func(t *testing.T) {
		b, err := DecodeJSONUnchecked(loadBlock(t))
		require.Nil(t, err)
		assertFixtureBlock(t, b)
	})
	t.Run("Should produce identical blocks from both decoders", func(t *testing.T) {
		checked, err := DecodeJSON(loadBlock(t))
		require.Nil(t, err)
		unchecked, err := DecodeJSONUnchecked(loadBlock(t))
		require.Nil(t, err)

		a, err := EncodeJSON(checked)
		require.Nil(t, err)
		b, err := EncodeJSON(unchecked)
		require.Nil(t, err)
		assert.JSONEq(t, string(a), string(b))
	})
	t.Run("Should reject structurally invalid blocks in checked mode", func(t *testing.T) {
		fixture := string(loadBlock(t))
		cases := map[string]string{
			"missing height":      strings.Replace(fixture, `"height": 1000,`, ``, 1),
			"missing timestamp":   strings.Replace(fixture, `,
      "timestamp": 1725462816`, ``, 1),
			"height out of range": strings.Replace(fixture, `"height": 1000`, `"height": 4294967296`, 1),
			"bad status":          strings.Replace(fixture, `"status": "rejected"`, `"status": "dropped"`, 1),
			"bad type":            strings.Replace(fixture, `"type": "deploy",
      "index"`, `"type": "upgrade",
      "index"`, 1),
			"bad input type":      strings.Replace(fixture, `{"type": "public", "id": "in4"`, `{"type": "secret", "id": "in4"`, 1),
			"bad public value":    strings.Replace(fixture, `"1000u64"`, `"1000u65"`, 1),
			"missing public value": strings.Replace(fixture, `{"type": "public", "id": "in4", "value": "1000u64"}`,
				`{"type": "public", "id": "in4"}`, 1),
			"missing program": strings.Replace(fixture, `"program": "token.aleo",`, ``, 1),
			"not json":        "{",
		}
		for name, doc := range cases {
			require.NotEqual(t, fixture, doc, name)
			_, err := DecodeJSON([]byte(doc))
			assert.Error(t, err, name)
		}
	})
	t.Run("Should defer public value parsing in unchecked mode", func(t *testing.T) {
		doc := strings.Replace(string(loadBlock(t)), `"1000u64"`, `"1000u65"`, 1)
		b, err := DecodeJSONUnchecked([]byte(doc))
		require.Nil(t, err)

		_, err = b.Transactions[0].Transitions[1].Inputs[0].Plaintext()
		assert.ErrorIs(t, err, values.ErrDecode)
	})
	t.Run("Should fail the unchecked decoder without a height", func(t *testing.T) {
		_, err := DecodeJSONUnchecked([]byte(`{"transactions": []}`))
		assert.Error(t, err)
		_, err = DecodeJSONUnchecked([]byte(`{"header": {"metadata": {"height": 1, "timestamp": 2}}}`))
		assert.Error(t, err)
	})
	t.Run("Should decode an empty block", func(t *testing.T) {
		doc := []byte(`{"header": {"metadata": {"height": 7, "timestamp": 9}}, "transactions": []}`)
		for _, mode := range []DecodeMode{DecodeMode_Checked, DecodeMode_Unchecked} {
			b, err := Decode(doc, Format_JSON, mode)
			require.Nil(t, err, mode)
			assert.Equal(t, uint32(7), b.Height)
			assert.Empty(t, b.Transactions)
		}
	})
}

func Test_Binary(t *testing.T) {
	t.Run("Should round trip the fixture block through binary", func(t *testing.T) {
		b, err := DecodeJSON(loadBlock(t))
		require.Nil(t, err)

		raw, err := EncodeBinary(b)
		require.Nil(t, err)
		decoded, err := DecodeBinary(raw)
		require.Nil(t, err)
		assertFixtureBlock(t, decoded)

		again, err := EncodeBinary(decoded)
		require.Nil(t, err)
		assert.Equal(t, raw, again)

		viaDecode, err := Decode(raw, Format_Binary, DecodeMode_Unchecked)
		require.Nil(t, err)
		assert.Equal(t, decoded.Height, viaDecode.Height)
	})
	t.Run("Should reject every truncation of a valid encoding", func(t *testing.T) {
		b, err := DecodeJSON(loadBlock(t))
		require.Nil(t, err)
		raw, err := EncodeBinary(b)
		require.Nil(t, err)

		for i := 0; i < len(raw); i++ {
			_, err := DecodeBinary(raw[:i])
			assert.ErrorIs(t, err, values.ErrDecode, "prefix length %d", i)
		}
		_, err = DecodeBinary(append(append([]byte{}, raw...), 0))
		assert.ErrorIs(t, err, values.ErrDecode)
	})
	t.Run("Should reject bad magic and version", func(t *testing.T) {
		_, err := DecodeBinary([]byte("XBLK\x01"))
		assert.ErrorIs(t, err, values.ErrDecode)
		_, err = DecodeBinary([]byte("ABLK\x03"))
		assert.ErrorIs(t, err, values.ErrDecode)
	})
	t.Run("Should reject a huge transaction count without allocating", func(t *testing.T) {
		w := values.NewWriter()
		w.Write([]byte("ABLK"))
		w.WriteU8(binaryVersion)
		w.WriteU32(1)
		w.WriteI64(0)
		w.WriteU32(0xffffffff)
		_, err := DecodeBinary(w.Bytes())
		assert.ErrorIs(t, err, values.ErrDecode)
	})
	t.Run("Should encode public inputs built in memory", func(t *testing.T) {
		amount := values.NewLiteralPlaintext(values.NewU64Literal(42))
		b := &Block{
			Height: 3,
			Transactions: []*Transaction{{
				ID:     "at1",
				Status: TransactionStatus_Accepted,
				Type:   TransactionType_Execute,
				Transitions: []*Transition{{
					ID:       "au1",
					Program:  "credits.aleo",
					Function: "unbond_public",
					Inputs: []*Input{
						{ID: "in1", Visibility: Visibility_Public, Raw: stakerText},
						NewPublicInput("in2", amount),
					},
				}},
			}},
		}
		raw, err := EncodeBinary(b)
		require.Nil(t, err)
		decoded, err := DecodeBinary(raw)
		require.Nil(t, err)

		in := decoded.Transactions[0].Transitions[0].Inputs
		assert.Equal(t, stakerText, in[0].Raw)
		assert.Equal(t, "42u64", in[1].Raw)
	})
}

// otherProgramBlock carries public inputs of another program in shapes the staking
// decoders never parse, ahead of a credits.aleo claim.
const otherProgramBlock = `{
  "header": {"metadata": {"height": 12, "timestamp": 1725462816}},
  "transactions": [{
    "status": "accepted",
    "type": "execute",
    "transaction": {
      "id": "at1other",
      "execution": {"transitions": [
        {"id": "au1other", "program": "other.aleo", "function": "f", "inputs": [
          {"type": "public", "id": "in1", "value": "[1u8, 2u8]"},
          {"type": "public", "id": "in2", "value": "\"hello\""},
          {"type": "public", "id": "in3", "value": "sign1qyqszqgpqyqszqgpqyqszqgpqyqs"},
          {"type": "public", "id": "in4", "value": "{ owner: ` + stakerText + `, amounts: [5u64, 6u64] }"}
        ]},
        {"id": "au1claim", "program": "credits.aleo", "function": "claim_unbond_public", "inputs": [
          {"type": "public", "id": "in5", "value": "` + stakerText + `"}
        ]}
      ]}
    }
  }]
}`

func Test_OtherProgramInputs(t *testing.T) {
	t.Run("Should decode any public value shape outside credits.aleo in both modes", func(t *testing.T) {
		for _, mode := range []DecodeMode{DecodeMode_Checked, DecodeMode_Unchecked} {
			b, err := Decode([]byte(otherProgramBlock), Format_JSON, mode)
			require.Nil(t, err, mode)
			require.Len(t, b.Transactions[0].Transitions, 2)

			other := b.Transactions[0].Transitions[0]
			assert.Equal(t, "[1u8, 2u8]", other.Inputs[0].Raw)
			assert.Equal(t, `"hello"`, other.Inputs[1].Raw)

			claim, err := b.Transactions[0].Transitions[1].Inputs[0].Plaintext()
			require.Nil(t, err)
			addr, err := claim.Address()
			assert.Nil(t, err)
			assert.Equal(t, stakerText, addr.String())
		}
	})
	t.Run("Should still parse credits.aleo values in checked mode", func(t *testing.T) {
		doc := strings.Replace(otherProgramBlock, `"value": "`+stakerText+`"}`, `"value": "[1u8]"}`, 1)
		require.NotEqual(t, otherProgramBlock, doc)

		_, err := DecodeJSON([]byte(doc))
		assert.ErrorIs(t, err, values.ErrDecode)
		_, err = DecodeJSONUnchecked([]byte(doc))
		assert.Nil(t, err)
	})
	t.Run("Should round trip unparsed values through binary as text", func(t *testing.T) {
		b, err := DecodeJSON([]byte(otherProgramBlock))
		require.Nil(t, err)

		raw, err := EncodeBinary(b)
		require.Nil(t, err)
		decoded, err := DecodeBinary(raw)
		require.Nil(t, err)

		other := decoded.Transactions[0].Transitions[0]
		assert.Equal(t, "[1u8, 2u8]", other.Inputs[0].Raw)
		assert.Equal(t, "sign1qyqszqgpqyqszqgpqyqszqgpqyqs", other.Inputs[2].Raw)
		_, err = decoded.Transactions[0].Transitions[1].Inputs[0].Plaintext()
		assert.Nil(t, err)

		again, err := EncodeBinary(decoded)
		require.Nil(t, err)
		assert.Equal(t, raw, again)
	})
	t.Run("Should refuse to store credits.aleo values as text", func(t *testing.T) {
		b, err := DecodeJSONUnchecked([]byte(strings.Replace(otherProgramBlock,
			`"value": "`+stakerText+`"}`, `"value": "[1u8]"}`, 1)))
		require.Nil(t, err)
		_, err = EncodeBinary(b)
		assert.Error(t, err)
	})
}

func Test_Enums(t *testing.T) {
	t.Run("Should parse and render enumerations", func(t *testing.T) {
		for _, s := range []string{"accepted", "rejected", "aborted"} {
			v, err := ParseTransactionStatus(s)
			assert.Nil(t, err)
			assert.Equal(t, s, v.String())
		}
		for _, s := range []string{"execute", "deploy", "fee"} {
			v, err := ParseTransactionType(s)
			assert.Nil(t, err)
			assert.Equal(t, s, v.String())
		}
		for _, s := range []string{"constant", "public", "private", "record", "external_record"} {
			v, err := ParseVisibility(s)
			assert.Nil(t, err)
			assert.Equal(t, s, v.String())
		}
		_, err := ParseFormat("xml")
		assert.Error(t, err)
		_, err = ParseDecodeMode("lenient")
		assert.Error(t, err)
	})
}
