package mappings

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
	"github.com/NethermindEth/staking-sidecar/pkg/values"
)

type codec[V any] struct {
	name          string
	toPlaintext   func(V) *values.Plaintext
	fromPlaintext func(*values.Plaintext) (V, error)
}

var (
	bondedCodec = codec[BondState]{
		name:          aleo.MappingBonded,
		toPlaintext:   BondState.Plaintext,
		fromPlaintext: BondStateFromPlaintext,
	}
	unbondingCodec = codec[UnbondState]{
		name:          aleo.MappingUnbonding,
		toPlaintext:   UnbondState.Plaintext,
		fromPlaintext: UnbondStateFromPlaintext,
	}
	withdrawCodec = codec[aleo.Address]{
		name:          aleo.MappingWithdraw,
		toPlaintext:   addressPlaintext,
		fromPlaintext: addressFromPlaintext,
	}
)

// DecodeBondedJSON decodes a bonded mapping from an array of [staker, value] pairs,
// validating every value with the plaintext parser.
func DecodeBondedJSON(data []byte) (*BondedMapping, error) {
	return decodeJSON(data, bondedCodec)
}

func DecodeUnbondingJSON(data []byte) (*UnbondingMapping, error) {
	return decodeJSON(data, unbondingCodec)
}

func DecodeWithdrawJSON(data []byte) (*WithdrawMapping, error) {
	return decodeJSON(data, withdrawCodec)
}

func decodeJSON[V any](data []byte, c codec[V]) (*Mapping[V], error) {
	var pairs [][]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, values.NewDecodeError(c.name, "invalid json: %v", err)
	}
	m := NewMapping[V]()
	for i, pair := range pairs {
		context := fmt.Sprintf("%s[%d]", c.name, i)
		if len(pair) != 2 {
			return nil, values.NewDecodeError(context, "expected [key, value] pair, found %d elements", len(pair))
		}
		var keyText string
		if err := json.Unmarshal(pair[0], &keyText); err != nil {
			return nil, values.NewDecodeError(context+".key", "key is not a string")
		}
		key, err := aleo.ParseAddress(keyText)
		if err != nil {
			return nil, values.NewDecodeError(context+".key", "%v", err)
		}
		p, err := jsonValuePlaintext(pair[1])
		if err != nil {
			return nil, values.WithContext(err, context+".value")
		}
		v, err := c.fromPlaintext(p)
		if err != nil {
			return nil, values.WithContext(err, context+".value")
		}
		if !m.insert(key, v) {
			return nil, values.NewDecodeError(context, "duplicate key %s", keyText)
		}
	}
	return m, nil
}

// jsonValuePlaintext accepts either the plaintext text form as a JSON string or a
// JSON object whose members are plaintext strings.
func jsonValuePlaintext(raw json.RawMessage) (*values.Plaintext, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		return jsonObjectPlaintext(raw)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, values.NewDecodeError("json", "value is neither a string nor an object")
	}
	return values.ParsePlaintext(text)
}

func jsonObjectPlaintext(raw json.RawMessage) (*values.Plaintext, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, values.NewDecodeError("json", "%v", err)
	}
	p := values.NewStructPlaintext()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, values.NewDecodeError("json", "%v", err)
		}
		name, _ := tok.(string)
		var member string
		if err := dec.Decode(&member); err != nil {
			return nil, values.NewDecodeError("json", "member %q is not a string", name)
		}
		if _, err := p.Member(name); err == nil {
			return nil, values.NewDecodeError("json", "duplicate member %q", name)
		}
		v, err := values.ParsePlaintext(member)
		if err != nil {
			return nil, values.WithContext(err, name)
		}
		p.Members = append(p.Members, values.Member{Name: name, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, values.NewDecodeError("json", "%v", err)
	}
	return p, nil
}

func EncodeBondedJSON(m *BondedMapping) ([]byte, error) {
	return encodeJSON(m, bondedCodec)
}

func EncodeUnbondingJSON(m *UnbondingMapping) ([]byte, error) {
	return encodeJSON(m, unbondingCodec)
}

func EncodeWithdrawJSON(m *WithdrawMapping) ([]byte, error) {
	return encodeJSON(m, withdrawCodec)
}

func encodeJSON[V any](m *Mapping[V], c codec[V]) ([]byte, error) {
	pairs := make([][2]string, 0, m.Len())
	m.Each(func(key aleo.Address, value V) bool {
		pairs = append(pairs, [2]string{key.String(), c.toPlaintext(value).String()})
		return true
	})
	return json.MarshalIndent(pairs, "", "  ")
}
