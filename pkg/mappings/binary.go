package mappings

import (
	"bytes"
	"fmt"

	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
	"github.com/NethermindEth/staking-sidecar/pkg/values"
)

// DecodeBondedBinary decodes a bonded mapping archive: u32 entry count, then per entry
// the key as a binary plaintext and the value as a binary Value. Only canonical
// encodings are accepted, so re-encoding reproduces the input exactly.
func DecodeBondedBinary(data []byte) (*BondedMapping, error) {
	return decodeBinary(data, bondedCodec)
}

func DecodeUnbondingBinary(data []byte) (*UnbondingMapping, error) {
	return decodeBinary(data, unbondingCodec)
}

func DecodeWithdrawBinary(data []byte) (*WithdrawMapping, error) {
	return decodeBinary(data, withdrawCodec)
}

func decodeBinary[V any](data []byte, c codec[V]) (*Mapping[V], error) {
	r := values.NewReader(data)
	count, err := r.ReadU32()
	if err != nil {
		return nil, values.WithContext(err, c.name)
	}
	// the smallest entry is an address key plus a literal value
	if int(count) > r.Remaining()/(2*(3+aleo.AddressSize)) {
		return nil, values.NewDecodeError(c.name, "entry count %d exceeds remaining input", count)
	}
	m := NewMapping[V]()
	for i := 0; i < int(count); i++ {
		context := fmt.Sprintf("%s[%d]", c.name, i)

		keyPlaintext, err := values.ReadPlaintext(r)
		if err != nil {
			return nil, values.WithContext(err, context+".key")
		}
		key, err := keyPlaintext.Address()
		if err != nil {
			return nil, values.WithContext(err, context+".key")
		}

		valueStart := r.Offset()
		valuePlaintext, err := values.ReadValue(r)
		if err != nil {
			return nil, values.WithContext(err, context+".value")
		}
		v, err := c.fromPlaintext(valuePlaintext)
		if err != nil {
			return nil, values.WithContext(err, context+".value")
		}

		canonical, err := values.EncodeValue(c.toPlaintext(v))
		if err != nil {
			return nil, values.WithContext(err, context+".value")
		}
		if !bytes.Equal(canonical, data[valueStart:r.Offset()]) {
			return nil, values.NewDecodeError(context+".value", "non-canonical encoding")
		}

		if !m.insert(key, v) {
			return nil, values.NewDecodeError(context, "duplicate key %s", key)
		}
	}
	if r.Remaining() != 0 {
		return nil, values.NewDecodeError(c.name, "%d trailing bytes", r.Remaining())
	}
	return m, nil
}

func EncodeBondedBinary(m *BondedMapping) ([]byte, error) {
	return encodeBinary(m, bondedCodec)
}

func EncodeUnbondingBinary(m *UnbondingMapping) ([]byte, error) {
	return encodeBinary(m, unbondingCodec)
}

func EncodeWithdrawBinary(m *WithdrawMapping) ([]byte, error) {
	return encodeBinary(m, withdrawCodec)
}

func encodeBinary[V any](m *Mapping[V], c codec[V]) ([]byte, error) {
	w := values.NewWriter()
	w.WriteU32(uint32(m.Len()))
	var err error
	m.Each(func(key aleo.Address, value V) bool {
		if err = values.WritePlaintext(w, addressPlaintext(key)); err != nil {
			return false
		}
		err = values.WriteValue(w, c.toPlaintext(value))
		return err == nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
	return w.Bytes(), nil
}
