package mappings

import (
	"fmt"

	"github.com/NethermindEth/staking-sidecar/pkg/values"
)

// SnapshotJSON holds the three mapping documents in their JSON pair-array form.
type SnapshotJSON struct {
	Bonded    []byte
	Unbonding []byte
	Withdraw  []byte
}

// DecodeSnapshotJSON decodes all three mappings with either the checked or the pattern-based decoders.
func DecodeSnapshotJSON(doc SnapshotJSON, checked bool) (*Snapshot, error) {
	s := &Snapshot{}
	var err error
	if checked {
		if s.Bonded, err = DecodeBondedJSON(doc.Bonded); err != nil {
			return nil, err
		}
		if s.Unbonding, err = DecodeUnbondingJSON(doc.Unbonding); err != nil {
			return nil, err
		}
		if s.Withdraw, err = DecodeWithdrawJSON(doc.Withdraw); err != nil {
			return nil, err
		}
		return s, nil
	}
	if s.Bonded, err = DecodeBondedJSONUnchecked(doc.Bonded); err != nil {
		return nil, err
	}
	if s.Unbonding, err = DecodeUnbondingJSONUnchecked(doc.Unbonding); err != nil {
		return nil, err
	}
	if s.Withdraw, err = DecodeWithdrawJSONUnchecked(doc.Withdraw); err != nil {
		return nil, err
	}
	return s, nil
}

func EncodeSnapshotJSON(s *Snapshot) (*SnapshotJSON, error) {
	doc := &SnapshotJSON{}
	var err error
	if doc.Bonded, err = EncodeBondedJSON(s.Bonded); err != nil {
		return nil, err
	}
	if doc.Unbonding, err = EncodeUnbondingJSON(s.Unbonding); err != nil {
		return nil, err
	}
	if doc.Withdraw, err = EncodeWithdrawJSON(s.Withdraw); err != nil {
		return nil, err
	}
	return doc, nil
}

// EncodeSnapshotBinary writes the bonded, unbonding and withdraw archives in that
// order, each prefixed with its u32 byte length.
func EncodeSnapshotBinary(s *Snapshot) ([]byte, error) {
	bonded, err := EncodeBondedBinary(s.Bonded)
	if err != nil {
		return nil, err
	}
	unbonding, err := EncodeUnbondingBinary(s.Unbonding)
	if err != nil {
		return nil, err
	}
	withdraw, err := EncodeWithdrawBinary(s.Withdraw)
	if err != nil {
		return nil, err
	}
	w := values.NewWriter()
	for _, archive := range [][]byte{bonded, unbonding, withdraw} {
		w.WriteU32(uint32(len(archive)))
		w.Write(archive)
	}
	return w.Bytes(), nil
}

func DecodeSnapshotBinary(data []byte) (*Snapshot, error) {
	r := values.NewReader(data)
	archives := make([][]byte, 3)
	for i := range archives {
		size, err := r.ReadU32()
		if err != nil {
			return nil, values.WithContext(err, "snapshot")
		}
		if archives[i], err = r.Bytes(int(size)); err != nil {
			return nil, values.WithContext(err, "snapshot")
		}
	}
	if r.Remaining() != 0 {
		return nil, values.NewDecodeError("snapshot", "%d trailing bytes", r.Remaining())
	}

	s := &Snapshot{}
	var err error
	if s.Bonded, err = DecodeBondedBinary(archives[0]); err != nil {
		return nil, err
	}
	if s.Unbonding, err = DecodeUnbondingBinary(archives[1]); err != nil {
		return nil, err
	}
	if s.Withdraw, err = DecodeWithdrawBinary(archives[2]); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("Snapshot{bonded: %d, unbonding: %d, withdraw: %d}", s.Bonded.Len(), s.Unbonding.Len(), s.Withdraw.Len())
}
