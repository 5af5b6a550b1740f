package mappings

import (
	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
	"github.com/NethermindEth/staking-sidecar/pkg/values"
)

const (
	memberValidator    = "validator"
	memberMicrocredits = "microcredits"
	memberHeight       = "height"
)

// BondState is the value of bonded[staker]. A staker whose Validator is itself is a validator.
type BondState struct {
	Validator    aleo.Address
	Microcredits uint64
}

// UnbondState is the value of unbonding[staker]; Height is the block at which the balance can be claimed.
type UnbondState struct {
	Microcredits uint64
	Height       uint32
}

func (b BondState) Plaintext() *values.Plaintext {
	return values.NewStructPlaintext(
		values.Member{Name: memberValidator, Value: values.NewLiteralPlaintext(values.NewAddressLiteral(b.Validator))},
		values.Member{Name: memberMicrocredits, Value: values.NewLiteralPlaintext(values.NewU64Literal(b.Microcredits))},
	)
}

func (u UnbondState) Plaintext() *values.Plaintext {
	return values.NewStructPlaintext(
		values.Member{Name: memberMicrocredits, Value: values.NewLiteralPlaintext(values.NewU64Literal(u.Microcredits))},
		values.Member{Name: memberHeight, Value: values.NewLiteralPlaintext(values.NewU32Literal(u.Height))},
	)
}

func BondStateFromPlaintext(p *values.Plaintext) (BondState, error) {
	var b BondState
	if err := p.ExpectStruct(memberValidator, memberMicrocredits); err != nil {
		return b, err
	}
	v, _ := p.Member(memberValidator)
	validator, err := v.Address()
	if err != nil {
		return b, values.WithContext(err, memberValidator)
	}
	m, _ := p.Member(memberMicrocredits)
	amount, err := m.U64()
	if err != nil {
		return b, values.WithContext(err, memberMicrocredits)
	}
	return BondState{Validator: validator, Microcredits: amount}, nil
}

func UnbondStateFromPlaintext(p *values.Plaintext) (UnbondState, error) {
	var u UnbondState
	if err := p.ExpectStruct(memberMicrocredits, memberHeight); err != nil {
		return u, err
	}
	m, _ := p.Member(memberMicrocredits)
	amount, err := m.U64()
	if err != nil {
		return u, values.WithContext(err, memberMicrocredits)
	}
	h, _ := p.Member(memberHeight)
	height, err := h.U32()
	if err != nil {
		return u, values.WithContext(err, memberHeight)
	}
	return UnbondState{Microcredits: amount, Height: height}, nil
}

func addressPlaintext(a aleo.Address) *values.Plaintext {
	return values.NewLiteralPlaintext(values.NewAddressLiteral(a))
}

func addressFromPlaintext(p *values.Plaintext) (aleo.Address, error) {
	return p.Address()
}
