package values

import (
	"strings"

	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
)

type PlaintextKind uint8

const (
	PlaintextKind_Literal PlaintextKind = 0
	PlaintextKind_Struct  PlaintextKind = 1
)

// maxDepth bounds struct nesting for both the text and binary decoders.
const maxDepth = 32

// Member is one named field of a struct plaintext.
type Member struct {
	Name  string
	Value *Plaintext
}

// Plaintext is either a literal or a struct of named members in declaration order.
type Plaintext struct {
	Kind    PlaintextKind
	Literal Literal
	Members []Member
}

func NewLiteralPlaintext(l Literal) *Plaintext {
	return &Plaintext{Kind: PlaintextKind_Literal, Literal: l}
}

func NewStructPlaintext(members ...Member) *Plaintext {
	return &Plaintext{Kind: PlaintextKind_Struct, Members: members}
}

func (p *Plaintext) IsStruct() bool {
	return p.Kind == PlaintextKind_Struct
}

// AsLiteral returns the literal or fails if the plaintext is a struct.
func (p *Plaintext) AsLiteral() (Literal, error) {
	if p.Kind != PlaintextKind_Literal {
		return Literal{}, NewDecodeError("plaintext", "expected literal, found struct")
	}
	return p.Literal, nil
}

func (p *Plaintext) Address() (aleo.Address, error) {
	l, err := p.AsLiteral()
	if err != nil {
		return aleo.Address{}, err
	}
	return l.Address()
}

func (p *Plaintext) U64() (uint64, error) {
	l, err := p.AsLiteral()
	if err != nil {
		return 0, err
	}
	return l.U64()
}

func (p *Plaintext) U32() (uint32, error) {
	l, err := p.AsLiteral()
	if err != nil {
		return 0, err
	}
	return l.U32()
}

// Member looks up a struct member by name.
func (p *Plaintext) Member(name string) (*Plaintext, error) {
	if p.Kind != PlaintextKind_Struct {
		return nil, NewDecodeError("plaintext", "expected struct, found literal")
	}
	for _, m := range p.Members {
		if m.Name == name {
			return m.Value, nil
		}
	}
	return nil, NewDecodeError("plaintext", "missing member %q", name)
}

// ExpectStruct checks that p is a struct holding exactly the given members, in any order.
func (p *Plaintext) ExpectStruct(names ...string) error {
	if p.Kind != PlaintextKind_Struct {
		return NewDecodeError("plaintext", "expected struct, found literal")
	}
	if len(p.Members) != len(names) {
		return NewDecodeError("plaintext", "expected %d members, found %d", len(names), len(p.Members))
	}
	for _, name := range names {
		if _, err := p.Member(name); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports structural equality, including member order.
func (p *Plaintext) Equal(o *Plaintext) bool {
	if p == nil || o == nil {
		return p == o
	}
	if p.Kind != o.Kind {
		return false
	}
	if p.Kind == PlaintextKind_Literal {
		return p.Literal == o.Literal
	}
	if len(p.Members) != len(o.Members) {
		return false
	}
	for i := range p.Members {
		if p.Members[i].Name != o.Members[i].Name || !p.Members[i].Value.Equal(o.Members[i].Value) {
			return false
		}
	}
	return true
}

// String renders the plaintext in the node's display form, e.g.
//
//	{
//	  microcredits: 100u64,
//	  height: 360u32
//	}
func (p *Plaintext) String() string {
	var sb strings.Builder
	p.render(&sb, 0)
	return sb.String()
}

func (p *Plaintext) render(sb *strings.Builder, depth int) {
	if p.Kind == PlaintextKind_Literal {
		sb.WriteString(p.Literal.String())
		return
	}
	sb.WriteString("{")
	for i, m := range p.Members {
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("  ", depth+1))
		sb.WriteString(m.Name)
		sb.WriteString(": ")
		m.Value.render(sb, depth+1)
		if i < len(p.Members)-1 {
			sb.WriteString(",")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString("}")
}
