package mappings

import (
	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Mapping is an insertion-ordered map keyed by staker address. Updating an existing
// key keeps its position; new keys are appended.
type Mapping[V any] struct {
	entries *orderedmap.OrderedMap[aleo.Address, V]
}

func NewMapping[V any]() *Mapping[V] {
	return &Mapping[V]{entries: orderedmap.New[aleo.Address, V]()}
}

func (m *Mapping[V]) Get(key aleo.Address) (V, bool) {
	return m.entries.Get(key)
}

func (m *Mapping[V]) Set(key aleo.Address, value V) {
	m.entries.Set(key, value)
}

func (m *Mapping[V]) Delete(key aleo.Address) {
	m.entries.Delete(key)
}

func (m *Mapping[V]) Len() int {
	return m.entries.Len()
}

// insert adds a new entry and reports false if the key already exists.
func (m *Mapping[V]) insert(key aleo.Address, value V) bool {
	if _, exists := m.entries.Get(key); exists {
		return false
	}
	m.entries.Set(key, value)
	return true
}

// Each visits entries in mapping order until fn returns false.
func (m *Mapping[V]) Each(fn func(key aleo.Address, value V) bool) {
	for pair := m.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

func (m *Mapping[V]) Keys() []aleo.Address {
	keys := make([]aleo.Address, 0, m.entries.Len())
	m.Each(func(key aleo.Address, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Clone copies the mapping, preserving order. Values are copied by assignment.
func (m *Mapping[V]) Clone() *Mapping[V] {
	c := NewMapping[V]()
	m.Each(func(key aleo.Address, value V) bool {
		c.entries.Set(key, value)
		return true
	})
	return c
}

// Equal compares entries and their order.
func Equal[V comparable](a, b *Mapping[V]) bool {
	if a.Len() != b.Len() {
		return false
	}
	pb := b.entries.Oldest()
	for pa := a.entries.Oldest(); pa != nil; pa = pa.Next() {
		if pa.Key != pb.Key || pa.Value != pb.Value {
			return false
		}
		pb = pb.Next()
	}
	return true
}

type BondedMapping = Mapping[BondState]
type UnbondingMapping = Mapping[UnbondState]
type WithdrawMapping = Mapping[aleo.Address]

func NewBondedMapping() *BondedMapping {
	return NewMapping[BondState]()
}

func NewUnbondingMapping() *UnbondingMapping {
	return NewMapping[UnbondState]()
}

func NewWithdrawMapping() *WithdrawMapping {
	return NewMapping[aleo.Address]()
}

// Snapshot holds the three staking mappings of credits.aleo at one point in time.
type Snapshot struct {
	Bonded    *BondedMapping
	Unbonding *UnbondingMapping
	Withdraw  *WithdrawMapping
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Bonded:    NewBondedMapping(),
		Unbonding: NewUnbondingMapping(),
		Withdraw:  NewWithdrawMapping(),
	}
}

func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{
		Bonded:    s.Bonded.Clone(),
		Unbonding: s.Unbonding.Clone(),
		Withdraw:  s.Withdraw.Clone(),
	}
}

func (s *Snapshot) Equal(o *Snapshot) bool {
	return Equal(s.Bonded, o.Bonded) && Equal(s.Unbonding, o.Unbonding) && Equal(s.Withdraw, o.Withdraw)
}
