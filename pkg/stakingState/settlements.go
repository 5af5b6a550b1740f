package stakingState

import (
	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Settlement is the balance change an operation produced and who receives it.
type Settlement struct {
	Beneficiary  aleo.Address
	Microcredits uint64
}

// Settlements maps transition ids to settlements. A later write for the same id
// replaces the value but keeps the id's original position.
type Settlements struct {
	entries *orderedmap.OrderedMap[string, Settlement]
}

func NewSettlements() *Settlements {
	return &Settlements{entries: orderedmap.New[string, Settlement]()}
}

func (s *Settlements) Set(transitionID string, settlement Settlement) {
	s.entries.Set(transitionID, settlement)
}

func (s *Settlements) Get(transitionID string) (Settlement, bool) {
	return s.entries.Get(transitionID)
}

func (s *Settlements) Len() int {
	return s.entries.Len()
}

// Each visits settlements in first-insertion order until fn returns false.
func (s *Settlements) Each(fn func(transitionID string, settlement Settlement) bool) {
	for pair := s.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

func (s *Settlements) TransitionIDs() []string {
	ids := make([]string, 0, s.entries.Len())
	s.Each(func(id string, _ Settlement) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}
