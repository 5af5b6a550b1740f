package stakingState

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/NethermindEth/staking-sidecar/pkg/utils"
	"github.com/wealdtech/go-merkletree/v2"
	"github.com/wealdtech/go-merkletree/v2/keccak256"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type StateRoot string

type SlotID string

type MerkleLeafPrefix []byte

var (
	MerkleLeafPrefix_Block      MerkleLeafPrefix = []byte("0x00")
	MerkleLeafPrefix_Settlement MerkleLeafPrefix = []byte("0x01")
)

type MerkleTreeInput struct {
	SlotID SlotID
	Value  []byte
}

func NewSlotID(transitionID string) SlotID {
	return SlotID(transitionID)
}

// GenerateStateRoot hashes the block height and every settlement of a result into a
// keccak256 merkle root.
func GenerateStateRoot(height uint32, result *Result) (StateRoot, error) {
	tree, err := MerkleizeSettlements(height, sortValuesForMerkleTree(result.Settlements))
	if err != nil {
		return "", err
	}
	return StateRoot(utils.ConvertBytesToString(tree.Root())), nil
}

func sortValuesForMerkleTree(settlements *Settlements) []*MerkleTreeInput {
	inputs := make([]*MerkleTreeInput, 0, settlements.Len())
	settlements.Each(func(id string, s Settlement) bool {
		value := append(s.Beneficiary.Bytes(), binary.BigEndian.AppendUint64([]byte{}, s.Microcredits)...)
		inputs = append(inputs, &MerkleTreeInput{SlotID: NewSlotID(id), Value: value})
		return true
	})
	slices.SortFunc(inputs, func(i, j *MerkleTreeInput) int {
		return strings.Compare(string(i.SlotID), string(j.SlotID))
	})
	return inputs
}

// MerkleizeSettlements builds the tree from inputs that must be sorted by slot id.
// The height is always the first leaf, so an empty block still has a root.
func MerkleizeSettlements(height uint32, inputs []*MerkleTreeInput) (*merkletree.MerkleTree, error) {
	om := orderedmap.New[SlotID, []byte]()
	for _, input := range inputs {
		if _, found := om.Get(input.SlotID); found {
			return nil, fmt.Errorf("duplicate slotID %s", input.SlotID)
		}
		om.Set(input.SlotID, input.Value)

		prev := om.GetPair(input.SlotID).Prev()
		if prev != nil && prev.Key > input.SlotID {
			return nil, errors.New("slotIDs are not in order")
		}
	}

	leaves := [][]byte{
		binary.BigEndian.AppendUint32(append([]byte{}, MerkleLeafPrefix_Block...), height),
	}
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		leaves = append(leaves, encodeMerkleLeaf(pair.Key, pair.Value))
	}
	return merkletree.NewTree(
		merkletree.WithData(leaves),
		merkletree.WithHashType(keccak256.New()),
	)
}

func encodeMerkleLeaf(slotID SlotID, value []byte) []byte {
	leaf := append([]byte{}, MerkleLeafPrefix_Settlement...)
	leaf = append(leaf, []byte(slotID)...)
	return append(leaf, value...)
}
