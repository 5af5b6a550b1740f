package creditsOperations

import (
	"testing"

	"github.com/NethermindEth/staking-sidecar/internal/tests"
	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
	"github.com/NethermindEth/staking-sidecar/pkg/block"
	"github.com/NethermindEth/staking-sidecar/pkg/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addressInput(id string, a aleo.Address) *block.Input {
	return block.NewPublicInput(id, values.NewLiteralPlaintext(values.NewAddressLiteral(a)))
}

func u64Input(id string, v uint64) *block.Input {
	return block.NewPublicInput(id, values.NewLiteralPlaintext(values.NewU64Literal(v)))
}

func executeBlock(transitions ...*block.Transition) *block.Block {
	return &block.Block{
		Height: 10,
		Transactions: []*block.Transaction{{
			ID:          "at1",
			Status:      block.TransactionStatus_Accepted,
			Type:        block.TransactionType_Execute,
			Transitions: transitions,
		}},
	}
}

func Test_Extract(t *testing.T) {
	t.Run("Should extract operations from the fixture block in order", func(t *testing.T) {
		raw, err := tests.ReadTestdata("staking_block.json")
		require.Nil(t, err)

		for _, mode := range []block.DecodeMode{block.DecodeMode_Checked, block.DecodeMode_Unchecked} {
			height, ops, err := ExtractFromBytes(raw, block.Format_JSON, mode)
			require.Nil(t, err, mode)
			assert.Equal(t, uint32(1000), height)
			assert.Equal(t, []Operation{
				&BondPublic{TransitionID: "au1bond", Validator: tests.Address(1), Withdrawal: tests.Address(3), Amount: 5_000_000},
				&UnbondPublic{TransitionID: "au1unbond", Staker: tests.Address(2), Amount: 2_000_000},
				&ClaimUnbondPublic{TransitionID: "au1claim", Staker: tests.Address(2)},
			}, ops)
		}
	})
	t.Run("Should return an empty list for a block without credits calls", func(t *testing.T) {
		ops, err := Extract(&block.Block{Height: 1})
		require.Nil(t, err)
		assert.NotNil(t, ops)
		assert.Empty(t, ops)
	})
	t.Run("Should skip rejected and non execute transactions", func(t *testing.T) {
		bond := &block.Transition{
			ID:       "au1",
			Program:  aleo.CreditsProgram,
			Function: aleo.FunctionClaimUnbondPublic,
			Inputs:   []*block.Input{addressInput("in1", tests.Address(1))},
		}
		b := &block.Block{Transactions: []*block.Transaction{
			{ID: "at1", Status: block.TransactionStatus_Rejected, Type: block.TransactionType_Execute, Transitions: []*block.Transition{bond}},
			{ID: "at2", Status: block.TransactionStatus_Aborted, Type: block.TransactionType_Execute, Transitions: []*block.Transition{bond}},
			{ID: "at3", Status: block.TransactionStatus_Accepted, Type: block.TransactionType_Fee, Transitions: []*block.Transition{bond}},
		}}
		ops, err := Extract(b)
		require.Nil(t, err)
		assert.Empty(t, ops)
	})
	t.Run("Should ignore other programs and unknown credits functions", func(t *testing.T) {
		b := executeBlock(
			&block.Transition{ID: "au1", Program: "token.aleo", Function: aleo.FunctionBondPublic},
			&block.Transition{ID: "au2", Program: aleo.CreditsProgram, Function: "transfer_public", Inputs: []*block.Input{u64Input("in1", 1)}},
			&block.Transition{ID: "au3", Program: aleo.CreditsProgram, Function: aleo.FunctionClaimUnbondPublic, Inputs: []*block.Input{addressInput("in2", tests.Address(4))}},
		)
		ops, err := Extract(b)
		require.Nil(t, err)
		assert.Equal(t, []Operation{&ClaimUnbondPublic{TransitionID: "au3", Staker: tests.Address(4)}}, ops)
	})
	t.Run("Should fail on malformed credits transitions", func(t *testing.T) {
		cases := map[string]*block.Transition{
			"bond with two inputs": {
				ID: "au1", Program: aleo.CreditsProgram, Function: aleo.FunctionBondPublic,
				Inputs: []*block.Input{addressInput("in1", tests.Address(1)), u64Input("in2", 5)},
			},
			"unbond amount as address": {
				ID: "au1", Program: aleo.CreditsProgram, Function: aleo.FunctionUnbondPublic,
				Inputs: []*block.Input{addressInput("in1", tests.Address(1)), addressInput("in2", tests.Address(2))},
			},
			"unbond amount as u32": {
				ID: "au1", Program: aleo.CreditsProgram, Function: aleo.FunctionUnbondPublic,
				Inputs: []*block.Input{
					addressInput("in1", tests.Address(1)),
					block.NewPublicInput("in2", values.NewLiteralPlaintext(values.NewU32Literal(5))),
				},
			},
			"claim with private input": {
				ID: "au1", Program: aleo.CreditsProgram, Function: aleo.FunctionClaimUnbondPublic,
				Inputs: []*block.Input{{ID: "in1", Visibility: block.Visibility_Private, Raw: "ciphertext1abc"}},
			},
			"claim with struct input": {
				ID: "au1", Program: aleo.CreditsProgram, Function: aleo.FunctionClaimUnbondPublic,
				Inputs: []*block.Input{block.NewPublicInput("in1", values.NewStructPlaintext(
					values.Member{Name: "staker", Value: values.NewLiteralPlaintext(values.NewAddressLiteral(tests.Address(1)))},
				))},
			},
			"claim with no inputs": {
				ID: "au1", Program: aleo.CreditsProgram, Function: aleo.FunctionClaimUnbondPublic,
			},
		}
		for name, tr := range cases {
			_, err := Extract(executeBlock(tr))
			assert.ErrorIs(t, err, ErrMalformedOperation, name)

			var malformed *MalformedOperationError
			if assert.ErrorAs(t, err, &malformed, name) {
				assert.Equal(t, "au1", malformed.TransitionID)
				assert.Equal(t, tr.Function, malformed.Function)
			}
		}
	})
}

func Test_DecoderParity(t *testing.T) {
	extract := func(b *block.Block, mode block.DecodeMode) ([]Operation, error) {
		raw, err := block.EncodeJSON(b)
		require.Nil(t, err)
		_, ops, err := ExtractFromBytes(raw, block.Format_JSON, mode)
		return ops, err
	}

	t.Run("Should extract identical operations with both decoders", func(t *testing.T) {
		for seed := int64(0); seed < 200; seed++ {
			b := tests.RandomBlock(seed)

			checked, err := extract(b, block.DecodeMode_Checked)
			require.Nil(t, err, "seed %d", seed)
			unchecked, err := extract(b, block.DecodeMode_Unchecked)
			require.Nil(t, err, "seed %d", seed)
			assert.Equal(t, checked, unchecked, "seed %d", seed)

			raw, err := block.EncodeBinary(b)
			require.Nil(t, err)
			_, binary, err := ExtractFromBytes(raw, block.Format_Binary, block.DecodeMode_Checked)
			require.Nil(t, err, "seed %d", seed)
			assert.Equal(t, checked, binary, "seed %d", seed)
		}
	})
	t.Run("Should ignore array, string and signature inputs of other programs", func(t *testing.T) {
		staker := tests.Address(3)
		for _, raw := range []string{"[1u8, 2u8]", `"hello"`, "sign1qyqszqgpqyqszqgpqyqszqgpqyqs"} {
			b := executeBlock(
				&block.Transition{
					ID: "au1other", Program: "other.aleo", Function: "f",
					Inputs: []*block.Input{{ID: "in1", Visibility: block.Visibility_Public, Raw: raw}},
				},
				&block.Transition{
					ID: "au1claim", Program: aleo.CreditsProgram, Function: aleo.FunctionClaimUnbondPublic,
					Inputs: []*block.Input{addressInput("in2", staker)},
				},
			)
			expected := []Operation{&ClaimUnbondPublic{TransitionID: "au1claim", Staker: staker}}

			checked, err := extract(b, block.DecodeMode_Checked)
			require.Nil(t, err, raw)
			assert.Equal(t, expected, checked, raw)
			unchecked, err := extract(b, block.DecodeMode_Unchecked)
			require.Nil(t, err, raw)
			assert.Equal(t, expected, unchecked, raw)
		}
	})
	t.Run("Should agree on failures for blocks with defects", func(t *testing.T) {
		for seed := int64(0); seed < 200; seed++ {
			b := tests.RandomBlockWithDefects(seed)

			checked, checkedErr := extract(b, block.DecodeMode_Checked)
			unchecked, uncheckedErr := extract(b, block.DecodeMode_Unchecked)
			assert.Equal(t, checkedErr == nil, uncheckedErr == nil, "seed %d", seed)
			if checkedErr == nil {
				assert.Equal(t, checked, unchecked, "seed %d", seed)
			} else {
				assert.ErrorIs(t, uncheckedErr, ErrMalformedOperation, "seed %d", seed)
			}
		}
	})
}
