package stakingState

import (
	"fmt"

	"github.com/NethermindEth/staking-sidecar/pkg/creditsOperations"
	"github.com/NethermindEth/staking-sidecar/pkg/mappings"
	"github.com/NethermindEth/staking-sidecar/pkg/types/numbers"
	"go.uber.org/zap"
)

const (
	// ValidatorThreshold is the minimum self-bond a validator keeps after a partial unbond.
	ValidatorThreshold uint64 = 10_000_000_000_000
	// DelegatorThreshold is the minimum bond a delegator keeps after a partial unbond.
	DelegatorThreshold uint64 = 10_000_000_000
	// UnbondPeriod is the number of blocks between an unbond and its maturity height.
	UnbondPeriod uint32 = 360
)

type Result struct {
	Snapshot    *mappings.Snapshot
	Settlements *Settlements
}

// Engine folds credits operations over a mapping snapshot. It holds no state between
// calls and is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(l *zap.Logger) *Engine {
	return &Engine{logger: l}
}

// Apply applies ops in order to a copy of snapshot at the given block height. The
// input snapshot is never modified; on error no result is returned.
func (e *Engine) Apply(snapshot *mappings.Snapshot, ops []creditsOperations.Operation, height uint32) (*Result, error) {
	state := snapshot.Clone()
	settlements := NewSettlements()

	for i, op := range ops {
		var err error
		switch o := op.(type) {
		case *creditsOperations.BondPublic:
			err = e.bondPublic(state, o)
		case *creditsOperations.UnbondPublic:
			err = e.unbondPublic(state, settlements, o, height)
		case *creditsOperations.ClaimUnbondPublic:
			err = e.claimUnbondPublic(state, settlements, o)
		default:
			return nil, fmt.Errorf("unsupported operation %T at index %d", op, i)
		}
		if err != nil {
			e.logger.Sugar().Errorw("Failed to apply credits operation",
				zap.Error(err),
				zap.Int("index", i),
				zap.Uint32("blockHeight", height),
				zap.String("transitionId", op.Transition()),
				zap.String("function", op.Function()),
			)
			return nil, &OperationError{
				Index:        i,
				TransitionID: op.Transition(),
				Function:     op.Function(),
				Staker:       op.StakerAddress(),
				Err:          err,
			}
		}
	}

	return &Result{Snapshot: state, Settlements: settlements}, nil
}

func (e *Engine) bondPublic(state *mappings.Snapshot, op *creditsOperations.BondPublic) error {
	bond, ok := state.Bonded.Get(op.Validator)
	if !ok {
		bond = mappings.BondState{Validator: op.Validator}
	}
	total, ok := numbers.CheckedAddU64(bond.Microcredits, op.Amount)
	if !ok {
		return fmt.Errorf("%w: bonded %d + %d", ErrArithmeticOverflow, bond.Microcredits, op.Amount)
	}
	bond.Microcredits = total
	state.Bonded.Set(op.Validator, bond)

	// withdraw routes are read-only here
	if route, ok := state.Withdraw.Get(op.Validator); !ok || route != op.Withdrawal {
		e.logger.Sugar().Debugw("Bond withdrawal input does not match withdraw mapping",
			zap.String("transitionId", op.TransitionID),
			zap.String("validator", op.Validator.String()),
			zap.String("withdrawal", op.Withdrawal.String()),
			zap.Bool("routeExists", ok),
		)
	}
	e.logger.Sugar().Debugw("Applied bond_public",
		zap.String("transitionId", op.TransitionID),
		zap.String("validator", op.Validator.String()),
		zap.Uint64("amount", op.Amount),
		zap.Uint64("bonded", total),
	)
	return nil
}

func (e *Engine) unbondPublic(state *mappings.Snapshot, settlements *Settlements, op *creditsOperations.UnbondPublic, height uint32) error {
	bond, ok := state.Bonded.Get(op.Staker)
	if !ok {
		return ErrMissingBondState
	}

	threshold := DelegatorThreshold
	if bond.Validator == op.Staker {
		threshold = ValidatorThreshold
	}

	previous := bond.Microcredits
	moved := op.Amount
	remaining, ok := numbers.CheckedSubU64(previous, op.Amount)
	fullExit := !ok || remaining < threshold
	if fullExit {
		moved = previous
		remaining = 0
	}

	maturity, ok := numbers.CheckedAddU32(height, UnbondPeriod)
	if !ok {
		return fmt.Errorf("%w: maturity height %d + %d", ErrArithmeticOverflow, height, UnbondPeriod)
	}
	unbond, _ := state.Unbonding.Get(op.Staker)
	unbonding, ok := numbers.CheckedAddU64(unbond.Microcredits, moved)
	if !ok {
		return fmt.Errorf("%w: unbonding %d + %d", ErrArithmeticOverflow, unbond.Microcredits, moved)
	}

	bond.Microcredits = remaining
	state.Bonded.Set(op.Staker, bond)
	state.Unbonding.Set(op.Staker, mappings.UnbondState{Microcredits: unbonding, Height: maturity})
	settlements.Set(op.TransitionID, Settlement{Beneficiary: op.Staker, Microcredits: moved})

	e.logger.Sugar().Debugw("Applied unbond_public",
		zap.String("transitionId", op.TransitionID),
		zap.String("staker", op.Staker.String()),
		zap.Uint64("amount", op.Amount),
		zap.Uint64("moved", moved),
		zap.Bool("fullExit", fullExit),
		zap.Uint32("maturityHeight", maturity),
	)
	return nil
}

func (e *Engine) claimUnbondPublic(state *mappings.Snapshot, settlements *Settlements, op *creditsOperations.ClaimUnbondPublic) error {
	route, ok := state.Withdraw.Get(op.Staker)
	if !ok {
		return ErrMissingWithdrawalRoute
	}
	unbond, ok := state.Unbonding.Get(op.Staker)
	if !ok {
		return ErrMissingUnbondState
	}
	settlements.Set(op.TransitionID, Settlement{Beneficiary: route, Microcredits: unbond.Microcredits})

	e.logger.Sugar().Debugw("Applied claim_unbond_public",
		zap.String("transitionId", op.TransitionID),
		zap.String("staker", op.Staker.String()),
		zap.String("withdrawal", route.String()),
		zap.Uint64("amount", unbond.Microcredits),
	)
	return nil
}
