package stakingState

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
)

var (
	ErrMissingBondState       = errors.New("missing bond state")
	ErrMissingUnbondState     = errors.New("missing unbond state")
	ErrMissingWithdrawalRoute = errors.New("missing withdrawal route")
	ErrArithmeticOverflow     = errors.New("arithmetic overflow")
)

// OperationError reports which operation of a batch failed. It unwraps to one of the
// sentinel errors above.
type OperationError struct {
	Index        int
	TransitionID string
	Function     string
	Staker       aleo.Address
	Err          error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s in transition %s (operation %d) for staker %s: %v",
		e.Function, e.TransitionID, e.Index, e.Staker, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
