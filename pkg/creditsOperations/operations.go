package creditsOperations

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
)

// ErrMalformedOperation matches every *MalformedOperationError with errors.Is.
var ErrMalformedOperation = errors.New("malformed credits operation")

type MalformedOperationError struct {
	TransitionID string
	Function     string
	Reason       string
}

func (e *MalformedOperationError) Error() string {
	return fmt.Sprintf("malformed %s in transition %s: %s", e.Function, e.TransitionID, e.Reason)
}

func (e *MalformedOperationError) Is(target error) bool {
	return target == ErrMalformedOperation
}

// Operation is one of BondPublic, UnbondPublic or ClaimUnbondPublic.
type Operation interface {
	// Transition returns the id of the transition the operation was read from.
	Transition() string
	Function() string
	// StakerAddress is the address whose mapping entries the operation touches.
	StakerAddress() aleo.Address
	isOperation()
}

// BondPublic bonds Amount microcredits to Validator. The staker is the validator itself.
type BondPublic struct {
	TransitionID string
	Validator    aleo.Address
	Withdrawal   aleo.Address
	Amount       uint64
}

type UnbondPublic struct {
	TransitionID string
	Staker       aleo.Address
	Amount       uint64
}

type ClaimUnbondPublic struct {
	TransitionID string
	Staker       aleo.Address
}

func (o *BondPublic) Transition() string          { return o.TransitionID }
func (o *BondPublic) Function() string            { return aleo.FunctionBondPublic }
func (o *BondPublic) StakerAddress() aleo.Address { return o.Validator }
func (o *BondPublic) isOperation()                {}

func (o *UnbondPublic) Transition() string          { return o.TransitionID }
func (o *UnbondPublic) Function() string            { return aleo.FunctionUnbondPublic }
func (o *UnbondPublic) StakerAddress() aleo.Address { return o.Staker }
func (o *UnbondPublic) isOperation()                {}

func (o *ClaimUnbondPublic) Transition() string          { return o.TransitionID }
func (o *ClaimUnbondPublic) Function() string            { return aleo.FunctionClaimUnbondPublic }
func (o *ClaimUnbondPublic) StakerAddress() aleo.Address { return o.Staker }
func (o *ClaimUnbondPublic) isOperation()                {}
