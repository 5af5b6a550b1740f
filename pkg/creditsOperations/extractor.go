package creditsOperations

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
	"github.com/NethermindEth/staking-sidecar/pkg/block"
	"github.com/NethermindEth/staking-sidecar/pkg/values"
	"go.uber.org/zap"
)

type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(l *zap.Logger) *Extractor {
	return &Extractor{logger: l}
}

// Extract returns the staking operations of a block in transition order.
func Extract(b *block.Block) ([]Operation, error) {
	return NewExtractor(zap.NewNop()).Extract(b)
}

// ExtractFromBytes decodes raw block bytes and extracts their operations, returning the block height too.
func ExtractFromBytes(raw []byte, format block.Format, mode block.DecodeMode) (uint32, []Operation, error) {
	b, err := block.Decode(raw, format, mode)
	if err != nil {
		return 0, nil, err
	}
	ops, err := Extract(b)
	if err != nil {
		return 0, nil, err
	}
	return b.Height, ops, nil
}

// Extract skips transactions that are not accepted executions and transitions of
// other programs. Unknown credits functions are ignored.
func (e *Extractor) Extract(b *block.Block) ([]Operation, error) {
	ops := make([]Operation, 0)
	for _, tx := range b.Transactions {
		if !tx.IsAccepted() || !tx.IsExecute() {
			e.logger.Sugar().Debugw("Skipping transaction",
				zap.String("transactionId", tx.ID),
				zap.String("status", tx.Status.String()),
				zap.String("type", tx.Type.String()),
			)
			continue
		}
		for _, tr := range tx.Transitions {
			if tr.Program != aleo.CreditsProgram {
				continue
			}
			op, err := e.extractTransition(tr)
			if err != nil {
				return nil, err
			}
			if op == nil {
				continue
			}
			e.logger.Sugar().Debugw("Extracted credits operation",
				zap.Uint32("blockHeight", b.Height),
				zap.String("transitionId", op.Transition()),
				zap.String("function", op.Function()),
				zap.String("staker", op.StakerAddress().String()),
			)
			ops = append(ops, op)
		}
	}
	return ops, nil
}

func (e *Extractor) extractTransition(tr *block.Transition) (Operation, error) {
	switch tr.Function {
	case aleo.FunctionBondPublic:
		in, err := newInputReader(tr, 3)
		if err != nil {
			return nil, err
		}
		validator := in.address(0)
		withdrawal := in.address(1)
		amount := in.u64(2)
		if in.err != nil {
			return nil, in.err
		}
		return &BondPublic{TransitionID: tr.ID, Validator: validator, Withdrawal: withdrawal, Amount: amount}, nil
	case aleo.FunctionUnbondPublic:
		in, err := newInputReader(tr, 2)
		if err != nil {
			return nil, err
		}
		staker := in.address(0)
		amount := in.u64(1)
		if in.err != nil {
			return nil, in.err
		}
		return &UnbondPublic{TransitionID: tr.ID, Staker: staker, Amount: amount}, nil
	case aleo.FunctionClaimUnbondPublic:
		in, err := newInputReader(tr, 1)
		if err != nil {
			return nil, err
		}
		staker := in.address(0)
		if in.err != nil {
			return nil, in.err
		}
		return &ClaimUnbondPublic{TransitionID: tr.ID, Staker: staker}, nil
	default:
		return nil, nil
	}
}

// inputReader reads typed public inputs and keeps the first failure.
type inputReader struct {
	tr  *block.Transition
	err error
}

func newInputReader(tr *block.Transition, arity int) (*inputReader, error) {
	if len(tr.Inputs) != arity {
		return nil, &MalformedOperationError{
			TransitionID: tr.ID,
			Function:     tr.Function,
			Reason:       fmt.Sprintf("expected %d inputs, found %d", arity, len(tr.Inputs)),
		}
	}
	return &inputReader{tr: tr}, nil
}

func (r *inputReader) fail(i int, err error) {
	if r.err != nil {
		return
	}
	reason := err.Error()
	if errors.Is(err, block.ErrOpaqueInput) {
		reason = "input is not public"
	}
	r.err = &MalformedOperationError{
		TransitionID: r.tr.ID,
		Function:     r.tr.Function,
		Reason:       fmt.Sprintf("input %d: %s", i, reason),
	}
}

func (r *inputReader) literal(i int) (values.Literal, bool) {
	if r.err != nil {
		return values.Literal{}, false
	}
	p, err := r.tr.Inputs[i].Plaintext()
	if err != nil {
		r.fail(i, err)
		return values.Literal{}, false
	}
	l, err := p.AsLiteral()
	if err != nil {
		r.fail(i, err)
		return values.Literal{}, false
	}
	return l, true
}

func (r *inputReader) address(i int) aleo.Address {
	l, ok := r.literal(i)
	if !ok {
		return aleo.Address{}
	}
	a, err := l.Address()
	if err != nil {
		r.fail(i, err)
	}
	return a
}

func (r *inputReader) u64(i int) uint64 {
	l, ok := r.literal(i)
	if !ok {
		return 0
	}
	v, err := l.U64()
	if err != nil {
		r.fail(i, err)
	}
	return v
}
