package block

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/staking-sidecar/pkg/values"
)

// ErrOpaqueInput is returned when the value of a non-public input is requested.
var ErrOpaqueInput = errors.New("input value is not public")

type TransactionStatus uint8

const (
	TransactionStatus_Accepted TransactionStatus = iota
	TransactionStatus_Rejected
	TransactionStatus_Aborted
	TransactionStatus_Unknown TransactionStatus = 0xff
)

var transactionStatusNames = map[TransactionStatus]string{
	TransactionStatus_Accepted: "accepted",
	TransactionStatus_Rejected: "rejected",
	TransactionStatus_Aborted:  "aborted",
}

func (s TransactionStatus) String() string {
	if n, ok := transactionStatusNames[s]; ok {
		return n
	}
	return "unknown"
}

func ParseTransactionStatus(s string) (TransactionStatus, error) {
	for k, v := range transactionStatusNames {
		if v == s {
			return k, nil
		}
	}
	return TransactionStatus_Unknown, fmt.Errorf("invalid transaction status %q", s)
}

type TransactionType uint8

const (
	TransactionType_Execute TransactionType = iota
	TransactionType_Deploy
	TransactionType_Fee
	TransactionType_Unknown TransactionType = 0xff
)

var transactionTypeNames = map[TransactionType]string{
	TransactionType_Execute: "execute",
	TransactionType_Deploy:  "deploy",
	TransactionType_Fee:     "fee",
}

func (t TransactionType) String() string {
	if n, ok := transactionTypeNames[t]; ok {
		return n
	}
	return "unknown"
}

func ParseTransactionType(s string) (TransactionType, error) {
	for k, v := range transactionTypeNames {
		if v == s {
			return k, nil
		}
	}
	return TransactionType_Unknown, fmt.Errorf("invalid transaction type %q", s)
}

type Visibility uint8

const (
	Visibility_Constant Visibility = iota
	Visibility_Public
	Visibility_Private
	Visibility_Record
	Visibility_ExternalRecord
	Visibility_Unknown Visibility = 0xff
)

var visibilityNames = map[Visibility]string{
	Visibility_Constant:       "constant",
	Visibility_Public:         "public",
	Visibility_Private:        "private",
	Visibility_Record:         "record",
	Visibility_ExternalRecord: "external_record",
}

func (v Visibility) String() string {
	if n, ok := visibilityNames[v]; ok {
		return n
	}
	return "unknown"
}

func ParseVisibility(s string) (Visibility, error) {
	for k, v := range visibilityNames {
		if v == s {
			return k, nil
		}
	}
	return Visibility_Unknown, fmt.Errorf("invalid input type %q", s)
}

type Block struct {
	Height       uint32
	Timestamp    int64
	Transactions []*Transaction
}

type Transaction struct {
	ID     string
	Status TransactionStatus
	Type   TransactionType
	// Transitions is only populated for accepted executions.
	Transitions []*Transition
}

func (t *Transaction) IsAccepted() bool {
	return t.Status == TransactionStatus_Accepted
}

func (t *Transaction) IsExecute() bool {
	return t.Type == TransactionType_Execute
}

type Transition struct {
	ID       string
	Program  string
	Function string
	Inputs   []*Input
}

// Input is one transition input. Raw holds the value text as it appeared in the
// block (ciphertext or tag for non-public inputs, empty when absent).
type Input struct {
	ID         string
	Visibility Visibility
	Raw        string

	// set when the decoder has already resolved a public value
	value *values.Plaintext
}

func NewPublicInput(id string, v *values.Plaintext) *Input {
	return &Input{
		ID:         id,
		Visibility: Visibility_Public,
		Raw:        v.String(),
		value:      v,
	}
}

func (i *Input) IsPublic() bool {
	return i.Visibility == Visibility_Public
}

// Plaintext resolves the value of a public input, parsing Raw when the decoder
// deferred it.
func (i *Input) Plaintext() (*values.Plaintext, error) {
	if !i.IsPublic() {
		return nil, fmt.Errorf("%w: input %s is %s", ErrOpaqueInput, i.ID, i.Visibility)
	}
	if i.value != nil {
		return i.value, nil
	}
	return values.ParsePlaintext(i.Raw)
}
