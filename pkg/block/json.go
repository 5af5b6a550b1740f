package block

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
	"github.com/NethermindEth/staking-sidecar/pkg/values"
)

type blockJSON struct {
	Header       headerJSON         `json:"header"`
	Transactions *[]transactionJSON `json:"transactions"`
}

type headerJSON struct {
	Metadata metadataJSON `json:"metadata"`
}

type metadataJSON struct {
	Height    *uint32 `json:"height"`
	Timestamp *int64  `json:"timestamp"`
}

type transactionJSON struct {
	Status      string              `json:"status"`
	Type        string              `json:"type"`
	Transaction transactionBodyJSON `json:"transaction"`
}

type transactionBodyJSON struct {
	ID        string         `json:"id"`
	Execution *executionJSON `json:"execution,omitempty"`
}

type executionJSON struct {
	Transitions *[]transitionJSON `json:"transitions"`
}

type transitionJSON struct {
	ID       string       `json:"id"`
	Program  string       `json:"program"`
	Function string       `json:"function"`
	Inputs   *[]inputJSON `json:"inputs"`
}

type inputJSON struct {
	Type  string  `json:"type"`
	ID    string  `json:"id"`
	Value *string `json:"value,omitempty"`
}

// DecodeJSON decodes a block document through typed structures and validates every
// field the staking extraction depends on. Public input values of credits.aleo
// transitions are parsed eagerly; other programs only need a value to be present.
func DecodeJSON(data []byte) (*Block, error) {
	var doc blockJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid block json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid block json: trailing data")
	}

	if doc.Header.Metadata.Height == nil {
		return nil, fmt.Errorf("invalid block json: missing header.metadata.height")
	}
	if doc.Header.Metadata.Timestamp == nil {
		return nil, fmt.Errorf("invalid block json: missing header.metadata.timestamp")
	}
	if doc.Transactions == nil {
		return nil, fmt.Errorf("invalid block json: missing transactions")
	}

	b := &Block{
		Height:       *doc.Header.Metadata.Height,
		Timestamp:    *doc.Header.Metadata.Timestamp,
		Transactions: make([]*Transaction, 0, len(*doc.Transactions)),
	}
	for i, tj := range *doc.Transactions {
		tx, err := decodeTransactionJSON(tj)
		if err != nil {
			return nil, fmt.Errorf("transactions[%d]: %w", i, err)
		}
		b.Transactions = append(b.Transactions, tx)
	}
	return b, nil
}

func decodeTransactionJSON(tj transactionJSON) (*Transaction, error) {
	status, err := ParseTransactionStatus(tj.Status)
	if err != nil {
		return nil, err
	}
	txType, err := ParseTransactionType(tj.Type)
	if err != nil {
		return nil, err
	}
	if tj.Transaction.ID == "" {
		return nil, fmt.Errorf("missing transaction.id")
	}
	tx := &Transaction{
		ID:     tj.Transaction.ID,
		Status: status,
		Type:   txType,
	}
	if !tx.IsAccepted() || !tx.IsExecute() {
		return tx, nil
	}

	if tj.Transaction.Execution == nil || tj.Transaction.Execution.Transitions == nil {
		return nil, fmt.Errorf("transaction %s: missing execution.transitions", tx.ID)
	}
	transitions := *tj.Transaction.Execution.Transitions
	tx.Transitions = make([]*Transition, 0, len(transitions))
	for i, trj := range transitions {
		tr, err := decodeTransitionJSON(trj)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: transitions[%d]: %w", tx.ID, i, err)
		}
		tx.Transitions = append(tx.Transitions, tr)
	}
	return tx, nil
}

func decodeTransitionJSON(trj transitionJSON) (*Transition, error) {
	switch {
	case trj.ID == "":
		return nil, fmt.Errorf("missing id")
	case trj.Program == "":
		return nil, fmt.Errorf("missing program")
	case trj.Function == "":
		return nil, fmt.Errorf("missing function")
	case trj.Inputs == nil:
		return nil, fmt.Errorf("missing inputs")
	}
	tr := &Transition{
		ID:       trj.ID,
		Program:  trj.Program,
		Function: trj.Function,
		Inputs:   make([]*Input, 0, len(*trj.Inputs)),
	}
	parseValues := trj.Program == aleo.CreditsProgram
	for i, ij := range *trj.Inputs {
		in, err := decodeInputJSON(ij, parseValues)
		if err != nil {
			return nil, fmt.Errorf("inputs[%d]: %w", i, err)
		}
		tr.Inputs = append(tr.Inputs, in)
	}
	return tr, nil
}

func decodeInputJSON(ij inputJSON, parseValue bool) (*Input, error) {
	visibility, err := ParseVisibility(ij.Type)
	if err != nil {
		return nil, err
	}
	if ij.ID == "" {
		return nil, fmt.Errorf("missing input id")
	}
	in := &Input{ID: ij.ID, Visibility: visibility}
	if ij.Value != nil {
		in.Raw = *ij.Value
	}
	if !in.IsPublic() {
		return in, nil
	}
	if ij.Value == nil {
		return nil, fmt.Errorf("public input %s has no value", ij.ID)
	}
	if !parseValue {
		return in, nil
	}
	v, err := values.ParsePlaintext(in.Raw)
	if err != nil {
		return nil, values.WithContext(err, ij.ID)
	}
	in.value = v
	return in, nil
}

// EncodeJSON renders a block back into the node's JSON document shape, limited to
// the fields the decoders read.
func EncodeJSON(b *Block) ([]byte, error) {
	height := b.Height
	timestamp := b.Timestamp
	txs := make([]transactionJSON, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		tj := transactionJSON{
			Status:      tx.Status.String(),
			Type:        tx.Type.String(),
			Transaction: transactionBodyJSON{ID: tx.ID},
		}
		if tx.IsAccepted() && tx.IsExecute() {
			transitions := make([]transitionJSON, 0, len(tx.Transitions))
			for _, tr := range tx.Transitions {
				transitions = append(transitions, encodeTransitionJSON(tr))
			}
			tj.Transaction.Execution = &executionJSON{Transitions: &transitions}
		}
		txs = append(txs, tj)
	}
	doc := blockJSON{
		Header: headerJSON{Metadata: metadataJSON{
			Height:    &height,
			Timestamp: &timestamp,
		}},
		Transactions: &txs,
	}
	return json.Marshal(doc)
}

func encodeTransitionJSON(tr *Transition) transitionJSON {
	inputs := make([]inputJSON, 0, len(tr.Inputs))
	for _, in := range tr.Inputs {
		ij := inputJSON{Type: in.Visibility.String(), ID: in.ID}
		if in.Raw != "" {
			raw := in.Raw
			ij.Value = &raw
		}
		inputs = append(inputs, ij)
	}
	return transitionJSON{
		ID:       tr.ID,
		Program:  tr.Program,
		Function: tr.Function,
		Inputs:   &inputs,
	}
}
