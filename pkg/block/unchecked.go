package block

import (
	"fmt"

	"github.com/buger/jsonparser"
)

// DecodeJSONUnchecked reads only the key paths the staking extraction needs.
// Enumerations are not validated and public input values are kept as raw text
// until Input.Plaintext is called.
func DecodeJSONUnchecked(data []byte) (*Block, error) {
	height, err := jsonparser.GetInt(data, "header", "metadata", "height")
	if err != nil {
		return nil, fmt.Errorf("invalid block json: header.metadata.height: %w", err)
	}
	if height < 0 || height > int64(^uint32(0)) {
		return nil, fmt.Errorf("invalid block json: height %d out of range", height)
	}
	timestamp, err := jsonparser.GetInt(data, "header", "metadata", "timestamp")
	if err != nil {
		return nil, fmt.Errorf("invalid block json: header.metadata.timestamp: %w", err)
	}

	b := &Block{
		Height:    uint32(height),
		Timestamp: timestamp,
	}

	var txErr error
	_, err = jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if txErr != nil {
			return
		}
		if err != nil {
			txErr = err
			return
		}
		tx, err := decodeTransactionUnchecked(value)
		if err != nil {
			txErr = fmt.Errorf("transactions[%d]: %w", len(b.Transactions), err)
			return
		}
		b.Transactions = append(b.Transactions, tx)
	}, "transactions")
	if err != nil {
		return nil, fmt.Errorf("invalid block json: transactions: %w", err)
	}
	if txErr != nil {
		return nil, txErr
	}
	return b, nil
}

func decodeTransactionUnchecked(data []byte) (*Transaction, error) {
	status, _ := jsonparser.GetString(data, "status")
	txType, _ := jsonparser.GetString(data, "type")
	id, _ := jsonparser.GetString(data, "transaction", "id")

	// unrecognized values fall through as Unknown and are skipped by extraction
	tx := &Transaction{ID: id}
	tx.Status, _ = ParseTransactionStatus(status)
	tx.Type, _ = ParseTransactionType(txType)
	if !tx.IsAccepted() || !tx.IsExecute() {
		return tx, nil
	}

	var trErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if trErr != nil {
			return
		}
		if err != nil {
			trErr = err
			return
		}
		tr, err := decodeTransitionUnchecked(value)
		if err != nil {
			trErr = fmt.Errorf("transitions[%d]: %w", len(tx.Transitions), err)
			return
		}
		tx.Transitions = append(tx.Transitions, tr)
	}, "transaction", "execution", "transitions")
	if err != nil {
		return nil, fmt.Errorf("transaction %s: execution.transitions: %w", id, err)
	}
	if trErr != nil {
		return nil, fmt.Errorf("transaction %s: %w", id, trErr)
	}
	return tx, nil
}

func decodeTransitionUnchecked(data []byte) (*Transition, error) {
	id, _ := jsonparser.GetString(data, "id")
	program, _ := jsonparser.GetString(data, "program")
	function, _ := jsonparser.GetString(data, "function")
	tr := &Transition{
		ID:       id,
		Program:  program,
		Function: function,
	}

	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if err != nil {
			return
		}
		inputType, _ := jsonparser.GetString(value, "type")
		inputID, _ := jsonparser.GetString(value, "id")
		raw, _ := jsonparser.GetString(value, "value")
		visibility, _ := ParseVisibility(inputType)
		tr.Inputs = append(tr.Inputs, &Input{
			ID:         inputID,
			Visibility: visibility,
			Raw:        raw,
		})
	}, "inputs")
	if err != nil && err != jsonparser.KeyPathNotFoundError {
		return nil, err
	}
	return tr, nil
}
