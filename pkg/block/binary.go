package block

import (
	"bytes"
	"fmt"
	"math"

	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
	"github.com/NethermindEth/staking-sidecar/pkg/values"
)

var binaryMagic = []byte("ABLK")

const binaryVersion uint8 = 2

// public input values are stored as binary plaintexts when they parse, and as
// text otherwise (arrays, strings and signatures of other programs)
const (
	publicValue_Plaintext uint8 = 0
	publicValue_Text      uint8 = 1
)

// DecodeBinary decodes the little-endian block encoding written by EncodeBinary.
func DecodeBinary(data []byte) (*Block, error) {
	r := values.NewReader(data)
	magic, err := r.Bytes(len(binaryMagic))
	if err != nil {
		return nil, values.WithContext(err, "block")
	}
	if !bytes.Equal(magic, binaryMagic) {
		return nil, values.NewDecodeError("block", "bad magic %x", magic)
	}
	version, err := r.ReadU8()
	if err != nil {
		return nil, values.WithContext(err, "block")
	}
	if version != binaryVersion {
		return nil, values.NewDecodeError("block", "unsupported version %d", version)
	}

	b := &Block{}
	if b.Height, err = r.ReadU32(); err != nil {
		return nil, values.WithContext(err, "block.height")
	}
	if b.Timestamp, err = r.ReadI64(); err != nil {
		return nil, values.WithContext(err, "block.timestamp")
	}
	count, err := r.ReadU32()
	if err != nil {
		return nil, values.WithContext(err, "block.transactions")
	}
	// each transaction takes at least 8 bytes, bound the allocation by what is left
	if int(count) > r.Remaining()/8 {
		return nil, values.NewDecodeError("block.transactions", "count %d exceeds remaining input", count)
	}
	b.Transactions = make([]*Transaction, 0, count)
	for i := 0; i < int(count); i++ {
		tx, err := readTransaction(r)
		if err != nil {
			return nil, values.WithContext(err, fmt.Sprintf("transactions[%d]", i))
		}
		b.Transactions = append(b.Transactions, tx)
	}
	if r.Remaining() != 0 {
		return nil, values.NewDecodeError("block", "%d trailing bytes", r.Remaining())
	}
	return b, nil
}

func readTransaction(r *values.Reader) (*Transaction, error) {
	id, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	status, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	if _, ok := transactionStatusNames[TransactionStatus(status)]; !ok {
		return nil, values.NewDecodeError("status", "unknown transaction status %d", status)
	}
	txType, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	if _, ok := transactionTypeNames[TransactionType(txType)]; !ok {
		return nil, values.NewDecodeError("type", "unknown transaction type %d", txType)
	}
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if int(count) > r.Remaining()/7 {
		return nil, values.NewDecodeError("transitions", "count %d exceeds remaining input", count)
	}
	tx := &Transaction{
		ID:     id,
		Status: TransactionStatus(status),
		Type:   TransactionType(txType),
	}
	for i := 0; i < int(count); i++ {
		tr, err := readTransition(r)
		if err != nil {
			return nil, values.WithContext(err, fmt.Sprintf("transitions[%d]", i))
		}
		tx.Transitions = append(tx.Transitions, tr)
	}
	return tx, nil
}

func readTransition(r *values.Reader) (*Transition, error) {
	tr := &Transition{}
	var err error
	if tr.ID, err = r.ReadString(); err != nil {
		return nil, err
	}
	if tr.Program, err = r.ReadString(); err != nil {
		return nil, err
	}
	if tr.Function, err = r.ReadString(); err != nil {
		return nil, err
	}
	count, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(count); i++ {
		in, err := readInput(r, tr.Program)
		if err != nil {
			return nil, values.WithContext(err, fmt.Sprintf("inputs[%d]", i))
		}
		tr.Inputs = append(tr.Inputs, in)
	}
	return tr, nil
}

func readInput(r *values.Reader, program string) (*Input, error) {
	id, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	vis, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	if _, ok := visibilityNames[Visibility(vis)]; !ok {
		return nil, values.NewDecodeError("visibility", "unknown input visibility %d", vis)
	}
	in := &Input{ID: id, Visibility: Visibility(vis)}
	if !in.IsPublic() {
		if in.Raw, err = r.ReadString(); err != nil {
			return nil, err
		}
		return in, nil
	}

	kind, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	switch kind {
	case publicValue_Plaintext:
	case publicValue_Text:
		if in.Raw, err = r.ReadString(); err != nil {
			return nil, err
		}
		if program == aleo.CreditsProgram {
			return nil, values.NewDecodeError(id, "credits.aleo public input stored as text")
		}
		return in, nil
	default:
		return nil, values.NewDecodeError(id, "unknown public value kind %d", kind)
	}

	size, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	raw, err := r.Bytes(int(size))
	if err != nil {
		return nil, err
	}
	v, err := values.DecodePlaintext(raw)
	if err != nil {
		return nil, values.WithContext(err, id)
	}
	in.value = v
	in.Raw = v.String()
	return in, nil
}

// EncodeBinary writes the little-endian block encoding read by DecodeBinary.
// Public inputs of credits.aleo transitions must resolve to a plaintext.
func EncodeBinary(b *Block) ([]byte, error) {
	w := values.NewWriter()
	w.Write(binaryMagic)
	w.WriteU8(binaryVersion)
	w.WriteU32(b.Height)
	w.WriteI64(b.Timestamp)
	w.WriteU32(uint32(len(b.Transactions)))
	for _, tx := range b.Transactions {
		if err := writeTransaction(w, tx); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
	}
	return w.Bytes(), nil
}

func writeTransaction(w *values.Writer, tx *Transaction) error {
	if _, ok := transactionStatusNames[tx.Status]; !ok {
		return fmt.Errorf("cannot encode transaction status %d", tx.Status)
	}
	if _, ok := transactionTypeNames[tx.Type]; !ok {
		return fmt.Errorf("cannot encode transaction type %d", tx.Type)
	}
	if err := w.WriteString(tx.ID); err != nil {
		return err
	}
	w.WriteU8(uint8(tx.Status))
	w.WriteU8(uint8(tx.Type))
	w.WriteU32(uint32(len(tx.Transitions)))
	for _, tr := range tx.Transitions {
		if err := writeTransition(w, tr); err != nil {
			return fmt.Errorf("transition %s: %w", tr.ID, err)
		}
	}
	return nil
}

func writeTransition(w *values.Writer, tr *Transition) error {
	for _, s := range []string{tr.ID, tr.Program, tr.Function} {
		if err := w.WriteString(s); err != nil {
			return err
		}
	}
	if len(tr.Inputs) > math.MaxUint8 {
		return fmt.Errorf("transition has %d inputs", len(tr.Inputs))
	}
	w.WriteU8(uint8(len(tr.Inputs)))
	for _, in := range tr.Inputs {
		if err := writeInput(w, in, tr.Program); err != nil {
			return fmt.Errorf("input %s: %w", in.ID, err)
		}
	}
	return nil
}

func writeInput(w *values.Writer, in *Input, program string) error {
	if _, ok := visibilityNames[in.Visibility]; !ok {
		return fmt.Errorf("cannot encode input visibility %d", in.Visibility)
	}
	if err := w.WriteString(in.ID); err != nil {
		return err
	}
	w.WriteU8(uint8(in.Visibility))
	if !in.IsPublic() {
		return w.WriteString(in.Raw)
	}
	v, err := in.Plaintext()
	if err != nil {
		if program == aleo.CreditsProgram {
			return err
		}
		w.WriteU8(publicValue_Text)
		return w.WriteString(in.Raw)
	}
	w.WriteU8(publicValue_Plaintext)
	raw, err := values.EncodePlaintext(v)
	if err != nil {
		return err
	}
	if len(raw) > math.MaxUint16 {
		return fmt.Errorf("public value of %d bytes exceeds u16 length", len(raw))
	}
	w.WriteU16(uint16(len(raw)))
	w.Write(raw)
	return nil
}
