package tests

import (
	"fmt"

	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
	"github.com/NethermindEth/staking-sidecar/pkg/block"
	"github.com/NethermindEth/staking-sidecar/pkg/values"
	fuzz "github.com/google/gofuzz"
)

// AddressPoolSize is the number of distinct addresses random blocks draw from,
// small enough that operations collide on the same stakers.
const AddressPoolSize = 6

var (
	randomPrograms  = []string{aleo.CreditsProgram, aleo.CreditsProgram, aleo.CreditsProgram, "token.aleo"}
	randomFunctions = []string{
		aleo.FunctionBondPublic,
		aleo.FunctionUnbondPublic,
		aleo.FunctionClaimUnbondPublic,
		"transfer_public",
	}
	randomStatuses = []block.TransactionStatus{
		block.TransactionStatus_Accepted,
		block.TransactionStatus_Accepted,
		block.TransactionStatus_Accepted,
		block.TransactionStatus_Rejected,
		block.TransactionStatus_Aborted,
	}
	randomTypes = []block.TransactionType{
		block.TransactionType_Execute,
		block.TransactionType_Execute,
		block.TransactionType_Execute,
		block.TransactionType_Deploy,
		block.TransactionType_Fee,
	}
)

type blockGenerator struct {
	malformed bool
	counter   int
}

func (g *blockGenerator) nextID(prefix string) string {
	g.counter++
	return fmt.Sprintf("%s1%06d", prefix, g.counter)
}

func poolAddress(c fuzz.Continue) aleo.Address {
	return Address(byte(1 + c.Intn(AddressPoolSize)))
}

func (g *blockGenerator) input(c fuzz.Continue, v *values.Plaintext) *block.Input {
	id := g.nextID("in")
	if g.malformed && c.Intn(20) == 0 {
		return &block.Input{ID: id, Visibility: block.Visibility_Private, Raw: "ciphertext1" + id}
	}
	return block.NewPublicInput(id, v)
}

func (g *blockGenerator) addressInput(c fuzz.Continue) *block.Input {
	return g.input(c, values.NewLiteralPlaintext(values.NewAddressLiteral(poolAddress(c))))
}

func (g *blockGenerator) amountInput(c fuzz.Continue) *block.Input {
	var amount uint64
	switch c.Intn(4) {
	case 0:
		amount = c.Uint64()
	case 1:
		amount = uint64(c.Int63n(20_000_000_000_000))
	default:
		amount = uint64(c.Int63n(20_000_000_000))
	}
	if g.malformed && c.Intn(20) == 0 {
		return g.input(c, values.NewLiteralPlaintext(values.NewU32Literal(uint32(amount))))
	}
	return g.input(c, values.NewLiteralPlaintext(values.NewU64Literal(amount)))
}

func (g *blockGenerator) transition(c fuzz.Continue) *block.Transition {
	tr := &block.Transition{
		ID:       g.nextID("au"),
		Program:  randomPrograms[c.Intn(len(randomPrograms))],
		Function: randomFunctions[c.Intn(len(randomFunctions))],
	}
	switch tr.Function {
	case aleo.FunctionBondPublic:
		tr.Inputs = []*block.Input{g.addressInput(c), g.addressInput(c), g.amountInput(c)}
	case aleo.FunctionUnbondPublic:
		tr.Inputs = []*block.Input{g.addressInput(c), g.amountInput(c)}
	case aleo.FunctionClaimUnbondPublic:
		tr.Inputs = []*block.Input{g.addressInput(c)}
	default:
		tr.Inputs = []*block.Input{g.addressInput(c), g.amountInput(c)}
	}
	if tr.Program != aleo.CreditsProgram {
		for n := c.Intn(3); n > 0; n-- {
			tr.Inputs = append(tr.Inputs, g.otherProgramInput(c))
		}
	}
	if g.malformed && c.Intn(20) == 0 {
		tr.Inputs = tr.Inputs[:len(tr.Inputs)-1]
	}
	return tr
}

// otherProgramInput is a public input in a shape only other programs use: arrays,
// strings, signatures and structs holding arrays.
func (g *blockGenerator) otherProgramInput(c fuzz.Continue) *block.Input {
	var raw string
	switch c.Intn(4) {
	case 0:
		raw = fmt.Sprintf("[%du8, %du8, %du8]", c.Intn(256), c.Intn(256), c.Intn(256))
	case 1:
		raw = fmt.Sprintf("%q", fmt.Sprintf("memo %d", c.Intn(1000)))
	case 2:
		raw = "sign1" + poolAddress(c).String()[len("aleo1"):]
	default:
		raw = fmt.Sprintf("{ owner: %s, amounts: [%du64, %du64] }", poolAddress(c), c.Uint32(), c.Uint32())
	}
	return &block.Input{ID: g.nextID("in"), Visibility: block.Visibility_Public, Raw: raw}
}

func (g *blockGenerator) transaction(c fuzz.Continue) *block.Transaction {
	tx := &block.Transaction{
		ID:     g.nextID("at"),
		Status: randomStatuses[c.Intn(len(randomStatuses))],
		Type:   randomTypes[c.Intn(len(randomTypes))],
	}
	if tx.IsAccepted() && tx.IsExecute() {
		n := 1 + c.Intn(3)
		for i := 0; i < n; i++ {
			tx.Transitions = append(tx.Transitions, g.transition(c))
		}
	}
	return tx
}

func randomBlock(seed int64, malformed bool) *block.Block {
	g := &blockGenerator{malformed: malformed}
	b := &block.Block{}
	f := fuzz.NewWithSeed(seed).NilChance(0).Funcs(func(b *block.Block, c fuzz.Continue) {
		b.Height = uint32(c.Intn(1_000_000))
		b.Timestamp = 1_700_000_000 + c.Int63n(100_000_000)
		n := c.Intn(8)
		for i := 0; i < n; i++ {
			b.Transactions = append(b.Transactions, g.transaction(c))
		}
	})
	f.Fuzz(b)
	return b
}

// RandomBlock builds a well-formed block whose credits transitions draw stakers from
// a small address pool.
func RandomBlock(seed int64) *block.Block {
	return randomBlock(seed, false)
}

// RandomBlockWithDefects is like RandomBlock but occasionally drops an input, uses a
// private input or gives an amount the wrong type.
func RandomBlockWithDefects(seed int64) *block.Block {
	return randomBlock(seed, true)
}
