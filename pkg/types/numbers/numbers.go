package numbers

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"

	"github.com/shopspring/decimal"
)

// MicrocreditsPerCredit is the number of microcredits in one credit.
const MicrocreditsPerCredit = 1_000_000

var microcreditsPerCredit = decimal.NewFromInt(MicrocreditsPerCredit)

func decimalFromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// CheckedAddU64 returns a+b and false if the sum overflows.
func CheckedAddU64(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// CheckedSubU64 returns a-b and false if b > a.
func CheckedSubU64(a, b uint64) (uint64, bool) {
	diff, borrow := bits.Sub64(a, b, 0)
	return diff, borrow == 0
}

func CheckedAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

// MicrocreditsToCredits renders an amount of microcredits as a decimal credits string, e.g. 1500000 -> "1.5".
func MicrocreditsToCredits(microcredits uint64) string {
	return decimalFromUint64(microcredits).Div(microcreditsPerCredit).String()
}

// CreditsToMicrocredits parses a decimal credits amount. Amounts with more than six
// decimal places, negative amounts and amounts above the u64 range are rejected.
func CreditsToMicrocredits(credits string) (uint64, error) {
	d, err := decimal.NewFromString(credits)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative credits amount %s", credits)
	}
	micro := d.Mul(microcreditsPerCredit)
	if !micro.Equal(micro.Truncate(0)) {
		return 0, fmt.Errorf("credits amount %s has more than 6 decimal places", credits)
	}
	bi := micro.BigInt()
	if !bi.IsUint64() {
		return 0, fmt.Errorf("credits amount %s overflows u64 microcredits", credits)
	}
	return bi.Uint64(), nil
}

// SumMicrocredits adds amounts without overflow and returns the decimal string of the total.
func SumMicrocredits(amounts ...uint64) string {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimalFromUint64(a))
	}
	return total.String()
}
