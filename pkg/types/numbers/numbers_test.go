package numbers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Numbers(t *testing.T) {
	t.Run("Test checked u64 arithmetic at the boundaries", func(t *testing.T) {
		sum, ok := CheckedAddU64(math.MaxUint64-1, 1)
		assert.True(t, ok)
		assert.Equal(t, uint64(math.MaxUint64), sum)

		_, ok = CheckedAddU64(math.MaxUint64, 1)
		assert.False(t, ok)

		diff, ok := CheckedSubU64(10, 10)
		assert.True(t, ok)
		assert.Equal(t, uint64(0), diff)

		_, ok = CheckedSubU64(10, 11)
		assert.False(t, ok)
	})
	t.Run("Test checked u32 addition", func(t *testing.T) {
		v, ok := CheckedAddU32(math.MaxUint32-360, 360)
		assert.True(t, ok)
		assert.Equal(t, uint32(math.MaxUint32), v)

		_, ok = CheckedAddU32(math.MaxUint32-359, 360)
		assert.False(t, ok)
	})
	t.Run("Test microcredits to credits formatting", func(t *testing.T) {
		assert.Equal(t, "0", MicrocreditsToCredits(0))
		assert.Equal(t, "1.5", MicrocreditsToCredits(1_500_000))
		assert.Equal(t, "10005.940908", MicrocreditsToCredits(10_005_940_908))
		assert.Equal(t, "18446744073709.551615", MicrocreditsToCredits(math.MaxUint64))
	})
	t.Run("Test credits to microcredits parsing", func(t *testing.T) {
		v, err := CreditsToMicrocredits("10000000")
		assert.Nil(t, err)
		assert.Equal(t, uint64(10_000_000_000_000), v)

		v, err = CreditsToMicrocredits("0.000001")
		assert.Nil(t, err)
		assert.Equal(t, uint64(1), v)

		_, err = CreditsToMicrocredits("0.0000001")
		assert.Error(t, err)
		_, err = CreditsToMicrocredits("-1")
		assert.Error(t, err)
		_, err = CreditsToMicrocredits("18446744073710")
		assert.Error(t, err)
		_, err = CreditsToMicrocredits("ten")
		assert.Error(t, err)
	})
	t.Run("Test summing beyond u64", func(t *testing.T) {
		assert.Equal(t, "18446744073709551616", SumMicrocredits(math.MaxUint64, 1))
		assert.Equal(t, "0", SumMicrocredits())
	})
}
