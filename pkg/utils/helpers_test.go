package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Helpers(t *testing.T) {
	t.Run("Should round trip hex strings", func(t *testing.T) {
		s := ConvertBytesToString([]byte{0xde, 0xad, 0xbe, 0xef})
		assert.Equal(t, "0xdeadbeef", s)

		b, err := ConvertStringToBytes(s)
		assert.Nil(t, err)
		assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)

		b, err = ConvertStringToBytes("deadbeef")
		assert.Nil(t, err)
		assert.Len(t, b, 4)

		_, err = ConvertStringToBytes("0xzz")
		assert.Error(t, err)
	})
}
