package tpdu_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/smslib/tpdu"
)

func TestEncodeHex(t *testing.T) {
	assert.Equal(t, "", tpdu.EncodeHex(nil))
	assert.Equal(t, "00FF10AB", tpdu.EncodeHex([]byte{0x00, 0xFF, 0x10, 0xAB}))
}

func TestDecodeHex(t *testing.T) {
	t.Run("upper and lower case", func(t *testing.T) {
		want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
		for _, in := range []string{"DEADBEEF", "deadbeef", "DeAdBeEf"} {
			got, err := tpdu.DecodeHex(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("odd length fails", func(t *testing.T) {
		_, err := tpdu.DecodeHex("ABC")
		require.Error(t, err)
		var hexErr *tpdu.HexError
		assert.ErrorAs(t, err, &hexErr)
	})

	t.Run("illegal character fails", func(t *testing.T) {
		for _, in := range []string{"GG", "0x", "  ", "A-"} {
			_, err := tpdu.DecodeHex(in)
			assert.Error(t, err, "input %q", in)
		}
	})

	t.Run("round trip over random bytes", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 50; i++ {
			b := make([]byte, rng.Intn(200))
			rng.Read(b)
			got, err := tpdu.DecodeHex(tpdu.EncodeHex(b))
			require.NoError(t, err)
			assert.Equal(t, b, got)
		}
	})
}

func TestRelativeVP(t *testing.T) {
	t.Run("table boundaries", func(t *testing.T) {
		assert.Equal(t, byte(0xFF), tpdu.RelativeVP(0))
		assert.Equal(t, byte(0xFF), tpdu.RelativeVP(-4))
		assert.Equal(t, byte(11), tpdu.RelativeVP(1))
		assert.Equal(t, byte(143), tpdu.RelativeVP(12))
		assert.Equal(t, byte(167), tpdu.RelativeVP(24))
		assert.Equal(t, byte(196), tpdu.RelativeVP(720))
		assert.Equal(t, byte(197), tpdu.RelativeVP(5*168))
	})

	t.Run("monotonic non-decreasing", func(t *testing.T) {
		prev := byte(0)
		for h := 1; h <= 10000; h++ {
			v := tpdu.RelativeVP(h)
			assert.GreaterOrEqual(t, v, prev, "hours %d", h)
			prev = v
		}
	})
}
