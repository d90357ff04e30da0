package gsm7_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/smslib/gsm7"
)

func TestStringToSeptets(t *testing.T) {
	t.Run("plain ascii maps to itself", func(t *testing.T) {
		assert.Equal(t, []byte{0x68, 0x65, 0x6C, 0x6C, 0x6F}, gsm7.StringToSeptets("hello"))
	})

	t.Run("default table specials", func(t *testing.T) {
		assert.Equal(t, []byte{0x00}, gsm7.StringToSeptets("@"))
		assert.Equal(t, []byte{0x01}, gsm7.StringToSeptets("£"))
		assert.Equal(t, []byte{0x1E}, gsm7.StringToSeptets("ß"))
	})

	t.Run("extension characters use escape pairs", func(t *testing.T) {
		assert.Equal(t, []byte{0x1B, 0x65}, gsm7.StringToSeptets("€"))
		assert.Equal(t, []byte{0x1B, 0x28, 0x41, 0x1B, 0x29}, gsm7.StringToSeptets("{A}"))
	})

	t.Run("unmappable characters become question marks", func(t *testing.T) {
		assert.Equal(t, []byte{'?'}, gsm7.StringToSeptets("漢"))
	})
}

func TestSeptetsRoundTrip(t *testing.T) {
	for _, text := range []string{
		"hello",
		"",
		"A",
		"the quick brown fox @ £5 [on] the {lawn} €2",
		"Ω Δ Ψ à ü ñ",
	} {
		assert.Equal(t, text, gsm7.SeptetsToString(gsm7.StringToSeptets(text)), "text %q", text)
	}
}

func TestSeptetCount(t *testing.T) {
	assert.Equal(t, 5, gsm7.SeptetCount("hello"))
	assert.Equal(t, 2, gsm7.SeptetCount("€"))
	assert.Equal(t, 4, gsm7.SeptetCount("a{b"))
	assert.Equal(t, 0, gsm7.SeptetCount(""))
}

func TestBitSkip(t *testing.T) {
	assert.Equal(t, 0, gsm7.BitSkip(0))
	// A 6-octet header (concat-8 UDH including its length octet) needs one
	// fill bit to reach the next septet boundary.
	assert.Equal(t, 1, gsm7.BitSkip(6))
	assert.Equal(t, 7-5, gsm7.BitSkip(12))
	assert.Equal(t, 0, gsm7.BitSkip(7))
}

func TestPack(t *testing.T) {
	t.Run("known packing of hello", func(t *testing.T) {
		packed := gsm7.Pack(gsm7.StringToSeptets("hello"), 0)
		assert.Equal(t, []byte{0xE8, 0x32, 0x9B, 0xFD, 0x06}, packed)
	})

	t.Run("skip bits shift the stream", func(t *testing.T) {
		packed := gsm7.Pack([]byte{0x7F}, 1)
		assert.Equal(t, []byte{0xFE}, packed)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, gsm7.Pack(nil, 0))
	})
}

func TestUnpack(t *testing.T) {
	t.Run("undoes pack", func(t *testing.T) {
		septets := gsm7.StringToSeptets("the quick brown fox jumps over the lazy dog")
		unpacked := gsm7.Unpack(gsm7.Pack(septets, 0), len(septets))
		assert.Equal(t, septets, unpacked)
	})

	t.Run("negative count yields all whole septets", func(t *testing.T) {
		packed := gsm7.Pack(gsm7.StringToSeptets("hello"), 0)
		assert.Equal(t, "hello", gsm7.SeptetsToString(gsm7.Unpack(packed, -1)))
	})

	t.Run("count beyond capacity is clamped", func(t *testing.T) {
		packed := gsm7.Pack(gsm7.StringToSeptets("hi"), 0)
		got := gsm7.Unpack(packed, 100)
		assert.LessOrEqual(t, len(got), len(packed)*8/7)
	})
}

func TestSplit(t *testing.T) {
	t.Run("short text stays whole", func(t *testing.T) {
		assert.Equal(t, []string{"hello"}, gsm7.Split("hello", 153))
	})

	t.Run("parts respect the septet budget", func(t *testing.T) {
		text := ""
		for i := 0; i < 100; i++ {
			text += "ab"
		}
		parts := gsm7.Split(text, 153)
		require.Len(t, parts, 2)
		joined := ""
		for _, p := range parts {
			assert.LessOrEqual(t, gsm7.SeptetCount(p), 153)
			joined += p
		}
		assert.Equal(t, text, joined)
	})

	t.Run("escape pairs never split across a boundary", func(t *testing.T) {
		// Alternating a€ costs 3 septets per pair; with a budget of 4 the
		// euro must never be orphaned from its escape septet.
		text := "a€a€a€a€"
		parts := gsm7.Split(text, 4)
		joined := ""
		for _, p := range parts {
			assert.LessOrEqual(t, gsm7.SeptetCount(p), 4)
			joined += p
		}
		assert.Equal(t, text, joined)
	})
}
