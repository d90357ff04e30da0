package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/smslib/tpdu"
)

func textPart(originator string, ref uint16, total, seq uint8, text string, memIndex int) *IncomingMessage {
	return &IncomingMessage{
		MemIndex:    memIndex,
		MemLocation: "SM",
		Originator:  originator,
		Encoding:    tpdu.GSM7,
		Text:        text,
		Concat:      &tpdu.Concat{Ref: ref, Total: total, Seq: seq},
	}
}

func binaryPart(originator string, ref uint16, total, seq uint8, data []byte, memIndex int) *IncomingMessage {
	return &IncomingMessage{
		MemIndex:    memIndex,
		MemLocation: "SM",
		Originator:  originator,
		Encoding:    tpdu.Binary8Bit,
		Binary:      data,
		Concat:      &tpdu.Concat{Ref: ref, Total: total, Seq: seq},
	}
}

func TestReassemblerOrdersBySequence(t *testing.T) {
	parts := []*IncomingMessage{
		textPart("+447988156550", 9, 3, 1, "one ", 11),
		textPart("+447988156550", 9, 3, 2, "two ", 12),
		textPart("+447988156550", 9, 3, 3, "three", 13),
	}
	permutations := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for _, perm := range permutations {
		r := newReassembler()
		for k, i := range perm {
			require.True(t, r.add(parts[i]))
			if k < len(perm)-1 {
				assert.Empty(t, r.drainIncomplete(), "no early emission")
			}
		}
		out := r.drain()
		require.Len(t, out, 1, "permutation %v", perm)
		msg := out[0]
		assert.Equal(t, "one two three", msg.Text)
		assert.Equal(t, -1, msg.MemIndex)
		assert.Equal(t, []int{11, 12, 13}, msg.PartIndexes())
		assert.Nil(t, msg.Concat)

		// Emitted exactly once: the group is gone.
		assert.Empty(t, r.drain())
	}
}

func TestReassemblerDropsDuplicates(t *testing.T) {
	r := newReassembler()
	require.True(t, r.add(textPart("+4479", 5, 2, 1, "a", 1)))
	assert.False(t, r.add(textPart("+4479", 5, 2, 1, "a again", 7)))
	require.True(t, r.add(textPart("+4479", 5, 2, 2, "b", 2)))

	out := r.drain()
	require.Len(t, out, 1)
	assert.Equal(t, "ab", out[0].Text)
	assert.Equal(t, []int{1, 2}, out[0].PartIndexes())
}

func TestReassemblerKeysByOriginatorAndRef(t *testing.T) {
	r := newReassembler()
	require.True(t, r.add(textPart("+111", 5, 2, 1, "a1", 1)))
	require.True(t, r.add(textPart("+222", 5, 2, 1, "b1", 2)))
	require.True(t, r.add(textPart("+111", 6, 2, 1, "c1", 3)))

	// Same seq from a different originator or ref is not a duplicate and
	// completes only its own group.
	require.True(t, r.add(textPart("+111", 5, 2, 2, "a2", 4)))
	out := r.drain()
	require.Len(t, out, 1)
	assert.Equal(t, "a1a2", out[0].Text)

	// The other two groups stay pending.
	assert.Empty(t, r.drain())
}

func TestReassemblerAppendsBinary(t *testing.T) {
	r := newReassembler()
	require.True(t, r.add(binaryPart("+333", 1, 2, 2, []byte{3, 4}, 9)))
	require.True(t, r.add(binaryPart("+333", 1, 2, 1, []byte{1, 2}, 8)))

	out := r.drain()
	require.Len(t, out, 1)
	assert.Equal(t, []byte{1, 2, 3, 4}, out[0].Binary)
	assert.Equal(t, []int{8, 9}, out[0].PartIndexes())
}

// drainIncomplete is a test helper proving drain leaves incomplete groups
// untouched.
func (r *reassembler) drainIncomplete() []*IncomingMessage {
	before := len(r.pending)
	out := r.drain()
	if len(r.pending) != before-len(out) {
		panic("drain dropped an incomplete group")
	}
	return out
}
