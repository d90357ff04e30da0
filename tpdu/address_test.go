package tpdu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/smslib/tpdu"
)

func TestEncodeAddress(t *testing.T) {
	t.Run("empty smsc is a single zero octet", func(t *testing.T) {
		got, err := tpdu.EncodeAddress("", true)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00}, got)
	})

	t.Run("international smsc with 12 digits", func(t *testing.T) {
		got, err := tpdu.EncodeAddress("+447890123456", true)
		require.NoError(t, err)
		// 12 digits: length octet 1+6, international ISDN type.
		assert.Equal(t, "0791448709214365", tpdu.EncodeHex(got))
	})

	t.Run("smsc length octet counts octets after it", func(t *testing.T) {
		got, err := tpdu.EncodeAddress("+44789012345", true)
		require.NoError(t, err)
		assert.Equal(t, byte(0x07), got[0])
		assert.Equal(t, "07914487092143F5", tpdu.EncodeHex(got))
	})

	t.Run("non-smsc length octet counts useful semi-octets", func(t *testing.T) {
		got, err := tpdu.EncodeAddress("+44789012345", false)
		require.NoError(t, err)
		assert.Equal(t, byte(11), got[0])
		assert.Equal(t, byte(0x91), got[1])
	})

	t.Run("national number gets unknown type of number", func(t *testing.T) {
		got, err := tpdu.EncodeAddress("0684103777", false)
		require.NoError(t, err)
		assert.Equal(t, "0A816048017377", tpdu.EncodeHex(got))
	})

	t.Run("odd length pads the high nibble with F", func(t *testing.T) {
		got, err := tpdu.EncodeAddress("123", false)
		require.NoError(t, err)
		assert.Equal(t, "038121F3", tpdu.EncodeHex(got))
	})

	t.Run("over-long address fails", func(t *testing.T) {
		_, err := tpdu.EncodeAddress("123456789012345678901", false)
		assert.Error(t, err)
	})

	t.Run("illegal character fails", func(t *testing.T) {
		_, err := tpdu.EncodeAddress("12x4", false)
		assert.Error(t, err)
	})
}

func TestEncodedSMSCOctets(t *testing.T) {
	assert.Equal(t, 1, tpdu.EncodedSMSCOctets(""))
	assert.Equal(t, 8, tpdu.EncodedSMSCOctets("+447890123456"))
	assert.Equal(t, 8, tpdu.EncodedSMSCOctets("07890123456"))
	assert.Equal(t, 7, tpdu.EncodedSMSCOctets("0789012345"))
}
