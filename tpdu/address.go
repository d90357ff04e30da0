package tpdu

import (
	"fmt"
	"strings"

	"i4.energy/across/smslib/gsm7"
)

// maxAddressDigits caps the address value at 20 characters, keeping the
// encoded field within its 12-octet limit.
const maxAddressDigits = 20

// EncodeAddress encodes a phone number as a PDU address field:
// [length][type-of-address][semi-octets...]. A leading '+' selects the
// international type of number and is not encoded as a digit.
//
// For an SMSC address the length octet counts the octets that follow it
// (type-of-address included), and an empty number encodes as a single zero
// octet. For any other address the length octet counts useful semi-octets,
// fill excluded.
func EncodeAddress(address string, smsc bool) ([]byte, error) {
	if smsc && address == "" {
		return []byte{0}, nil
	}
	international := strings.HasPrefix(address, "+")
	if international {
		address = address[1:]
	}
	if len(address) > maxAddressDigits {
		return nil, fmt.Errorf("tpdu: address %q longer than %d characters", address, maxAddressDigits)
	}
	encoded, err := toSemiOctets(address)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(encoded)+2)
	if smsc {
		out = append(out, byte(1+(len(address)+1)/2))
	} else {
		out = append(out, byte(len(address)))
	}
	toa := byte(toaTopBit | toaNPIISDN)
	if international {
		toa |= tonInternational
	}
	out = append(out, toa)
	return append(out, encoded...), nil
}

// decodeAddress reads an address field from the PDU stream, undoing
// EncodeAddress. For a normal address the length counts useful semi-octets
// and fill nibbles are dropped; for an SMSC address every semi-octet,
// fill included, counts against the length.
func decodeAddress(r *reader, smsc bool) (string, error) {
	length, err := r.readByte()
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}
	semiOctets := int(length)
	if smsc {
		semiOctets = (int(length) - 1) * 2
	}

	toa, err := r.readByte()
	if err != nil {
		return "", err
	}

	if toa&tonMask == tonAlphanumeric {
		// The address value is GSM 7-bit packed text occupying whole octets.
		octets, err := r.readN(semiOctets/2 + semiOctets%2)
		if err != nil {
			return "", err
		}
		return gsm7.SeptetsToString(gsm7.Unpack(octets, -1)), nil
	}

	var b strings.Builder
	if toa&tonMask == tonInternational {
		b.WriteByte('+')
	}
	for semiOctets > 0 {
		octet, err := r.readByte()
		if err != nil {
			return "", err
		}
		for _, c := range []byte{semiOctetChars[octet&0xF], semiOctetChars[(octet>>4)&0xF]} {
			if smsc || c != ' ' {
				if c != ' ' {
					b.WriteByte(c)
				}
				semiOctets--
			}
		}
	}
	return b.String(), nil
}

// EncodedSMSCOctets returns how many octets the SMSC prefix of a PDU
// occupies for the given SMSC number: the length octet, and, for a non-empty
// number, the type-of-address octet plus the packed digits.
func EncodedSMSCOctets(smsc string) int {
	if smsc == "" {
		return 1
	}
	digits := len(smsc)
	if strings.HasPrefix(smsc, "+") {
		digits--
	}
	return 2 + (digits+1)/2
}
