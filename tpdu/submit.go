package tpdu

import (
	"fmt"

	"i4.energy/across/smslib/gsm7"
)

// Submit describes an outgoing short message to be encoded as one or more
// SUBMIT PDUs. Text carries the payload for GSM7 and UCS2 encodings,
// Binary for Binary8Bit.
type Submit struct {
	SMSC      string
	Recipient string

	Encoding Encoding
	Text     string
	Binary   []byte

	// ConcatRef is embedded in the concatenation IE when the message
	// fragments into multiple parts.
	ConcatRef  uint16
	SourcePort int
	DestPort   int

	StatusReport  bool
	ValidityHours int
	PID           byte
	// DCS overrides the data coding scheme octet; zero derives it from
	// Encoding.
	DCS byte
}

func (s *Submit) dcsByte() byte {
	if s.DCS != 0 {
		return s.DCS
	}
	return DCSByte(s.Encoding)
}

func (s *Submit) ported() bool {
	return s.SourcePort > 0 || s.DestPort > 0
}

// header builds the fixed front of one SUBMIT part: SMSC address, byte
// zero, TP-MR (always zero on submission), destination address, TP-PID,
// TP-DCS and the relative TP-VP.
func (s *Submit) header(requiresUDH bool) ([]byte, error) {
	smsc, err := EncodeAddress(s.SMSC, true)
	if err != nil {
		return nil, fmt.Errorf("encode smsc: %w", err)
	}
	dest, err := EncodeAddress(s.Recipient, false)
	if err != nil {
		return nil, fmt.Errorf("encode recipient: %w", err)
	}
	out := append([]byte{}, smsc...)
	out = append(out, byteZero(MTISubmit, requiresUDH, s.StatusReport), 0)
	out = append(out, dest...)
	out = append(out, s.PID, s.dcsByte(), RelativeVP(s.ValidityHours))
	return out, nil
}

// MessagesNeeded8Bit calculates how many SUBMIT parts an octet payload of
// the given length requires.
func MessagesNeeded8Bit(payloadOctets int, ported bool) int {
	if payloadOctets+UDHSize(true, ported, false) <= MaxUDOctets {
		return 1
	}
	maxUD := MaxUDOctets - UDHSize(true, ported, true)
	return (payloadOctets + maxUD - 1) / maxUD
}

// Encode generates the hex-encoded SUBMIT PDUs for the message, fragmenting
// the payload as the selected encoding requires.
func (s *Submit) Encode() ([]string, error) {
	switch s.Encoding {
	case Binary8Bit:
		return s.encode8Bit()
	case UCS2:
		return s.encodeUCS2()
	case GSM7:
		return s.encodeGSM7()
	default:
		return nil, fmt.Errorf("tpdu: unsupported encoding %v", s.Encoding)
	}
}

func (s *Submit) encode8Bit() ([]string, error) {
	totalParts := MessagesNeeded8Bit(len(s.Binary), s.ported())
	requiresUDH := totalParts > 1 || s.ported()
	udhTotal := UDHSize(true, s.ported(), totalParts > 1)
	partSize := MaxUDOctets - udhTotal

	pdus := make([]string, 0, totalParts)
	for part := 1; part <= totalParts; part++ {
		out, err := s.header(requiresUDH)
		if err != nil {
			return nil, err
		}
		lo := (part - 1) * partSize
		hi := min(lo+partSize, len(s.Binary))
		payload := s.Binary[lo:hi]

		out = append(out, byte(len(payload)+udhTotal))
		if requiresUDH {
			udh, err := generateUDH(part, totalParts, s.ConcatRef, s.SourcePort, s.DestPort)
			if err != nil {
				return nil, err
			}
			out = append(out, udh...)
		}
		out = append(out, payload...)
		pdus = append(pdus, EncodeHex(out))
	}
	return pdus, nil
}

func (s *Submit) encodeUCS2() ([]string, error) {
	parts := []string{s.Text}
	if ucs2Units(s.Text)*2+UDHSize(true, s.ported(), false) > MaxUDOctets {
		unitsPerPart := (MaxUDOctets - UDHSize(true, s.ported(), true)) / 2
		parts = splitUCS2(s.Text, unitsPerPart)
	}
	totalParts := len(parts)
	requiresUDH := totalParts > 1 || s.ported()
	udhTotal := UDHSize(true, s.ported(), totalParts > 1)

	pdus := make([]string, 0, totalParts)
	for i, text := range parts {
		out, err := s.header(requiresUDH)
		if err != nil {
			return nil, err
		}
		encoded, err := encodeUCS2(text)
		if err != nil {
			return nil, fmt.Errorf("encode ucs2 text: %w", err)
		}
		out = append(out, byte(len(encoded)+udhTotal))
		if requiresUDH {
			udh, err := generateUDH(i+1, totalParts, s.ConcatRef, s.SourcePort, s.DestPort)
			if err != nil {
				return nil, err
			}
			out = append(out, udh...)
		}
		out = append(out, encoded...)
		pdus = append(pdus, EncodeHex(out))
	}
	return pdus, nil
}

func (s *Submit) encodeGSM7() ([]string, error) {
	parts := []string{s.Text}
	if gsm7.SeptetCount(s.Text) > septetCapacity(UDHSize(true, s.ported(), false)) {
		parts = gsm7.Split(s.Text, septetCapacity(UDHSize(true, s.ported(), true)))
	}
	totalParts := len(parts)
	requiresUDH := totalParts > 1 || s.ported()
	udhTotal := UDHSize(true, s.ported(), totalParts > 1)
	skipBits := gsm7.BitSkip(udhTotal)

	pdus := make([]string, 0, totalParts)
	for i, text := range parts {
		out, err := s.header(requiresUDH)
		if err != nil {
			return nil, err
		}
		septets := gsm7.StringToSeptets(text)

		// TP-UDL counts septets, header and fill included.
		udl := (udhTotal*8 + len(septets)*7 + skipBits + 6) / 7
		out = append(out, byte(udl))
		if requiresUDH {
			udh, err := generateUDH(i+1, totalParts, s.ConcatRef, s.SourcePort, s.DestPort)
			if err != nil {
				return nil, err
			}
			out = append(out, udh...)
		}
		out = append(out, gsm7.Pack(septets, skipBits)...)
		pdus = append(pdus, EncodeHex(out))
	}
	return pdus, nil
}

// septetCapacity is the number of message septets that fit alongside a UDH
// of the given total octet size. The division is exact: the fill bits make
// the available bit count a multiple of seven.
func septetCapacity(udhOctets int) int {
	return ((MaxUDOctets-udhOctets)*8 - gsm7.BitSkip(udhOctets)) / 7
}
