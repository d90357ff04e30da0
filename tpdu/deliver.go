package tpdu

import (
	"fmt"
	"time"

	"i4.energy/across/smslib/gsm7"
)

// DeliveryStatus classifies the TP-ST octet of a STATUS-REPORT.
type DeliveryStatus int

const (
	// DeliveryUnknown means no status information is available.
	DeliveryUnknown DeliveryStatus = iota
	// Delivered means the message reached the recipient.
	Delivered
	// DeliveryKeepTrying means delivery failed but the SMSC will retry.
	DeliveryKeepTrying
	// DeliveryAborted means the SMSC gave up on the message.
	DeliveryAborted
)

func (d DeliveryStatus) String() string {
	switch d {
	case Delivered:
		return "delivered"
	case DeliveryKeepTrying:
		return "keep-trying"
	case DeliveryAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Deliver is a decoded SMS-DELIVER TPDU.
type Deliver struct {
	SMSC       string
	Originator string
	PID        byte
	DCS        byte
	Encoding   Encoding
	// Time is the service-centre timestamp converted to UTC.
	Time time.Time

	// Text holds the decoded payload for GSM7 and UCS2 user data;
	// Binary holds it for 8-bit data.
	Text   string
	Binary []byte

	// Concat is non-nil when the part belongs to a concatenated message.
	Concat     *Concat
	SourcePort int
	DestPort   int
}

// StatusReport is a decoded SMS-STATUS-REPORT TPDU.
type StatusReport struct {
	SMSC string
	// RefNo is the TP-MR of the SUBMIT this report refers to.
	RefNo int
	// Recipient is the address the reported message was sent to.
	Recipient string
	// SubmitTime is when the SMSC accepted the original message.
	SubmitTime time.Time
	// DischargeTime is when the reported outcome happened.
	DischargeTime time.Time
	Status        DeliveryStatus
	// Text is a human-readable rendering of the status octet.
	Text string
}

// DecodeDeliver parses a hex-encoded SMS-DELIVER (or reserved-type) PDU.
func DecodeDeliver(pdu string) (*Deliver, error) {
	raw, err := DecodeHex(pdu)
	if err != nil {
		return nil, err
	}
	r := newReader(raw)

	d := &Deliver{}
	if d.SMSC, err = decodeAddress(r, true); err != nil {
		return nil, fmt.Errorf("smsc address: %w", err)
	}
	bz, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if mti := int(bz) & mtiMask; mti != MTIDeliver && mti != MTIReserved {
		return nil, fmt.Errorf("tpdu: not a DELIVER pdu (mti %d)", mti)
	}
	if d.Originator, err = decodeAddress(r, false); err != nil {
		return nil, fmt.Errorf("originator address: %w", err)
	}
	if d.PID, err = r.readByte(); err != nil {
		return nil, err
	}
	if d.DCS, err = r.readByte(); err != nil {
		return nil, err
	}
	d.Encoding = MessageEncoding(d.DCS)
	if d.Time, err = decodeSCTS(r); err != nil {
		return nil, fmt.Errorf("service centre timestamp: %w", err)
	}

	udl, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if err := d.decodeUserData(r, int(udl), HasUDH(bz)); err != nil {
		return nil, err
	}
	return d, nil
}

// decodeUserData consumes the TP-UD field: the optional header first, then
// the payload in the encoding the DCS selected.
func (d *Deliver) decodeUserData(r *reader, udl int, hasUDH bool) error {
	if d.Encoding == GSM7 {
		// For the 7-bit alphabet UDL counts septets; the packed stream
		// occupies the remaining octets.
		septets := gsm7.Unpack(r.remaining(), udl)
		if hasUDH {
			udh := r.remaining()
			if len(udh) == 0 {
				return fmt.Errorf("tpdu: missing udh")
			}
			udhl := int(udh[0])
			if 1+udhl > len(udh) {
				return fmt.Errorf("tpdu: udh length %d overruns user data", udhl)
			}
			var err error
			if d.Concat, d.SourcePort, d.DestPort, err = parseUDH(udh[1 : 1+udhl]); err != nil {
				return err
			}
			// Skip the septets of padding that cover the header.
			drop := ((1+udhl)*8 + 6) / 7
			if drop > len(septets) {
				drop = len(septets)
			}
			septets = septets[drop:]
		}
		d.Text = gsm7.SeptetsToString(septets)
		return nil
	}

	payload, err := r.readN(min(udl, len(r.remaining())))
	if err != nil {
		return err
	}
	if hasUDH {
		if len(payload) == 0 {
			return fmt.Errorf("tpdu: missing udh")
		}
		udhl := int(payload[0])
		if 1+udhl > len(payload) {
			return fmt.Errorf("tpdu: udh length %d overruns user data", udhl)
		}
		if d.Concat, d.SourcePort, d.DestPort, err = parseUDH(payload[1 : 1+udhl]); err != nil {
			return err
		}
		payload = payload[1+udhl:]
	}
	if d.Encoding == UCS2 {
		if d.Text, err = decodeUCS2(payload); err != nil {
			return fmt.Errorf("decode ucs2 user data: %w", err)
		}
		return nil
	}
	d.Binary = append([]byte{}, payload...)
	return nil
}

// DecodeStatusReport parses a hex-encoded SMS-STATUS-REPORT PDU.
func DecodeStatusReport(pdu string) (*StatusReport, error) {
	raw, err := DecodeHex(pdu)
	if err != nil {
		return nil, err
	}
	r := newReader(raw)

	sr := &StatusReport{}
	if sr.SMSC, err = decodeAddress(r, true); err != nil {
		return nil, fmt.Errorf("smsc address: %w", err)
	}
	bz, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if int(bz)&mtiMask != MTIStatusReport {
		return nil, fmt.Errorf("tpdu: not a STATUS-REPORT pdu (mti %d)", int(bz)&mtiMask)
	}
	refNo, err := r.readByte()
	if err != nil {
		return nil, err
	}
	sr.RefNo = int(refNo)
	if sr.Recipient, err = decodeAddress(r, false); err != nil {
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	if sr.SubmitTime, err = decodeSCTS(r); err != nil {
		return nil, fmt.Errorf("submit timestamp: %w", err)
	}
	if sr.DischargeTime, err = decodeSCTS(r); err != nil {
		return nil, fmt.Errorf("discharge timestamp: %w", err)
	}
	st, err := r.readByte()
	if err != nil {
		return nil, err
	}
	switch (st >> 5) & 0x3 {
	case 0:
		sr.Status = Delivered
		sr.Text = "00 - Successful delivery."
	case 1:
		sr.Status = DeliveryKeepTrying
		sr.Text = "01 - Errors, will retry dispatch."
	default:
		sr.Status = DeliveryAborted
		sr.Text = "02 - Errors, stopped retrying dispatch."
	}
	return sr, nil
}

// tzNegativeFlag marks a negative timezone offset in the TP-SCTS timezone
// octet: bit 3, the top bit of the first (low-nibble) digit.
const tzNegativeFlag = 1 << 3

// decodeSCTS reads the 7-octet TP-Service-Centre-Time-Stamp and converts it
// to UTC. Years are interpreted relative to 2000.
func decodeSCTS(r *reader) (time.Time, error) {
	octets, err := r.readN(7)
	if err != nil {
		return time.Time{}, err
	}
	t := time.Date(
		2000+decodeSemiOctetNumber(octets[0]),
		time.Month(decodeSemiOctetNumber(octets[1])),
		decodeSemiOctetNumber(octets[2]),
		decodeSemiOctetNumber(octets[3]),
		decodeSemiOctetNumber(octets[4]),
		decodeSemiOctetNumber(octets[5]),
		0, time.UTC)

	if tz := octets[6]; tz != 0 {
		t = t.Add(-time.Duration(timezoneDifference(tz)) * time.Minute)
	}
	return t, nil
}

// timezoneDifference converts the TP-SCTS timezone octet to minutes east of
// GMT. The value is a swapped-digit pair counting quarter hours; bit 3
// carries the sign.
func timezoneDifference(tz byte) int {
	diff := 15 * decodeSemiOctetNumber(tz&^byte(tzNegativeFlag))
	if tz&tzNegativeFlag != 0 {
		diff = -diff
	}
	return diff
}
