package modem

import (
	"fmt"
	"time"

	"i4.energy/across/smslib/tpdu"
)

// Protocol selects how short messages travel over the AT link.
type Protocol int

const (
	// ProtocolPDU exchanges messages as hex-encoded TPDUs.
	ProtocolPDU Protocol = iota
	// ProtocolText uses the legacy text mode of the modem.
	ProtocolText
)

// ReceiveMode selects how the session learns about incoming messages.
type ReceiveMode int

const (
	// ReceiveSync leaves reading to explicit ReadMessages calls.
	ReceiveSync ReceiveMode = iota
	// ReceiveAsyncCMTI reads when the modem raises CMTI indications.
	ReceiveAsyncCMTI
	// ReceiveAsyncPoll polls the device on a fixed interval.
	ReceiveAsyncPoll
)

// MessageClass selects which stored messages a list operation returns.
type MessageClass int

const (
	// ClassAll reads every stored message.
	ClassAll MessageClass = iota
	// ClassUnread reads unread messages, marking them read.
	ClassUnread
	// ClassRead reads already-read messages.
	ClassRead
)

// PduModeID returns the integer selector used with AT+CMGL in PDU mode.
func (c MessageClass) PduModeID() int {
	switch c {
	case ClassUnread:
		return 0
	case ClassRead:
		return 1
	default:
		return 4
	}
}

// TextModeID returns the string selector used with AT+CMGL in text mode.
func (c MessageClass) TextModeID() string {
	switch c {
	case ClassUnread:
		return "REC UNREAD"
	case ClassRead:
		return "REC READ"
	default:
		return "ALL"
	}
}

// OutgoingMessage is a short message to be dispatched by the session. The
// session mutates RefNo and DispatchTime as parts are submitted.
type OutgoingMessage struct {
	Recipient string
	// SMSC overrides the session's service centre number when non-empty.
	SMSC string

	Encoding tpdu.Encoding
	Text     string
	Binary   []byte

	SourcePort int
	DestPort   int

	RequestStatusReport bool
	// ValidityHours requests a relative validity period; zero requests
	// the maximum.
	ValidityHours int
	PID           byte
	// DCS overrides the data coding scheme octet; zero derives it from
	// Encoding.
	DCS byte

	// RefNo is the reference the device assigned on dispatch, or the
	// handler's negative sentinel on failure.
	RefNo int
	// DispatchTime is set when the device accepted the message.
	DispatchTime time.Time
}

// GeneratePDUs encodes the message into SUBMIT PDUs, using smsc unless the
// message carries its own service centre number.
func (m *OutgoingMessage) GeneratePDUs(smsc string, concatRef uint16) ([]string, error) {
	if m.SMSC != "" {
		smsc = m.SMSC
	}
	sub := &tpdu.Submit{
		SMSC:          smsc,
		Recipient:     m.Recipient,
		Encoding:      m.Encoding,
		Text:          m.Text,
		Binary:        m.Binary,
		ConcatRef:     concatRef,
		SourcePort:    m.SourcePort,
		DestPort:      m.DestPort,
		StatusReport:  m.RequestStatusReport,
		ValidityHours: m.ValidityHours,
		PID:           m.PID,
		DCS:           m.DCS,
	}
	return sub.Encode()
}

// Incoming is a message read from the device: either an *IncomingMessage or
// a *StatusReportMessage.
type Incoming interface {
	// Index reports where the message lives on the device. A reassembled
	// multipart message reports index -1; its parts are listed by
	// PartIndexes.
	Index() (memIndex int, memLocation string)
	// PartIndexes lists the memory indexes of the parts of a reassembled
	// message, empty otherwise.
	PartIndexes() []int
}

// IncomingMessage is a received short message, either a single part or a
// whole reassembled multipart message.
type IncomingMessage struct {
	MemIndex    int
	MemLocation string

	Originator string
	SMSC       string
	// Time is the service-centre timestamp in UTC.
	Time     time.Time
	Encoding tpdu.Encoding
	Text     string
	Binary   []byte
	PID      byte

	// Concat is set on an unassembled part of a multipart message.
	Concat *tpdu.Concat

	mpMemIndexes []int
}

// newIncomingMessage decodes a DELIVER PDU read from device memory.
func newIncomingMessage(pdu string, memIndex int, memLocation string) (*IncomingMessage, error) {
	d, err := tpdu.DecodeDeliver(pdu)
	if err != nil {
		return nil, fmt.Errorf("decode deliver pdu: %w", err)
	}
	return &IncomingMessage{
		MemIndex:    memIndex,
		MemLocation: memLocation,
		Originator:  d.Originator,
		SMSC:        d.SMSC,
		Time:        d.Time,
		Encoding:    d.Encoding,
		Text:        d.Text,
		Binary:      d.Binary,
		PID:         d.PID,
		Concat:      d.Concat,
	}, nil
}

// IsMultipart reports whether the message is an unassembled part of a
// concatenated message.
func (m *IncomingMessage) IsMultipart() bool { return m.Concat != nil }

func (m *IncomingMessage) Index() (int, string) { return m.MemIndex, m.MemLocation }

func (m *IncomingMessage) PartIndexes() []int { return m.mpMemIndexes }

// StatusReportMessage reports the delivery outcome of a previously sent
// message.
type StatusReportMessage struct {
	MemIndex    int
	MemLocation string

	// RefNo is the reference of the SUBMIT this report refers to.
	RefNo int
	// Recipient is the address carried in the report's address field.
	Recipient string
	// SubmitTime is when the SMSC accepted the original message.
	SubmitTime time.Time
	// DischargeTime is when the reported outcome happened.
	DischargeTime time.Time
	Status        tpdu.DeliveryStatus
	Text          string
	SMSC          string
}

// newStatusReportMessage decodes a STATUS-REPORT PDU read from device
// memory.
func newStatusReportMessage(pdu string, memIndex int, memLocation string) (*StatusReportMessage, error) {
	sr, err := tpdu.DecodeStatusReport(pdu)
	if err != nil {
		return nil, fmt.Errorf("decode status report pdu: %w", err)
	}
	return &StatusReportMessage{
		MemIndex:      memIndex,
		MemLocation:   memLocation,
		RefNo:         sr.RefNo,
		Recipient:     sr.Recipient,
		SubmitTime:    sr.SubmitTime,
		DischargeTime: sr.DischargeTime,
		Status:        sr.Status,
		Text:          sr.Text,
		SMSC:          sr.SMSC,
	}, nil
}

// Originator returns the address the report refers to. The datum is the
// report's recipient field; the accessor mirrors the message interface of
// ordinary incoming messages.
func (m *StatusReportMessage) Originator() string { return m.Recipient }

func (m *StatusReportMessage) Index() (int, string) { return m.MemIndex, m.MemLocation }

func (m *StatusReportMessage) PartIndexes() []int { return nil }
