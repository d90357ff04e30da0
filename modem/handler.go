package modem

import "context"

// Negative sentinels returned by Handler.SendMessage in place of a message
// reference.
const (
	// SendFailed aborts the current message; remaining parts are skipped.
	SendFailed = -1
	// SendFatal means the link itself is gone; the session disconnects.
	SendFatal = -2
)

// Handler speaks one vendor's AT dialect over the Driver. The session
// serializes every call through its mutex; implementations need no
// locking of their own. Methods returning raw response strings leave
// parsing to the session so that parsing quirks stay in one place.
type Handler interface {
	// Sync nudges the device's command channel awake.
	Sync(ctx context.Context) error
	// Reset restores the device to its power-on command state.
	Reset(ctx context.Context) error
	// Init applies the dialect's one-time setup commands.
	Init(ctx context.Context) error
	EchoOff(ctx context.Context) error
	SetVerboseErrors(ctx context.Context) error

	// IsAlive reports whether the device still answers. The error is
	// reserved for link-level I/O failures.
	IsAlive(ctx context.Context) (bool, error)

	// PinResponse returns the raw AT+CPIN? response.
	PinResponse(ctx context.Context) (string, error)
	IsWaitingForPin(pinResponse string) bool
	IsWaitingForPin2(pinResponse string) bool
	IsWaitingForPuk(pinResponse string) bool
	// EnterPin submits a PIN and reports whether the SIM accepted it.
	EnterPin(ctx context.Context, pin string) (bool, error)

	// NetworkRegistration returns the raw AT+CREG? response.
	NetworkRegistration(ctx context.Context) (string, error)

	// StorageLocations discovers the device's message memories and
	// returns them as concatenated 2-letter codes, e.g. "SMME".
	StorageLocations(ctx context.Context) (string, error)

	SetPduMode(ctx context.Context) (bool, error)
	SetTextMode(ctx context.Context) (bool, error)
	EnableIndications(ctx context.Context) (bool, error)
	DisableIndications(ctx context.Context) (bool, error)

	// SetMemoryLocation selects the 2-letter message memory to operate
	// on and reports whether the device accepted it.
	SetMemoryLocation(ctx context.Context, location string) (bool, error)
	// ListMessages returns the raw AT+CMGL output for the class.
	ListMessages(ctx context.Context, class MessageClass) (string, error)
	// SendMessage submits one message. In PDU mode pduLenOctets and
	// pduHex describe the TPDU (length excluding the SMSC prefix); in
	// text mode recipient and hexText carry the destination and payload.
	// It returns the reference the device assigned, or SendFailed /
	// SendFatal.
	SendMessage(ctx context.Context, pduLenOctets int, pduHex, recipient, hexText string) (int, error)
	// DeleteMessage removes the message at index in the given memory.
	DeleteMessage(ctx context.Context, index int, location string) error

	// KeepLinkOpen issues the dialect's keep-alive.
	KeepLinkOpen(ctx context.Context) error
	// SwitchToCommandMode leaves any data mode the device is in.
	SwitchToCommandMode(ctx context.Context) error
	// DataAvailable reports whether unread device output is buffered.
	DataAvailable() (bool, error)

	// Single-value device queries; raw responses, parsed by the session.
	Manufacturer(ctx context.Context) (string, error)
	Model(ctx context.Context) (string, error)
	SerialNo(ctx context.Context) (string, error)
	IMSI(ctx context.Context) (string, error)
	SwVersion(ctx context.Context) (string, error)
	Msisdn(ctx context.Context) (string, error)
	BatteryLevel(ctx context.Context) (string, error)
	SignalLevel(ctx context.Context) (string, error)
	GprsStatus(ctx context.Context) (string, error)

	// Protocol is the dialect's preferred message protocol.
	Protocol() Protocol

	SupportsReceive() bool
	SupportsBinarySending() bool
	SupportsUcs2Sending() bool
	SupportsStk() bool
}
