package modem

//go:generate mockgen -source=driver.go -destination=mock_driver.go -package=modem

import "context"

// Driver is the raw serial line under the session: an opened, exclusive,
// full-duplex byte stream plus the buffer bookkeeping the AT handlers rely
// on. Implementations live outside this package (a real serial port, or a
// scripted double in tests).
type Driver interface {
	// Open establishes the connection to the device.
	Open() error
	// Close releases the line. It must be safe to call more than once.
	Close() error
	// Send writes raw bytes to the device.
	Send(data []byte) error
	// EmptyBuffer discards any unread device output, keeping it available
	// through LastClearedBuffer for diagnostics.
	EmptyBuffer() error
	// LastClearedBuffer returns the output discarded by the most recent
	// EmptyBuffer call.
	LastClearedBuffer() string
	// ReadBuffer blocks until the device has produced a complete response
	// and returns it, or fails when the context expires first.
	ReadBuffer(ctx context.Context) (string, error)
	// SetNewMessageMonitor installs the condition the driver raises on
	// buffer activity and CMTI indications.
	SetNewMessageMonitor(m *Monitor)
	// Port names the underlying device, for logging.
	Port() string
}
