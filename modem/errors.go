package modem

import "errors"

var (
	// ErrNoDriver is returned when a Session is constructed without a
	// Driver. A Driver is required to reach the device at all.
	ErrNoDriver = errors.New("no driver configured")

	// ErrNoHandler is returned when a Session is constructed without an
	// AT dialect Handler.
	ErrNoHandler = errors.New("no AT handler configured")

	// ErrNotConnected is returned when an operation requires a connected
	// session and Connect has not succeeded, or the device stopped
	// responding.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected is returned by Connect when the session already
	// holds an open link.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrNoPin is returned when the SIM asks for a PIN and none was
	// configured.
	ErrNoPin = errors.New("SIM PIN required but not configured")

	// ErrInvalidPin is returned when the SIM rejected the configured PIN.
	ErrInvalidPin = errors.New("SIM PIN rejected")

	// ErrNoPin2 is returned when the SIM asks for PIN2, none was
	// configured, and the session is configured to treat that as fatal.
	ErrNoPin2 = errors.New("SIM PIN2 required but not configured")

	// ErrInvalidPin2 is returned when the SIM rejected the configured PIN2.
	ErrInvalidPin2 = errors.New("SIM PIN2 rejected")

	// ErrPukRequired is returned when the SIM is blocked and asks for the
	// PUK. Entering a PUK is outside the scope of the connect flow.
	ErrPukRequired = errors.New("SIM PUK required")

	// ErrNoPduSupport is returned when the device cannot be switched to
	// PDU mode.
	ErrNoPduSupport = errors.New("device does not support PDU mode")

	// ErrNoTextSupport is returned when the device cannot be switched to
	// text mode.
	ErrNoTextSupport = errors.New("device does not support text mode")

	// ErrRegistrationDisabled is reported when network auto-registration
	// is disabled on the device.
	ErrRegistrationDisabled = errors.New("network auto-registration disabled")

	// ErrRegistrationDenied is reported when the network refused
	// registration.
	ErrRegistrationDenied = errors.New("network registration denied")

	// ErrRegistrationFailed is reported for the unknown registration
	// failure state.
	ErrRegistrationFailed = errors.New("network registration failed")
)
