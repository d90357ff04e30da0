package modem

import "sync/atomic"

// Statistics counts the traffic a session has handled.
type Statistics struct {
	totalIn  atomic.Int64
	totalOut atomic.Int64
}

func (s *Statistics) incTotalIn()  { s.totalIn.Add(1) }
func (s *Statistics) incTotalOut() { s.totalOut.Add(1) }

// TotalIn is the number of messages received.
func (s *Statistics) TotalIn() int64 { return s.totalIn.Load() }

// TotalOut is the number of message parts dispatched.
func (s *Statistics) TotalOut() int64 { return s.totalOut.Load() }

// DeviceInfo describes the connected device. Identity fields are read once;
// GprsAttached, BatteryLevel and SignalLevel are refreshed on every
// RefreshDeviceInfo call.
type DeviceInfo struct {
	Manufacturer string
	Model        string
	SerialNo     string
	IMSI         string
	SwVersion    string

	GprsAttached bool
	BatteryLevel int
	// SignalLevel is a percentage scaled from the device's 0-31 reading.
	SignalLevel int
}
