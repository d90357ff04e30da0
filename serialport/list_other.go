//go:build !linux

package serialport

import (
	"go.bug.st/serial"
)

// PortInfo describes one detected serial device.
type PortInfo struct {
	Path        string
	Description string
}

// List enumerates the serial ports the platform reports.
func List() ([]PortInfo, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	out := make([]PortInfo, 0, len(names))
	for _, name := range names {
		out = append(out, PortInfo{Path: name})
	}
	return out, nil
}
