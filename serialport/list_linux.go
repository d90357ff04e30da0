//go:build linux

package serialport

import (
	"github.com/hedhyw/Go-Serial-Detector/pkg/v1/serialdet"
)

// PortInfo describes one detected serial device.
type PortInfo struct {
	Path        string
	Description string
}

// List enumerates the active serial devices on the machine.
func List() ([]PortInfo, error) {
	devices, err := serialdet.List()
	if err != nil {
		return nil, err
	}
	out := make([]PortInfo, 0, len(devices))
	for _, device := range devices {
		out = append(out, PortInfo{Path: device.Path(), Description: device.Description()})
	}
	return out, nil
}
