// Package serialport connects the modem session to a physical serial port
// using go.bug.st/serial. A background reader tokenizes device output,
// raises the new-message monitor on activity, and assembles complete
// responses for the AT handlers.
package serialport

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.bug.st/serial"

	"i4.energy/across/smslib/at"
	"i4.energy/across/smslib/modem"
)

// Driver is a modem.Driver over a serial port.
type Driver struct {
	portName string
	baudRate int
	log      *slog.Logger

	mu          sync.Mutex
	port        serial.Port
	pending     []string
	complete    bool
	lastCleared string
	monitor     *modem.Monitor
	notify      chan struct{}
	closed      bool
}

// New prepares a driver for the named port. The port is not touched until
// Open.
func New(portName string, baudRate int, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Driver{
		portName: portName,
		baudRate: baudRate,
		log:      logger,
		notify:   make(chan struct{}, 1),
	}
}

// Open opens the serial port and starts the reader.
func (d *Driver) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.port != nil {
		return fmt.Errorf("serialport: %s already open", d.portName)
	}
	port, err := serial.Open(d.portName, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("serialport: open %s: %w", d.portName, err)
	}
	d.port = port
	d.closed = false
	go d.readLoop(port)
	return nil
}

// Close shuts the port down. It is safe to call repeatedly.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.port == nil {
		return nil
	}
	d.closed = true
	err := d.port.Close()
	d.port = nil
	return err
}

// Send writes raw bytes to the device.
func (d *Driver) Send(data []byte) error {
	d.mu.Lock()
	port := d.port
	d.mu.Unlock()
	if port == nil {
		return fmt.Errorf("serialport: %s not open", d.portName)
	}
	_, err := port.Write(data)
	return err
}

// readLoop is the only reader of the port. It splits device output into
// tokens, raises the monitor, and marks responses complete when a final
// result or prompt arrives.
func (d *Driver) readLoop(port serial.Port) {
	scanner := bufio.NewScanner(port)
	scanner.Split(at.Splitter)
	for scanner.Scan() {
		token := scanner.Text()
		if token == "" {
			continue
		}
		d.log.Debug("rx", "token", token)

		kind := at.Classify(token)
		d.mu.Lock()
		if kind == at.TypeURC {
			d.mu.Unlock()
			d.raise(modem.MonitorCMTI)
			continue
		}
		d.pending = append(d.pending, token)
		if kind == at.TypeFinal || kind == at.TypePrompt {
			d.complete = true
		}
		d.mu.Unlock()

		d.raise(modem.MonitorData)
		select {
		case d.notify <- struct{}{}:
		default:
		}
	}
	if err := scanner.Err(); err != nil {
		d.mu.Lock()
		alreadyClosed := d.closed
		d.mu.Unlock()
		if !alreadyClosed {
			d.log.Warn("serial read failed", "port", d.portName, "error", err)
		}
	}
	// Wake any blocked ReadBuffer so it can observe the closed port.
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

func (d *Driver) raise(state modem.MonitorState) {
	d.mu.Lock()
	monitor := d.monitor
	d.mu.Unlock()
	if monitor != nil {
		monitor.Raise(state)
	}
}

// ReadBuffer blocks until a complete response has been collected and
// returns it with tokens joined by newlines.
func (d *Driver) ReadBuffer(ctx context.Context) (string, error) {
	for {
		d.mu.Lock()
		if d.complete {
			response := strings.Join(d.pending, "\n")
			d.pending = nil
			d.complete = false
			d.mu.Unlock()
			return response, nil
		}
		dead := d.closed || d.port == nil
		d.mu.Unlock()
		if dead {
			return "", fmt.Errorf("serialport: %s closed", d.portName)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-d.notify:
		}
	}
}

// EmptyBuffer discards buffered device output, keeping it for diagnosis.
func (d *Driver) EmptyBuffer() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastCleared = strings.Join(d.pending, "\n")
	d.pending = nil
	d.complete = false
	return nil
}

// LastClearedBuffer returns the output the most recent EmptyBuffer dropped.
func (d *Driver) LastClearedBuffer() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastCleared
}

// DataAvailable reports whether unread device output is buffered.
func (d *Driver) DataAvailable() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending) > 0, nil
}

// SetNewMessageMonitor installs the condition raised on buffer activity
// and CMTI indications.
func (d *Driver) SetNewMessageMonitor(m *modem.Monitor) {
	d.mu.Lock()
	d.monitor = m
	d.mu.Unlock()
}

// Port names the underlying device.
func (d *Driver) Port() string { return d.portName }

var _ modem.Driver = (*Driver)(nil)
