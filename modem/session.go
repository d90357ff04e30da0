package modem

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"i4.energy/across/smslib/at"
	"i4.energy/across/smslib/gsm7"
	"i4.energy/across/smslib/tpdu"
)

// disconnectTimeout bounds how long Disconnect waits for the background
// loops to wind down before closing the driver under them.
const disconnectTimeout = 10 * time.Second

// Listener consumes messages arriving on the receive loop. Returning true
// tells the session the message was handled and may be deleted from the
// device, all multipart part slots included.
type Listener func(s *Session, msg Incoming) bool

// Session drives one GSM device: it owns the serial link, funnels every
// handler interaction through a single mutex, dispatches incoming messages
// to the listener and keeps the link alive. A session supports one
// connection at a time.
type Session struct {
	// mu serializes all modem I/O: a send can never interleave with a
	// read or a keep-alive pulse.
	mu      sync.Mutex
	cfg     Config
	log     *slog.Logger
	driver  Driver
	handler Handler
	monitor *Monitor

	connected atomic.Bool

	protocol    Protocol
	receiveMode atomic.Int32
	storage     string
	outMpRef    uint16
	reasm       *reassembler

	listenerMu sync.Mutex
	listener   Listener

	info  DeviceInfo
	stats Statistics

	ctx    context.Context
	cancel context.CancelFunc

	// discMu serializes Disconnect against itself; the keep-alive loop
	// and the caller may both tear the session down.
	discMu sync.Mutex
	recv   *worker
	keep   *worker
}

type worker struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newWorker() *worker {
	return &worker{stop: make(chan struct{}), done: make(chan struct{})}
}

func (w *worker) requestStop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

func (w *worker) stopping() bool {
	select {
	case <-w.stop:
		return true
	default:
		return false
	}
}

func (w *worker) finished() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// New creates a Session from the configuration. The session does not touch
// the device until Connect.
func New(cfg Config) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Session{
		cfg:      cfg,
		log:      logger,
		driver:   cfg.Driver,
		handler:  cfg.Handler,
		monitor:  NewMonitor(),
		protocol: cfg.Protocol,
		storage:  cfg.StorageLocations,
		outMpRef: uint16(rand.IntN(0x10000)),
		reasm:    newReassembler(),
	}
	s.receiveMode.Store(int32(cfg.ReceiveMode))
	return s, nil
}

// IsConnected reports the session's view of the connection; it does not
// probe the device.
func (s *Session) IsConnected() bool { return s.connected.Load() }

// Protocol returns the message protocol in use.
func (s *Session) Protocol() Protocol { return s.protocol }

// SetListener installs the callback invoked on the receive loop for each
// arriving message. Only one listener is held at a time.
func (s *Session) SetListener(l Listener) {
	s.listenerMu.Lock()
	s.listener = l
	s.listenerMu.Unlock()
}

func (s *Session) getListener() Listener {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	return s.listener
}

// Stats exposes the session's traffic counters.
func (s *Session) Stats() *Statistics { return &s.stats }

// DeviceInfo returns a copy of the device information gathered on connect
// or by the last RefreshDeviceInfo call.
func (s *Session) DeviceInfo() DeviceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// StorageLocations returns the 2-letter memory codes the session reads.
func (s *Session) StorageLocations() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage
}

// SetStorageLocations overrides the memory codes to read, for devices that
// do not report all of their storage locations.
func (s *Session) SetStorageLocations(locations string) {
	s.mu.Lock()
	s.storage = locations
	s.mu.Unlock()
}

// SupportsReceive reports whether the dialect supports reading messages.
func (s *Session) SupportsReceive() bool { return s.handler.SupportsReceive() }

// SupportsBinarySending reports whether the dialect can send 8-bit data.
func (s *Session) SupportsBinarySending() bool { return s.handler.SupportsBinarySending() }

// SupportsUcs2Sending reports whether the dialect can send UCS-2 text.
func (s *Session) SupportsUcs2Sending() bool { return s.handler.SupportsUcs2Sending() }

// SupportsStk reports whether the dialect supports SIM Toolkit commands.
func (s *Session) SupportsStk() bool { return s.handler.SupportsStk() }

// Connect opens the serial link, authenticates against the SIM, waits for
// network registration, configures the message protocol and receive mode,
// reads the device information and starts the background loops. Any
// failure triggers a best-effort Disconnect before the error is returned.
func (s *Session) Connect(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected.Load() {
		return ErrAlreadyConnected
	}
	defer func() {
		if err != nil {
			if derr := s.Disconnect(); derr != nil {
				s.log.Warn("disconnect after failed connect", "error", derr)
			}
		}
	}()

	if err = s.driver.Open(); err != nil {
		return fmt.Errorf("open serial driver: %w", err)
	}
	s.connected.Store(true)
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if err = s.handler.Sync(ctx); err != nil {
		return fmt.Errorf("sync with device: %w", err)
	}
	if err = s.driver.EmptyBuffer(); err != nil {
		return fmt.Errorf("empty buffer: %w", err)
	}
	if err = s.handler.Reset(ctx); err != nil {
		return fmt.Errorf("reset device: %w", err)
	}
	s.driver.SetNewMessageMonitor(s.monitor)

	alive, err := s.handler.IsAlive(ctx)
	if err != nil {
		return fmt.Errorf("probe device: %w", err)
	}
	if !alive {
		return fmt.Errorf("%w: device is not responding", ErrNotConnected)
	}

	if err = s.unlockSIM(ctx); err != nil {
		return err
	}

	if err = s.handler.Init(ctx); err != nil {
		return fmt.Errorf("init handler: %w", err)
	}
	if err = s.handler.EchoOff(ctx); err != nil {
		return fmt.Errorf("disable echo: %w", err)
	}
	if err = s.waitForNetworkRegistration(ctx); err != nil {
		return err
	}
	if err = s.handler.SetVerboseErrors(ctx); err != nil {
		return fmt.Errorf("enable verbose errors: %w", err)
	}

	if s.storage == "" {
		if s.storage, err = s.handler.StorageLocations(ctx); err != nil {
			return fmt.Errorf("discover storage locations: %w", err)
		}
	}
	s.log.Info("storage locations", "locations", s.storage)

	switch s.protocol {
	case ProtocolPDU:
		ok, err := s.handler.SetPduMode(ctx)
		if err != nil {
			return fmt.Errorf("set pdu mode: %w", err)
		}
		if !ok {
			return ErrNoPduSupport
		}
	case ProtocolText:
		ok, err := s.handler.SetTextMode(ctx)
		if err != nil {
			return fmt.Errorf("set text mode: %w", err)
		}
		if !ok {
			return ErrNoTextSupport
		}
	default:
		return fmt.Errorf("unrecognized protocol %d", s.protocol)
	}

	if err = s.applyReceiveMode(ctx, ReceiveMode(s.receiveMode.Load())); err != nil {
		return err
	}
	if err = s.refreshDeviceInfoLocked(ctx); err != nil {
		return err
	}

	s.recv = newWorker()
	s.keep = newWorker()
	go s.receiveLoop(s.recv)
	go s.keepAliveLoop(s.keep)
	s.log.Info("connected", "port", s.driver.Port())
	return nil
}

// unlockSIM walks the PIN / PIN2 / PUK states the SIM may be in.
func (s *Session) unlockSIM(ctx context.Context) error {
	pinResponse, err := s.handler.PinResponse(ctx)
	if err != nil {
		return fmt.Errorf("query pin state: %w", err)
	}
	if s.handler.IsWaitingForPin(pinResponse) {
		if s.cfg.SIMPin == "" {
			return ErrNoPin
		}
		ok, err := s.handler.EnterPin(ctx, s.cfg.SIMPin)
		if err != nil {
			return fmt.Errorf("enter pin: %w", err)
		}
		if !ok {
			return ErrInvalidPin
		}
		if pinResponse, err = s.handler.PinResponse(ctx); err != nil {
			return fmt.Errorf("query pin state: %w", err)
		}
	}
	if s.handler.IsWaitingForPin2(pinResponse) {
		if s.cfg.SIMPin2 == "" {
			if s.cfg.RequirePin2 {
				return ErrNoPin2
			}
		} else {
			ok, err := s.handler.EnterPin(ctx, s.cfg.SIMPin2)
			if err != nil {
				return fmt.Errorf("enter pin2: %w", err)
			}
			if !ok {
				return ErrInvalidPin2
			}
		}
		if pinResponse, err = s.handler.PinResponse(ctx); err != nil {
			return fmt.Errorf("query pin state: %w", err)
		}
	}
	if s.handler.IsWaitingForPuk(pinResponse) {
		return ErrPukRequired
	}
	return nil
}

// waitForNetworkRegistration polls the registration state until the device
// is registered (home or roaming), retrying while the device searches and
// failing on the terminal states.
func (s *Session) waitForNetworkRegistration(ctx context.Context) error {
	for {
		response, err := s.handler.NetworkRegistration(ctx)
		if err != nil {
			return fmt.Errorf("query network registration: %w", err)
		}
		if strings.Contains(response, at.ERROR) {
			s.log.Warn("registration query not supported, continuing", "response", response)
			return nil
		}
		state, err := at.ParseNetworkRegistration(response)
		if err != nil {
			return err
		}
		switch state {
		case 1:
			s.log.Info("registered to home network")
			return nil
		case 5:
			s.log.Info("registered to foreign network (roaming)")
			return nil
		case 2:
			s.log.Info("searching for network")
		case 0:
			return ErrRegistrationDisabled
		case 3:
			return ErrRegistrationDenied
		default:
			return ErrRegistrationFailed
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// SetReceiveMode switches how the session learns about incoming messages,
// reconfiguring the device's indications when connected.
func (s *Session) SetReceiveMode(ctx context.Context, mode ReceiveMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receiveMode.Store(int32(mode))
	if !s.connected.Load() {
		return nil
	}
	return s.applyReceiveMode(ctx, mode)
}

func (s *Session) applyReceiveMode(ctx context.Context, mode ReceiveMode) error {
	if mode == ReceiveAsyncCMTI {
		ok, err := s.handler.EnableIndications(ctx)
		if err != nil {
			return fmt.Errorf("enable indications: %w", err)
		}
		if !ok {
			s.log.Warn("could not enable CMTI indications, continuing without them")
		}
	} else {
		ok, err := s.handler.DisableIndications(ctx)
		if err != nil {
			return fmt.Errorf("disable indications: %w", err)
		}
		if !ok {
			s.log.Warn("could not disable CMTI indications, continuing")
		}
	}
	return nil
}

// ReceiveMode returns the current receive mode.
func (s *Session) ReceiveMode() ReceiveMode {
	return ReceiveMode(s.receiveMode.Load())
}

// Disconnect shuts the session down: it stops both background loops,
// nudges them awake, waits up to ten seconds for them to finish, then
// closes the driver. The receive loop is joined; the keep-alive loop is
// not, as it may be blocked on an unresponsive device. Disconnect is
// idempotent and safe to call on a partially connected session.
func (s *Session) Disconnect() error {
	s.discMu.Lock()
	defer s.discMu.Unlock()
	if s.recv != nil {
		s.recv.requestStop()
	}
	if s.keep != nil {
		s.keep.requestStop()
	}
	s.monitor.Notify()

	deadline := time.Now().Add(disconnectTimeout)
	for time.Now().Before(deadline) {
		recvDone := s.recv == nil || s.recv.finished()
		keepDone := s.keep == nil || s.keep.finished()
		if recvDone && keepDone {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	if s.cancel != nil {
		s.cancel()
	}
	if s.recv != nil {
		<-s.recv.done
		s.recv = nil
	}
	s.keep = nil

	s.connected.Store(false)
	if err := s.driver.Close(); err != nil {
		return fmt.Errorf("close driver: %w", err)
	}
	return nil
}

// KeepGsmLinkOpen issues the dialect's keep-alive under the session mutex.
func (s *Session) KeepGsmLinkOpen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler.KeepLinkOpen(ctx)
}

// SendMessages dispatches a batch of messages in order.
func (s *Session) SendMessages(ctx context.Context, messages []*OutgoingMessage) error {
	if !s.connected.Load() {
		return ErrNotConnected
	}
	if s.protocol == ProtocolPDU {
		if err := s.KeepGsmLinkOpen(ctx); err != nil {
			return err
		}
	}
	for _, m := range messages {
		if err := s.SendMessage(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// SendMessage dispatches one message. On success the message's RefNo and
// DispatchTime are set; a failed part leaves RefNo negative and skips the
// remaining parts.
func (s *Session) SendMessage(ctx context.Context, m *OutgoingMessage) error {
	if !s.connected.Load() {
		return ErrNotConnected
	}
	switch s.protocol {
	case ProtocolText:
		return s.sendText(ctx, m)
	default:
		return s.sendPDU(ctx, m)
	}
}

func (s *Session) sendPDU(ctx context.Context, m *OutgoingMessage) error {
	smsc := s.cfg.SMSCNumber
	if m.SMSC != "" {
		smsc = m.SMSC
	}
	s.mu.Lock()
	concatRef := s.outMpRef
	s.mu.Unlock()

	pdus, err := m.GeneratePDUs(smsc, concatRef)
	if err != nil {
		return fmt.Errorf("generate pdus: %w", err)
	}
	for _, pdu := range pdus {
		// The device wants the TPDU length without the SMSC prefix.
		pduLength := len(pdu)/2 - tpdu.EncodedSMSCOctets(smsc)

		s.mu.Lock()
		refNo, err := s.handler.SendMessage(ctx, pduLength, pdu, "", "")
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("send pdu: %w", err)
		}
		m.RefNo = refNo
		if refNo >= 0 {
			m.DispatchTime = time.Now()
			s.stats.incTotalOut()
			continue
		}
		if refNo == SendFatal {
			s.log.Error("fatal link failure during send, disconnecting")
			s.Disconnect()
			return ErrNotConnected
		}
		break
	}

	// The concat reference advances once per message, never per part.
	s.mu.Lock()
	s.outMpRef = (s.outMpRef + 1) & 0xFFFF
	s.mu.Unlock()
	return nil
}

func (s *Session) sendText(ctx context.Context, m *OutgoingMessage) error {
	hexText := tpdu.EncodeHex(gsm7.StringToSeptets(m.Text))
	s.mu.Lock()
	refNo, err := s.handler.SendMessage(ctx, 0, "", m.Recipient, hexText)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("send text message: %w", err)
	}
	if refNo >= 0 {
		m.RefNo = refNo
		m.DispatchTime = time.Now()
		s.stats.incTotalOut()
	}
	return nil
}

// ReadMessages lists the stored messages of the given class from every
// configured storage location. Single-part messages and status reports are
// returned directly; multipart fragments pass through the reassembler and
// only whole messages come out.
func (s *Session) ReadMessages(ctx context.Context, class MessageClass) ([]Incoming, error) {
	switch s.protocol {
	case ProtocolText:
		return s.readText(ctx, class)
	default:
		return s.readPDU(ctx, class)
	}
}

func (s *Session) readPDU(ctx context.Context, class MessageClass) ([]Incoming, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected.Load() {
		return nil, ErrNotConnected
	}
	if err := s.handler.SwitchToCommandMode(ctx); err != nil {
		return nil, fmt.Errorf("switch to command mode: %w", err)
	}

	var out []Incoming
	for _, location := range storageCodes(s.storage) {
		ok, err := s.handler.SetMemoryLocation(ctx, location)
		if err != nil {
			return out, fmt.Errorf("set memory location %q: %w", location, err)
		}
		if !ok {
			continue
		}
		response, err := s.handler.ListMessages(ctx, class)
		if err != nil {
			return out, fmt.Errorf("list messages in %q: %w", location, err)
		}

		sc := bufio.NewScanner(strings.NewReader(response))
		for {
			line, more := at.NextUsefulLine(sc)
			if !more || strings.EqualFold(line, at.OK) {
				break
			}
			memIndex, err := at.MemIndex(line)
			if err != nil {
				s.log.Warn("unparseable list header line", "line", line)
				continue
			}
			pdu, more := at.NextUsefulLine(sc)
			if !more {
				s.log.Warn("missing pdu line, skipping", "index", memIndex)
				break
			}
			out = s.createMessage(out, pdu, location, memIndex)
		}
	}

	for _, m := range s.reasm.drain() {
		out = append(out, m)
	}
	return out, nil
}

// createMessage classifies and decodes one PDU from a list response. A PDU
// that fails to decode is logged and skipped; the rest of the batch
// proceeds.
func (s *Session) createMessage(out []Incoming, pdu, location string, memIndex int) []Incoming {
	switch {
	case tpdu.IsDeliver(pdu):
		msg, err := newIncomingMessage(pdu, memIndex, location)
		if err != nil {
			s.log.Error("dropping undecodable pdu", "pdu", pdu, "error", err)
			return out
		}
		if !msg.IsMultipart() {
			s.stats.incTotalIn()
			return append(out, msg)
		}
		if !s.reasm.add(msg) {
			s.log.Info("duplicate multipart fragment, ignoring",
				"originator", msg.Originator, "ref", msg.Concat.Ref, "seq", msg.Concat.Seq)
		}
		return out
	case tpdu.IsStatusReport(pdu):
		msg, err := newStatusReportMessage(pdu, memIndex, location)
		if err != nil {
			s.log.Error("dropping undecodable status report", "pdu", pdu, "error", err)
			return out
		}
		s.stats.incTotalIn()
		return append(out, msg)
	default:
		s.log.Info("unrecognized message type, ignoring", "pdu", pdu)
		return out
	}
}

// readText implements the legacy text-mode listing: comma-tokenized CMGL
// headers followed by hex-encoded GSM-7 bodies.
func (s *Session) readText(ctx context.Context, class MessageClass) ([]Incoming, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected.Load() {
		return nil, ErrNotConnected
	}
	if err := s.handler.SwitchToCommandMode(ctx); err != nil {
		return nil, fmt.Errorf("switch to command mode: %w", err)
	}

	var out []Incoming
	for _, location := range storageCodes(s.storage) {
		ok, err := s.handler.SetMemoryLocation(ctx, location)
		if err != nil {
			return out, fmt.Errorf("set memory location %q: %w", location, err)
		}
		if !ok {
			continue
		}
		response, err := s.handler.ListMessages(ctx, class)
		if err != nil {
			return out, fmt.Errorf("list messages in %q: %w", location, err)
		}

		sc := bufio.NewScanner(strings.NewReader(response))
		for {
			line, more := at.NextUsefulLine(sc)
			if !more || strings.EqualFold(line, at.OK) {
				break
			}
			memIndex, err := at.MemIndex(line)
			if err != nil {
				s.log.Warn("unparseable list header line", "line", line)
				continue
			}
			fields := splitHeaderFields(line)
			if len(fields) < 3 {
				s.log.Warn("short list header line", "line", line)
				continue
			}
			if isDigits(fields[2]) {
				// A numeric third field (the first octet) marks a status
				// report row; the reference number follows it.
				if len(fields) < 9 {
					s.log.Warn("short status report line", "line", line)
					continue
				}
				refNo, _ := strconv.Atoi(fields[3])
				out = append(out, &StatusReportMessage{
					MemIndex:      memIndex,
					MemLocation:   location,
					RefNo:         refNo,
					SubmitTime:    parseTextModeTime(fields[5], fields[6]),
					DischargeTime: parseTextModeTime(fields[7], fields[8]),
					Status:        tpdu.DeliveryUnknown,
				})
				s.stats.incTotalIn()
				continue
			}
			if len(fields) < 6 {
				s.log.Warn("short message header line", "line", line)
				continue
			}
			body, more := at.NextUsefulLine(sc)
			if !more {
				s.log.Warn("missing message body, skipping", "index", memIndex)
				break
			}
			// The body is hex-encoded regardless of the device's character
			// set; decoding depends on the modem being in hex mode.
			text := body
			if raw, err := tpdu.DecodeHex(body); err == nil {
				text = gsm7.SeptetsToString(raw)
			}
			out = append(out, &IncomingMessage{
				MemIndex:    memIndex,
				MemLocation: location,
				Originator:  fields[2],
				Time:        parseTextModeTime(fields[4], fields[5]),
				Encoding:    tpdu.GSM7,
				Text:        text,
			})
			s.stats.incTotalIn()
		}
	}
	return out, nil
}

// splitHeaderFields tokenizes a CMGL header line the way the text-mode
// parser expects: empty fields are preserved as blanks and quotes are
// stripped.
func splitHeaderFields(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.Trim(strings.TrimSpace(f), `"`)
	}
	return fields
}

// parseTextModeTime builds a UTC timestamp from text-mode date and time
// fields ("yy/MM/dd" and "hh:mm:ss", with an optional trailing zone that is
// ignored).
func parseTextModeTime(dateStr, timeStr string) time.Time {
	if len(dateStr) < 8 || len(timeStr) < 8 {
		return time.Time{}
	}
	year, _ := strconv.Atoi(dateStr[0:2])
	month, _ := strconv.Atoi(dateStr[3:5])
	day, _ := strconv.Atoi(dateStr[6:8])
	hour, _ := strconv.Atoi(timeStr[0:2])
	minute, _ := strconv.Atoi(timeStr[3:5])
	second, _ := strconv.Atoi(timeStr[6:8])
	return time.Date(2000+year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// storageCodes splits a storage location string such as "SMME" into its
// 2-letter codes.
func storageCodes(storage string) []string {
	var out []string
	for i := 0; i+2 <= len(storage); i += 2 {
		out = append(out, storage[i:i+2])
	}
	return out
}

// DeleteMessage removes a consumed message from device memory. A
// reassembled multipart message deletes every one of its part slots.
func (s *Session) DeleteMessage(ctx context.Context, msg Incoming) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected.Load() {
		return ErrNotConnected
	}
	memIndex, location := msg.Index()
	if memIndex >= 0 {
		return s.handler.DeleteMessage(ctx, memIndex, location)
	}
	for _, index := range msg.PartIndexes() {
		if err := s.handler.DeleteMessage(ctx, index, location); err != nil {
			return err
		}
	}
	return nil
}

// RefreshDeviceInfo re-reads the device information block. Identity fields
// stick after the first read; attach state, battery and signal refresh on
// every call.
func (s *Session) RefreshDeviceInfo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected.Load() {
		return ErrNotConnected
	}
	return s.refreshDeviceInfoLocked(ctx)
}

func (s *Session) refreshDeviceInfoLocked(ctx context.Context) error {
	type field struct {
		current *string
		query   func(context.Context) (string, error)
		parse   func(string) string
	}
	for _, f := range []field{
		{&s.info.Manufacturer, s.handler.Manufacturer, at.ParseManufacturer},
		{&s.info.Model, s.handler.Model, at.ParseModel},
		{&s.info.SerialNo, s.handler.SerialNo, at.ParseSerialNo},
		{&s.info.IMSI, s.handler.IMSI, at.ParseIMSI},
		{&s.info.SwVersion, s.handler.SwVersion, at.ParseSwVersion},
	} {
		if *f.current != "" {
			continue
		}
		raw, err := f.query(ctx)
		if err != nil {
			return err
		}
		*f.current = f.parse(raw)
	}

	raw, err := s.handler.GprsStatus(ctx)
	if err != nil {
		return err
	}
	s.info.GprsAttached = at.ParseGprsAttached(raw)
	if raw, err = s.handler.BatteryLevel(ctx); err != nil {
		return err
	}
	s.info.BatteryLevel = at.ParseBatteryLevel(raw)
	if raw, err = s.handler.SignalLevel(ctx); err != nil {
		return err
	}
	s.info.SignalLevel = at.ParseSignalLevel(raw)
	return nil
}

// Msisdn queries and parses the subscriber's own number.
func (s *Session) Msisdn(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected.Load() {
		return "", ErrNotConnected
	}
	raw, err := s.handler.Msisdn(ctx)
	if err != nil {
		return "", err
	}
	return at.ParseMsisdn(raw), nil
}

// receiveLoop waits on the new-message monitor and, in the asynchronous
// receive modes, reads arriving messages and hands them to the listener.
// Messages the listener consumes are deleted from the device. Errors are
// logged and the loop continues.
func (s *Session) receiveLoop(w *worker) {
	defer close(w.done)
	for {
		if w.stopping() {
			return
		}
		state := s.monitor.WaitEvent(s.cfg.AsyncPollInterval)
		if w.stopping() {
			return
		}
		mode := ReceiveMode(s.receiveMode.Load())
		if !s.connected.Load() || (mode != ReceiveAsyncCMTI && mode != ReceiveAsyncPoll) {
			continue
		}

		if state == MonitorData {
			available, err := s.handler.DataAvailable()
			if err != nil {
				s.log.Warn("data availability probe failed", "error", err)
				continue
			}
			if !available && s.monitor.State() != MonitorCMTI {
				continue
			}
		}
		s.monitor.Reset()

		messages, err := s.ReadMessages(s.ctx, s.cfg.AsyncRecvClass)
		if err != nil {
			s.log.Error("receive loop read failed", "error", err)
			continue
		}
		for _, msg := range messages {
			listener := s.getListener()
			if listener == nil {
				continue
			}
			if listener(s, msg) {
				if err := s.DeleteMessage(s.ctx, msg); err != nil {
					s.log.Error("delete of consumed message failed", "error", err)
				}
			}
		}
	}
}

// keepAliveLoop pulses the device on the keep-alive interval to stop the
// serial link from timing out. An I/O failure ends the session.
func (s *Session) keepAliveLoop(w *worker) {
	defer close(w.done)
	t := time.NewTimer(s.cfg.KeepAliveInterval)
	defer t.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-t.C:
		}
		if s.connected.Load() {
			s.mu.Lock()
			_, err := s.handler.IsAlive(s.ctx)
			s.mu.Unlock()
			if err != nil {
				if !w.stopping() {
					s.log.Warn("keep-alive failed, disconnecting", "error", err)
					go s.Disconnect()
				}
				return
			}
		}
		t.Reset(s.cfg.KeepAliveInterval)
	}
}
