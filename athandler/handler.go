// Package athandler implements the vendor AT dialects the modem session
// drives, plus the registry that picks one by manufacturer, model or alias.
package athandler

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/smslib/at"
	"i4.energy/across/smslib/modem"
)

// RetryPolicy controls how the handler deals with a silent or complaining
// device: every AT round-trip runs under ATTimeout, no-response commands
// retry up to RetriesNoResponse times spaced by DelayNoResponse, and CMS
// errors during a send retry up to RetriesCmsErrors times spaced by
// DelayCmsErrors.
type RetryPolicy struct {
	ATTimeout         time.Duration
	RetriesNoResponse int
	DelayNoResponse   time.Duration
	RetriesCmsErrors  int
	DelayCmsErrors    time.Duration
}

func (p *RetryPolicy) setDefaults() {
	if p.ATTimeout == 0 {
		p.ATTimeout = 5 * time.Second
	}
	if p.RetriesNoResponse == 0 {
		p.RetriesNoResponse = 5
	}
	if p.DelayNoResponse == 0 {
		p.DelayNoResponse = 5 * time.Second
	}
	if p.RetriesCmsErrors == 0 {
		p.RetriesCmsErrors = 5
	}
	if p.DelayCmsErrors == 0 {
		p.DelayCmsErrors = 5 * time.Second
	}
}

// Config parameterizes a handler instance.
type Config struct {
	Policy   RetryPolicy
	Protocol modem.Protocol
}

// bufferedDriver is the optional driver capability the handlers use to
// check for unread device output without consuming it.
type bufferedDriver interface {
	DataAvailable() (bool, error)
}

// ATHandler is the baseline dialect: plain 3GPP TS 27.005 commands with no
// vendor quirks. Vendor handlers embed it and override what differs.
type ATHandler struct {
	drv    modem.Driver
	log    *slog.Logger
	policy RetryPolicy
	proto  modem.Protocol
}

// NewATHandler creates the baseline handler.
func NewATHandler(drv modem.Driver, logger *slog.Logger, cfg Config) *ATHandler {
	cfg.Policy.setDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ATHandler{drv: drv, log: logger, policy: cfg.Policy, proto: cfg.Protocol}
}

var _ modem.Handler = (*ATHandler)(nil)

// send writes one command line without waiting for a response.
func (h *ATHandler) send(cmd string) error {
	return h.drv.Send([]byte(strings.TrimSpace(cmd) + "\r"))
}

// roundTrip performs one command/response exchange under the AT timeout.
func (h *ATHandler) roundTrip(ctx context.Context, cmd string) (string, error) {
	if err := h.send(cmd); err != nil {
		return "", err
	}
	tctx, cancel := context.WithTimeout(ctx, h.policy.ATTimeout)
	defer cancel()
	return h.drv.ReadBuffer(tctx)
}

// serialSendReceive exchanges a command for a response, retrying when the
// device stays silent. The final response is returned verbatim, error
// outcomes included; only exhausted retries surface as an error.
func (h *ATHandler) serialSendReceive(ctx context.Context, cmd string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= h.policy.RetriesNoResponse; attempt++ {
		if attempt > 0 {
			h.log.Debug("retrying command", "cmd", cmd, "attempt", attempt)
			if err := sleepCtx(ctx, h.policy.DelayNoResponse); err != nil {
				return "", err
			}
		}
		resp, err := h.roundTrip(ctx, cmd)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("no response to %q after %d attempts: %w", cmd, h.policy.RetriesNoResponse+1, lastErr)
}

// expect runs a command and logs, without failing, when the device answers
// with an error result. Used for setup commands many devices reject
// harmlessly.
func (h *ATHandler) expect(ctx context.Context, cmd string) error {
	resp, err := h.serialSendReceive(ctx, cmd)
	if err != nil {
		return err
	}
	if at.IsError(resp) {
		h.log.Debug("command rejected", "cmd", cmd, "response", resp)
	}
	return nil
}

// query runs a command and reports whether the device accepted it.
func (h *ATHandler) query(ctx context.Context, cmd string) (bool, error) {
	resp, err := h.serialSendReceive(ctx, cmd)
	if err != nil {
		return false, err
	}
	return !at.IsError(resp), nil
}

// Sync nudges the command channel awake. Responses are irrelevant; the
// session empties the buffer right afterwards.
func (h *ATHandler) Sync(ctx context.Context) error {
	for i := 0; i < 2; i++ {
		if err := h.send(at.CmdAt); err != nil {
			return err
		}
		if err := sleepCtx(ctx, 100*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

// Reset restores the power-on command state.
func (h *ATHandler) Reset(ctx context.Context) error {
	return h.expect(ctx, at.CmdReset)
}

// Init applies dialect setup. The baseline dialect needs none; vendor
// handlers override this.
func (h *ATHandler) Init(ctx context.Context) error {
	return nil
}

func (h *ATHandler) EchoOff(ctx context.Context) error {
	return h.expect(ctx, at.CmdEchoOff)
}

func (h *ATHandler) SetVerboseErrors(ctx context.Context) error {
	return h.expect(ctx, at.CmdVerboseErrors)
}

func (h *ATHandler) IsAlive(ctx context.Context) (bool, error) {
	resp, err := h.roundTrip(ctx, at.CmdAt)
	if err != nil {
		return false, err
	}
	return !at.IsError(resp), nil
}

func (h *ATHandler) PinResponse(ctx context.Context) (string, error) {
	return h.serialSendReceive(ctx, at.CmdSimStatus)
}

func (h *ATHandler) IsWaitingForPin(pinResponse string) bool {
	return strings.Contains(pinResponse, "SIM PIN") && !strings.Contains(pinResponse, "SIM PIN2")
}

func (h *ATHandler) IsWaitingForPin2(pinResponse string) bool {
	return strings.Contains(pinResponse, "SIM PIN2")
}

func (h *ATHandler) IsWaitingForPuk(pinResponse string) bool {
	return strings.Contains(pinResponse, "PUK")
}

func (h *ATHandler) EnterPin(ctx context.Context, pin string) (bool, error) {
	return h.query(ctx, fmt.Sprintf(`AT+CPIN="%s"`, pin))
}

func (h *ATHandler) NetworkRegistration(ctx context.Context) (string, error) {
	return h.serialSendReceive(ctx, at.CmdNetworkReg)
}

var storageNameRe = regexp.MustCompile(`"([A-Z]{2})"`)

// StorageLocations asks the device which message memories it has and
// returns the distinct 2-letter codes concatenated, e.g. "SMME".
func (h *ATHandler) StorageLocations(ctx context.Context) (string, error) {
	resp, err := h.serialSendReceive(ctx, at.CmdStorageStatus)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	seen := map[string]bool{}
	for _, m := range storageNameRe.FindAllStringSubmatch(resp, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out.WriteString(m[1])
		}
	}
	return out.String(), nil
}

func (h *ATHandler) SetPduMode(ctx context.Context) (bool, error) {
	return h.query(ctx, at.CmdSetPduMode)
}

func (h *ATHandler) SetTextMode(ctx context.Context) (bool, error) {
	return h.query(ctx, at.CmdSetTextMode)
}

func (h *ATHandler) EnableIndications(ctx context.Context) (bool, error) {
	return h.query(ctx, at.CmdIndicationsOn)
}

func (h *ATHandler) DisableIndications(ctx context.Context) (bool, error) {
	return h.query(ctx, at.CmdIndicationsOff)
}

func (h *ATHandler) SetMemoryLocation(ctx context.Context, location string) (bool, error) {
	return h.query(ctx, fmt.Sprintf(`AT+CPMS="%s"`, location))
}

func (h *ATHandler) ListMessages(ctx context.Context, class modem.MessageClass) (string, error) {
	if h.proto == modem.ProtocolText {
		return h.serialSendReceive(ctx, fmt.Sprintf(`AT+CMGL="%s"`, class.TextModeID()))
	}
	return h.serialSendReceive(ctx, fmt.Sprintf("AT+CMGL=%d", class.PduModeID()))
}

var cmgsRefRe = regexp.MustCompile(`\+CMGS:\s*(\d+)`)

// SendMessage submits one message part and returns the reference the
// device assigned. CMS errors retry per policy and finally report
// SendFailed; a dead line reports SendFatal.
func (h *ATHandler) SendMessage(ctx context.Context, pduLenOctets int, pduHex, recipient, hexText string) (int, error) {
	for attempt := 0; ; attempt++ {
		ref, retry, err := h.sendOnce(ctx, pduLenOctets, pduHex, recipient, hexText)
		if err != nil {
			return modem.SendFatal, nil
		}
		if !retry {
			return ref, nil
		}
		if attempt >= h.policy.RetriesCmsErrors {
			return modem.SendFailed, nil
		}
		h.log.Warn("CMS error during send, retrying", "attempt", attempt+1)
		if err := sleepCtx(ctx, h.policy.DelayCmsErrors); err != nil {
			return modem.SendFatal, nil
		}
	}
}

// sendOnce performs one submission attempt. retry is true when the device
// reported a CMS error worth retrying; err is reserved for link failures.
func (h *ATHandler) sendOnce(ctx context.Context, pduLenOctets int, pduHex, recipient, hexText string) (ref int, retry bool, err error) {
	var cmd, body string
	if h.proto == modem.ProtocolText {
		cmd = fmt.Sprintf(`AT+CMGS="%s"`, recipient)
		body = hexText
	} else {
		cmd = fmt.Sprintf("AT+CMGS=%d", pduLenOctets)
		body = pduHex
	}

	resp, err := h.roundTrip(ctx, cmd)
	if err != nil {
		return 0, false, err
	}
	if !strings.Contains(resp, at.Prompt) {
		return modem.SendFailed, strings.Contains(resp, at.CmsError), nil
	}

	if err := h.drv.Send([]byte(body + at.CtrlZ)); err != nil {
		return 0, false, err
	}
	tctx, cancel := context.WithTimeout(ctx, h.policy.ATTimeout)
	defer cancel()
	resp, err = h.drv.ReadBuffer(tctx)
	if err != nil {
		return 0, false, err
	}
	if m := cmgsRefRe.FindStringSubmatch(resp); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, false, nil
	}
	return modem.SendFailed, strings.Contains(resp, at.CmsError), nil
}

func (h *ATHandler) DeleteMessage(ctx context.Context, index int, location string) error {
	if ok, err := h.SetMemoryLocation(ctx, location); err != nil || !ok {
		if err != nil {
			return err
		}
		return fmt.Errorf("memory location %q rejected", location)
	}
	resp, err := h.serialSendReceive(ctx, fmt.Sprintf("AT+CMGD=%d", index))
	if err != nil {
		return err
	}
	if at.IsError(resp) {
		return fmt.Errorf("delete of message %d in %q failed: %q", index, location, resp)
	}
	return nil
}

// KeepLinkOpen pulses the device to keep the serial line from idling out.
func (h *ATHandler) KeepLinkOpen(ctx context.Context) error {
	_, err := h.roundTrip(ctx, at.CmdAt)
	return err
}

// SwitchToCommandMode drops the device out of any data mode. The escape
// sequence needs silence around it to register.
func (h *ATHandler) SwitchToCommandMode(ctx context.Context) error {
	if err := h.drv.Send([]byte("+++")); err != nil {
		return err
	}
	return sleepCtx(ctx, 100*time.Millisecond)
}

func (h *ATHandler) DataAvailable() (bool, error) {
	if d, ok := h.drv.(bufferedDriver); ok {
		return d.DataAvailable()
	}
	return true, nil
}

func (h *ATHandler) Manufacturer(ctx context.Context) (string, error) {
	return h.serialSendReceive(ctx, at.CmdManufacturer)
}

func (h *ATHandler) Model(ctx context.Context) (string, error) {
	return h.serialSendReceive(ctx, at.CmdModel)
}

func (h *ATHandler) SerialNo(ctx context.Context) (string, error) {
	return h.serialSendReceive(ctx, at.CmdSerialNo)
}

func (h *ATHandler) IMSI(ctx context.Context) (string, error) {
	return h.serialSendReceive(ctx, at.CmdImsi)
}

func (h *ATHandler) SwVersion(ctx context.Context) (string, error) {
	return h.serialSendReceive(ctx, at.CmdSwVersion)
}

func (h *ATHandler) Msisdn(ctx context.Context) (string, error) {
	return h.serialSendReceive(ctx, at.CmdMsisdn)
}

func (h *ATHandler) BatteryLevel(ctx context.Context) (string, error) {
	return h.serialSendReceive(ctx, at.CmdBattery)
}

func (h *ATHandler) SignalLevel(ctx context.Context) (string, error) {
	return h.serialSendReceive(ctx, at.CmdSignal)
}

func (h *ATHandler) GprsStatus(ctx context.Context) (string, error) {
	return h.serialSendReceive(ctx, at.CmdGprsStatus)
}

func (h *ATHandler) Protocol() modem.Protocol { return h.proto }

func (h *ATHandler) SupportsReceive() bool { return true }

func (h *ATHandler) SupportsBinarySending() bool { return true }

func (h *ATHandler) SupportsUcs2Sending() bool { return true }

func (h *ATHandler) SupportsStk() bool { return false }

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
