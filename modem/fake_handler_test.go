package modem_test

import (
	"context"
	"sync"

	"i4.energy/across/smslib/modem"
)

// fakeHandler is a scriptable AT dialect for session tests: canned raw
// responses in, recorded commands out.
type fakeHandler struct {
	mu sync.Mutex

	pinStates   []string // consumed one per PinResponse call; the last repeats
	pinCalls    int
	enteredPins []string

	storage  string
	creg     string
	location string
	lists    map[string][]string // location -> queue of CMGL blobs

	sent     []sentPDU
	sendRefs []int // queue of references to hand out; empty counts up
	nextRef  int

	deleted []deletedMessage

	manufacturer string
	model        string
	serialNo     string
	imsi         string
	swVersion    string
	msisdn       string
	battery      string
	signal       string
	gprs         string

	alive     bool
	aliveErr  error
	pduModeOK bool
	proto     modem.Protocol
}

type sentPDU struct {
	Length    int
	PDU       string
	Recipient string
	HexText   string
}

type deletedMessage struct {
	Index    int
	Location string
}

func newFakeHandler() *fakeHandler {
	return &fakeHandler{
		pinStates:    []string{"+CPIN: READY"},
		storage:      "SM",
		creg:         "\r\n+CREG: 0,1\r\n\r\nOK\r",
		lists:        map[string][]string{},
		manufacturer: "\r\n WAVECOM WIRELESS CPU\r\n\r\nOK\r",
		model:        "\r\n900P\r\n\r\nOK\r",
		serialNo:     "\r\n123412341234123\r\n\r\nOK\r",
		imsi:         "\r\n123412341234111\r\n\r\nOK\r",
		swVersion:    "\r\n11.608.02.00.94\r\n\r\nOK\r",
		msisdn:       "\r\n+CNUM: ,\"254704593111\",161\r\n\r\nOK\r",
		battery:      "+CBC: 1,37",
		signal:       "+CSQ: 22,0",
		gprs:         "\r\n+CGATT: 1\r\n\r\nOK\r",
		alive:        true,
		pduModeOK:    true,
	}
}

func (f *fakeHandler) Sync(ctx context.Context) error             { return nil }
func (f *fakeHandler) Reset(ctx context.Context) error            { return nil }
func (f *fakeHandler) Init(ctx context.Context) error             { return nil }
func (f *fakeHandler) EchoOff(ctx context.Context) error          { return nil }
func (f *fakeHandler) SetVerboseErrors(ctx context.Context) error { return nil }

func (f *fakeHandler) IsAlive(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive, f.aliveErr
}

// failAlive makes every subsequent keep-alive pulse report an I/O failure.
func (f *fakeHandler) failAlive(err error) {
	f.mu.Lock()
	f.aliveErr = err
	f.mu.Unlock()
}

func (f *fakeHandler) PinResponse(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := f.pinStates[min(f.pinCalls, len(f.pinStates)-1)]
	f.pinCalls++
	return state, nil
}

func (f *fakeHandler) IsWaitingForPin(resp string) bool {
	return resp == "+CPIN: SIM PIN"
}

func (f *fakeHandler) IsWaitingForPin2(resp string) bool {
	return resp == "+CPIN: SIM PIN2"
}

func (f *fakeHandler) IsWaitingForPuk(resp string) bool {
	return resp == "+CPIN: SIM PUK"
}

func (f *fakeHandler) EnterPin(ctx context.Context, pin string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enteredPins = append(f.enteredPins, pin)
	return true, nil
}

func (f *fakeHandler) NetworkRegistration(ctx context.Context) (string, error) {
	return f.creg, nil
}

func (f *fakeHandler) StorageLocations(ctx context.Context) (string, error) {
	return f.storage, nil
}

func (f *fakeHandler) SetPduMode(ctx context.Context) (bool, error)  { return f.pduModeOK, nil }
func (f *fakeHandler) SetTextMode(ctx context.Context) (bool, error) { return true, nil }

func (f *fakeHandler) EnableIndications(ctx context.Context) (bool, error)  { return true, nil }
func (f *fakeHandler) DisableIndications(ctx context.Context) (bool, error) { return true, nil }

func (f *fakeHandler) SetMemoryLocation(ctx context.Context, location string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.location = location
	return true, nil
}

func (f *fakeHandler) ListMessages(ctx context.Context, class modem.MessageClass) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	queue := f.lists[f.location]
	if len(queue) == 0 {
		return "\r\nOK\r\n", nil
	}
	response := queue[0]
	f.lists[f.location] = queue[1:]
	return response, nil
}

func (f *fakeHandler) queueList(location, response string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[location] = append(f.lists[location], response)
}

func (f *fakeHandler) SendMessage(ctx context.Context, pduLen int, pduHex, recipient, hexText string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentPDU{Length: pduLen, PDU: pduHex, Recipient: recipient, HexText: hexText})
	if len(f.sendRefs) > 0 {
		ref := f.sendRefs[0]
		f.sendRefs = f.sendRefs[1:]
		return ref, nil
	}
	f.nextRef++
	return f.nextRef, nil
}

func (f *fakeHandler) sentPDUs() []sentPDU {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentPDU{}, f.sent...)
}

func (f *fakeHandler) DeleteMessage(ctx context.Context, index int, location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, deletedMessage{Index: index, Location: location})
	return nil
}

func (f *fakeHandler) deletedMessages() []deletedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]deletedMessage{}, f.deleted...)
}

func (f *fakeHandler) KeepLinkOpen(ctx context.Context) error          { return nil }
func (f *fakeHandler) SwitchToCommandMode(ctx context.Context) error   { return nil }
func (f *fakeHandler) DataAvailable() (bool, error)                    { return true, nil }
func (f *fakeHandler) Manufacturer(ctx context.Context) (string, error) { return f.manufacturer, nil }
func (f *fakeHandler) Model(ctx context.Context) (string, error)       { return f.model, nil }
func (f *fakeHandler) SerialNo(ctx context.Context) (string, error)    { return f.serialNo, nil }
func (f *fakeHandler) IMSI(ctx context.Context) (string, error)        { return f.imsi, nil }
func (f *fakeHandler) SwVersion(ctx context.Context) (string, error)   { return f.swVersion, nil }
func (f *fakeHandler) Msisdn(ctx context.Context) (string, error)      { return f.msisdn, nil }
func (f *fakeHandler) BatteryLevel(ctx context.Context) (string, error) { return f.battery, nil }
func (f *fakeHandler) SignalLevel(ctx context.Context) (string, error) { return f.signal, nil }
func (f *fakeHandler) GprsStatus(ctx context.Context) (string, error)  { return f.gprs, nil }

func (f *fakeHandler) Protocol() modem.Protocol { return f.proto }

func (f *fakeHandler) SupportsReceive() bool        { return true }
func (f *fakeHandler) SupportsBinarySending() bool  { return true }
func (f *fakeHandler) SupportsUcs2Sending() bool    { return true }
func (f *fakeHandler) SupportsStk() bool            { return false }

var _ modem.Handler = (*fakeHandler)(nil)
