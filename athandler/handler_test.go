package athandler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/smslib/athandler"
	"i4.energy/across/smslib/modem"
)

// scriptResponse is one canned ReadBuffer outcome.
type scriptResponse struct {
	text string
	err  error
}

// scriptDriver is a modem.Driver double that records writes and replays
// canned responses. An exhausted script fails reads immediately so retry
// paths terminate fast.
type scriptDriver struct {
	mu        sync.Mutex
	writes    []string
	responses []scriptResponse
}

func (d *scriptDriver) Open() error  { return nil }
func (d *scriptDriver) Close() error { return nil }

func (d *scriptDriver) Send(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes = append(d.writes, string(data))
	return nil
}

func (d *scriptDriver) EmptyBuffer() error        { return nil }
func (d *scriptDriver) LastClearedBuffer() string { return "" }

func (d *scriptDriver) ReadBuffer(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	r := d.responses[0]
	d.responses = d.responses[1:]
	return r.text, r.err
}

func (d *scriptDriver) SetNewMessageMonitor(m *modem.Monitor) {}
func (d *scriptDriver) Port() string                          { return "/dev/ttySCRIPT" }

func (d *scriptDriver) recorded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string{}, d.writes...)
}

var _ modem.Driver = (*scriptDriver)(nil)

func fastPolicy() athandler.RetryPolicy {
	return athandler.RetryPolicy{
		ATTimeout:         50 * time.Millisecond,
		RetriesNoResponse: 2,
		DelayNoResponse:   time.Millisecond,
		RetriesCmsErrors:  2,
		DelayCmsErrors:    time.Millisecond,
	}
}

func newHandler(d *scriptDriver) *athandler.ATHandler {
	return athandler.NewATHandler(d, nil, athandler.Config{Policy: fastPolicy()})
}

func TestIsAlive(t *testing.T) {
	d := &scriptDriver{responses: []scriptResponse{{text: "OK"}}}
	alive, err := newHandler(d).IsAlive(context.Background())
	require.NoError(t, err)
	assert.True(t, alive)
	assert.Equal(t, []string{"AT\r"}, d.recorded())

	d = &scriptDriver{responses: []scriptResponse{{text: "ERROR"}}}
	alive, err = newHandler(d).IsAlive(context.Background())
	require.NoError(t, err)
	assert.False(t, alive)
}

func TestSerialSendReceiveRetries(t *testing.T) {
	d := &scriptDriver{responses: []scriptResponse{
		{err: context.DeadlineExceeded},
		{err: context.DeadlineExceeded},
		{text: "+CREG: 0,1\nOK"},
	}}
	resp, err := newHandler(d).NetworkRegistration(context.Background())
	require.NoError(t, err)
	assert.Contains(t, resp, "+CREG: 0,1")
	assert.Len(t, d.recorded(), 3)
}

func TestSerialSendReceiveExhausted(t *testing.T) {
	d := &scriptDriver{responses: []scriptResponse{
		{err: context.DeadlineExceeded},
		{err: context.DeadlineExceeded},
		{err: context.DeadlineExceeded},
	}}
	_, err := newHandler(d).NetworkRegistration(context.Background())
	assert.Error(t, err)
}

func TestPinStates(t *testing.T) {
	h := newHandler(&scriptDriver{})
	assert.True(t, h.IsWaitingForPin("\r\n+CPIN: SIM PIN\r\n"))
	assert.False(t, h.IsWaitingForPin("\r\n+CPIN: SIM PIN2\r\n"))
	assert.True(t, h.IsWaitingForPin2("\r\n+CPIN: SIM PIN2\r\n"))
	assert.True(t, h.IsWaitingForPuk("\r\n+CPIN: SIM PUK\r\n"))
	assert.False(t, h.IsWaitingForPin("\r\n+CPIN: READY\r\n"))
}

func TestStorageLocations(t *testing.T) {
	d := &scriptDriver{responses: []scriptResponse{
		{text: `+CPMS: "SM",3,25,"ME",3,25,"SM",3,25` + "\nOK"},
	}}
	locations, err := newHandler(d).StorageLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SMME", locations)
}

func TestSendMessagePDU(t *testing.T) {
	t.Run("success returns the assigned reference", func(t *testing.T) {
		d := &scriptDriver{responses: []scriptResponse{
			{text: "> "},
			{text: "+CMGS: 42\nOK"},
		}}
		ref, err := newHandler(d).SendMessage(context.Background(), 19, "0011AA", "", "")
		require.NoError(t, err)
		assert.Equal(t, 42, ref)

		writes := d.recorded()
		require.Len(t, writes, 2)
		assert.Equal(t, "AT+CMGS=19\r", writes[0])
		assert.Equal(t, "0011AA\x1a", writes[1])
	})

	t.Run("CMS error retries then succeeds", func(t *testing.T) {
		d := &scriptDriver{responses: []scriptResponse{
			{text: "+CMS ERROR: 500"},
			{text: "> "},
			{text: "+CMGS: 7\nOK"},
		}}
		ref, err := newHandler(d).SendMessage(context.Background(), 10, "00", "", "")
		require.NoError(t, err)
		assert.Equal(t, 7, ref)
	})

	t.Run("persistent CMS errors fail the part", func(t *testing.T) {
		d := &scriptDriver{responses: []scriptResponse{
			{text: "+CMS ERROR: 500"},
			{text: "+CMS ERROR: 500"},
			{text: "+CMS ERROR: 500"},
		}}
		ref, err := newHandler(d).SendMessage(context.Background(), 10, "00", "", "")
		require.NoError(t, err)
		assert.Equal(t, modem.SendFailed, ref)
	})

	t.Run("plain rejection does not retry", func(t *testing.T) {
		d := &scriptDriver{responses: []scriptResponse{
			{text: "ERROR"},
		}}
		ref, err := newHandler(d).SendMessage(context.Background(), 10, "00", "", "")
		require.NoError(t, err)
		assert.Equal(t, modem.SendFailed, ref)
		assert.Len(t, d.recorded(), 1)
	})

	t.Run("dead line reports a fatal failure", func(t *testing.T) {
		d := &scriptDriver{}
		ref, err := newHandler(d).SendMessage(context.Background(), 10, "00", "", "")
		require.NoError(t, err)
		assert.Equal(t, modem.SendFatal, ref)
	})
}

func TestSendMessageText(t *testing.T) {
	d := &scriptDriver{responses: []scriptResponse{
		{text: "> "},
		{text: "+CMGS: 3\nOK"},
	}}
	h := athandler.NewATHandler(d, nil, athandler.Config{
		Policy:   fastPolicy(),
		Protocol: modem.ProtocolText,
	})
	ref, err := h.SendMessage(context.Background(), 0, "", "+3069xxxxxxx", "C8329BFD06")
	require.NoError(t, err)
	assert.Equal(t, 3, ref)

	writes := d.recorded()
	require.Len(t, writes, 2)
	assert.Equal(t, `AT+CMGS="+3069xxxxxxx"`+"\r", writes[0])
	assert.Equal(t, "C8329BFD06\x1a", writes[1])
}

func TestDeleteMessage(t *testing.T) {
	d := &scriptDriver{responses: []scriptResponse{
		{text: "OK"}, // CPMS
		{text: "OK"}, // CMGD
	}}
	require.NoError(t, newHandler(d).DeleteMessage(context.Background(), 4, "SM"))
	writes := d.recorded()
	require.Len(t, writes, 2)
	assert.Equal(t, `AT+CPMS="SM"`+"\r", writes[0])
	assert.Equal(t, "AT+CMGD=4\r", writes[1])
}

func TestListMessages(t *testing.T) {
	d := &scriptDriver{responses: []scriptResponse{{text: "+CMGL: 1,1,,20\n07AB\nOK"}}}
	_, err := newHandler(d).ListMessages(context.Background(), modem.ClassAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"AT+CMGL=4\r"}, d.recorded())

	d = &scriptDriver{responses: []scriptResponse{{text: "OK"}}}
	h := athandler.NewATHandler(d, nil, athandler.Config{Policy: fastPolicy(), Protocol: modem.ProtocolText})
	_, err = h.ListMessages(context.Background(), modem.ClassUnread)
	require.NoError(t, err)
	assert.Equal(t, []string{`AT+CMGL="REC UNREAD"` + "\r"}, d.recorded())
}
