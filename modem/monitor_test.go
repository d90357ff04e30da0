package modem_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"i4.energy/across/smslib/modem"
)

func TestMonitor(t *testing.T) {
	t.Run("times out with no event", func(t *testing.T) {
		m := modem.NewMonitor()
		start := time.Now()
		state := m.WaitEvent(20 * time.Millisecond)
		assert.Equal(t, modem.MonitorNone, state)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("returns a raised state immediately", func(t *testing.T) {
		m := modem.NewMonitor()
		m.Raise(modem.MonitorCMTI)
		assert.Equal(t, modem.MonitorCMTI, m.WaitEvent(time.Second))
	})

	t.Run("wakes a blocked waiter", func(t *testing.T) {
		m := modem.NewMonitor()
		got := make(chan modem.MonitorState, 1)
		go func() {
			got <- m.WaitEvent(5 * time.Second)
		}()
		time.Sleep(10 * time.Millisecond)
		m.Raise(modem.MonitorData)
		select {
		case state := <-got:
			assert.Equal(t, modem.MonitorData, state)
		case <-time.After(time.Second):
			t.Fatal("waiter was not woken")
		}
	})

	t.Run("CMTI outranks data", func(t *testing.T) {
		m := modem.NewMonitor()
		m.Raise(modem.MonitorCMTI)
		m.Raise(modem.MonitorData)
		assert.Equal(t, modem.MonitorCMTI, m.State())
	})

	t.Run("reset clears the state", func(t *testing.T) {
		m := modem.NewMonitor()
		m.Raise(modem.MonitorData)
		m.Reset()
		assert.Equal(t, modem.MonitorNone, m.State())
	})

	t.Run("notify wakes without recording an event", func(t *testing.T) {
		m := modem.NewMonitor()
		go func() {
			time.Sleep(10 * time.Millisecond)
			m.Notify()
		}()
		assert.Equal(t, modem.MonitorNone, m.WaitEvent(5*time.Second))
	})
}
