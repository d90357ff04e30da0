package athandler

import (
	"context"
	"log/slog"
	"time"

	"i4.energy/across/smslib/modem"
)

// Wavecom covers Wavecom wireless CPUs (WMOD2, Fastrack and friends).
type Wavecom struct {
	*ATHandler
}

func NewWavecom(drv modem.Driver, logger *slog.Logger, cfg Config) *Wavecom {
	return &Wavecom{ATHandler: NewATHandler(drv, logger, cfg)}
}

// Init disables the unsolicited WIND indications Wavecom devices emit by
// default; they would interleave with command responses.
func (h *Wavecom) Init(ctx context.Context) error {
	return h.expect(ctx, "AT+WIND=0")
}

// WavecomM1306B covers the M1306B USB modem, a Wavecom that keeps its
// messages in SIM memory only.
type WavecomM1306B struct {
	*Wavecom
}

func NewWavecomM1306B(drv modem.Driver, logger *slog.Logger, cfg Config) *WavecomM1306B {
	return &WavecomM1306B{Wavecom: NewWavecom(drv, logger, cfg)}
}

func (h *WavecomM1306B) StorageLocations(ctx context.Context) (string, error) {
	return "SM", nil
}

// Siemens covers the Siemens module family (TC35, MC75, S55, M55). The
// modules respond slowly after reset, so synchronization is more patient.
type Siemens struct {
	*ATHandler
}

func NewSiemens(drv modem.Driver, logger *slog.Logger, cfg Config) *Siemens {
	return &Siemens{ATHandler: NewATHandler(drv, logger, cfg)}
}

func (h *Siemens) Sync(ctx context.Context) error {
	if err := h.ATHandler.Sync(ctx); err != nil {
		return err
	}
	return sleepCtx(ctx, 2*time.Second)
}

// SiemensTC35 covers the TC35/TC35i terminals, which need their character
// set pinned to GSM before text operations behave.
type SiemensTC35 struct {
	*Siemens
}

func NewSiemensTC35(drv modem.Driver, logger *slog.Logger, cfg Config) *SiemensTC35 {
	return &SiemensTC35{Siemens: NewSiemens(drv, logger, cfg)}
}

func (h *SiemensTC35) Init(ctx context.Context) error {
	return h.expect(ctx, `AT+CSCS="GSM"`)
}

// SiemensMC75 covers the MC75 EDGE module.
type SiemensMC75 struct {
	*Siemens
}

func NewSiemensMC75(drv modem.Driver, logger *slog.Logger, cfg Config) *SiemensMC75 {
	return &SiemensMC75{Siemens: NewSiemens(drv, logger, cfg)}
}

// Huawei covers Huawei USB sticks, which announce status unsolicited until
// told otherwise.
type Huawei struct {
	*ATHandler
}

func NewHuawei(drv modem.Driver, logger *slog.Logger, cfg Config) *Huawei {
	return &Huawei{ATHandler: NewATHandler(drv, logger, cfg)}
}

// Init turns off the periodic ^RSSI/^BOOT reports.
func (h *Huawei) Init(ctx context.Context) error {
	return h.expect(ctx, "AT^CURC=0")
}

// SonyEricsson covers SonyEricsson phones used as modems.
type SonyEricsson struct {
	*ATHandler
}

func NewSonyEricsson(drv modem.Driver, logger *slog.Logger, cfg Config) *SonyEricsson {
	return &SonyEricsson{ATHandler: NewATHandler(drv, logger, cfg)}
}

// SupportsBinarySending is false: the phones reject 8-bit DCS submissions.
func (h *SonyEricsson) SupportsBinarySending() bool { return false }

// Samsung covers Samsung phones, which only expose their SIM storage.
type Samsung struct {
	*ATHandler
}

func NewSamsung(drv modem.Driver, logger *slog.Logger, cfg Config) *Samsung {
	return &Samsung{ATHandler: NewATHandler(drv, logger, cfg)}
}

func (h *Samsung) StorageLocations(ctx context.Context) (string, error) {
	return "SM", nil
}

// SimcomSIM300 covers the SIMCOM SIM300 module.
type SimcomSIM300 struct {
	*ATHandler
}

func NewSimcomSIM300(drv modem.Driver, logger *slog.Logger, cfg Config) *SimcomSIM300 {
	return &SimcomSIM300{ATHandler: NewATHandler(drv, logger, cfg)}
}

// Init enables the caller line identity the module leaves off by default.
func (h *SimcomSIM300) Init(ctx context.Context) error {
	return h.expect(ctx, "AT+CLIP=1")
}

// NokiaS403ed covers Nokia Series 40 3rd edition phones. They refuse to
// hand over received messages via AT, so receiving is unsupported.
type NokiaS403ed struct {
	*ATHandler
}

func NewNokiaS403ed(drv modem.Driver, logger *slog.Logger, cfg Config) *NokiaS403ed {
	return &NokiaS403ed{ATHandler: NewATHandler(drv, logger, cfg)}
}

func (h *NokiaS403ed) SupportsReceive() bool { return false }

func (h *NokiaS403ed) SupportsUcs2Sending() bool { return false }
