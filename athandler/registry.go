package athandler

import (
	"log/slog"
	"strings"

	"i4.energy/across/smslib/modem"
)

// constructor builds one handler variant.
type constructor func(drv modem.Driver, logger *slog.Logger, cfg Config) modem.Handler

// handlers is the compiled-in dialect table. Names compose as
// base[_manufacturer[_model]] and match case-insensitively.
var handlers = []struct {
	name      string
	construct constructor
}{
	{"base_wavecom_m1306b", func(d modem.Driver, l *slog.Logger, c Config) modem.Handler { return NewWavecomM1306B(d, l, c) }},
	{"base_wavecom", func(d modem.Driver, l *slog.Logger, c Config) modem.Handler { return NewWavecom(d, l, c) }},
	{"base_siemens_tc35", func(d modem.Driver, l *slog.Logger, c Config) modem.Handler { return NewSiemensTC35(d, l, c) }},
	{"base_siemens_mc75", func(d modem.Driver, l *slog.Logger, c Config) modem.Handler { return NewSiemensMC75(d, l, c) }},
	{"base_siemens", func(d modem.Driver, l *slog.Logger, c Config) modem.Handler { return NewSiemens(d, l, c) }},
	{"base_huawei", func(d modem.Driver, l *slog.Logger, c Config) modem.Handler { return NewHuawei(d, l, c) }},
	{"base_sonyericsson", func(d modem.Driver, l *slog.Logger, c Config) modem.Handler { return NewSonyEricsson(d, l, c) }},
	{"base_samsung", func(d modem.Driver, l *slog.Logger, c Config) modem.Handler { return NewSamsung(d, l, c) }},
	{"base_simcom_sim300", func(d modem.Driver, l *slog.Logger, c Config) modem.Handler { return NewSimcomSIM300(d, l, c) }},
	{"base_nokia_s40_3ed", func(d modem.Driver, l *slog.Logger, c Config) modem.Handler { return NewNokiaS403ed(d, l, c) }},
	{"base", func(d modem.Driver, l *slog.Logger, c Config) modem.Handler { return NewATHandler(d, l, c) }},
}

// Load resolves the dialect for a device, trying in order the alias, the
// manufacturer+model pair, the manufacturer alone, and finally the
// baseline handler. Matching is case-insensitive.
func Load(drv modem.Driver, logger *slog.Logger, cfg Config, manufacturer, model, alias string) modem.Handler {
	var candidates []string
	if alias != "" {
		candidates = append(candidates, "base_"+alias)
	}
	if manufacturer != "" {
		if model != "" {
			candidates = append(candidates, "base_"+manufacturer+"_"+model)
		}
		candidates = append(candidates, "base_"+manufacturer)
	}
	for _, candidate := range candidates {
		if h := lookup(candidate, drv, logger, cfg); h != nil {
			if logger != nil {
				logger.Info("using AT handler", "name", strings.ToLower(candidate))
			}
			return h
		}
		if logger != nil {
			logger.Info("no handler for name, trying more generic", "name", candidate)
		}
	}
	return NewATHandler(drv, logger, cfg)
}

func lookup(name string, drv modem.Driver, logger *slog.Logger, cfg Config) modem.Handler {
	normalized := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	for _, entry := range handlers {
		if entry.name == normalized {
			return entry.construct(drv, logger, cfg)
		}
	}
	return nil
}
