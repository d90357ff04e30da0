package modem

import (
	"log/slog"
	"time"
)

// Config carries the settings of a Session. Build one with NewConfigBuilder.
type Config struct {
	Driver  Driver
	Handler Handler
	// Logger receives session diagnostics; nil discards them.
	Logger *slog.Logger

	// SMSCNumber overrides the service centre number; empty lets the
	// device use the one on its SIM.
	SMSCNumber string
	SIMPin     string
	SIMPin2    string
	// RequirePin2 makes a missing SIMPin2 fatal when the SIM asks for it.
	RequirePin2 bool

	Protocol    Protocol
	ReceiveMode ReceiveMode
	// StorageLocations preselects the 2-letter memory codes to read,
	// e.g. "SMME"; empty discovers them from the device.
	StorageLocations string

	AsyncPollInterval time.Duration
	KeepAliveInterval time.Duration
	AsyncRecvClass    MessageClass
}

func (c *Config) validate() error {
	if c.Driver == nil {
		return ErrNoDriver
	}
	if c.Handler == nil {
		return ErrNoHandler
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.AsyncPollInterval == 0 {
		c.AsyncPollInterval = 10 * time.Second
	}
	if c.KeepAliveInterval == 0 {
		c.KeepAliveInterval = 30 * time.Second
	}
}

// ConfigBuilder assembles a Config fluently.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDriver(d Driver) *ConfigBuilder {
	b.config.Driver = d
	return b
}

func (b *ConfigBuilder) WithHandler(h Handler) *ConfigBuilder {
	b.config.Handler = h
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

func (b *ConfigBuilder) WithSMSCNumber(smsc string) *ConfigBuilder {
	b.config.SMSCNumber = smsc
	return b
}

func (b *ConfigBuilder) WithSIMPin(pin string) *ConfigBuilder {
	b.config.SIMPin = pin
	return b
}

func (b *ConfigBuilder) WithSIMPin2(pin string) *ConfigBuilder {
	b.config.SIMPin2 = pin
	return b
}

func (b *ConfigBuilder) WithRequirePin2(require bool) *ConfigBuilder {
	b.config.RequirePin2 = require
	return b
}

func (b *ConfigBuilder) WithProtocol(p Protocol) *ConfigBuilder {
	b.config.Protocol = p
	return b
}

func (b *ConfigBuilder) WithReceiveMode(m ReceiveMode) *ConfigBuilder {
	b.config.ReceiveMode = m
	return b
}

func (b *ConfigBuilder) WithStorageLocations(locations string) *ConfigBuilder {
	b.config.StorageLocations = locations
	return b
}

func (b *ConfigBuilder) WithAsyncPollInterval(d time.Duration) *ConfigBuilder {
	b.config.AsyncPollInterval = d
	return b
}

func (b *ConfigBuilder) WithKeepAliveInterval(d time.Duration) *ConfigBuilder {
	b.config.KeepAliveInterval = d
	return b
}

func (b *ConfigBuilder) WithAsyncRecvClass(c MessageClass) *ConfigBuilder {
	b.config.AsyncRecvClass = c
	return b
}

// Build validates the configuration and fills defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	if err := b.config.validate(); err != nil {
		return Config{}, err
	}
	b.config.setDefaults()
	return b.config, nil
}
