package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the daemon configuration
type Config struct {
	// SerialPort is the path to the modem's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string `yaml:"serialPort"`
	// BaudRate is the baud rate for serial communication with the modem (e.g. 115200)
	BaudRate int `yaml:"baudRate"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `yaml:"logLevel"`
	// SimPIN is the SIM card PIN code
	SimPIN string `yaml:"simPIN"`
	// SimPIN2 is the secondary SIM PIN, when the SIM demands one
	SimPIN2 string `yaml:"simPIN2"`
	// SMSCNumber overrides the service centre number from the SIM
	SMSCNumber string `yaml:"smscNumber"`
	// Manufacturer/Model/HandlerAlias select the AT dialect handler
	Manufacturer string `yaml:"manufacturer"`
	Model        string `yaml:"model"`
	HandlerAlias string `yaml:"handlerAlias"`
	// StorageLocations preselects the message memories to read (e.g. "SMME")
	StorageLocations string `yaml:"storageLocations"`
	// ReceiveMode is one of "sync", "cmti", "poll"
	ReceiveMode string `yaml:"receiveMode"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 115200
		c.LogLevel = "info"
		c.ReceiveMode = "cmti"
		return nil
	}
}

// WithFile overlays configuration from a YAML file. A missing path is not
// an error so the flag can stay optional.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if simPIN := os.Getenv("SIM_PIN"); simPIN != "" {
			c.SimPIN = simPIN
		}

		if smsc := os.Getenv("SMSC_NUMBER"); smsc != "" {
			c.SMSCNumber = smsc
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			case "sim-pin":
				c.SimPIN = f.Value.String()
			case "smsc":
				c.SMSCNumber = f.Value.String()
			case "manufacturer":
				c.Manufacturer = f.Value.String()
			case "model":
				c.Model = f.Value.String()
			case "handler":
				c.HandlerAlias = f.Value.String()
			case "receive-mode":
				c.ReceiveMode = f.Value.String()
			}

		})
		return nil
	}

}
