// smsgwd drives a GSM modem on a serial port: it prints every SMS that
// arrives and can send a one-shot message from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"i4.energy/across/smslib/athandler"
	"i4.energy/across/smslib/modem"
	"i4.energy/across/smslib/serialport"
)

func main() {
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port to connect to the modem")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("sim-pin", "", "SIM card PIN code (if required)")
	flag.String("smsc", "", "SMSC number override (normally taken from the SIM)")
	flag.String("manufacturer", "", "Device manufacturer, for AT handler selection")
	flag.String("model", "", "Device model, for AT handler selection")
	flag.String("handler", "", "AT handler alias override")
	flag.String("receive-mode", "cmti", "Receive mode: sync, cmti or poll")
	configFile := flag.String("config", "", "Path to a YAML configuration file")
	listPorts := flag.Bool("list-ports", false, "List detected serial ports and exit")
	sendTo := flag.String("send-to", "", "Send a single message to this number and exit")
	sendText := flag.String("send-text", "", "Body of the message for -send-to")
	flag.Parse()

	if *listPorts {
		ports, err := serialport.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, "port detection failed:", err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p.Path, p.Description)
		}
		return
	}

	config, err := LoadConfig(WithDefaults(), WithFile(*configFile), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	driver := serialport.New(config.SerialPort, config.BaudRate, logger.With("component", "serial"))
	handler := athandler.Load(driver, logger.With("component", "handler"), athandler.Config{}, config.Manufacturer, config.Model, config.HandlerAlias)

	receiveMode := modem.ReceiveAsyncCMTI
	switch config.ReceiveMode {
	case "sync":
		receiveMode = modem.ReceiveSync
	case "poll":
		receiveMode = modem.ReceiveAsyncPoll
	}

	sessionConfig, err := modem.NewConfigBuilder().
		WithDriver(driver).
		WithHandler(handler).
		WithLogger(logger.With("component", "session")).
		WithProtocol(handler.Protocol()).
		WithSIMPin(config.SimPIN).
		WithSIMPin2(config.SimPIN2).
		WithSMSCNumber(config.SMSCNumber).
		WithStorageLocations(config.StorageLocations).
		WithReceiveMode(receiveMode).
		Build()
	if err != nil {
		logger.Error("Failed to create session config", "error", err)
		os.Exit(1)
	}

	session, err := modem.New(sessionConfig)
	if err != nil {
		logger.Error("Failed to create session", "error", err)
		os.Exit(1)
	}

	session.SetListener(func(s *modem.Session, msg modem.Incoming) bool {
		switch m := msg.(type) {
		case *modem.IncomingMessage:
			logger.Info("message received",
				"from", m.Originator, "time", m.Time, "text", m.Text)
		case *modem.StatusReportMessage:
			logger.Info("status report received",
				"recipient", m.Recipient, "status", m.Status.String())
		}
		return true
	})

	ctx := context.Background()
	if err := session.Connect(ctx); err != nil {
		logger.Error("Failed to connect", "error", err)
		os.Exit(1)
	}
	info := session.DeviceInfo()
	logger.Info("Connected to device",
		"manufacturer", info.Manufacturer, "model", info.Model, "signal", info.SignalLevel)

	if *sendTo != "" {
		message := &modem.OutgoingMessage{Recipient: *sendTo, Text: *sendText}
		if err := session.SendMessage(ctx, message); err != nil {
			logger.Error("Send failed", "error", err)
		} else {
			logger.Info("Message dispatched", "refNo", message.RefNo)
		}
		if err := session.Disconnect(); err != nil {
			logger.Error("Disconnect failed", "error", err)
		}
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	if err := session.Disconnect(); err != nil {
		logger.Error("Disconnect failed", "error", err)
	}
}
