package port_reader

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/NotCoffee418/p1_telegram/pkg/config"
	"github.com/NotCoffee418/p1_telegram/pkg/esmutils"
	"github.com/NotCoffee418/p1_telegram/pkg/interpreter"
	"github.com/NotCoffee418/p1_telegram/pkg/telegram"
	"github.com/jacobsa/go-serial/serial"
	"github.com/rs/zerolog"
)

var ErrNotConnected = errors.New("serial port not connected")

// Initialize a new P1Reader client from the interpreter API config.
func NewP1Reader(cfg *config.InterpreterAPIConfig, logger zerolog.Logger) *P1Reader {
	reader := &P1Reader{
		port:           cfg.SerialDevice,
		baudrate:       cfg.Baudrate,
		maxErrors:      cfg.MaxConsecutiveErrors,
		logger:         logger.With().Str("component", "p1_reader").Str("port", cfg.SerialDevice).Logger(),
		readRetryDelay: time.Second,
		meterLocation:  time.Local,
	}
	reader.openPort = reader.openSerial

	if !cfg.RequireChecksum {
		reader.options = append(reader.options, telegram.WithChecksumPolicy(telegram.ChecksumOptional))
	}
	if cfg.MaxFrameSize > 0 {
		reader.options = append(reader.options, telegram.WithMaxFrameSize(cfg.MaxFrameSize))
	}
	if reader.maxErrors <= 0 {
		reader.maxErrors = 10
	}
	return reader
}

// Start listening for readings. Meters send a telegram every second.
// Runs in goroutine. handleReading() also runs in goroutine.
// handleError() is called once when the reader gives up.
func (p *P1Reader) StartReading(
	handleReading func(reading *interpreter.Reading),
	handleError func(error),
) {
	p.stopSignal.Store(false)

	go func() {
		port, err := p.connect()
		if err != nil {
			handleError(err)
			return
		}
		decoder := telegram.NewDecoder(port, p.options...)

		// Tolerance before we report error.
		consecutiveErrors := 0
		var lastError error

		for consecutiveErrors < p.maxErrors {
			state, err := decoder.Next()
			if p.stopSignal.Load() {
				p.logger.Info().Msg("Stop signal received, disconnecting")
				p.disconnect()
				return
			}

			if errors.Is(err, io.EOF) {
				lastError = fmt.Errorf("P1 port closed: %w", err)
				break
			}

			if err != nil {
				consecutiveErrors++
				lastError = err
				event := p.logger.Warn().Err(err).Int("errors", consecutiveErrors).Int("max", p.maxErrors)
				if telegram.IsDecodeError(err) {
					event.Msg("Skipping malformed telegram")
					continue
				}
				event.Msg("Error reading telegram")
				time.Sleep(p.readRetryDelay)
				continue
			}

			reading := interpreter.NewReading(state)
			p.readingMutex.Lock()
			p.latestReading = reading
			p.readingMutex.Unlock()
			p.logReading(state)

			go handleReading(reading)
			consecutiveErrors = 0
		}

		p.logger.Error().Err(lastError).Int("errors", consecutiveErrors).Msg("Stopping reader")
		handleError(lastError)
		p.disconnect()
	}()
}

func (p *P1Reader) StopReading() {
	p.stopSignal.Store(true)
	p.disconnect()
}

func (p *P1Reader) GetLatestReading() *interpreter.Reading {
	p.readingMutex.RLock()
	defer p.readingMutex.RUnlock()
	return p.latestReading
}

// Open the connection to the P1 port.
func (p *P1Reader) connect() (io.Reader, error) {
	port, err := p.openPort()
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}

	p.portMutex.Lock()
	p.serialPort = port
	p.portMutex.Unlock()

	p.logger.Info().Uint("baudrate", p.baudrate).Msg("Connected to P1 port")
	return port, nil
}

func (p *P1Reader) openSerial() (io.ReadWriteCloser, error) {
	if p.port == "" {
		return nil, ErrNotConnected
	}
	options := serial.OpenOptions{
		PortName:        p.port,
		BaudRate:        p.baudrate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	}
	return serial.Open(options)
}

func (p *P1Reader) disconnect() {
	p.portMutex.Lock()
	defer p.portMutex.Unlock()

	if p.serialPort != nil {
		p.serialPort.Close()
		p.serialPort = nil
		p.logger.Info().Msg("Disconnected from P1 port")
	}
}

func (p *P1Reader) logReading(state telegram.State) {
	event := p.logger.Debug()
	if !event.Enabled() {
		return
	}
	if state.DateTime != nil {
		event = event.Time("meter_time", state.DateTime.Time(p.meterLocation))
	}
	if w, ok := esmutils.KwToW(state.PowerDelivered); ok {
		event = event.Uint32("delivered_w", w)
	}
	if w, ok := esmutils.NetW(state.PowerDelivered, state.PowerReceived); ok {
		event = event.Int64("net_w", w)
	}
	if reading := state.Slaves[0].MeterReading; reading != nil {
		if dm3, ok := esmutils.M3ToDM3(reading.Value); ok {
			event = event.Uint32("slave_dm3", dm3)
		}
	}
	event.Msg("Decoded telegram")
}
