package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/p1_telegram/pkg/pathing"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

var (
	ActiveInterpreterAPIConfig *InterpreterAPIConfig
	ActiveMeterCollectorConfig *MeterCollectorConfig
)

func DefaultInterpreterAPIConfig() *InterpreterAPIConfig {
	return &InterpreterAPIConfig{
		SerialDevice:         "/dev/ttyUSB0",
		Baudrate:             115200,
		ListenAddress:        "0.0.0.0",
		ListenPort:           9039,
		RequireChecksum:      true,
		MaxFrameSize:         0,
		MaxConsecutiveErrors: 10,
		LogLevel:             "info",
	}
}

func DefaultMeterCollectorConfig() *MeterCollectorConfig {
	return &MeterCollectorConfig{
		InterpreterAPIHost: "localhost:9039",
		TLSEnabled:         false,
		LogLevel:           "info",
	}
}

func LoadInterpreterAPIConfig() error {
	configPath := filepath.Join(pathing.GetConfigDir(), "interpreter_api.toml")

	cfg := DefaultInterpreterAPIConfig()
	if err := loadOrCreate(configPath, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", configPath, err)
	}
	ActiveInterpreterAPIConfig = cfg
	return nil
}

func LoadMeterCollectorConfig() error {
	configPath := filepath.Join(pathing.GetConfigDir(), "meter_collector.toml")

	cfg := DefaultMeterCollectorConfig()
	if err := loadOrCreate(configPath, cfg); err != nil {
		return err
	}
	if cfg.InterpreterAPIHost == "" {
		return fmt.Errorf("%s: %w: interpreter_api_host is empty", configPath, ErrInvalidConfig)
	}
	ActiveMeterCollectorConfig = cfg
	return nil
}

func (c *InterpreterAPIConfig) Validate() error {
	switch {
	case c.SerialDevice == "":
		return fmt.Errorf("%w: serial_device is empty", ErrInvalidConfig)
	case c.Baudrate == 0:
		return fmt.Errorf("%w: baudrate is 0", ErrInvalidConfig)
	case c.ListenPort <= 0 || c.ListenPort > 65535:
		return fmt.Errorf("%w: listen_port %d out of range", ErrInvalidConfig, c.ListenPort)
	case c.MaxFrameSize < 0:
		return fmt.Errorf("%w: max_frame_size is negative", ErrInvalidConfig)
	case c.MaxConsecutiveErrors <= 0:
		return fmt.Errorf("%w: max_consecutive_errors must be positive", ErrInvalidConfig)
	}
	return nil
}

// loadOrCreate decodes path over the defaults in cfg, or writes the defaults
// to path when the file does not exist yet.
func loadOrCreate(path string, cfg any) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		cfgFile, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create default config: %w", err)
		}
		defer cfgFile.Close()
		if err := toml.NewEncoder(cfgFile).Encode(cfg); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
		return nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	return nil
}
