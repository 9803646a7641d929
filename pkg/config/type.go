package config

type MeterCollectorConfig struct {
	InterpreterAPIHost string `toml:"interpreter_api_host"`
	TLSEnabled         bool   `toml:"tls_enabled"`
	LogLevel           string `toml:"log_level"`
}

type InterpreterAPIConfig struct {
	SerialDevice  string `toml:"serial_device"`
	Baudrate      uint   `toml:"baudrate"`
	ListenAddress string `toml:"listen_address"`
	ListenPort    int    `toml:"listen_port"`
	// DSMR 2.2 and 3.0 meters send no checksum, set to false for those.
	RequireChecksum bool `toml:"require_checksum"`
	// Upper bound of a single telegram in bytes, 0 for the decoder default.
	MaxFrameSize int `toml:"max_frame_size"`
	// Failed telegrams in a row before the reader gives up.
	MaxConsecutiveErrors int    `toml:"max_consecutive_errors"`
	LogLevel             string `toml:"log_level"`
}
