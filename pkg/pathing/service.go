package pathing

import "os"

const defaultConfigDir = "/etc/p1_telegram"

// GetConfigDir returns the directory holding the service config files.
// ESM_CONFIG_DIR overrides the default, mostly for tests and development.
func GetConfigDir() string {
	if dir := os.Getenv("ESM_CONFIG_DIR"); dir != "" {
		return dir
	}
	return defaultConfigDir
}
