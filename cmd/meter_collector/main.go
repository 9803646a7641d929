// Meter collector subscribes to the interpreter API and prints every reading
// as a JSON line on stdout.
// Depends on the interpreter API being online.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/NotCoffee418/p1_telegram/pkg/config"
	"github.com/NotCoffee418/p1_telegram/pkg/interpreter"
	"github.com/NotCoffee418/p1_telegram/pkg/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := config.LoadMeterCollectorConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load meter collector config")
	}
	cfg := config.ActiveMeterCollectorConfig
	logger := logging.InitLogger("meter_collector", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Subscribe to websocket with revive
	err := interpreter.StartListener(ctx, cfg.InterpreterAPIHost, cfg.TLSEnabled, logger, handleMeterReading)
	if err != nil {
		logger.Fatal().Err(err).Str("host", cfg.InterpreterAPIHost).Msg("Listener stopped")
	}
}

// Handle meter reading data
func handleMeterReading(reading *interpreter.Reading) {
	fmt.Println(string(reading.ToJsonBytes()))
}
