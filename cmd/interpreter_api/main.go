// Interpreter API is responsible for reading the P1 port and broadcasting the
// decoded telegrams.
package main

import (
	"fmt"
	"net/http"

	"github.com/NotCoffee418/p1_telegram/pkg/config"
	"github.com/NotCoffee418/p1_telegram/pkg/logging"
	"github.com/NotCoffee418/p1_telegram/pkg/port_reader"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load config
	if err := config.LoadInterpreterAPIConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load interpreter API config")
	}
	cfg := config.ActiveInterpreterAPIConfig
	logger := logging.InitLogger("interpreter_api", cfg.LogLevel)

	hub := newBroadcastHub(logger)
	p1Reader := port_reader.NewP1Reader(cfg, logger)

	// Start reading P1 port; the service is useless without it.
	p1Reader.StartReading(
		hub.Broadcast,
		func(err error) {
			logger.Fatal().Err(err).Msg("Error reading P1 port")
		},
	)

	listener := fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort)
	logger.Info().Str("listen", listener).Msg("Starting P1 telegram interpreter API")
	if err := http.ListenAndServe(listener, newRouter(p1Reader.GetLatestReading, hub)); err != nil {
		logger.Fatal().Err(err).Msg("HTTP server stopped")
	}
}
