package interpreter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	maxRetries     = 10
	baseRetryDelay = 2 * time.Second
	maxRetryDelay  = 60 * time.Second

	// Readings arrive every second, so silence this long means a dead peer.
	readTimeout  = 10 * time.Second
	pingInterval = 30 * time.Second
)

var ErrMaxRetries = errors.New("interpreter: max retries reached")

// Manage websocket connection and call funcToCall for each reading until ctx
// is cancelled. Returns ErrMaxRetries when the interpreter API stays
// unreachable.
func StartListener(
	ctx context.Context,
	host string,
	tlsEnabled bool,
	logger zerolog.Logger,
	funcToCall func(reading *Reading),
) error {
	u := url.URL{Scheme: "ws", Host: host, Path: "/ws"}
	if tlsEnabled {
		u.Scheme = "wss"
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	retryCount := 0
	for {
		if retryCount > 0 {
			delay := retryDelay(retryCount)
			logger.Info().
				Dur("delay", delay).
				Int("attempt", retryCount+1).
				Int("max", maxRetries).
				Msg("Retrying connection")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				logger.Info().Msg("Shutdown requested during retry wait")
				return nil
			}
		}

		logger.Info().Str("url", u.String()).Msg("Connecting")
		c, _, err := dialer.DialContext(ctx, u.String(), nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn().Err(err).Msg("Connection failed")
			retryCount++
			if retryCount >= maxRetries {
				return fmt.Errorf("%w (%d): %v", ErrMaxRetries, maxRetries, err)
			}
			continue
		}

		logger.Info().Msg("Connected! Accepting meter readings.")
		retryCount = 0

		connectionBroken := handleConnection(ctx, c, logger, funcToCall)
		c.Close()

		if !connectionBroken {
			return nil
		}
		logger.Warn().Msg("Connection lost, will retry...")
	}
}

// retryDelay doubles from baseRetryDelay per attempt, capped at maxRetryDelay.
func retryDelay(retryCount int) time.Duration {
	if retryCount > 5 {
		return maxRetryDelay
	}
	delay := time.Duration(1<<retryCount) * baseRetryDelay
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// handleConnection reads readings until the connection breaks (true) or ctx
// is cancelled (false).
func handleConnection(
	ctx context.Context,
	c *websocket.Conn,
	logger zerolog.Logger,
	funcToCall func(reading *Reading),
) bool {
	done := make(chan struct{})

	c.SetReadDeadline(time.Now().Add(readTimeout))

	go func() {
		defer close(done)
		for {
			messageType, message, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn().Err(err).Msg("WebSocket error")
				} else {
					logger.Info().Err(err).Msg("Connection closed")
				}
				return
			}

			c.SetReadDeadline(time.Now().Add(readTimeout))

			if messageType != websocket.TextMessage {
				logger.Debug().Int("type", messageType).Msg("Ignoring non-text message")
				continue
			}
			if reading := ReadingFromJsonBytes(message); reading != nil {
				funcToCall(reading)
			} else {
				logger.Warn().Str("message", string(message)).Msg("Failed to parse meter reading")
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return true
		case <-ticker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				logger.Warn().Err(err).Msg("Failed to send ping")
			}
		case <-ctx.Done():
			logger.Info().Msg("Shutdown requested, closing connection...")
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
				logger.Warn().Err(err).Msg("Error sending close message")
			}

			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return false
		}
	}
}
