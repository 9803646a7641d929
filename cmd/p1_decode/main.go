// p1_decode reads DSMR P1 telegrams from a tty or capture file and prints
// each decoded state as a JSON line.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/NotCoffee418/p1_telegram/pkg/logging"
	"github.com/NotCoffee418/p1_telegram/pkg/telegram"
)

var errNoTelegram = errors.New("no telegram found")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("p1_decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	ttyPath := fs.String("tty-path", "", "serial device or capture file to read telegrams from")
	follow := fs.Bool("follow", false, "keep decoding telegrams until the source is exhausted")
	allowMissing := fs.Bool("allow-missing-checksum", false, "accept telegrams without a CRC trailer")
	logLevel := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *ttyPath == "" {
		fmt.Fprintln(stderr, "p1_decode: -tty-path is required")
		fs.Usage()
		return 2
	}

	logger := logging.NewLogger(stderr, "p1_decode", *logLevel)

	src, err := os.Open(*ttyPath)
	if err != nil {
		logger.Error().Err(err).Str("path", *ttyPath).Msg("Failed to open source")
		return 1
	}
	defer src.Close()

	policy := telegram.ChecksumRequired
	if *allowMissing {
		policy = telegram.ChecksumOptional
	}

	decoded, err := decodeStream(src, stdout, policy, *follow, func(err error) {
		logger.Warn().Err(err).Msg("Skipping telegram")
	})
	if err != nil {
		logger.Error().Err(err).Str("path", *ttyPath).Msg("Decoding failed")
		return 1
	}
	logger.Debug().Int("telegrams", decoded).Msg("Done")
	return 0
}

// decodeStream writes one JSON line per decoded telegram. Without follow it
// stops after the first one.
func decodeStream(
	src io.Reader,
	out io.Writer,
	policy telegram.ChecksumPolicy,
	follow bool,
	skipped func(error),
) (int, error) {
	enc := json.NewEncoder(out)
	decoded := 0
	for state, err := range telegram.NewDecoder(src, telegram.WithChecksumPolicy(policy)).All() {
		if err != nil {
			if !telegram.IsDecodeError(err) {
				return decoded, err
			}
			skipped(err)
			continue
		}
		if err := enc.Encode(state); err != nil {
			return decoded, err
		}
		decoded++
		if !follow {
			break
		}
	}
	if decoded == 0 {
		return 0, errNoTelegram
	}
	return decoded, nil
}
