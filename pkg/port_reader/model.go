package port_reader

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NotCoffee418/p1_telegram/pkg/interpreter"
	"github.com/NotCoffee418/p1_telegram/pkg/telegram"
	"github.com/rs/zerolog"
)

type P1Reader struct {
	port      string
	baudrate  uint
	maxErrors int
	options   []telegram.Option
	logger    zerolog.Logger

	// Opens the P1 port, replaced in tests.
	openPort func() (io.ReadWriteCloser, error)
	// Pause after a failed read from the port.
	readRetryDelay time.Duration
	// Zone the meter clock runs in.
	meterLocation *time.Location

	serialPort io.ReadWriteCloser
	portMutex  sync.Mutex

	latestReading *interpreter.Reading
	readingMutex  sync.RWMutex
	stopSignal    atomic.Bool
}
