package interpreter

import (
	"encoding/json"
	"time"

	"github.com/NotCoffee418/p1_telegram/pkg/telegram"
)

// Reading is a decoded telegram as it travels between the services.
type Reading struct {
	// When the interpreter decoded the telegram, RFC3339.
	ReceivedAt string         `json:"received_at"`
	State      telegram.State `json:"state"`
}

func NewReading(state telegram.State) *Reading {
	return &Reading{
		ReceivedAt: time.Now().Format(time.RFC3339),
		State:      state,
	}
}

func (r *Reading) ToJsonBytes() []byte {
	data, err := json.Marshal(r)
	if err != nil {
		// State holds only numbers, bools and fixed arrays.
		panic(err)
	}
	return data
}

// ReadingFromJsonBytes returns nil when data is not a Reading.
func ReadingFromJsonBytes(data []byte) *Reading {
	var reading Reading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil
	}
	if reading.ReceivedAt == "" {
		return nil
	}
	return &reading
}
