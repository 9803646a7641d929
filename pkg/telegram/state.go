package telegram

import "fmt"

// Protocol fixed collection sizes.
const (
	Tariffs  = 2
	Phases   = 3
	Channels = 4
)

// MeterReading is one tariff register pair of the electricity meter.
type MeterReading struct {
	// Delivered to the client, kWh.
	To *float64 `json:"to"`
	// Delivered by the client, kWh.
	By *float64 `json:"by"`
}

// SlaveReading is the last value a sub-meter captured and when.
type SlaveReading struct {
	Timestamp *Timestamp `json:"timestamp"`
	Value     *float64   `json:"value"`
}

// Line holds the metrics of one electrical phase.
type Line struct {
	VoltageSags     *uint64  `json:"voltage_sags"`
	VoltageSwells   *uint64  `json:"voltage_swells"`
	Voltage         *float64 `json:"voltage"`
	Current         *float64 `json:"current"`
	ActivePowerPlus *float64 `json:"active_power_plus"`
	ActivePowerNeg  *float64 `json:"active_power_neg"`
}

// Slave is a sub-meter (gas, water, heat) reporting through the P1 port.
type Slave struct {
	DeviceType   *uint64       `json:"device_type"`
	MeterReading *SlaveReading `json:"meter_reading"`
}

// State is the snapshot decoded from one telegram. A nil field was not
// present in the telegram.
type State struct {
	DateTime          *Timestamp            `json:"datetime"`
	MeterReadings     [Tariffs]MeterReading `json:"meterreadings"`
	TariffIndicator   *[2]uint8             `json:"tariff_indicator"`
	PowerDelivered    *float64              `json:"power_delivered"`
	PowerReceived     *float64              `json:"power_received"`
	PowerFailures     *uint64               `json:"power_failures"`
	LongPowerFailures *uint64               `json:"long_power_failures"`
	Lines             [Phases]Line          `json:"lines"`
	Slaves            [Channels]Slave       `json:"slaves"`
}

// Builder folds the updates of one telegram into a State. Later updates of
// the same field replace earlier ones.
type Builder struct {
	state State
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Apply assigns the update's value to its field. Values are copied, so the
// resulting State never shares memory with the update.
func (b *Builder) Apply(u Update) error {
	s := &b.state

	if err := checkIndex(u); err != nil {
		return err
	}

	switch u.Field {
	case FieldDateTime:
		s.DateTime = clone(u.Time)
	case FieldMeterReadingTo:
		s.MeterReadings[u.Index].To = clone(u.Float)
	case FieldMeterReadingBy:
		s.MeterReadings[u.Index].By = clone(u.Float)
	case FieldTariffIndicator:
		s.TariffIndicator = clone(u.Octets)
	case FieldPowerDelivered:
		s.PowerDelivered = clone(u.Float)
	case FieldPowerReceived:
		s.PowerReceived = clone(u.Float)
	case FieldPowerFailures:
		s.PowerFailures = clone(u.Uint)
	case FieldLongPowerFailures:
		s.LongPowerFailures = clone(u.Uint)
	case FieldVoltageSags:
		s.Lines[u.Index].VoltageSags = clone(u.Uint)
	case FieldVoltageSwells:
		s.Lines[u.Index].VoltageSwells = clone(u.Uint)
	case FieldVoltage:
		s.Lines[u.Index].Voltage = clone(u.Float)
	case FieldCurrent:
		s.Lines[u.Index].Current = clone(u.Float)
	case FieldActivePowerPlus:
		s.Lines[u.Index].ActivePowerPlus = clone(u.Float)
	case FieldActivePowerNeg:
		s.Lines[u.Index].ActivePowerNeg = clone(u.Float)
	case FieldSlaveDeviceType:
		s.Slaves[u.Index].DeviceType = clone(u.Uint)
	case FieldSlaveMeterReading:
		s.Slaves[u.Index].MeterReading = &SlaveReading{
			Timestamp: clone(u.Time),
			Value:     clone(u.Float),
		}
	default:
		return fmt.Errorf("telegram: unknown field %v", u.Field)
	}
	return nil
}

// State returns the folded snapshot.
func (b *Builder) State() State {
	return b.state
}

// BuildState folds updates, in order, into a fresh State.
func BuildState(updates []Update) (State, error) {
	b := NewBuilder()
	for _, u := range updates {
		if err := b.Apply(u); err != nil {
			return State{}, err
		}
	}
	return b.State(), nil
}

func checkIndex(u Update) error {
	limit := 1
	switch u.Field {
	case FieldMeterReadingTo, FieldMeterReadingBy:
		limit = Tariffs
	case FieldVoltageSags, FieldVoltageSwells, FieldVoltage, FieldCurrent,
		FieldActivePowerPlus, FieldActivePowerNeg:
		limit = Phases
	case FieldSlaveDeviceType, FieldSlaveMeterReading:
		limit = Channels
	}
	if u.Index < 0 || u.Index >= limit {
		return fmt.Errorf("telegram: %v index %d: %w", u.Field, u.Index, errUpdateOutOfRange)
	}
	return nil
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
