package telegram

import "fmt"

// Field names the State field an Update assigns.
type Field uint8

const (
	FieldDateTime Field = iota + 1
	FieldMeterReadingTo
	FieldMeterReadingBy
	FieldTariffIndicator
	FieldPowerDelivered
	FieldPowerReceived
	FieldPowerFailures
	FieldLongPowerFailures
	FieldVoltageSags
	FieldVoltageSwells
	FieldVoltage
	FieldCurrent
	FieldActivePowerPlus
	FieldActivePowerNeg
	FieldSlaveDeviceType
	FieldSlaveMeterReading
)

var fieldNames = map[Field]string{
	FieldDateTime:          "datetime",
	FieldMeterReadingTo:    "meterreadings.to",
	FieldMeterReadingBy:    "meterreadings.by",
	FieldTariffIndicator:   "tariff_indicator",
	FieldPowerDelivered:    "power_delivered",
	FieldPowerReceived:     "power_received",
	FieldPowerFailures:     "power_failures",
	FieldLongPowerFailures: "long_power_failures",
	FieldVoltageSags:       "lines.voltage_sags",
	FieldVoltageSwells:     "lines.voltage_swells",
	FieldVoltage:           "lines.voltage",
	FieldCurrent:           "lines.current",
	FieldActivePowerPlus:   "lines.active_power_plus",
	FieldActivePowerNeg:    "lines.active_power_neg",
	FieldSlaveDeviceType:   "slaves.device_type",
	FieldSlaveMeterReading: "slaves.meter_reading",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", uint8(f))
}

// Update is one typed field assignment read from a data line. Index selects
// the tariff, phase or sub-meter channel (zero-based) for indexed fields.
// Only the value pointer matching the field's shape is set.
type Update struct {
	Field  Field
	Index  int
	Time   *Timestamp
	Float  *float64
	Uint   *uint64
	Octets *[2]uint8
}

// shape is the value layout a reference code carries.
type shape uint8

const (
	shapeTimestamp    shape = iota // (YYMMDDhhmmssX)
	shapeNumeral                   // (0123.456*unit)
	shapeCount                     // (00004)
	shapeOctets                    // (0002)
	shapeDeviceType                // (003) or ()
	shapeSlaveReading              // (YYMMDDhhmmssX)(01234.567*m3)
)

func (s shape) groups() int {
	if s == shapeSlaveReading {
		return 2
	}
	return 1
}

type target struct {
	field Field
	index int
	shape shape
	unit  string
}

// targets maps the reference codes the State carries. Everything else in a
// telegram (versions, equipment identifiers, text messages, the power failure
// event log) is skipped.
var targets = buildTargets()

func buildTargets() map[Code]target {
	m := map[Code]target{
		{0, 0, 1, 0, 0}:   {field: FieldDateTime, shape: shapeTimestamp},
		{1, 0, 1, 8, 1}:   {field: FieldMeterReadingTo, index: 0, shape: shapeNumeral, unit: "kWh"},
		{1, 0, 1, 8, 2}:   {field: FieldMeterReadingTo, index: 1, shape: shapeNumeral, unit: "kWh"},
		{1, 0, 2, 8, 1}:   {field: FieldMeterReadingBy, index: 0, shape: shapeNumeral, unit: "kWh"},
		{1, 0, 2, 8, 2}:   {field: FieldMeterReadingBy, index: 1, shape: shapeNumeral, unit: "kWh"},
		{0, 0, 96, 14, 0}: {field: FieldTariffIndicator, shape: shapeOctets},
		{1, 0, 1, 7, 0}:   {field: FieldPowerDelivered, shape: shapeNumeral, unit: "kW"},
		{1, 0, 2, 7, 0}:   {field: FieldPowerReceived, shape: shapeNumeral, unit: "kW"},
		{0, 0, 96, 7, 21}: {field: FieldPowerFailures, shape: shapeCount},
		{0, 0, 96, 7, 9}:  {field: FieldLongPowerFailures, shape: shapeCount},
	}

	// Per phase quantities use C = 20*phase + base, L1 first.
	for phase := 0; phase < Phases; phase++ {
		offset := uint8(20 * phase)
		m[Code{1, 0, 32 + offset, 32, 0}] = target{field: FieldVoltageSags, index: phase, shape: shapeCount}
		m[Code{1, 0, 32 + offset, 36, 0}] = target{field: FieldVoltageSwells, index: phase, shape: shapeCount}
		m[Code{1, 0, 32 + offset, 7, 0}] = target{field: FieldVoltage, index: phase, shape: shapeNumeral, unit: "V"}
		m[Code{1, 0, 31 + offset, 7, 0}] = target{field: FieldCurrent, index: phase, shape: shapeNumeral, unit: "A"}
		m[Code{1, 0, 21 + offset, 7, 0}] = target{field: FieldActivePowerPlus, index: phase, shape: shapeNumeral, unit: "kW"}
		m[Code{1, 0, 22 + offset, 7, 0}] = target{field: FieldActivePowerNeg, index: phase, shape: shapeNumeral, unit: "kW"}
	}

	// Sub-meters report on B = 1..4. 24.2.3 is the Belgian e-MUCS gas reading.
	for channel := 0; channel < Channels; channel++ {
		b := uint8(channel + 1)
		m[Code{0, b, 24, 1, 0}] = target{field: FieldSlaveDeviceType, index: channel, shape: shapeDeviceType}
		m[Code{0, b, 24, 2, 1}] = target{field: FieldSlaveMeterReading, index: channel, shape: shapeSlaveReading}
		m[Code{0, b, 24, 2, 3}] = target{field: FieldSlaveMeterReading, index: channel, shape: shapeSlaveReading}
	}
	return m
}
