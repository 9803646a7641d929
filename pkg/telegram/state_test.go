package telegram

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStateLeavesUntouchedFieldsUnset(t *testing.T) {
	state, err := BuildState([]Update{
		{Field: FieldVoltage, Index: 2, Float: ptr(230.0)},
		{Field: FieldMeterReadingBy, Index: 1, Float: ptr(0.0)},
	})
	require.NoError(t, err)

	assert.Equal(t, ptr(230.0), state.Lines[2].Voltage)
	assert.Equal(t, ptr(0.0), state.MeterReadings[1].By, "zero is a reported value")
	assert.Nil(t, state.MeterReadings[1].To)
	assert.Nil(t, state.MeterReadings[0].By)
	assert.Equal(t, Line{}, state.Lines[0])
	assert.Nil(t, state.DateTime)
}

func TestBuilderCopiesValues(t *testing.T) {
	v := 1.5
	b := NewBuilder()
	require.NoError(t, b.Apply(Update{Field: FieldPowerDelivered, Float: &v}))
	v = 2.5
	assert.Equal(t, ptr(1.5), b.State().PowerDelivered)
}

func TestBuilderRejectsOutOfRangeIndex(t *testing.T) {
	tests := []Update{
		{Field: FieldVoltage, Index: Phases, Float: ptr(1.0)},
		{Field: FieldSlaveDeviceType, Index: Channels, Uint: ptr(uint64(3))},
		{Field: FieldMeterReadingTo, Index: -1, Float: ptr(1.0)},
		{Field: FieldPowerDelivered, Index: 1, Float: ptr(1.0)},
	}
	for _, u := range tests {
		_, err := BuildState([]Update{u})
		assert.ErrorIs(t, err, errUpdateOutOfRange, u.Field.String())
	}

	_, err := BuildState([]Update{{Field: Field(200)}})
	assert.EqualError(t, err, "telegram: unknown field Field(200)")
}

func TestStateJSONKeepsAbsentFieldsNull(t *testing.T) {
	state, err := BuildState([]Update{
		{Field: FieldTariffIndicator, Octets: &[2]uint8{0, 2}},
		{Field: FieldPowerFailures, Uint: ptr(uint64(0))},
	})
	require.NoError(t, err)

	data, err := json.Marshal(state)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []any{0.0, 2.0}, decoded["tariff_indicator"])
	assert.Equal(t, 0.0, decoded["power_failures"])
	assert.Nil(t, decoded["power_delivered"])
	assert.Len(t, decoded["lines"], Phases)
	assert.Len(t, decoded["slaves"], Channels)
	assert.Len(t, decoded["meterreadings"], Tariffs)
}
