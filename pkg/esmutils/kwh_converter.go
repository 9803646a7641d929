package esmutils

import "math"

// KwToW converts an optional kW reading to watts. No negative values;
// ok is false when the reading is absent.
func KwToW(kw *float64) (w uint32, ok bool) {
	if kw == nil {
		return 0, false
	}
	return thousandths(*kw), true
}

// Convert an optional m3 reading to dm3 - No negative values
func M3ToDM3(m3 *float64) (dm3 uint32, ok bool) {
	if m3 == nil {
		return 0, false
	}
	return thousandths(*m3), true // 1 m³ = 1000 dm³
}

// NetW is delivered minus received power in watts, the household balance.
// ok is false unless both readings are present.
func NetW(delivered, received *float64) (w int64, ok bool) {
	d, okD := KwToW(delivered)
	r, okR := KwToW(received)
	if !okD || !okR {
		return 0, false
	}
	return int64(d) - int64(r), true
}

// thousandths scales v by 1000 and clamps it to the uint32 range.
func thousandths(v float64) uint32 {
	scaled := math.Round(v * 1000)
	switch {
	case math.IsNaN(scaled) || scaled <= 0:
		return 0
	case scaled >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(scaled)
}
