// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Coldwatch Systems

package m307

import "fmt"

// DecodeInt16 reconstructs a signed 16-bit value from its big-endian bytes.
// The two's-complement fold is done by hand so malformed high bits behave
// exactly like the device firmware expects.
func DecodeInt16(msb, lsb byte) int {
	value := int(msb)<<8 | int(lsb)
	if value&0x8000 != 0 {
		value -= 0x10000
	}
	return value
}

// EncodeInt16 converts a signed value to its big-endian byte pair.
// Values outside [-32768, 32767] are rejected before any bytes are built.
func EncodeInt16(value int) (msb, lsb byte, err error) {
	if value < -32768 || value > 32767 {
		return 0, 0, validationErrorf("int16", "value %d out of range [-32768, 32767]", value)
	}
	if value < 0 {
		value += 0x10000
	}
	return byte(value >> 8), byte(value), nil
}

// DecodeBCD converts a binary-coded-decimal byte to an integer. Nibbles are
// not range-checked: a malfunctioning device can emit nibbles above 9, and
// those decode arithmetically (yielding values above 99) instead of failing.
func DecodeBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// EncodeBCD converts an integer in [0, 99] to a binary-coded-decimal byte.
func EncodeBCD(value int) (byte, error) {
	if value < 0 || value > 99 {
		return 0, validationErrorf("bcd", "value %d out of range [0, 99]", value)
	}
	return byte(value/10)<<4 | byte(value%10), nil
}

// TempState classifies a temperature reading. Anything other than TempOK
// means the raw value was one of the sentinel codes and Value is meaningless.
type TempState int

const (
	TempOK          TempState = iota
	TempNoSensor              // raw 1000: no probe connected
	TempOpenCircuit           // raw 999: probe open circuit
	TempShorted               // raw -999: probe shorted
)

func (s TempState) String() string {
	switch s {
	case TempNoSensor:
		return "no sensor"
	case TempOpenCircuit:
		return "open circuit"
	case TempShorted:
		return "shorted"
	default:
		return "ok"
	}
}

// Temperature is one decoded temperature reading.
type Temperature struct {
	Value float64
	State TempState
}

func (t Temperature) String() string {
	if t.State != TempOK {
		return t.State.String()
	}
	return fmt.Sprintf("%.1f", t.Value)
}

// DecodeTemperature decodes a temperature byte pair. The sentinel codes are
// recognised on the raw value, before the resolution divisor is applied;
// raw 1000 is always "no sensor" even though 1000/10 would be a plausible
// reading.
func DecodeTemperature(msb, lsb byte, res Resolution) Temperature {
	raw := DecodeInt16(msb, lsb)
	switch raw {
	case rawNoSensor:
		return Temperature{State: TempNoSensor}
	case rawOpenCircuit:
		return Temperature{State: TempOpenCircuit}
	case rawShorted:
		return Temperature{State: TempShorted}
	}
	return Temperature{Value: float64(raw) / res.Divisor()}
}

// HumidityState classifies a humidity reading.
type HumidityState int

const (
	HumidityOK     HumidityState = iota
	HumidityFailed               // raw 999: sensor failed
)

func (s HumidityState) String() string {
	if s == HumidityFailed {
		return "sensor failed"
	}
	return "ok"
}

// Humidity is one decoded relative-humidity reading.
type Humidity struct {
	Value float64
	State HumidityState
}

func (h Humidity) String() string {
	if h.State != HumidityOK {
		return h.State.String()
	}
	return fmt.Sprintf("%.1f%%", h.Value)
}

// DecodeHumidity decodes a humidity byte pair. Humidity is always reported
// in tenths of a percent regardless of the temperature resolution.
func DecodeHumidity(msb, lsb byte) Humidity {
	raw := DecodeInt16(msb, lsb)
	if raw == rawHumidityFault {
		return Humidity{State: HumidityFailed}
	}
	return Humidity{Value: float64(raw) / 10.0}
}
