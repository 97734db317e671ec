// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Coldwatch Systems

package m307

import (
	"errors"
	"testing"
)

func TestDecodeInt16(t *testing.T) {
	tests := []struct {
		name     string
		msb, lsb byte
		want     int
	}{
		{"zero", 0x00, 0x00, 0},
		{"one", 0x00, 0x01, 1},
		{"max positive", 0x7F, 0xFF, 32767},
		{"minus one", 0xFF, 0xFF, -1},
		{"min negative", 0x80, 0x00, -32768},
		{"temperature 23.5 fine", 0x00, 0xEB, 235},
		{"shorted sentinel", 0xFC, 0x19, -999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeInt16(tt.msb, tt.lsb); got != tt.want {
				t.Errorf("DecodeInt16(0x%02X, 0x%02X) = %d, want %d", tt.msb, tt.lsb, got, tt.want)
			}
		})
	}
}

func TestEncodeInt16_Range(t *testing.T) {
	for _, v := range []int{-32769, 32768, 100000, -100000} {
		if _, _, err := EncodeInt16(v); err == nil {
			t.Errorf("EncodeInt16(%d) succeeded, want range error", v)
		} else {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("EncodeInt16(%d) error = %T, want *ValidationError", v, err)
			}
		}
	}
}

func TestInt16_RoundTrip(t *testing.T) {
	for v := -32768; v <= 32767; v++ {
		msb, lsb, err := EncodeInt16(v)
		if err != nil {
			t.Fatalf("EncodeInt16(%d) failed: %v", v, err)
		}
		if got := DecodeInt16(msb, lsb); got != v {
			t.Fatalf("round trip %d -> (0x%02X, 0x%02X) -> %d", v, msb, lsb, got)
		}
	}
}

func TestBCD_RoundTrip(t *testing.T) {
	for v := 0; v <= 99; v++ {
		b, err := EncodeBCD(v)
		if err != nil {
			t.Fatalf("EncodeBCD(%d) failed: %v", v, err)
		}
		if got := DecodeBCD(b); got != v {
			t.Fatalf("round trip %d -> 0x%02X -> %d", v, b, got)
		}
	}
}

func TestEncodeBCD_Range(t *testing.T) {
	for _, v := range []int{-1, 100, 255} {
		if _, err := EncodeBCD(v); err == nil {
			t.Errorf("EncodeBCD(%d) succeeded, want range error", v)
		}
	}
}

func TestDecodeBCD_MalformedNibbles(t *testing.T) {
	// Nibbles above 9 come from malfunctioning hardware. They must decode
	// deterministically via plain nibble arithmetic, never fail.
	tests := []struct {
		b    byte
		want int
	}{
		{0xA0, 100}, // high nibble 10
		{0x0A, 10},  // low nibble 10
		{0xFF, 165}, // both nibbles 15
		{0x9A, 100},
	}
	for _, tt := range tests {
		if got := DecodeBCD(tt.b); got != tt.want {
			t.Errorf("DecodeBCD(0x%02X) = %d, want %d", tt.b, got, tt.want)
		}
	}
}

func TestDecodeTemperature(t *testing.T) {
	tests := []struct {
		name      string
		msb, lsb  byte
		res       Resolution
		wantState TempState
		wantValue float64
	}{
		{"fine positive", 0x00, 0xEB, ResolutionFine, TempOK, 23.5},
		{"coarse positive", 0x00, 0x17, ResolutionCoarse, TempOK, 23.0},
		{"fine negative", 0xFF, 0x38, ResolutionFine, TempOK, -20.0},
		{"no sensor fine", 0x03, 0xE8, ResolutionFine, TempNoSensor, 0},
		{"no sensor coarse", 0x03, 0xE8, ResolutionCoarse, TempNoSensor, 0},
		{"open circuit", 0x03, 0xE7, ResolutionFine, TempOpenCircuit, 0},
		{"shorted", 0xFC, 0x19, ResolutionFine, TempShorted, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeTemperature(tt.msb, tt.lsb, tt.res)
			if got.State != tt.wantState {
				t.Errorf("State = %v, want %v", got.State, tt.wantState)
			}
			if got.State == TempOK && got.Value != tt.wantValue {
				t.Errorf("Value = %v, want %v", got.Value, tt.wantValue)
			}
		})
	}
}

func TestDecodeTemperature_SentinelPrecedence(t *testing.T) {
	// Raw 1000 is always "no sensor", even though 1000/10 or 1000/1 would
	// be a numerically plausible reading.
	for _, res := range []Resolution{ResolutionFine, ResolutionCoarse} {
		got := DecodeTemperature(0x03, 0xE8, res)
		if got.State != TempNoSensor {
			t.Errorf("resolution %v: State = %v, want TempNoSensor", res, got.State)
		}
	}
}

func TestDecodeHumidity(t *testing.T) {
	tests := []struct {
		name      string
		msb, lsb  byte
		wantState HumidityState
		wantValue float64
	}{
		{"normal", 0x01, 0xF4, HumidityOK, 50.0},
		{"zero", 0x00, 0x00, HumidityOK, 0.0},
		{"failed sentinel", 0x03, 0xE7, HumidityFailed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeHumidity(tt.msb, tt.lsb)
			if got.State != tt.wantState {
				t.Errorf("State = %v, want %v", got.State, tt.wantState)
			}
			if got.State == HumidityOK && got.Value != tt.wantValue {
				t.Errorf("Value = %v, want %v", got.Value, tt.wantValue)
			}
		})
	}
}
