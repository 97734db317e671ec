// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Coldwatch Systems

package m307

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// statusFixture builds a 56-byte status data section with plausible values:
// probe 1 at 23.5, probe 2 absent, internal at 21.0, humidity 45.5%, door 1
// closed, door 2 open and in alarm, main power on, battery 6.42 V.
func statusFixture(resFlag, unitByte byte) []byte {
	data := make([]byte, DataSize)

	put16 := func(off, v int) {
		msb, lsb, _ := EncodeInt16(v)
		data[off], data[off+1] = msb, lsb
	}

	put16(statusTemp1Off, 235) // 23.5 at fine resolution
	put16(statusTemp1Off+2, 0)
	put16(statusTemp2Off, 1000) // no sensor
	put16(statusTemp2Off+2, 0)
	put16(statusInternalOff, 210)
	put16(statusInternalOff+2, 12)
	data[statusInternalOff+4] = 1 // in alarm
	put16(statusHumidityOff, 455)
	put16(statusHumidityOff+2, 0)

	data[statusDoor1Off] = 1 // closed
	put16(statusDoor1Off+1, 0)
	data[statusDoor2Off] = 0 // open
	put16(statusDoor2Off+1, 30)
	data[statusDoor2Off+3] = 1 // in alarm

	data[statusPowerOff] = statusPowerOnValue
	put16(statusBatteryOff, 642)

	data[statusResFlagOff] = resFlag
	data[statusUnitOff] = unitByte
	return data
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(statusFixture(statusResFlagFine, byte(UnitCelsius)))
	if err != nil {
		t.Fatalf("ParseStatus failed: %v", err)
	}

	if st.Resolution != ResolutionFine {
		t.Errorf("Resolution = %v, want fine", st.Resolution)
	}
	if st.Unit != UnitCelsius {
		t.Errorf("Unit = %v, want C", st.Unit)
	}
	if st.TempSensor1.Reading.State != TempOK || st.TempSensor1.Reading.Value != 23.5 {
		t.Errorf("TempSensor1 = %+v, want 23.5 ok", st.TempSensor1.Reading)
	}
	if st.TempSensor2.Reading.State != TempNoSensor {
		t.Errorf("TempSensor2 state = %v, want no sensor", st.TempSensor2.Reading.State)
	}
	if !st.InternalTemp.InAlarm || st.InternalTemp.MinutesOutOfLimits != 12 {
		t.Errorf("InternalTemp = %+v, want alarm after 12 minutes", st.InternalTemp)
	}
	if st.InternalHumidity.Reading.Value != 45.5 {
		t.Errorf("InternalHumidity = %v, want 45.5", st.InternalHumidity.Reading.Value)
	}
	if st.Door1.State != DoorClosed {
		t.Errorf("Door1 = %v, want closed", st.Door1.State)
	}
	if st.Door2.State != DoorOpen || !st.Door2.InAlarm || st.Door2.MinutesOutOfLimits != 30 {
		t.Errorf("Door2 = %+v, want open, alarm, 30 minutes", st.Door2)
	}
	if !st.MainPower {
		t.Error("MainPower = false, want true")
	}
	if st.BatteryVoltage != 6.42 {
		t.Errorf("BatteryVoltage = %v, want 6.42", st.BatteryVoltage)
	}
}

func TestParseStatus_ResolutionAndUnit(t *testing.T) {
	tests := []struct {
		name     string
		resFlag  byte
		unitByte byte
		wantRes  Resolution
		wantUnit Unit
	}{
		{"fine celsius", 10, 0x43, ResolutionFine, UnitCelsius},
		{"coarse fahrenheit", 1, 0x46, ResolutionCoarse, UnitFahrenheit},
		{"odd flag is coarse", 0xFF, 0x43, ResolutionCoarse, UnitCelsius},
		{"unknown unit passes through", 10, 0x58, ResolutionFine, UnitUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := ParseStatus(statusFixture(tt.resFlag, tt.unitByte))
			if err != nil {
				t.Fatalf("ParseStatus failed: %v", err)
			}
			if st.Resolution != tt.wantRes {
				t.Errorf("Resolution = %v, want %v", st.Resolution, tt.wantRes)
			}
			if st.Unit != tt.wantUnit {
				t.Errorf("Unit = %v, want %v", st.Unit, tt.wantUnit)
			}
		})
	}
}

func TestStringFields_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short name", "Fridge 2", "Fridge 2"},
		{"exact width", strings.Repeat("x", 20), strings.Repeat("x", 20)},
		{"truncated", strings.Repeat("y", 25), strings.Repeat("y", 20)},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := bytes.Repeat([]byte{0xFF}, PacketSize)
			insertString(rec, 8, 20, tt.in)
			if got := extractString(rec, 8, 20); got != tt.want {
				t.Errorf("round trip %q -> %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractString_StopsAtNonPrintable(t *testing.T) {
	rec := make([]byte, PacketSize)
	copy(rec[8:], []byte{'A', 'B', 0x07, 'C'})
	if got := extractString(rec, 8, 20); got != "AB" {
		t.Errorf("extractString = %q, want %q", got, "AB")
	}
}

func TestSensorLimits_ParseAndPatch(t *testing.T) {
	rec := make([]byte, PacketSize)
	// Sprinkle reserved bytes to prove the patch leaves them alone.
	rec[7] = 0xEE
	rec[44] = 0xEE
	rec[47] = 0xEE

	lower, upper, delay := -200, 80, 15
	patch := SensorLimitsPatch{
		TempSensor1:           ChannelLimitsPatch{Lower: &lower, Upper: &upper, Delay: &delay},
		TempSensor1Correction: intPtr(-5),
		Input1Logic:           bytePtr(1),
	}

	updated, err := patch.Apply(rec)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	limits, err := ParseSensorLimits(updated)
	if err != nil {
		t.Fatalf("ParseSensorLimits failed: %v", err)
	}
	if limits.TempSensor1.Lower != -200 || limits.TempSensor1.Upper != 80 || limits.TempSensor1.Delay != 15 {
		t.Errorf("TempSensor1 = %+v, want {-200 80 15}", limits.TempSensor1)
	}
	if limits.TempSensor1Correction != -5 {
		t.Errorf("TempSensor1Correction = %d, want -5", limits.TempSensor1Correction)
	}
	if limits.Input1Logic != 1 {
		t.Errorf("Input1Logic = %d, want 1", limits.Input1Logic)
	}

	// Untouched fields and reserved bytes must survive unchanged.
	if limits.TempSensor2.Lower != 0 || limits.Door2Delay != 0 {
		t.Errorf("untouched fields changed: %+v", limits)
	}
	for _, off := range []int{7, 44, 47} {
		if updated[off] != 0xEE {
			t.Errorf("reserved byte %d = 0x%02X, want 0xEE", off, updated[off])
		}
	}
	// The original record must not be mutated.
	if rec[8] != 0 {
		t.Error("Apply mutated the input record")
	}
}

func TestSensorLimitsPatch_RangeError(t *testing.T) {
	rec := make([]byte, PacketSize)
	bad := 40000
	patch := SensorLimitsPatch{Door1Delay: &bad}
	if _, err := patch.Apply(rec); err == nil {
		t.Fatal("Apply succeeded with out-of-range value")
	}
}

func TestDeviceInfo_ParseAndPatch(t *testing.T) {
	rec := make([]byte, PacketSize)
	name := "Server Room"
	unit := UnitFahrenheit
	serial := "TG-0042"
	patch := DeviceInfoPatch{DeviceName: &name, Unit: &unit, SerialNumber: &serial}

	updated, err := patch.Apply(rec)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	info, err := ParseDeviceInfo(updated)
	if err != nil {
		t.Fatalf("ParseDeviceInfo failed: %v", err)
	}
	if info.DeviceName != name || info.Unit != UnitFahrenheit || info.SerialNumber != serial {
		t.Errorf("DeviceInfo = %+v", info)
	}
	if info.MACAddress != "" {
		t.Errorf("MACAddress = %q, want empty", info.MACAddress)
	}
}

func TestDeviceInfoPatch_InvalidUnit(t *testing.T) {
	rec := make([]byte, PacketSize)
	bad := Unit('K')
	patch := DeviceInfoPatch{Unit: &bad}
	_, err := patch.Apply(rec)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Apply error = %v, want *ValidationError", err)
	}
}

func TestNamePair_ParseAndPatch(t *testing.T) {
	rec := make([]byte, PacketSize)
	first := "Freezer"
	patch := NamePairPatch{First: &first}

	updated, err := patch.Apply(rec)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	pair, err := ParseNamePair(updated)
	if err != nil {
		t.Fatalf("ParseNamePair failed: %v", err)
	}
	if pair.First != "Freezer" || pair.Second != "" {
		t.Errorf("NamePair = %+v", pair)
	}
}

func TestDeviceSettings_ParseAndPatch(t *testing.T) {
	rec := make([]byte, PacketSize)
	buzzer := true
	reminder := byte(30)
	patch := DeviceSettingsPatch{BuzzerEnabled: &buzzer, AlarmReminderDelay: &reminder}

	updated, err := patch.Apply(rec)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	settings, err := ParseDeviceSettings(updated)
	if err != nil {
		t.Fatalf("ParseDeviceSettings failed: %v", err)
	}
	if !settings.BuzzerEnabled || settings.AlarmReminderDelay != 30 {
		t.Errorf("DeviceSettings = %+v", settings)
	}
	if settings.RelayLogic != 0 || settings.TwoStageDoorAlarmDelay != 0 {
		t.Errorf("untouched settings changed: %+v", settings)
	}
}

func intPtr(v int) *int    { return &v }
func bytePtr(v byte) *byte { return &v }
