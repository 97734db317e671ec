// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Coldwatch Systems

package m307

import "fmt"

// Status payload offsets (relative to the 56-byte data section). The packet
// offset is four higher; the resolution and unit bytes sit at the very end
// of the record.
const (
	statusTemp1Off     = 0
	statusTemp2Off     = 5
	statusInternalOff  = 10
	statusHumidityOff  = 15
	statusDoor1Off     = 21
	statusDoor2Off     = 26
	statusPowerOff     = 30
	statusBatteryOff   = 31
	statusResFlagOff   = 54
	statusUnitOff      = 55
	statusResFlagFine  = 10
	statusPowerOnValue = 4
)

// TempChannel is one temperature channel of the status record.
type TempChannel struct {
	Reading            Temperature
	MinutesOutOfLimits int
	InAlarm            bool
}

// HumidityChannel is the internal humidity channel of the status record.
type HumidityChannel struct {
	Reading            Humidity
	MinutesOutOfLimits int
	InAlarm            bool
}

// DoorChannel is one door contact channel of the status record.
type DoorChannel struct {
	State              DoorState
	MinutesOutOfLimits int
	InAlarm            bool
}

// StatusRecord is a transient snapshot of every monitored channel, produced
// by one read-status exchange. It is not persisted.
type StatusRecord struct {
	TempSensor1      TempChannel
	TempSensor2      TempChannel
	InternalTemp     TempChannel
	InternalHumidity HumidityChannel
	Door1            DoorChannel
	Door2            DoorChannel
	MainPower        bool
	BatteryVoltage   float64

	Resolution Resolution
	Unit       Unit
}

// ParseStatus decodes the 56-byte data section of a status response. The
// resolution flag byte gates how every temperature field is scaled, so it is
// decoded first.
func ParseStatus(data []byte) (*StatusRecord, error) {
	if len(data) < DataSize {
		return nil, fmt.Errorf("status record: %d data bytes, want %d", len(data), DataSize)
	}

	res := ResolutionCoarse
	if data[statusResFlagOff] == statusResFlagFine {
		res = ResolutionFine
	}

	st := &StatusRecord{
		Resolution: res,
		Unit:       unitFromByte(data[statusUnitOff]),
	}
	st.TempSensor1 = parseTempChannel(data, statusTemp1Off, res)
	st.TempSensor2 = parseTempChannel(data, statusTemp2Off, res)
	st.InternalTemp = parseTempChannel(data, statusInternalOff, res)
	st.InternalHumidity = HumidityChannel{
		Reading:            DecodeHumidity(data[statusHumidityOff], data[statusHumidityOff+1]),
		MinutesOutOfLimits: DecodeInt16(data[statusHumidityOff+2], data[statusHumidityOff+3]),
		InAlarm:            data[statusHumidityOff+4] != 0,
	}
	st.Door1 = parseDoorChannel(data, statusDoor1Off)
	st.Door2 = parseDoorChannel(data, statusDoor2Off)
	st.MainPower = data[statusPowerOff] == statusPowerOnValue
	st.BatteryVoltage = float64(DecodeInt16(data[statusBatteryOff], data[statusBatteryOff+1])) / 100.0
	return st, nil
}

func parseTempChannel(data []byte, off int, res Resolution) TempChannel {
	return TempChannel{
		Reading:            DecodeTemperature(data[off], data[off+1], res),
		MinutesOutOfLimits: DecodeInt16(data[off+2], data[off+3]),
		InAlarm:            data[off+4] != 0,
	}
}

func parseDoorChannel(data []byte, off int) DoorChannel {
	state := DoorOpen
	if data[off] == 1 {
		state = DoorClosed
	}
	return DoorChannel{
		State:              state,
		MinutesOutOfLimits: DecodeInt16(data[off+1], data[off+2]),
		InAlarm:            data[off+3] != 0,
	}
}

// ---------------------------------------------------------------------------
// Fixed-width string fields
//
// Name and identity fields are zero-terminated, printable-ASCII regions of a
// declared width. Extraction stops at the first zero or non-printable byte;
// insertion zero-fills the whole field first and truncates silently.

func extractString(rec []byte, off, width int) string {
	out := make([]byte, 0, width)
	for i := 0; i < width && off+i < len(rec); i++ {
		b := rec[off+i]
		if b == 0 || b < 0x20 || b > 0x7E {
			break
		}
		out = append(out, b)
	}
	return string(out)
}

func insertString(rec []byte, off, width int, s string) {
	for i := 0; i < width && off+i < len(rec); i++ {
		rec[off+i] = 0
	}
	for i := 0; i < len(s) && i < width && off+i < len(rec); i++ {
		rec[off+i] = s[i]
	}
}

// ---------------------------------------------------------------------------
// User record 0: sensor limits, delays, corrections

// ChannelLimits is the alarm window for one sensor channel. Delay is the
// number of minutes a reading must stay out of the window before the alarm
// trips. Limits are raw device units (tenths when the resolution is fine).
type ChannelLimits struct {
	Lower int
	Upper int
	Delay int
}

// SensorLimits is the decoded form of user record 0.
type SensorLimits struct {
	TempSensor1      ChannelLimits
	TempSensor2      ChannelLimits
	InternalTemp     ChannelLimits
	InternalHumidity ChannelLimits

	Door1Delay int
	Door2Delay int

	TempSensor1Correction      int
	TempSensor2Correction      int
	InternalTempCorrection     int
	InternalHumidityCorrection int

	Input1Logic byte
	Input2Logic byte
}

// ParseSensorLimits decodes user record 0 from its full 60-byte record.
func ParseSensorLimits(rec []byte) (*SensorLimits, error) {
	if err := checkRecordLen("sensor limits", rec); err != nil {
		return nil, err
	}
	i16 := func(off int) int { return DecodeInt16(rec[off], rec[off+1]) }
	return &SensorLimits{
		TempSensor1:      ChannelLimits{i16(8), i16(10), i16(12)},
		TempSensor2:      ChannelLimits{i16(14), i16(16), i16(18)},
		InternalTemp:     ChannelLimits{i16(20), i16(22), i16(24)},
		InternalHumidity: ChannelLimits{i16(26), i16(28), i16(30)},

		Door1Delay: i16(32),
		Door2Delay: i16(34),

		TempSensor1Correction:      i16(36),
		TempSensor2Correction:      i16(38),
		InternalTempCorrection:     i16(40),
		InternalHumidityCorrection: i16(42),

		Input1Logic: rec[45],
		Input2Logic: rec[46],
	}, nil
}

// ChannelLimitsPatch updates selected fields of one channel's alarm window.
type ChannelLimitsPatch struct {
	Lower *int
	Upper *int
	Delay *int
}

// SensorLimitsPatch is a sparse update for user record 0. Only non-nil
// fields are written; every other byte of the current record, including
// reserved ones, is preserved.
type SensorLimitsPatch struct {
	TempSensor1      ChannelLimitsPatch
	TempSensor2      ChannelLimitsPatch
	InternalTemp     ChannelLimitsPatch
	InternalHumidity ChannelLimitsPatch

	Door1Delay *int
	Door2Delay *int

	TempSensor1Correction      *int
	TempSensor2Correction      *int
	InternalTempCorrection     *int
	InternalHumidityCorrection *int

	Input1Logic *byte
	Input2Logic *byte
}

// Apply returns a copy of the current record with the patch fields written
// in place. Out-of-range values fail validation before any byte changes.
func (p *SensorLimitsPatch) Apply(current []byte) ([]byte, error) {
	if err := checkRecordLen("sensor limits", current); err != nil {
		return nil, err
	}
	rec := append([]byte(nil), current...)

	channels := []struct {
		patch ChannelLimitsPatch
		off   int
	}{
		{p.TempSensor1, 8},
		{p.TempSensor2, 14},
		{p.InternalTemp, 20},
		{p.InternalHumidity, 26},
	}
	for _, ch := range channels {
		if err := putOptInt16(rec, ch.off, ch.patch.Lower); err != nil {
			return nil, err
		}
		if err := putOptInt16(rec, ch.off+2, ch.patch.Upper); err != nil {
			return nil, err
		}
		if err := putOptInt16(rec, ch.off+4, ch.patch.Delay); err != nil {
			return nil, err
		}
	}

	scalars := []struct {
		v   *int
		off int
	}{
		{p.Door1Delay, 32},
		{p.Door2Delay, 34},
		{p.TempSensor1Correction, 36},
		{p.TempSensor2Correction, 38},
		{p.InternalTempCorrection, 40},
		{p.InternalHumidityCorrection, 42},
	}
	for _, sc := range scalars {
		if err := putOptInt16(rec, sc.off, sc.v); err != nil {
			return nil, err
		}
	}

	if p.Input1Logic != nil {
		rec[45] = *p.Input1Logic
	}
	if p.Input2Logic != nil {
		rec[46] = *p.Input2Logic
	}
	return rec, nil
}

func putOptInt16(rec []byte, off int, v *int) error {
	if v == nil {
		return nil
	}
	msb, lsb, err := EncodeInt16(*v)
	if err != nil {
		return err
	}
	rec[off], rec[off+1] = msb, lsb
	return nil
}

// ---------------------------------------------------------------------------
// User record 1: device identity

// DeviceInfo is the decoded form of user record 1.
type DeviceInfo struct {
	DeviceName   string
	Unit         Unit
	MACAddress   string
	SerialNumber string
}

// ParseDeviceInfo decodes user record 1 from its full 60-byte record.
func ParseDeviceInfo(rec []byte) (*DeviceInfo, error) {
	if err := checkRecordLen("device info", rec); err != nil {
		return nil, err
	}
	return &DeviceInfo{
		DeviceName:   extractString(rec, 8, 20),
		Unit:         unitFromByte(rec[28]),
		MACAddress:   extractString(rec, 29, 20),
		SerialNumber: extractString(rec, 50, 10),
	}, nil
}

// DeviceInfoPatch is a sparse update for user record 1.
type DeviceInfoPatch struct {
	DeviceName   *string
	Unit         *Unit
	MACAddress   *string
	SerialNumber *string
}

// Apply returns a copy of the current record with the patch fields written.
func (p *DeviceInfoPatch) Apply(current []byte) ([]byte, error) {
	if err := checkRecordLen("device info", current); err != nil {
		return nil, err
	}
	if p.Unit != nil && *p.Unit != UnitCelsius && *p.Unit != UnitFahrenheit {
		return nil, validationErrorf("unit", "must be 'C' or 'F'")
	}
	rec := append([]byte(nil), current...)
	if p.DeviceName != nil {
		insertString(rec, 8, 20, *p.DeviceName)
	}
	if p.Unit != nil {
		rec[28] = byte(*p.Unit)
	}
	if p.MACAddress != nil {
		insertString(rec, 29, 20, *p.MACAddress)
	}
	if p.SerialNumber != nil {
		insertString(rec, 50, 10, *p.SerialNumber)
	}
	return rec, nil
}

// ---------------------------------------------------------------------------
// User records 2, 3 and 5: sensor name pairs
//
// All three share one layout: two 20-character name fields at offsets 8 and
// 28. The device only raises alarms for named sensors.

const (
	nameFieldAOff  = 8
	nameFieldBOff  = 28
	nameFieldWidth = 20
)

// NamePair is the decoded form of a name-pair record (user records 2, 3, 5).
type NamePair struct {
	First  string
	Second string
}

// ParseNamePair decodes a name-pair record from its full 60-byte record.
func ParseNamePair(rec []byte) (*NamePair, error) {
	if err := checkRecordLen("name pair", rec); err != nil {
		return nil, err
	}
	return &NamePair{
		First:  extractString(rec, nameFieldAOff, nameFieldWidth),
		Second: extractString(rec, nameFieldBOff, nameFieldWidth),
	}, nil
}

// NamePairPatch is a sparse update for a name-pair record.
type NamePairPatch struct {
	First  *string
	Second *string
}

// Apply returns a copy of the current record with the patch fields written.
func (p *NamePairPatch) Apply(current []byte) ([]byte, error) {
	if err := checkRecordLen("name pair", current); err != nil {
		return nil, err
	}
	rec := append([]byte(nil), current...)
	if p.First != nil {
		insertString(rec, nameFieldAOff, nameFieldWidth, *p.First)
	}
	if p.Second != nil {
		insertString(rec, nameFieldBOff, nameFieldWidth, *p.Second)
	}
	return rec, nil
}

// ---------------------------------------------------------------------------
// User record 4: device behaviour settings

// DeviceSettings is the decoded form of user record 4.
type DeviceSettings struct {
	RelayLogic             byte
	AlarmReminderDelay     byte
	BuzzerEnabled          bool
	TwoStageDoorAlarmDelay byte
}

// ParseDeviceSettings decodes user record 4 from its full 60-byte record.
func ParseDeviceSettings(rec []byte) (*DeviceSettings, error) {
	if err := checkRecordLen("device settings", rec); err != nil {
		return nil, err
	}
	return &DeviceSettings{
		RelayLogic:             rec[8],
		AlarmReminderDelay:     rec[9],
		BuzzerEnabled:          rec[10] != 0,
		TwoStageDoorAlarmDelay: rec[11],
	}, nil
}

// DeviceSettingsPatch is a sparse update for user record 4.
type DeviceSettingsPatch struct {
	RelayLogic             *byte
	AlarmReminderDelay     *byte
	BuzzerEnabled          *bool
	TwoStageDoorAlarmDelay *byte
}

// Apply returns a copy of the current record with the patch fields written.
func (p *DeviceSettingsPatch) Apply(current []byte) ([]byte, error) {
	if err := checkRecordLen("device settings", current); err != nil {
		return nil, err
	}
	rec := append([]byte(nil), current...)
	if p.RelayLogic != nil {
		rec[8] = *p.RelayLogic
	}
	if p.AlarmReminderDelay != nil {
		rec[9] = *p.AlarmReminderDelay
	}
	if p.BuzzerEnabled != nil {
		rec[10] = 0
		if *p.BuzzerEnabled {
			rec[10] = 1
		}
	}
	if p.TwoStageDoorAlarmDelay != nil {
		rec[11] = *p.TwoStageDoorAlarmDelay
	}
	return rec, nil
}

func checkRecordLen(what string, rec []byte) error {
	if len(rec) != PacketSize {
		return validationErrorf(what, "record must be %d bytes, got %d", PacketSize, len(rec))
	}
	return nil
}
