// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Coldwatch Systems

package m307

import (
	"fmt"
	"time"
)

// LogTimestamp is the packed BCD timestamp carried by log entries and the
// log clock. Fields are kept as decoded: a malfunctioning device can emit
// calendar values that no real date has, and those pass through untouched.
type LogTimestamp struct {
	Second  int // log entries carry no seconds; always 0 there
	Minute  int
	Hour    int // device packs flags into the high bits; masked to 5 bits
	Weekday int
	Day     int
	Month   int
	Year    int // full year; the century is fixed at 2000
}

// Time materializes the timestamp. Out-of-range fields are normalized by
// time.Date rather than rejected.
func (t LogTimestamp) Time() time.Time {
	return time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, 0, time.UTC)
}

func (t LogTimestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", t.Year, t.Month, t.Day, t.Hour, t.Minute)
}

// LogEntry is one decoded 15-byte historical record from the device log.
type LogEntry struct {
	Timestamp        LogTimestamp
	Temp1            Temperature
	Temp2            Temperature
	InternalTemp     Temperature
	InternalHumidity Humidity

	// Low three bits of the entry's status byte.
	Door1 bool
	Door2 bool
	Power bool
}

// ParseLogEntry decodes one 15-byte log entry. Temperature scaling needs the
// device resolution, which log entries do not carry themselves; it comes
// from a prior status read.
func ParseLogEntry(rec []byte, res Resolution) (*LogEntry, error) {
	if len(rec) != LogEntrySize {
		return nil, fmt.Errorf("log entry: %d bytes, want %d", len(rec), LogEntrySize)
	}

	entry := &LogEntry{
		Timestamp: LogTimestamp{
			Minute:  DecodeBCD(rec[0]),
			Hour:    DecodeBCD(rec[1]) & 0x1F,
			Weekday: DecodeBCD(rec[2]),
			Day:     DecodeBCD(rec[3]),
			Month:   DecodeBCD(rec[4]),
			Year:    2000 + DecodeBCD(rec[5]),
		},
		Temp1:            DecodeTemperature(rec[6], rec[7], res),
		Temp2:            DecodeTemperature(rec[8], rec[9], res),
		InternalTemp:     DecodeTemperature(rec[10], rec[11], res),
		InternalHumidity: DecodeHumidity(rec[12], rec[13]),
	}

	status := rec[14]
	entry.Door1 = status&0x01 != 0
	entry.Door2 = status&0x02 != 0
	entry.Power = status&0x04 != 0
	return entry, nil
}

// LogClock is the device's logging clock state: current date/time, the
// logging interval, and how many entries the on-board log holds.
type LogClock struct {
	Timestamp    LogTimestamp
	RateMinutes  int
	TotalRecords int
}

// ParseLogClock decodes the 56-byte data section of a read-log-clock
// response.
func ParseLogClock(data []byte) (*LogClock, error) {
	if len(data) < DataSize {
		return nil, fmt.Errorf("log clock: %d data bytes, want %d", len(data), DataSize)
	}
	return &LogClock{
		Timestamp: LogTimestamp{
			Second:  int(data[0]),
			Minute:  DecodeBCD(data[1]),
			Hour:    DecodeBCD(data[2]) & 0x1F,
			Weekday: DecodeBCD(data[3]),
			Day:     DecodeBCD(data[4]),
			Month:   DecodeBCD(data[5]),
			Year:    2000 + DecodeBCD(data[6]),
		},
		RateMinutes:  int(data[7]),
		TotalRecords: int(data[8])<<8 | int(data[9]),
	}, nil
}

// buildLogClockData builds the 56-byte data section of a set-log-clock
// command: BCD date/time fields followed by the raw logging rate.
func buildLogClockData(t time.Time, rateMinutes int) ([]byte, error) {
	if rateMinutes < 1 || rateMinutes > 60 {
		return nil, validationErrorf("log rate", "must be 1-60 minutes, got %d", rateMinutes)
	}

	data := make([]byte, DataSize)
	fields := []struct {
		off   int
		value int
	}{
		{1, t.Minute()},
		{2, t.Hour()},
		{4, t.Day()},
		{5, int(t.Month())},
		{6, t.Year() - 2000},
	}
	// data[0] (seconds) and data[3] (weekday) stay zero; the device keeps
	// its own seconds counter and derives the weekday.
	for _, f := range fields {
		b, err := EncodeBCD(f.value)
		if err != nil {
			return nil, err
		}
		data[f.off] = b
	}
	data[7] = byte(rateMinutes)
	return data, nil
}
