// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Coldwatch Systems

package m307

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

// Config holds the connection parameters for a device.
type Config struct {
	Host    string
	Port    int           // 0 means DefaultPort
	Timeout time.Duration // 0 means DefaultTimeout
}

// Client is the protocol engine for one M307 device. It composes the
// transport session with the record parsers/builders and caches the
// device-reported resolution and unit, which log parsing depends on.
//
// A Client is safe for concurrent use; exchanges are serialized by the
// underlying session.
type Client struct {
	session *Session

	mu         sync.Mutex
	resKnown   bool
	resolution Resolution
	unit       Unit
}

// NewClient creates an unconnected client for a TCP-attached device.
func NewClient(cfg Config) *Client {
	return &Client{session: NewSession(cfg.Host, cfg.Port, cfg.Timeout)}
}

// NewClientConn creates a client over an already-established transport.
func NewClientConn(conn Conn, timeout time.Duration) *Client {
	return &Client{session: NewSessionConn(conn, timeout)}
}

// Connect opens the connection. Idempotent when already connected.
func (c *Client) Connect() error { return c.session.Connect() }

// Close disconnects and clears the per-connection resolution/unit cache.
func (c *Client) Close() {
	c.session.Close()
	c.mu.Lock()
	c.resKnown = false
	c.mu.Unlock()
}

// Connected reports whether the client holds an open connection.
func (c *Client) Connected() bool { return c.session.Connected() }

// ReadStatus performs one status exchange and decodes the snapshot. As a
// side effect the device's resolution and unit are cached for the session.
func (c *Client) ReadStatus() (*StatusRecord, error) {
	resp, err := c.session.Exchange(CmdReadStatus, nil)
	if err != nil {
		return nil, err
	}
	st, err := ParseStatus(resp[CommandSize:])
	if err != nil {
		return nil, &CommandError{Op: "parse status", Err: err}
	}
	c.mu.Lock()
	c.resKnown = true
	c.resolution = st.Resolution
	c.unit = st.Unit
	c.mu.Unlock()
	return st, nil
}

// TempSensor selects one of the three temperature channels.
type TempSensor int

const (
	TempProbe1   TempSensor = 1
	TempProbe2   TempSensor = 2
	TempInternal TempSensor = 3
)

// GetTemperature reads the status record and returns one temperature
// channel.
func (c *Client) GetTemperature(sensor TempSensor) (TempChannel, error) {
	if sensor < TempProbe1 || sensor > TempInternal {
		return TempChannel{}, validationErrorf("sensor", "invalid temperature sensor %d", sensor)
	}
	st, err := c.ReadStatus()
	if err != nil {
		return TempChannel{}, err
	}
	switch sensor {
	case TempProbe1:
		return st.TempSensor1, nil
	case TempProbe2:
		return st.TempSensor2, nil
	default:
		return st.InternalTemp, nil
	}
}

// GetHumidity reads the status record and returns the internal humidity
// channel.
func (c *Client) GetHumidity() (HumidityChannel, error) {
	st, err := c.ReadStatus()
	if err != nil {
		return HumidityChannel{}, err
	}
	return st.InternalHumidity, nil
}

// GetDoorState reads the status record and returns door channel 1 or 2.
func (c *Client) GetDoorState(door int) (DoorChannel, error) {
	if door != 1 && door != 2 {
		return DoorChannel{}, validationErrorf("door", "invalid door number %d", door)
	}
	st, err := c.ReadStatus()
	if err != nil {
		return DoorChannel{}, err
	}
	if door == 1 {
		return st.Door1, nil
	}
	return st.Door2, nil
}

// GetBatteryVoltage reads the status record and returns the backup battery
// voltage in volts.
func (c *Client) GetBatteryVoltage() (float64, error) {
	st, err := c.ReadStatus()
	if err != nil {
		return 0, err
	}
	return st.BatteryVoltage, nil
}

// GetPowerStatus reads the status record and reports whether main power is
// present.
func (c *Client) GetPowerStatus() (bool, error) {
	st, err := c.ReadStatus()
	if err != nil {
		return false, err
	}
	return st.MainPower, nil
}

// GetResolutionInfo returns the cached device resolution and unit,
// performing one status read first if the cache is cold.
func (c *Client) GetResolutionInfo() (Resolution, Unit, error) {
	c.mu.Lock()
	known := c.resKnown
	c.mu.Unlock()
	if !known {
		if _, err := c.ReadStatus(); err != nil {
			return 0, 0, err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolution, c.unit, nil
}

// ---------------------------------------------------------------------------
// User records

func validateRecordNumber(n int) error {
	if n < 0 || n >= RecordCount {
		return validationErrorf("record", "invalid record number %d (must be 0-5)", n)
	}
	return nil
}

// ReadRecord reads user record n (0-5) and returns the raw 60-byte record.
func (c *Client) ReadRecord(n int) ([]byte, error) {
	if err := validateRecordNumber(n); err != nil {
		return nil, err
	}
	return c.session.Exchange(ReadRecordCommand(n), nil)
}

// WriteRecord writes a full 60-byte user record back to the device. The
// device's acknowledgment is not trusted: it echoes the record under the
// read command, and the write is reported as failed unless the echoed data
// matches what was sent byte for byte.
func (c *Client) WriteRecord(n int, rec []byte) error {
	if err := validateRecordNumber(n); err != nil {
		return err
	}
	if len(rec) != PacketSize {
		return validationErrorf("record", "record must be %d bytes, got %d", PacketSize, len(rec))
	}

	data := append([]byte(nil), rec[CommandSize:]...)
	resp, err := c.session.Exchange(WriteRecordCommand(n), data)
	if err != nil {
		return err
	}
	if commandOf(resp) != ReadRecordCommand(n) {
		return &CommandError{Op: "write record", Err: errors.New("verification failed: unexpected command in response")}
	}
	if !bytes.Equal(resp[CommandSize:], data) {
		return &CommandError{Op: "write record", Err: errors.New("verification failed: data mismatch")}
	}
	return nil
}

// patchRecord runs the read-modify-write cycle for record n: read the
// current record, let apply produce the updated one, write it back.
func (c *Client) patchRecord(n int, apply func(current []byte) ([]byte, error)) error {
	current, err := c.ReadRecord(n)
	if err != nil {
		return err
	}
	updated, err := apply(current)
	if err != nil {
		return err
	}
	return c.WriteRecord(n, updated)
}

// SensorLimits reads and decodes user record 0.
func (c *Client) SensorLimits() (*SensorLimits, error) {
	rec, err := c.ReadRecord(0)
	if err != nil {
		return nil, err
	}
	return ParseSensorLimits(rec)
}

// SetSensorLimits applies a sparse limits update to user record 0.
func (c *Client) SetSensorLimits(patch SensorLimitsPatch) error {
	return c.patchRecord(0, patch.Apply)
}

// DeviceInfo reads and decodes user record 1.
func (c *Client) DeviceInfo() (*DeviceInfo, error) {
	rec, err := c.ReadRecord(1)
	if err != nil {
		return nil, err
	}
	return ParseDeviceInfo(rec)
}

// SetDeviceInfo applies a sparse identity update to user record 1.
func (c *Client) SetDeviceInfo(patch DeviceInfoPatch) error {
	return c.patchRecord(1, patch.Apply)
}

// TempSensorNames reads user record 2: the external probe names.
func (c *Client) TempSensorNames() (*NamePair, error) {
	rec, err := c.ReadRecord(2)
	if err != nil {
		return nil, err
	}
	return ParseNamePair(rec)
}

// SetTempSensorNames applies a sparse name update to user record 2.
// The device only raises alarms for named sensors.
func (c *Client) SetTempSensorNames(patch NamePairPatch) error {
	return c.patchRecord(2, patch.Apply)
}

// DoorSensorNames reads user record 3: the door contact names.
func (c *Client) DoorSensorNames() (*NamePair, error) {
	rec, err := c.ReadRecord(3)
	if err != nil {
		return nil, err
	}
	return ParseNamePair(rec)
}

// SetDoorSensorNames applies a sparse name update to user record 3.
func (c *Client) SetDoorSensorNames(patch NamePairPatch) error {
	return c.patchRecord(3, patch.Apply)
}

// DeviceSettings reads and decodes user record 4.
func (c *Client) DeviceSettings() (*DeviceSettings, error) {
	rec, err := c.ReadRecord(4)
	if err != nil {
		return nil, err
	}
	return ParseDeviceSettings(rec)
}

// SetDeviceSettings applies a sparse behaviour update to user record 4.
func (c *Client) SetDeviceSettings(patch DeviceSettingsPatch) error {
	return c.patchRecord(4, patch.Apply)
}

// InternalSensorNames reads user record 5: the internal sensor names.
func (c *Client) InternalSensorNames() (*NamePair, error) {
	rec, err := c.ReadRecord(5)
	if err != nil {
		return nil, err
	}
	return ParseNamePair(rec)
}

// SetInternalSensorNames applies a sparse name update to user record 5.
func (c *Client) SetInternalSensorNames(patch NamePairPatch) error {
	return c.patchRecord(5, patch.Apply)
}

// ---------------------------------------------------------------------------
// Data logging

// SetLogClock sets the device's logging clock and interval. The rate is the
// logging period in minutes, 1-60. The device does not echo this command in
// any checkable form, so the exchange result is discarded.
func (c *Client) SetLogClock(t time.Time, rateMinutes int) error {
	data, err := buildLogClockData(t, rateMinutes)
	if err != nil {
		return err
	}
	_, err = c.session.Exchange(CmdSetLogClock, data)
	return err
}

// ReadLogClock reads the device's logging clock, interval and the number of
// stored log entries.
func (c *Client) ReadLogClock() (*LogClock, error) {
	resp, err := c.session.Exchange(CmdReadLogClock, nil)
	if err != nil {
		return nil, err
	}
	clock, err := ParseLogClock(resp[CommandSize:])
	if err != nil {
		return nil, &CommandError{Op: "parse log clock", Err: err}
	}
	return clock, nil
}

// ReadLogOptions controls a log-file transfer.
type ReadLogOptions struct {
	// KeepPointer continues from wherever the previous partial read left
	// off instead of resetting the device's read pointer to the start.
	KeepPointer bool

	// OnEntry, when set, is called for each entry as it is decoded, before
	// the transfer completes. Purely an observation hook; it does not
	// affect parsing or ordering.
	OnEntry func(*LogEntry)
}

// ReadLog streams the device's log file and returns the decoded entries in
// arrival order. Log entries do not carry the resolution metadata their
// temperatures are scaled with, so a status read is performed first whenever
// the session cache is cold.
func (c *Client) ReadLog(opts ReadLogOptions) ([]*LogEntry, error) {
	res, _, err := c.GetResolutionInfo()
	if err != nil {
		return nil, err
	}

	data := make([]byte, DataSize)
	if !opts.KeepPointer {
		data[0] = 0x01 // reset read pointer to the start of the log
	}

	var entries []*LogEntry
	err = c.session.StreamUntilMarker(CmdReadLogFile, data, func(raw []byte) {
		entry, perr := ParseLogEntry(raw, res)
		if perr != nil {
			return // unreachable: the session always hands over 15 bytes
		}
		entries = append(entries, entry)
		if opts.OnEntry != nil {
			opts.OnEntry(entry)
		}
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
