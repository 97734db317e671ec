// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Coldwatch Systems

// Package m307 implements the TCP protocol spoken by the M307 Temperature
// Guard environmental monitor.
//
// The device exchanges fixed 60-byte records (4-byte command + 56-byte data)
// over a single TCP connection, normally through the serial-to-ethernet
// bridge listening on port 10001. This package provides the field codecs,
// packet framing, record parsers/builders, the synchronous exchange session,
// and the streaming log-file transfer.
package m307

import "time"

// Packet geometry
const (
	PacketSize  = 60
	CommandSize = 4
	DataSize    = 56
)

// Log transfer
const (
	LogEntrySize = 15
	// LogEndMarker terminates the log-file stream. The device appends it
	// after the last 15-byte entry; there is no length prefix.
	LogEndMarker = "THE-END"
)

// Connection defaults
const (
	DefaultPort    = 10001
	DefaultTimeout = 5 * time.Second
)

// RecordCount is the number of user configuration records on the device.
const RecordCount = 6

// Command is a 4-byte opcode occupying the first four bytes of every packet.
type Command [4]byte

// Fixed command codes
var (
	CmdReadStatus = Command{0x3F, 0xCD, 0xDC, 0x00}

	CmdSetLogClock  = Command{0xDE, 0xCA, 0xDE, 0x00}
	CmdReadLogClock = Command{0xDE, 0xCA, 0xDE, 0x02}
	CmdReadLogFile  = Command{0xDE, 0xCA, 0xDE, 0x04}
)

// ReadRecordCommand returns the read opcode for user record n (0-5).
func ReadRecordCommand(n int) Command {
	return Command{0xAA, 0xBB, 0xCC, byte(n)}
}

// WriteRecordCommand returns the write opcode for user record n (0-5).
func WriteRecordCommand(n int) Command {
	return Command{0xDD, 0xCC, 0xBB, byte(n)}
}

// Sentinel raw values layered over the signed 16-bit sensor domain.
// These are checked before any resolution scaling is applied.
const (
	rawNoSensor      = 1000 // temperature: no probe connected
	rawOpenCircuit   = 999  // temperature: probe open circuit
	rawShorted       = -999 // temperature: probe shorted
	rawHumidityFault = 999  // humidity: sensor failed
)

// Resolution is the device-wide temperature scaling factor, discovered from
// a status read. Firmware v5+ reports tenth-degree readings.
type Resolution int

const (
	ResolutionCoarse Resolution = iota // whole degrees
	ResolutionFine                     // tenths of a degree
)

// Divisor returns the raw-to-degrees divisor for the resolution.
func (r Resolution) Divisor() float64 {
	if r == ResolutionFine {
		return 10.0
	}
	return 1.0
}

func (r Resolution) String() string {
	if r == ResolutionFine {
		return "0.1"
	}
	return "1.0"
}

// Unit is the device temperature unit letter.
type Unit byte

const (
	UnitCelsius    Unit = 'C'
	UnitFahrenheit Unit = 'F'
	UnitUnknown    Unit = '?'
)

// unitFromByte maps the wire byte to a Unit. Anything other than the two
// accepted codes decodes as UnitUnknown rather than failing; the device
// cannot be trusted to always report a sane letter.
func unitFromByte(b byte) Unit {
	switch b {
	case byte(UnitCelsius):
		return UnitCelsius
	case byte(UnitFahrenheit):
		return UnitFahrenheit
	default:
		return UnitUnknown
	}
}

func (u Unit) String() string { return string(rune(u)) }

// DoorState is the reported position of a door contact.
type DoorState int

const (
	DoorOpen DoorState = iota
	DoorClosed
)

func (d DoorState) String() string {
	if d == DoorClosed {
		return "closed"
	}
	return "open"
}
