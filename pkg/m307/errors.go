// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Coldwatch Systems

package m307

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when an exchange is attempted on a session
// that has no open connection.
var ErrNotConnected = errors.New("not connected to device")

// ConnectionError reports a failure to open or maintain the TCP stream:
// dialing failed, the session was never connected, or the peer closed the
// connection mid-receive.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return "m307: " + e.Op
	}
	return fmt.Sprintf("m307: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// CommandError reports a well-formed exchange whose outcome violates the
// protocol contract: an unexpected echoed command, a write-verification
// mismatch, or a short/timed-out receive.
type CommandError struct {
	Op  string
	Err error
}

func (e *CommandError) Error() string {
	if e.Err == nil {
		return "m307: " + e.Op
	}
	return fmt.Sprintf("m307: %s: %v", e.Op, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ValidationError reports a caller-supplied argument that is rejected before
// any bytes reach the device.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "m307: " + e.Msg
	}
	return fmt.Sprintf("m307: %s: %s", e.Field, e.Msg)
}

func validationErrorf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
