// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Coldwatch Systems

package m307

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// Conn is the byte transport a Session drives. *net.TCPConn satisfies it
// directly; alternative transports (serial, websocket bridges) adapt to it.
type Conn interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
}

// Session owns one connection to a device and serializes exchanges on it.
// The protocol is strictly synchronous request/response: exactly one
// exchange may be in flight, so every wire operation holds the session lock.
type Session struct {
	addr    string
	timeout time.Duration

	mu   sync.Mutex
	conn Conn
}

// NewSession creates an unconnected session for the given TCP address.
func NewSession(host string, port int, timeout time.Duration) *Session {
	if port == 0 {
		port = DefaultPort
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Session{
		addr:    net.JoinHostPort(host, fmt.Sprintf("%d", port)),
		timeout: timeout,
	}
}

// NewSessionConn creates a session over an already-established transport,
// e.g. a serial port or a websocket bridge.
func NewSessionConn(conn Conn, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Session{conn: conn, timeout: timeout}
}

// Connect opens the TCP stream. It is a no-op when already connected.
func (s *Session) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}
	if s.addr == "" {
		return &ConnectionError{Op: "connect", Err: errors.New("no address configured")}
	}
	conn, err := net.DialTimeout("tcp", s.addr, s.timeout)
	if err != nil {
		return &ConnectionError{Op: "connect to " + s.addr, Err: err}
	}
	s.conn = conn
	return nil
}

// Close closes the connection if open. Close errors from the peer are
// swallowed: from the caller's perspective disconnecting always succeeds.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// Connected reports whether the session holds an open connection.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Timeout returns the configured socket timeout.
func (s *Session) Timeout() time.Duration { return s.timeout }

// Exchange sends one 60-byte command packet and reads exactly one 60-byte
// response, accumulating across partial reads. The peer closing the stream
// before 60 bytes arrive is a connection error; the deadline expiring with
// no (or partial) data is a command error.
func (s *Session) Exchange(cmd Command, data []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil, &ConnectionError{Op: "exchange", Err: ErrNotConnected}
	}

	packet := BuildPacket(cmd, data)
	if _, err := s.conn.Write(packet); err != nil {
		return nil, &CommandError{Op: "send command", Err: err}
	}

	resp := make([]byte, PacketSize)
	if err := s.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
		return nil, &CommandError{Op: "arm read deadline", Err: err}
	}
	for total := 0; total < PacketSize; {
		n, err := s.conn.Read(resp[total:])
		total += n
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, &ConnectionError{Op: "receive response", Err: errors.New("connection closed by device")}
			}
			if isTimeout(err) {
				return nil, &CommandError{Op: "receive response", Err: errors.New("timeout waiting for response")}
			}
			return nil, &CommandError{Op: "receive response", Err: err}
		}
	}
	return resp, nil
}

// streamChunkSize is the read buffer used while draining a log transfer.
const streamChunkSize = 4096

// StreamUntilMarker sends one command packet and then drains the log-file
// stream. Every complete 15-byte entry is handed to emit in arrival order;
// bytes left over after the last complete entry stay buffered until the next
// chunk completes them. The transfer finishes when the LogEndMarker shows up
// in the buffer; entries preceding the marker are emitted, the marker and
// anything after it are discarded. A read timeout before the marker ends the
// stream without error: some units simply stop sending instead of emitting
// the marker.
func (s *Session) StreamUntilMarker(cmd Command, data []byte, emit func(entry []byte)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return &ConnectionError{Op: "stream", Err: ErrNotConnected}
	}

	packet := BuildPacket(cmd, data)
	if _, err := s.conn.Write(packet); err != nil {
		return &CommandError{Op: "send command", Err: err}
	}

	marker := []byte(LogEndMarker)
	buf := make([]byte, 0, streamChunkSize)
	chunk := make([]byte, streamChunkSize)

	for {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
			return &CommandError{Op: "arm read deadline", Err: err}
		}
		n, err := s.conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)

			if i := bytes.Index(buf, marker); i >= 0 {
				buf = buf[:i]
				for len(buf) >= LogEntrySize {
					emit(buf[:LogEntrySize])
					buf = buf[LogEntrySize:]
				}
				return nil
			}

			for len(buf) >= LogEntrySize {
				emit(buf[:LogEntrySize])
				buf = buf[LogEntrySize:]
			}
		}
		if err != nil {
			// The device stopping early, or closing after the last
			// entry, is tolerated: return what was accumulated.
			if isTimeout(err) || errors.Is(err, io.EOF) {
				return nil
			}
			return &CommandError{Op: "receive log stream", Err: err}
		}
	}
}

// isTimeout reports whether err is a read-deadline expiry.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
