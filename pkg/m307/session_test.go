// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Coldwatch Systems

package m307

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"
)

const testTimeout = 250 * time.Millisecond

// pipeSession returns a session wired to one end of an in-memory pipe and
// the peer end for the test to script the device side on.
func pipeSession(t *testing.T) (*Session, net.Conn) {
	t.Helper()
	client, device := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		device.Close()
	})
	return NewSessionConn(client, testTimeout), device
}

func TestExchange(t *testing.T) {
	s, device := pipeSession(t)

	response := BuildPacket(CmdReadStatus, statusFixture(10, 0x43))
	go func() {
		req := make([]byte, PacketSize)
		if _, err := device.Read(req); err != nil {
			return
		}
		device.Write(response)
	}()

	resp, err := s.Exchange(CmdReadStatus, nil)
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if !bytes.Equal(resp, response) {
		t.Errorf("response = % X, want % X", resp, response)
	}
}

func TestExchange_PartialReads(t *testing.T) {
	s, device := pipeSession(t)

	response := BuildPacket(ReadRecordCommand(1), bytes.Repeat([]byte{0x55}, DataSize))
	go func() {
		req := make([]byte, PacketSize)
		if _, err := device.Read(req); err != nil {
			return
		}
		// Dribble the response out in awkward pieces.
		for _, part := range [][]byte{response[:7], response[7:30], response[30:]} {
			device.Write(part)
			time.Sleep(5 * time.Millisecond)
		}
	}()

	resp, err := s.Exchange(ReadRecordCommand(1), nil)
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if !bytes.Equal(resp, response) {
		t.Errorf("response reassembled incorrectly")
	}
}

func TestExchange_NotConnected(t *testing.T) {
	s := NewSession("192.0.2.1", 0, testTimeout)
	_, err := s.Exchange(CmdReadStatus, nil)
	var cerr *ConnectionError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *ConnectionError", err)
	}
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("error does not wrap ErrNotConnected: %v", err)
	}
}

func TestExchange_PeerClosesMidReceive(t *testing.T) {
	s, device := pipeSession(t)

	go func() {
		req := make([]byte, PacketSize)
		if _, err := device.Read(req); err != nil {
			return
		}
		device.Write(make([]byte, 20)) // short response
		device.Close()
	}()

	_, err := s.Exchange(CmdReadStatus, nil)
	var cerr *ConnectionError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *ConnectionError", err)
	}
}

func TestExchange_Timeout(t *testing.T) {
	s, device := pipeSession(t)

	go func() {
		req := make([]byte, PacketSize)
		device.Read(req)
		// Never respond.
	}()

	start := time.Now()
	_, err := s.Exchange(CmdReadStatus, nil)
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error = %v, want *CommandError", err)
	}
	if elapsed := time.Since(start); elapsed < testTimeout {
		t.Errorf("returned after %v, before the %v deadline", elapsed, testTimeout)
	}
}

func TestStreamUntilMarker(t *testing.T) {
	s, device := pipeSession(t)

	entries := [][]byte{logEntryFixture(), logEntryFixture(), logEntryFixture()}
	entries[1][0] = 0x36
	entries[2][0] = 0x37

	go func() {
		req := make([]byte, PacketSize)
		if _, err := device.Read(req); err != nil {
			return
		}
		var stream []byte
		for _, e := range entries {
			stream = append(stream, e...)
		}
		stream = append(stream, []byte(LogEndMarker)...)
		device.Write(stream)
	}()

	var got [][]byte
	err := s.StreamUntilMarker(CmdReadLogFile, nil, func(entry []byte) {
		got = append(got, append([]byte(nil), entry...))
	})
	if err != nil {
		t.Fatalf("StreamUntilMarker failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("emitted %d entries, want 3", len(got))
	}
	for i, e := range entries {
		if !bytes.Equal(got[i], e) {
			t.Errorf("entry %d = % X, want % X", i, got[i], e)
		}
	}
}

func TestStreamUntilMarker_MarkerSplitAcrossChunks(t *testing.T) {
	s, device := pipeSession(t)

	go func() {
		req := make([]byte, PacketSize)
		if _, err := device.Read(req); err != nil {
			return
		}
		device.Write(logEntryFixture())
		device.Write([]byte("THE-"))
		time.Sleep(10 * time.Millisecond)
		device.Write([]byte("END"))
	}()

	count := 0
	err := s.StreamUntilMarker(CmdReadLogFile, nil, func([]byte) { count++ })
	if err != nil {
		t.Fatalf("StreamUntilMarker failed: %v", err)
	}
	if count != 1 {
		t.Errorf("emitted %d entries, want 1", count)
	}
}

func TestStreamUntilMarker_TrailingBytesDiscarded(t *testing.T) {
	s, device := pipeSession(t)

	go func() {
		req := make([]byte, PacketSize)
		if _, err := device.Read(req); err != nil {
			return
		}
		stream := append(logEntryFixture(), []byte(LogEndMarker)...)
		stream = append(stream, 0xDE, 0xAD, 0xBE, 0xEF)
		device.Write(stream)
	}()

	count := 0
	err := s.StreamUntilMarker(CmdReadLogFile, nil, func([]byte) { count++ })
	if err != nil {
		t.Fatalf("StreamUntilMarker failed: %v", err)
	}
	if count != 1 {
		t.Errorf("emitted %d entries, want 1 (trailing bytes must not leak)", count)
	}
}

func TestStreamUntilMarker_TimeoutEndsStream(t *testing.T) {
	s, device := pipeSession(t)

	go func() {
		req := make([]byte, PacketSize)
		if _, err := device.Read(req); err != nil {
			return
		}
		device.Write(logEntryFixture())
		// Stop sending without the end marker.
	}()

	count := 0
	err := s.StreamUntilMarker(CmdReadLogFile, nil, func([]byte) { count++ })
	if err != nil {
		t.Fatalf("timeout should end the stream without error, got: %v", err)
	}
	if count != 1 {
		t.Errorf("emitted %d entries, want 1", count)
	}
}

func TestConnect_RefusedAndClose(t *testing.T) {
	// A listener that is immediately closed gives a port with nothing
	// accepting on it.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	s := NewSession("127.0.0.1", port, testTimeout)
	err = s.Connect()
	var cerr *ConnectionError
	if !errors.As(err, &cerr) {
		t.Fatalf("Connect error = %v, want *ConnectionError", err)
	}
	if s.Connected() {
		t.Error("session reports connected after a failed dial")
	}

	// Close on a never-connected session must not fail or panic.
	s.Close()
}

func TestConnect_Idempotent(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	s := NewSession("127.0.0.1", l.Addr().(*net.TCPAddr).Port, testTimeout)
	if err := s.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer s.Close()
	if err := s.Connect(); err != nil {
		t.Fatalf("second Connect failed: %v", err)
	}
	if !s.Connected() {
		t.Error("session not connected")
	}
}
