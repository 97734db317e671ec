// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

package cmd

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"

	"github.com/coldwatch/tempguard/internal/config"
	"github.com/coldwatch/tempguard/pkg/m307"
)

// SerialConnection adapts a serial port to the m307 transport. M307 units
// speak the same 60-byte protocol on their RS-232 port as through the
// ethernet bridge.
type SerialConnection struct {
	port    serial.Port
	timeout time.Duration
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	n, err := s.port.Read(p)
	if err == nil && n == 0 {
		// go.bug.st/serial signals a read timeout as (0, nil).
		return 0, os.ErrDeadlineExceeded
	}
	return n, err
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// SetReadDeadline maps the absolute deadline onto the port's relative read
// timeout.
func (s *SerialConnection) SetReadDeadline(t time.Time) error {
	d := time.Until(t)
	if d < 0 {
		d = 0
	}
	s.timeout = d
	return s.port.SetReadTimeout(d)
}

// WebSocketConnection adapts a websocket byte bridge to the m307 transport.
type WebSocketConnection struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	// Serve buffered bytes from the previous binary message first.
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		w.buf = data
		w.bufOffset = 0
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	}
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketConnection) Close() error {
	return w.conn.Close()
}

func (w *WebSocketConnection) SetReadDeadline(t time.Time) error {
	return w.conn.SetReadDeadline(t)
}

// openSerialConnection opens a direct serial connection to the device.
func openSerialConnection(portName string, baudRate int, timeout time.Duration) (m307.Conn, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %v", portName, err)
	}

	return &SerialConnection{port: port, timeout: timeout}, nil
}

// openWebSocketConnection connects to a serial-over-websocket bridge.
func openWebSocketConnection(wsURL string, timeout time.Duration) (m307.Conn, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{}
	}

	conn, resp, err := dialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket connection failed: %v", err)
	}

	return &WebSocketConnection{conn: conn}, nil
}

// openClient resolves the flags into a connected client. Precedence:
// explicit websocket or serial transport, then --host, then the named (or
// default) profile from the config file.
func openClient() (*m307.Client, error) {
	timeout := flagTimeout
	if timeout <= 0 {
		timeout = m307.DefaultTimeout
	}

	if flagWSURL != "" {
		conn, err := openWebSocketConnection(flagWSURL, timeout)
		if err != nil {
			return nil, err
		}
		return m307.NewClientConn(conn, timeout), nil
	}

	if flagSerialPort != "" {
		conn, err := openSerialConnection(flagSerialPort, flagBaudRate, timeout)
		if err != nil {
			return nil, err
		}
		return m307.NewClientConn(conn, timeout), nil
	}

	cfg := m307.Config{Host: flagHost, Port: flagPort, Timeout: flagTimeout}
	if cfg.Host == "" {
		path := flagConfig
		if path == "" {
			path = config.DefaultPath()
		}
		fileCfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		dev, err := fileCfg.Lookup(flagDevice)
		if err != nil {
			return nil, fmt.Errorf("%v (set --host or add a device profile)", err)
		}
		cfg.Host = dev.Host
		if cfg.Port == 0 {
			cfg.Port = dev.Port
		}
		if cfg.Timeout == 0 {
			cfg.Timeout = dev.Timeout()
		}
	}

	client := m307.NewClient(cfg)
	if err := client.Connect(); err != nil {
		return nil, err
	}
	return client, nil
}

// withClient opens a connection, runs fn and always disconnects.
func withClient(fn func(*m307.Client) error) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}
