// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	// TCP connection flags
	flagHost    string
	flagPort    int
	flagTimeout time.Duration

	// Profile selection
	flagConfig string
	flagDevice string

	// Alternative transports
	flagSerialPort string
	flagBaudRate   int
	flagWSURL      string

	// Output
	flagJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "tempguard",
	Short: "M307 Temperature Guard client",
	Long: `Tempguard - a client for M307 Temperature Guard environmental monitors.

Reads live sensor status, manages the six user configuration records and
downloads the on-board data log over the device's TCP port.

Connection modes:
  TCP:     --host 10.0.0.20 [--port 10001] [--timeout 5s]
  Profile: --device lab-fridge (from the config file)
  Serial:  --serial /dev/ttyUSB0 [--baud 9600]
  Bridge:  --url ws://host/path (serial-over-websocket bridge)

Device profiles live in ~/.config/tempguard/config.yaml; flags override
profile values.`,
	Version:       "1.2.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagHost, "host", "H", "", "Device IP address or hostname")
	pf.IntVarP(&flagPort, "port", "p", 0, "Device TCP port (default 10001)")
	pf.DurationVarP(&flagTimeout, "timeout", "t", 0, "Socket timeout (default 5s)")

	pf.StringVarP(&flagConfig, "config", "c", "", "Config file path")
	pf.StringVarP(&flagDevice, "device", "d", "", "Device profile from the config file")

	pf.StringVar(&flagSerialPort, "serial", "", "Serial port device (direct RS-232 connection)")
	pf.IntVar(&flagBaudRate, "baud", 9600, "Baud rate (serial only)")
	pf.StringVar(&flagWSURL, "url", "", "WebSocket bridge URL (ws:// or wss://)")

	pf.BoolVarP(&flagJSON, "json", "j", false, "JSON output")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
