// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/coldwatch/tempguard/pkg/m307"
)

var (
	flagDeviceName   string
	flagDeviceUnit   string
	flagDeviceSerial string
)

var deviceInfoCmd = &cobra.Command{
	Use:   "device-info",
	Short: "Show or change the device identity record",
	Long: `Show the device identity record: name, temperature unit, MAC address
and serial number. With --name, --unit or --serial the selected fields are
rewritten and the rest of the record is left untouched.`,
	Args: cobra.NoArgs,
	RunE: runDeviceInfo,
}

func init() {
	deviceInfoCmd.Flags().StringVar(&flagDeviceName, "name", "", "Set the device name (max 20 characters)")
	deviceInfoCmd.Flags().StringVar(&flagDeviceUnit, "unit", "", "Set the temperature unit (C or F)")
	deviceInfoCmd.Flags().StringVar(&flagDeviceSerial, "serial-number", "", "Set the serial number (max 10 characters)")
	rootCmd.AddCommand(deviceInfoCmd)
}

func runDeviceInfo(cmd *cobra.Command, args []string) error {
	return withClient(func(client *m307.Client) error {
		var patch m307.DeviceInfoPatch
		changed := false

		if cmd.Flags().Changed("name") {
			patch.DeviceName, changed = &flagDeviceName, true
		}
		if cmd.Flags().Changed("unit") {
			u := m307.Unit(0)
			if len(flagDeviceUnit) == 1 {
				u = m307.Unit(flagDeviceUnit[0])
			}
			patch.Unit, changed = &u, true
		}
		if cmd.Flags().Changed("serial-number") {
			patch.SerialNumber, changed = &flagDeviceSerial, true
		}

		if changed {
			if err := client.SetDeviceInfo(patch); err != nil {
				return err
			}
		}

		info, err := client.DeviceInfo()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(map[string]string{
				"device_name":   info.DeviceName,
				"unit":          info.Unit.String(),
				"mac_address":   info.MACAddress,
				"serial_number": info.SerialNumber,
			})
		}
		printField("Device name", info.DeviceName)
		printField("Unit", info.Unit.String())
		printField("MAC address", info.MACAddress)
		printField("Serial number", info.SerialNumber)
		return nil
	})
}
