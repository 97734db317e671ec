// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/coldwatch/tempguard/pkg/m307"
)

var temperatureCmd = &cobra.Command{
	Use:   "temperature [1|2|internal]",
	Short: "Read one temperature sensor",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTemperature,
}

var humidityCmd = &cobra.Command{
	Use:   "humidity",
	Short: "Read the internal humidity sensor",
	Args:  cobra.NoArgs,
	RunE:  runHumidity,
}

var doorCmd = &cobra.Command{
	Use:   "door [1|2]",
	Short: "Read a door contact",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDoor,
}

var batteryCmd = &cobra.Command{
	Use:   "battery",
	Short: "Read the backup battery voltage",
	Args:  cobra.NoArgs,
	RunE:  runBattery,
}

var powerCmd = &cobra.Command{
	Use:   "power",
	Short: "Read the main power state",
	Args:  cobra.NoArgs,
	RunE:  runPower,
}

func init() {
	rootCmd.AddCommand(temperatureCmd)
	rootCmd.AddCommand(humidityCmd)
	rootCmd.AddCommand(doorCmd)
	rootCmd.AddCommand(batteryCmd)
	rootCmd.AddCommand(powerCmd)
}

func runTemperature(cmd *cobra.Command, args []string) error {
	sensor := m307.TempProbe1
	label := "Temp sensor 1"
	if len(args) == 1 {
		switch args[0] {
		case "1":
		case "2":
			sensor, label = m307.TempProbe2, "Temp sensor 2"
		case "internal":
			sensor, label = m307.TempInternal, "Internal temp"
		default:
			return fmt.Errorf("unknown temperature sensor %q (want 1, 2 or internal)", args[0])
		}
	}

	return withClient(func(client *m307.Client) error {
		ch, err := client.GetTemperature(sensor)
		if err != nil {
			return err
		}
		_, unit, err := client.GetResolutionInfo()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(tempChannelJSON(ch))
		}
		printTempLine(label, ch, unit.String())
		return nil
	})
}

func runHumidity(cmd *cobra.Command, args []string) error {
	return withClient(func(client *m307.Client) error {
		ch, err := client.GetHumidity()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(channelJSON{humidityValue(ch.Reading), ch.MinutesOutOfLimits, ch.InAlarm})
		}
		printField("Humidity", ch.Reading.String()+alarmSuffix(ch.InAlarm, ch.MinutesOutOfLimits))
		return nil
	})
}

func runDoor(cmd *cobra.Command, args []string) error {
	door := 1
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || (n != 1 && n != 2) {
			return fmt.Errorf("unknown door %q (want 1 or 2)", args[0])
		}
		door = n
	}

	return withClient(func(client *m307.Client) error {
		ch, err := client.GetDoorState(door)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(doorChannelJSON(ch))
		}
		printDoorLine(fmt.Sprintf("Door %d", door), ch)
		return nil
	})
}

func runBattery(cmd *cobra.Command, args []string) error {
	return withClient(func(client *m307.Client) error {
		volts, err := client.GetBatteryVoltage()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(map[string]float64{"battery_voltage": volts})
		}
		printField("Battery", fmt.Sprintf("%.2f V", volts))
		return nil
	})
}

func runPower(cmd *cobra.Command, args []string) error {
	return withClient(func(client *m307.Client) error {
		on, err := client.GetPowerStatus()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(map[string]bool{"main_power": on})
		}
		state := "OK"
		if !on {
			state = alarmStyle.Render("FAILED")
		}
		printField("Main power", state)
		return nil
	})
}
