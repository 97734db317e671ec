// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/coldwatch/tempguard/pkg/m307"
)

var sensorNamesCmd = &cobra.Command{
	Use:   "sensor-names",
	Short: "Show or change the sensor display names",
	Args:  cobra.NoArgs,
	RunE:  runSensorNames,
}

var (
	flagTemp1Name    string
	flagTemp2Name    string
	flagDoor1Name    string
	flagDoor2Name    string
	flagIntTempName  string
	flagHumidityName string
)

func init() {
	f := sensorNamesCmd.Flags()
	f.StringVar(&flagTemp1Name, "temp1", "", "Set the name of temperature sensor 1")
	f.StringVar(&flagTemp2Name, "temp2", "", "Set the name of temperature sensor 2")
	f.StringVar(&flagDoor1Name, "door1", "", "Set the name of door contact 1")
	f.StringVar(&flagDoor2Name, "door2", "", "Set the name of door contact 2")
	f.StringVar(&flagIntTempName, "internal-temp", "", "Set the name of the internal temperature sensor")
	f.StringVar(&flagHumidityName, "humidity", "", "Set the name of the humidity sensor")
	rootCmd.AddCommand(sensorNamesCmd)
}

func runSensorNames(cmd *cobra.Command, args []string) error {
	return withClient(func(client *m307.Client) error {
		if err := applyNamePatch(cmd, client.SetTempSensorNames, "temp1", &flagTemp1Name, "temp2", &flagTemp2Name); err != nil {
			return err
		}
		if err := applyNamePatch(cmd, client.SetDoorSensorNames, "door1", &flagDoor1Name, "door2", &flagDoor2Name); err != nil {
			return err
		}
		if err := applyNamePatch(cmd, client.SetInternalSensorNames, "internal-temp", &flagIntTempName, "humidity", &flagHumidityName); err != nil {
			return err
		}

		temps, err := client.TempSensorNames()
		if err != nil {
			return err
		}
		doors, err := client.DoorSensorNames()
		if err != nil {
			return err
		}
		internal, err := client.InternalSensorNames()
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(map[string]string{
				"temp_sensor_1": temps.First,
				"temp_sensor_2": temps.Second,
				"door_1":        doors.First,
				"door_2":        doors.Second,
				"internal_temp": internal.First,
				"humidity":      internal.Second,
			})
		}
		printField("Temp sensor 1", temps.First)
		printField("Temp sensor 2", temps.Second)
		printField("Door 1", doors.First)
		printField("Door 2", doors.Second)
		printField("Internal temp", internal.First)
		printField("Humidity", internal.Second)
		return nil
	})
}

// applyNamePatch writes one name-pair record when either of its flags was
// given on the command line.
func applyNamePatch(cmd *cobra.Command, set func(m307.NamePairPatch) error, firstFlag string, first *string, secondFlag string, second *string) error {
	var patch m307.NamePairPatch
	changed := false
	if cmd.Flags().Changed(firstFlag) {
		patch.First, changed = first, true
	}
	if cmd.Flags().Changed(secondFlag) {
		patch.Second, changed = second, true
	}
	if !changed {
		return nil
	}
	return set(patch)
}
