// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coldwatch/tempguard/pkg/m307"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read the full device status",
	Long: `Read the live status record: all temperature channels, internal
humidity, door contacts, main power and battery voltage.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withClient(func(client *m307.Client) error {
		st, err := client.ReadStatus()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(statusJSON(st))
		}
		printStatus(st)
		return nil
	})
}

func statusJSON(st *m307.StatusRecord) map[string]interface{} {
	return map[string]interface{}{
		"temperature_sensor_1": tempChannelJSON(st.TempSensor1),
		"temperature_sensor_2": tempChannelJSON(st.TempSensor2),
		"internal_temperature": tempChannelJSON(st.InternalTemp),
		"internal_humidity": channelJSON{
			humidityValue(st.InternalHumidity.Reading),
			st.InternalHumidity.MinutesOutOfLimits,
			st.InternalHumidity.InAlarm,
		},
		"door_1":                 doorChannelJSON(st.Door1),
		"door_2":                 doorChannelJSON(st.Door2),
		"main_power":             st.MainPower,
		"battery_voltage":        st.BatteryVoltage,
		"temperature_resolution": st.Resolution.String(),
		"temperature_unit":       st.Unit.String(),
	}
}

func printStatus(st *m307.StatusRecord) {
	unit := st.Unit.String()

	printTempLine("Temp sensor 1", st.TempSensor1, unit)
	printTempLine("Temp sensor 2", st.TempSensor2, unit)
	printTempLine("Internal temp", st.InternalTemp, unit)

	hum := st.InternalHumidity
	printField("Humidity", hum.Reading.String()+alarmSuffix(hum.InAlarm, hum.MinutesOutOfLimits))

	printDoorLine("Door 1", st.Door1)
	printDoorLine("Door 2", st.Door2)

	power := "OK"
	if !st.MainPower {
		power = alarmStyle.Render("FAILED")
	}
	printField("Main power", power)
	printField("Battery", fmt.Sprintf("%.2f V", st.BatteryVoltage))

	fmt.Println(dimStyle.Render(fmt.Sprintf("resolution %s°, unit %s", st.Resolution, unit)))
}

func printTempLine(label string, ch m307.TempChannel, unit string) {
	reading := ch.Reading.String()
	if ch.Reading.State == m307.TempOK {
		reading += " °" + unit
	}
	printField(label, reading+alarmSuffix(ch.InAlarm, ch.MinutesOutOfLimits))
}

func printDoorLine(label string, ch m307.DoorChannel) {
	printField(label, ch.State.String()+alarmSuffix(ch.InAlarm, ch.MinutesOutOfLimits))
}
