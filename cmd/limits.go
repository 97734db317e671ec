// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coldwatch/tempguard/pkg/m307"
)

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show or change the alarm limits",
	Long: `Show the alarm windows for every sensor channel: lower and upper
limits plus the delay in minutes before an excursion trips the alarm.
Limit values are raw device units (tenths of a degree when the device
resolution is fine).

Flags change only the fields they name; everything else in the record
is left untouched.`,
	Args: cobra.NoArgs,
	RunE: runLimits,
}

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Show or change the sensor correction offsets",
	Long: `Show the per-sensor correction offsets the device adds to raw
readings. Offsets are raw device units, same scaling as the limits.`,
	Args: cobra.NoArgs,
	RunE: runCalibrate,
}

// limitFlags holds the lower/upper/delay flag storage for one channel.
type limitFlags struct {
	lower, upper, delay int
}

var (
	flagLimitTemp1    limitFlags
	flagLimitTemp2    limitFlags
	flagLimitInternal limitFlags
	flagLimitHumidity limitFlags
	flagDoor1Delay    int
	flagDoor2Delay    int

	flagCorrTemp1    int
	flagCorrTemp2    int
	flagCorrInternal int
	flagCorrHumidity int
)

func init() {
	registerLimitFlags(limitsCmd, "temp1", &flagLimitTemp1, "temperature sensor 1")
	registerLimitFlags(limitsCmd, "temp2", &flagLimitTemp2, "temperature sensor 2")
	registerLimitFlags(limitsCmd, "internal", &flagLimitInternal, "the internal temperature sensor")
	registerLimitFlags(limitsCmd, "humidity", &flagLimitHumidity, "the humidity sensor")
	limitsCmd.Flags().IntVar(&flagDoor1Delay, "door1-delay", 0, "Set the door 1 alarm delay (minutes)")
	limitsCmd.Flags().IntVar(&flagDoor2Delay, "door2-delay", 0, "Set the door 2 alarm delay (minutes)")
	rootCmd.AddCommand(limitsCmd)

	calibrateCmd.Flags().IntVar(&flagCorrTemp1, "temp1", 0, "Set the temperature sensor 1 correction")
	calibrateCmd.Flags().IntVar(&flagCorrTemp2, "temp2", 0, "Set the temperature sensor 2 correction")
	calibrateCmd.Flags().IntVar(&flagCorrInternal, "internal", 0, "Set the internal temperature correction")
	calibrateCmd.Flags().IntVar(&flagCorrHumidity, "humidity", 0, "Set the humidity correction")
	rootCmd.AddCommand(calibrateCmd)
}

func registerLimitFlags(cmd *cobra.Command, prefix string, store *limitFlags, what string) {
	cmd.Flags().IntVar(&store.lower, prefix+"-lower", 0, "Set the lower limit for "+what)
	cmd.Flags().IntVar(&store.upper, prefix+"-upper", 0, "Set the upper limit for "+what)
	cmd.Flags().IntVar(&store.delay, prefix+"-delay", 0, "Set the alarm delay for "+what+" (minutes)")
}

func channelPatch(cmd *cobra.Command, prefix string, store *limitFlags, changed *bool) m307.ChannelLimitsPatch {
	var p m307.ChannelLimitsPatch
	if cmd.Flags().Changed(prefix + "-lower") {
		p.Lower, *changed = &store.lower, true
	}
	if cmd.Flags().Changed(prefix + "-upper") {
		p.Upper, *changed = &store.upper, true
	}
	if cmd.Flags().Changed(prefix + "-delay") {
		p.Delay, *changed = &store.delay, true
	}
	return p
}

func runLimits(cmd *cobra.Command, args []string) error {
	return withClient(func(client *m307.Client) error {
		var patch m307.SensorLimitsPatch
		changed := false

		patch.TempSensor1 = channelPatch(cmd, "temp1", &flagLimitTemp1, &changed)
		patch.TempSensor2 = channelPatch(cmd, "temp2", &flagLimitTemp2, &changed)
		patch.InternalTemp = channelPatch(cmd, "internal", &flagLimitInternal, &changed)
		patch.InternalHumidity = channelPatch(cmd, "humidity", &flagLimitHumidity, &changed)
		if cmd.Flags().Changed("door1-delay") {
			patch.Door1Delay, changed = &flagDoor1Delay, true
		}
		if cmd.Flags().Changed("door2-delay") {
			patch.Door2Delay, changed = &flagDoor2Delay, true
		}

		if changed {
			if err := client.SetSensorLimits(patch); err != nil {
				return err
			}
		}

		limits, err := client.SensorLimits()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(limitsJSON(limits))
		}
		printLimitLine("Temp sensor 1", limits.TempSensor1)
		printLimitLine("Temp sensor 2", limits.TempSensor2)
		printLimitLine("Internal temp", limits.InternalTemp)
		printLimitLine("Humidity", limits.InternalHumidity)
		printField("Door 1 delay", fmt.Sprintf("%d min", limits.Door1Delay))
		printField("Door 2 delay", fmt.Sprintf("%d min", limits.Door2Delay))
		return nil
	})
}

func printLimitLine(label string, ch m307.ChannelLimits) {
	printField(label, fmt.Sprintf("%d .. %d, delay %d min", ch.Lower, ch.Upper, ch.Delay))
}

type channelLimitsJSON struct {
	Lower int `json:"lower"`
	Upper int `json:"upper"`
	Delay int `json:"delay_minutes"`
}

func limitsJSON(l *m307.SensorLimits) map[string]interface{} {
	ch := func(c m307.ChannelLimits) channelLimitsJSON {
		return channelLimitsJSON{c.Lower, c.Upper, c.Delay}
	}
	return map[string]interface{}{
		"temp_sensor_1":     ch(l.TempSensor1),
		"temp_sensor_2":     ch(l.TempSensor2),
		"internal_temp":     ch(l.InternalTemp),
		"internal_humidity": ch(l.InternalHumidity),
		"door_1_delay":      l.Door1Delay,
		"door_2_delay":      l.Door2Delay,
		"input_1_logic":     l.Input1Logic,
		"input_2_logic":     l.Input2Logic,
	}
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	return withClient(func(client *m307.Client) error {
		var patch m307.SensorLimitsPatch
		changed := false

		if cmd.Flags().Changed("temp1") {
			patch.TempSensor1Correction, changed = &flagCorrTemp1, true
		}
		if cmd.Flags().Changed("temp2") {
			patch.TempSensor2Correction, changed = &flagCorrTemp2, true
		}
		if cmd.Flags().Changed("internal") {
			patch.InternalTempCorrection, changed = &flagCorrInternal, true
		}
		if cmd.Flags().Changed("humidity") {
			patch.InternalHumidityCorrection, changed = &flagCorrHumidity, true
		}

		if changed {
			if err := client.SetSensorLimits(patch); err != nil {
				return err
			}
		}

		limits, err := client.SensorLimits()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(map[string]int{
				"temp_sensor_1":     limits.TempSensor1Correction,
				"temp_sensor_2":     limits.TempSensor2Correction,
				"internal_temp":     limits.InternalTempCorrection,
				"internal_humidity": limits.InternalHumidityCorrection,
			})
		}
		printField("Temp sensor 1", fmt.Sprintf("%+d", limits.TempSensor1Correction))
		printField("Temp sensor 2", fmt.Sprintf("%+d", limits.TempSensor2Correction))
		printField("Internal temp", fmt.Sprintf("%+d", limits.InternalTempCorrection))
		printField("Humidity", fmt.Sprintf("%+d", limits.InternalHumidityCorrection))
		return nil
	})
}
