// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coldwatch/tempguard/pkg/m307"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the device behaviour settings",
	Long: `Show the behaviour settings record: alarm relay logic, the alarm
reminder delay, the buzzer switch and the two-stage door alarm delay.`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

var (
	flagRelayLogic    uint8
	flagReminderDelay uint8
	flagBuzzer        bool
	flagTwoStageDelay uint8
)

func init() {
	f := settingsCmd.Flags()
	f.Uint8Var(&flagRelayLogic, "relay-logic", 0, "Set the alarm relay logic byte")
	f.Uint8Var(&flagReminderDelay, "reminder-delay", 0, "Set the alarm reminder delay (minutes)")
	f.BoolVar(&flagBuzzer, "buzzer", false, "Enable or disable the alarm buzzer")
	f.Uint8Var(&flagTwoStageDelay, "two-stage-delay", 0, "Set the two-stage door alarm delay (minutes)")
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, args []string) error {
	return withClient(func(client *m307.Client) error {
		var patch m307.DeviceSettingsPatch
		changed := false

		if cmd.Flags().Changed("relay-logic") {
			patch.RelayLogic, changed = &flagRelayLogic, true
		}
		if cmd.Flags().Changed("reminder-delay") {
			patch.AlarmReminderDelay, changed = &flagReminderDelay, true
		}
		if cmd.Flags().Changed("buzzer") {
			patch.BuzzerEnabled, changed = &flagBuzzer, true
		}
		if cmd.Flags().Changed("two-stage-delay") {
			patch.TwoStageDoorAlarmDelay, changed = &flagTwoStageDelay, true
		}

		if changed {
			if err := client.SetDeviceSettings(patch); err != nil {
				return err
			}
		}

		settings, err := client.DeviceSettings()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(map[string]interface{}{
				"relay_logic":          settings.RelayLogic,
				"reminder_delay":       settings.AlarmReminderDelay,
				"buzzer_enabled":       settings.BuzzerEnabled,
				"two_stage_door_delay": settings.TwoStageDoorAlarmDelay,
			})
		}
		printField("Relay logic", fmt.Sprintf("%d", settings.RelayLogic))
		printField("Reminder delay", fmt.Sprintf("%d min", settings.AlarmReminderDelay))
		buzzer := "off"
		if settings.BuzzerEnabled {
			buzzer = "on"
		}
		printField("Buzzer", buzzer)
		printField("Two-stage door delay", fmt.Sprintf("%d min", settings.TwoStageDoorAlarmDelay))
		return nil
	})
}
