// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/coldwatch/tempguard/pkg/m307"
)

// Shared terminal styles
var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	alarmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printField writes one "Label: value" line with shared styling.
func printField(label, value string) {
	fmt.Printf("%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

// tempValue renders a temperature reading for JSON output: a number when
// the reading is real, a string marker for the sentinel states.
func tempValue(t m307.Temperature) interface{} {
	if t.State != m307.TempOK {
		return t.State.String()
	}
	return t.Value
}

// humidityValue renders a humidity reading for JSON output.
func humidityValue(h m307.Humidity) interface{} {
	if h.State != m307.HumidityOK {
		return h.State.String()
	}
	return h.Value
}

// alarmSuffix renders the alarm marker appended to channel lines.
func alarmSuffix(inAlarm bool, minutes int) string {
	if !inAlarm {
		return ""
	}
	return " " + alarmStyle.Render(fmt.Sprintf("[ALARM, %d min out of limits]", minutes))
}

// channelJSON is the JSON shape shared by all status channels.
type channelJSON struct {
	Reading         interface{} `json:"reading"`
	MinutesOutOfLim int         `json:"time_out_of_limits"`
	InAlarm         bool        `json:"in_alarm"`
}

func tempChannelJSON(ch m307.TempChannel) channelJSON {
	return channelJSON{tempValue(ch.Reading), ch.MinutesOutOfLimits, ch.InAlarm}
}

func doorChannelJSON(ch m307.DoorChannel) channelJSON {
	return channelJSON{ch.State.String(), ch.MinutesOutOfLimits, ch.InAlarm}
}
