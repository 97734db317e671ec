// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/cobra"

	"github.com/coldwatch/tempguard/pkg/m307"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Work with the on-board data log",
}

var (
	flagLogRate    int
	flagLogNoReset bool
	flagLogFormat  string
	flagLogOut     string
)

var logSetTimeCmd = &cobra.Command{
	Use:   "set-time",
	Short: "Set the log clock and recording interval",
	Long: `Write the current local time into the device's log clock. The
recording interval is how many minutes pass between logged samples.`,
	Args: cobra.NoArgs,
	RunE: runLogSetTime,
}

var logInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the log clock and record count",
	Args:  cobra.NoArgs,
	RunE:  runLogInfo,
}

var logReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Download and print the data log",
	Args:  cobra.NoArgs,
	RunE:  runLogRead,
}

var logExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Download the data log to a file",
	Long: `Download the data log and write it to a file. The format is taken
from --format, or guessed from the file extension (.csv, .json, .cbor).`,
	Args: cobra.ExactArgs(1),
	RunE: runLogExport,
}

func init() {
	logSetTimeCmd.Flags().IntVar(&flagLogRate, "rate", 15, "Recording interval in minutes (1-60)")

	logReadCmd.Flags().BoolVar(&flagLogNoReset, "no-reset", false, "Continue from the device's read pointer instead of the log start")
	logExportCmd.Flags().BoolVar(&flagLogNoReset, "no-reset", false, "Continue from the device's read pointer instead of the log start")
	logExportCmd.Flags().StringVarP(&flagLogFormat, "format", "f", "", "Export format: csv, json or cbor")

	logCmd.AddCommand(logSetTimeCmd)
	logCmd.AddCommand(logInfoCmd)
	logCmd.AddCommand(logReadCmd)
	logCmd.AddCommand(logExportCmd)
	rootCmd.AddCommand(logCmd)
}

func runLogSetTime(cmd *cobra.Command, args []string) error {
	return withClient(func(client *m307.Client) error {
		now := time.Now()
		if err := client.SetLogClock(now, flagLogRate); err != nil {
			return err
		}
		fmt.Printf("log clock set to %s, recording every %d min\n",
			now.Format("2006-01-02 15:04"), flagLogRate)
		return nil
	})
}

func runLogInfo(cmd *cobra.Command, args []string) error {
	return withClient(func(client *m307.Client) error {
		clock, err := client.ReadLogClock()
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(map[string]interface{}{
				"clock":         clock.Timestamp.String(),
				"rate_minutes":  clock.RateMinutes,
				"total_records": clock.TotalRecords,
			})
		}
		printField("Log clock", clock.Timestamp.String())
		printField("Interval", fmt.Sprintf("%d min", clock.RateMinutes))
		printField("Records", strconv.Itoa(clock.TotalRecords))
		return nil
	})
}

func downloadLog(client *m307.Client) ([]*m307.LogEntry, error) {
	progress := newProgressIndicator()
	entries, err := client.ReadLog(m307.ReadLogOptions{
		KeepPointer: flagLogNoReset,
		OnEntry:     func(*m307.LogEntry) { progress.Tick() },
	})
	progress.Done()
	return entries, err
}

func runLogRead(cmd *cobra.Command, args []string) error {
	return withClient(func(client *m307.Client) error {
		entries, err := downloadLog(client)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(logEntriesJSON(entries))
		}
		for _, e := range entries {
			fmt.Println(formatLogEntry(e))
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d records", len(entries))))
		return nil
	})
}

func runLogExport(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, err := exportFormat(path)
	if err != nil {
		return err
	}
	return withClient(func(client *m307.Client) error {
		entries, err := downloadLog(client)
		if err != nil {
			return err
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()

		switch format {
		case "csv":
			err = exportCSV(f, entries)
		case "json":
			enc := json.NewEncoder(f)
			enc.SetIndent("", "  ")
			err = enc.Encode(logEntriesJSON(entries))
		case "cbor":
			var blob []byte
			if blob, err = cbor.Marshal(logEntriesExport(entries)); err == nil {
				_, err = f.Write(blob)
			}
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("%d records exported to %s\n", len(entries), path)
		return nil
	})
}

func exportFormat(path string) (string, error) {
	format := flagLogFormat
	if format == "" {
		switch filepath.Ext(path) {
		case ".csv":
			format = "csv"
		case ".json":
			format = "json"
		case ".cbor":
			format = "cbor"
		default:
			return "", fmt.Errorf("cannot guess export format from %q, use --format", path)
		}
	}
	switch format {
	case "csv", "json", "cbor":
		return format, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or cbor)", format)
}

func formatLogEntry(e *m307.LogEntry) string {
	doors := func(open bool) string {
		if open {
			return "open"
		}
		return "closed"
	}
	power := "ok"
	if !e.Power {
		power = "FAIL"
	}
	return fmt.Sprintf("%s  t1=%s t2=%s int=%s rh=%s  d1=%s d2=%s pwr=%s",
		e.Timestamp, e.Temp1, e.Temp2, e.InternalTemp, e.InternalHumidity,
		doors(e.Door1), doors(e.Door2), power)
}

// logEntryExport is the flat record shape shared by the JSON and CBOR
// exports.
type logEntryExport struct {
	Timestamp    string      `json:"timestamp" cbor:"ts"`
	Temp1        interface{} `json:"temp_1" cbor:"t1"`
	Temp2        interface{} `json:"temp_2" cbor:"t2"`
	InternalTemp interface{} `json:"internal_temp" cbor:"ti"`
	Humidity     interface{} `json:"humidity" cbor:"rh"`
	Door1Open    bool        `json:"door_1_open" cbor:"d1"`
	Door2Open    bool        `json:"door_2_open" cbor:"d2"`
	PowerOK      bool        `json:"power_ok" cbor:"pw"`
}

func logEntriesExport(entries []*m307.LogEntry) []logEntryExport {
	out := make([]logEntryExport, 0, len(entries))
	for _, e := range entries {
		out = append(out, logEntryExport{
			Timestamp:    e.Timestamp.String(),
			Temp1:        tempValue(e.Temp1),
			Temp2:        tempValue(e.Temp2),
			InternalTemp: tempValue(e.InternalTemp),
			Humidity:     humidityValue(e.InternalHumidity),
			Door1Open:    e.Door1,
			Door2Open:    e.Door2,
			PowerOK:      e.Power,
		})
	}
	return out
}

func logEntriesJSON(entries []*m307.LogEntry) []logEntryExport {
	return logEntriesExport(entries)
}

func exportCSV(f *os.File, entries []*m307.LogEntry) error {
	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"timestamp", "temp_1", "temp_2", "internal_temp", "humidity",
		"door_1", "door_2", "power",
	}); err != nil {
		return err
	}
	for _, e := range entries {
		doors := func(open bool) string {
			if open {
				return "open"
			}
			return "closed"
		}
		power := "ok"
		if !e.Power {
			power = "fail"
		}
		row := []string{
			e.Timestamp.String(),
			e.Temp1.String(), e.Temp2.String(), e.InternalTemp.String(),
			e.InternalHumidity.String(),
			doors(e.Door1), doors(e.Door2), power,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
