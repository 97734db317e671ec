// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems
//
// tempguard - M307 Temperature Guard client
//
// A CLI tool for reading sensors, managing configuration and downloading
// the data log of M307 Temperature Guard monitors over TCP.

package main

import (
	"os"

	"github.com/coldwatch/tempguard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
