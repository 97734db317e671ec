// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Coldwatch Systems

package cmd

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// progressIndicator prints an in-place transfer counter while the log file
// streams in. It stays silent when stdout is not a terminal so piped and
// redirected output is not polluted.
type progressIndicator struct {
	tty   bool
	width int
	count int
}

func newProgressIndicator() *progressIndicator {
	fd := int(os.Stdout.Fd())
	p := &progressIndicator{tty: term.IsTerminal(fd)}
	if p.tty {
		if w, _, err := term.GetSize(fd); err == nil {
			p.width = w
		}
	}
	return p
}

// Tick advances the counter by one record.
func (p *progressIndicator) Tick() {
	p.count++
	if !p.tty {
		return
	}
	line := fmt.Sprintf("\rreceiving log... %d records", p.count)
	if p.width > 0 && len(line) > p.width {
		line = line[:p.width]
	}
	fmt.Print(line)
}

// Done erases the counter line.
func (p *progressIndicator) Done() {
	if p.tty && p.count > 0 {
		fmt.Print("\r\033[K")
	}
}
