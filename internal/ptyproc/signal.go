/*
 * repltest: drive and verify interactive terminal programs
 * Copyright 2019-2025 Daniel Selifonov
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package ptyproc

import (
	"os"
	"os/signal"
	"syscall"
)

// SignalChannel is a readable, wake-only source for SIGCHLD, section 3's
// model of "installed scoped to a single child; torn down restores the
// previous disposition". The Go port resolves this via os/signal rather
// than a raw self-pipe socketpair: the runtime already owns safe signal
// delivery, and Stop un-registers the channel, which is as close to
// "restore prior disposition" as a Go process -- which never exposes a
// user-installable SIGCHLD handler to begin with -- can get. Two
// concurrent drivers in one process remain unsupported, per section 9's
// "Global state surface" note.
type SignalChannel struct {
	ch chan os.Signal
}

// NewSignalChannel registers interest in SIGCHLD.
func NewSignalChannel() *SignalChannel {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGCHLD)
	return &SignalChannel{ch: ch}
}

// C returns the channel that receives a value each time SIGCHLD fires.
// Contents are opaque -- wake-only, per section 3.
func (s *SignalChannel) C() <-chan os.Signal { return s.ch }

// Close un-registers the channel, restoring SIGCHLD's default disposition.
func (s *SignalChannel) Close() {
	signal.Stop(s.ch)
}
