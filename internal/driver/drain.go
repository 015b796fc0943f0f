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

package driver

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"syscall"

	"repltest/internal/ptyproc"
)

// errDrainTimeout signals that the deadline passed while draining the NUL
// sentinel; the caller turns this into a TimeoutError, same as a timeout
// anywhere else in the event loop (section 4.E's "timeout bounds total
// wall-clock").
var errDrainTimeout = errors.New("drain: timed out")

// errChildReaped signals that SIGCHLD was observed and the child reaped
// while draining; the caller treats this like the subsidiary closing.
var errChildReaped = errors.New("drain: child reaped")

// drain implements the NUL-byte round trip from section 4.E: "write a NUL
// byte into the subsidiary end and read until it appears on the manager
// end, then strip it from the observed stream." Returns any genuine output
// bytes that preceded the sentinel, so callers don't lose them.
//
// This relies on programs not emitting NUL bytes legitimately -- the
// limitation section 4.E documents.
func drain(l *loop, subsidiaryPath string) ([]byte, error) {
	sub, err := os.OpenFile(subsidiaryPath, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("drain: open subsidiary: %w", err)
	}
	defer sub.Close()

	if _, err := sub.Write([]byte{0}); err != nil {
		return nil, fmt.Errorf("drain: write sentinel: %w", err)
	}

	var observed bytes.Buffer
	for {
		kind, mgr, _, req, err := l.next()
		if err != nil {
			return nil, err
		}

		switch kind {
		case eventTimeout:
			return observed.Bytes(), errDrainTimeout

		case eventSignal:
			reaped, rerr := l.child.TryReap()
			if rerr != nil {
				return nil, rerr
			}
			if reaped {
				return observed.Bytes(), errChildReaped
			}

		case eventNotify:
			// Can't be driven while draining -- answer CONTINUE so the
			// child's syscall isn't left pending (section 5: "no event is
			// lost").
			respondContinue(l.flt, req.Id)

		case eventManager:
			if mgr.err != nil {
				return nil, mgr.err
			}
			if mgr.subsidiaryClosed {
				return observed.Bytes(), errSubsidiaryClosed
			}
			observed.Write(mgr.data)
			if idx := bytes.IndexByte(observed.Bytes(), 0); idx >= 0 {
				before := make([]byte, idx)
				copy(before, observed.Bytes()[:idx])
				return before, nil
			}
		}
	}
}

// kick sends SIGSTOP immediately followed by SIGCONT to the child's
// foreground process group, per the GLOSSARY's "Kick": interrupts a
// syscall we may have left blocked because notifications were ignored
// while in a SentInputAwaiting* state (section 4.E).
func kick(child *ptyproc.Child) error {
	pgid, err := syscall.Getpgid(child.Pid())
	if err != nil {
		return fmt.Errorf("kick: getpgid: %w", err)
	}
	if err := syscall.Kill(-pgid, syscall.SIGSTOP); err != nil {
		return fmt.Errorf("kick: sigstop: %w", err)
	}
	return syscall.Kill(-pgid, syscall.SIGCONT)
}
