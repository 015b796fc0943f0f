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

	"golang.org/x/sys/unix"

	"repltest/internal/rterrors"
)

// posixVdisable is the Linux value of _POSIX_VDISABLE: a c_cc slot set to
// this value has no special character bound to it.
const posixVdisable = 0

// specialBytes collects the distinct, enabled special characters from a
// subsidiary's c_cc table (section 4.E: "a configured terminal special
// character (from the PTY's c_cc table)").
func specialBytes(t *unix.Termios) map[byte]bool {
	out := make(map[byte]bool)
	for _, b := range t.Cc {
		if b != posixVdisable {
			out[b] = true
		}
	}
	return out
}

// validateInput enforces section 4.E's input injection rules: "If any
// byte equals a configured terminal special character, the payload MUST
// be exactly one byte; otherwise the payload MUST end in \n." A violation
// is a programming-contract error (section 9's multi-byte special
// character Open Question), hence ProtocolError rather than a returned
// error.
func validateInput(payload []byte, special map[byte]bool) {
	hasSpecial := false
	for _, b := range payload {
		if special[b] {
			hasSpecial = true
			break
		}
	}
	if hasSpecial {
		if len(payload) != 1 {
			rterrors.Protocol("input payload mixes a special character with other bytes: %q", payload)
		}
		return
	}
	if len(payload) == 0 || payload[len(payload)-1] != '\n' {
		rterrors.Protocol("non-special input payload must end in \\n: %q", payload)
	}
}

// localEchoEnabled reports whether the subsidiary's termios has the ECHO
// bit set, consulted by the screen-scraping driver (section 4.E:
// "invoke the input callback only if local echo is disabled").
func localEchoEnabled(t *unix.Termios) bool {
	return t.Lflag&unix.ECHO != 0
}

// endsInCRLF reports whether data ends with "\r\n", used by the
// syscall-aware state machine's SentInputAwaitingCrlf transition.
func endsInCRLF(data []byte) bool {
	return bytes.HasSuffix(data, []byte("\r\n"))
}

// containsCRLF reports whether data contains "\r\n" anywhere.
func containsCRLF(data []byte) bool {
	return bytes.Contains(data, []byte("\r\n"))
}
