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
	"time"

	"github.com/sirupsen/logrus"

	"repltest/internal/ptyproc"
	"repltest/internal/vt"
)

// DriveScreenScrape runs the emulator-only driving strategy from section
// 4.E: no seccomp instrumentation, prompts are inferred purely from where
// the cursor lands after each output byte.
func DriveScreenScrape(child *ptyproc.Child, screen *vt.Screen, timeout time.Duration, input InputFunc) error {
	termios, err := child.Termios()
	if err != nil {
		return err
	}
	echoOn := localEchoEnabled(termios)

	sig := ptyproc.NewSignalChannel()
	defer sig.Close()

	deadline := time.Now().Add(timeout)
	l := newLoop(child, sig, nil, deadline)

	lastPromptY := -1
	done := false

	for !done {
		kind, mgr, _, _, err := l.next()
		if err != nil {
			return err
		}

		switch kind {
		case eventTimeout:
			return timeoutError(timeout)

		case eventSignal:
			reaped, err := child.TryReap()
			if err != nil {
				return err
			}
			if reaped {
				done = true
			}

		case eventManager:
			if mgr.err != nil {
				return mgr.err
			}
			if mgr.subsidiaryClosed {
				done = true
				continue
			}

			for _, b := range mgr.data {
				screen.Feed([]byte{b})
				x, y := screen.Cursor()
				if x <= 0 || y == lastPromptY {
					continue
				}
				lastPromptY = y
				if echoOn {
					continue
				}

				logrus.Debugf("driver: prompt detected at row %d: %q", y, screen.RowPrefix(y, x))
				line, more, cbErr := input(screen)
				if cbErr != nil {
					return cbErr
				}
				if !more {
					done = true
					break
				}
				if _, err := child.Write(line); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
