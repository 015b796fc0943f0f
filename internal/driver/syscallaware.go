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
	"fmt"
	"os"
	"time"

	libseccomp "github.com/seccomp/libseccomp-golang"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"repltest/internal/classify"
	"repltest/internal/ptyproc"
	"repltest/internal/seccompfilter"
	"repltest/internal/vt"
)

// DriveSyscallAware runs the syscall-aware state machine from section
// 4.E/3: input is injected only once the classifier confirms the child is
// genuinely blocked reading the subsidiary TTY, rather than guessing from
// rendered screen state.
func DriveSyscallAware(child *ptyproc.Child, flt *seccompfilter.Filter, screen *vt.Screen, timeout time.Duration, input InputFunc) error {
	subPath, err := child.SubsidiaryPath()
	if err != nil {
		return err
	}
	localSub, err := os.OpenFile(subPath, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return fmt.Errorf("driver: open local subsidiary handle: %w", err)
	}
	defer localSub.Close()
	localFd := int(localSub.Fd())

	termios, err := child.Termios()
	if err != nil {
		return err
	}
	special := specialBytes(termios)

	sig := ptyproc.NewSignalChannel()
	defer sig.Close()

	deadline := time.Now().Add(timeout)
	l := newLoop(child, sig, flt, deadline)

	state := AwaitingStdinRead
	ignoredNotifyWhileBusy := false

	toAwaiting := func() {
		state = AwaitingStdinRead
		if ignoredNotifyWhileBusy {
			ignoredNotifyWhileBusy = false
			logrus.Debugf("driver: kicking pid %d, a notification was ignored while busy", child.Pid())
			_ = kick(child)
		}
	}

	for state != Done {
		kind, mgr, _, req, err := l.next()
		if err != nil {
			return err
		}

		switch kind {
		case eventTimeout:
			return timeoutError(timeout)

		case eventManager:
			if mgr.err != nil {
				return mgr.err
			}
			if mgr.subsidiaryClosed {
				state = Done
				continue
			}
			screen.Feed(mgr.data)
			switch state {
			case SentInputAwaitingCrlf:
				if endsInCRLF(mgr.data) {
					state = SentInputAwaitingOutput
				} else if containsCRLF(mgr.data) {
					toAwaiting()
				}
			case SentInputAwaitingOutput:
				toAwaiting()
			}

		case eventSignal:
			reaped, err := child.TryReap()
			if err != nil {
				return err
			}
			if reaped {
				logrus.Debugf("driver: pid %d reaped, exit code %d", child.Pid(), child.ExitCode())
				state = Done
			}

		case eventNotify:
			if state != AwaitingStdinRead {
				ignoredNotifyWhileBusy = true
				respondContinue(flt, req.Id)
				continue
			}

			wantsRead, _ := classifyNotify(flt, req, os.Getpid(), localFd)
			if !wantsRead {
				continue
			}

			pre, derr := drain(l, subPath)
			switch derr {
			case errDrainTimeout:
				return timeoutError(timeout)
			case nil, errSubsidiaryClosed, errChildReaped:
			default:
				return derr
			}
			if len(pre) > 0 {
				screen.Feed(pre)
			}
			if derr == errSubsidiaryClosed || derr == errChildReaped {
				state = Done
				continue
			}

			line, more, cbErr := input(screen)
			if cbErr != nil {
				return cbErr
			}
			if !more {
				state = Done
				continue
			}
			validateInput(line, special)
			if _, err := child.Write(line); err != nil {
				return err
			}
			state = SentInputAwaitingCrlf
		}
	}

	return nil
}

// classifyNotify decodes and classifies one notification, responding
// CONTINUE unconditionally (section 4.B step 4) unless the notification
// has gone stale, and reports whether the syscall indicated a read of the
// subsidiary.
func classifyNotify(flt *seccompfilter.Filter, req *libseccomp.ScmpNotifReq, selfPid, localFd int) (wantsRead bool, ok bool) {
	sys, err := seccompfilter.Decode(req)
	if err != nil {
		respondContinue(flt, req.Id)
		return false, true
	}

	mem, err := classify.OpenProcMem(int(req.Pid))
	if err != nil {
		respondContinue(flt, req.Id)
		return false, true
	}
	wants, err := sys.IndicatesDesireToReadFd(selfPid, localFd, mem)
	mem.Close()

	if idErr := flt.IDValid(req.Id); idErr != nil {
		// Stale per section 4.B; nothing to respond to.
		return false, true
	}
	respondContinue(flt, req.Id)

	if err != nil {
		return false, true
	}
	return wants, true
}

// respondContinue answers a notification with CONTINUE, swallowing stale
// errors per section 7's StaleNotify kind.
func respondContinue(flt *seccompfilter.Filter, id uint64) {
	if err := flt.Respond(seccompfilter.ContinueResponse(id)); err != nil && !seccompfilter.IsStale(err) {
		// Truly unexpected; section 7 has no kind for this, so it is
		// logged via the ambient logger and the loop carries on.
		logrus.Warnf("driver: respond CONTINUE to notification %d: %v", id, err)
	}
}
