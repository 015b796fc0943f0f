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
	"errors"
	"os"
	"syscall"
	"time"

	libseccomp "github.com/seccomp/libseccomp-golang"
	"github.com/sirupsen/logrus"

	"repltest/internal/ptyproc"
	"repltest/internal/rterrors"
	"repltest/internal/seccompfilter"
)

// managerEvent is one readiness-driven result from the manager fd.
type managerEvent struct {
	data []byte
	// subsidiaryClosed is true on EIO -- section 4.E: "the subsidiary
	// side has closed... emit a 'subsidiary closed' event".
	subsidiaryClosed bool
	err              error
}

// eventKind tags what next() returned, since Go has no sum types.
type eventKind int

const (
	eventManager eventKind = iota
	eventSignal
	eventNotify
	eventTimeout
)

// loop is the shared multiplexing substrate both driving strategies build
// on: section 4.E's "readiness-based wait over manager fd, signal channel
// fd, optional notify fd, bounded by a deadline", restructured as
// goroutines-feeding-channels because Go has no single-threaded select(2)
// over heterogeneous fds. Only the goroutine that calls next() touches
// mutable driver state -- no locks are needed on it, preserving section
// 5's "no locks required on shared state" by construction.
type loop struct {
	child *ptyproc.Child
	sig   *ptyproc.SignalChannel
	flt   *seccompfilter.Filter // nil in screen-scraping mode

	managerCh chan managerEvent
	notifyCh  chan *libseccomp.ScmpNotifReq

	deadline time.Time
}

func newLoop(child *ptyproc.Child, sig *ptyproc.SignalChannel, flt *seccompfilter.Filter, deadline time.Time) *loop {
	l := &loop{
		child:     child,
		sig:       sig,
		flt:       flt,
		managerCh: make(chan managerEvent, 1),
		deadline:  deadline,
	}
	go l.readManager()
	if flt != nil {
		l.notifyCh = make(chan *libseccomp.ScmpNotifReq, 1)
		go l.readNotify()
	}
	return l
}

func (l *loop) readManager() {
	buf := make([]byte, 1024)
	for {
		n, err := l.child.Read(buf)
		if err != nil {
			if isEIO(err) {
				l.managerCh <- managerEvent{subsidiaryClosed: true}
				return
			}
			l.managerCh <- managerEvent{err: err}
			return
		}
		out := make([]byte, n)
		copy(out, buf[:n])
		l.managerCh <- managerEvent{data: out}
	}
}

func (l *loop) readNotify() {
	for {
		req, err := l.flt.Receive()
		if err != nil {
			if seccompfilter.IsStale(err) {
				logrus.Debugf("driver: stale notify on receive, skipping: %v", err)
				continue
			}
			return
		}
		l.notifyCh <- req
	}
}

// next returns the next event, honoring the manager -> signals -> notify
// priority from section 4.B/4.E when more than one source is ready at
// once, and the residual deadline otherwise.
func (l *loop) next() (kind eventKind, mgr managerEvent, sig os.Signal, req *libseccomp.ScmpNotifReq, err error) {
	if !time.Now().Before(l.deadline) {
		return eventTimeout, managerEvent{}, nil, nil, nil
	}

	// Non-blocking priority pass: if multiple sources are already ready,
	// prefer manager, then signals, then notify.
	select {
	case mgr = <-l.managerCh:
		return eventManager, mgr, nil, nil, nil
	default:
	}
	select {
	case sig = <-l.sig.C():
		return eventSignal, managerEvent{}, sig, nil, nil
	default:
	}
	if l.notifyCh != nil {
		select {
		case req = <-l.notifyCh:
			return eventNotify, managerEvent{}, nil, req, nil
		default:
		}
	}

	timer := time.NewTimer(time.Until(l.deadline))
	defer timer.Stop()

	select {
	case mgr = <-l.managerCh:
		return eventManager, mgr, nil, nil, nil
	case sig = <-l.sig.C():
		return eventSignal, managerEvent{}, sig, nil, nil
	case req = <-l.notifyCh:
		return eventNotify, managerEvent{}, nil, req, nil
	case <-timer.C:
		return eventTimeout, managerEvent{}, nil, nil, nil
	}
}

func isEIO(err error) bool {
	return errors.Is(err, syscall.EIO)
}

// timeoutError builds the error drive() returns when the deadline passes,
// per section 7's Timeout kind.
func timeoutError(elapsed time.Duration) error {
	return &rterrors.TimeoutError{Elapsed: elapsed.String()}
}

// errSubsidiaryClosed is the internal sentinel for section 7's
// SubsidiaryClosed kind: EIO on the manager read, treated as end-of-session
// rather than an error. It never escapes the package.
var errSubsidiaryClosed = errors.New("subsidiary closed")
