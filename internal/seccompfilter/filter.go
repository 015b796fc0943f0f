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

// Package seccompfilter installs the user-notify seccomp filter described
// in section 4.B and owns the notify fd's receive/respond lifecycle.
package seccompfilter

import (
	"errors"
	"fmt"
	"syscall"

	libseccomp "github.com/seccomp/libseccomp-golang"
	"golang.org/x/sys/unix"
)

// MonitoredSyscalls is the fixed set the classifier (internal/classify)
// knows how to decode -- read-intent calls a child issues against its
// controlling TTY.
var MonitoredSyscalls = []string{"read", "poll", "ppoll", "select", "pselect6"}

// Filter owns a loaded seccomp program and its notify fd.
type Filter struct {
	prog *libseccomp.ScmpFilter
	fd   libseccomp.ScmpFd
}

// Install builds a default-ALLOW filter that returns USER_NOTIF for each
// name in names, loads it into the calling (single) thread, and returns a
// handle wrapping the resulting notify fd. Must be called before exec, in
// the freshly re-exec'd bootstrap process (see RunBootstrap) -- loading a
// seccomp-notify filter from a multi-threaded Go runtime risks other OS
// threads racing ahead of the filter install, the same reason runc/lxd
// re-exec into a fresh single-threaded process for this step.
func Install(names []string) (*Filter, error) {
	if api, err := libseccomp.GetApi(); err != nil {
		return nil, fmt.Errorf("seccomp: query api level: %w", err)
	} else if api < 5 {
		return nil, fmt.Errorf("seccomp: need api level >= 5 for user-notify, have %d", api)
	}

	prog, err := libseccomp.NewFilter(libseccomp.ActAllow)
	if err != nil {
		return nil, fmt.Errorf("seccomp: new filter: %w", err)
	}

	for _, name := range names {
		id, err := libseccomp.GetSyscallFromName(name)
		if err != nil {
			prog.Release()
			return nil, fmt.Errorf("seccomp: unknown syscall %q: %w", name, err)
		}
		if err := prog.AddRule(id, libseccomp.ActNotify); err != nil {
			prog.Release()
			return nil, fmt.Errorf("seccomp: add rule for %q: %w", name, err)
		}
	}

	if err := prog.Load(); err != nil {
		prog.Release()
		return nil, fmt.Errorf("seccomp: load filter: %w", err)
	}

	fd, err := prog.GetNotifFd()
	if err != nil {
		prog.Release()
		return nil, fmt.Errorf("seccomp: get notify fd: %w", err)
	}

	return &Filter{prog: prog, fd: fd}, nil
}

// AttachNotifyFd wraps a notify fd received over the bootstrap socketpair
// (see RecvNotifyFd) for use by the parent, which never holds the
// *libseccomp.ScmpFilter that produced it -- that handle lives only in the
// re-exec'd bootstrap process.
func AttachNotifyFd(fd int) *Filter {
	return &Filter{fd: libseccomp.ScmpFd(fd)}
}

// NotifyFd returns the raw notify descriptor, for plumbing into the event
// loop's readiness wait.
func (f *Filter) NotifyFd() int { return int(f.fd) }

// Receive blocks for the next notification. Per section 4.B, a stale
// notification (IsStale(err)) must be treated as benign and skipped.
func (f *Filter) Receive() (*libseccomp.ScmpNotifReq, error) {
	return libseccomp.NotifReceive(f.fd)
}

// Respond answers a previously received notification.
func (f *Filter) Respond(resp *libseccomp.ScmpNotifResp) error {
	return libseccomp.NotifRespond(f.fd, resp)
}

// IDValid performs the TOCTOU check section 4.B's step 4 implies: confirm
// the notification is still live before trusting a classifier decision
// made from (now possibly stale) child memory.
func (f *Filter) IDValid(id uint64) error {
	return libseccomp.NotifIdValid(f.fd, id)
}

// Close releases the loaded filter and its notify fd. A Filter attached via
// AttachNotifyFd has no ScmpFilter handle to release -- it only owns the fd.
func (f *Filter) Close() error {
	if f.prog != nil {
		f.prog.Release()
		return nil
	}
	return unix.Close(int(f.fd))
}

// ContinueResponse builds the "let the syscall proceed" response from
// section 4.B step 4: "value = 0, flags = USER_NOTIF_FLAG_CONTINUE".
func ContinueResponse(id uint64) *libseccomp.ScmpNotifResp {
	return &libseccomp.ScmpNotifResp{
		Id:    id,
		Val:   0,
		Error: 0,
		Flags: libseccomp.NotifRespFlagContinue,
	}
}

// IsStale reports whether err is one of the benign stale-notification
// errors from section 4.B / section 7's StaleNotify kind.
func IsStale(err error) bool {
	return errors.Is(err, syscall.ECANCELED) || errors.Is(err, syscall.ENOENT)
}
