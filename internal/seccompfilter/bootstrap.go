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

package seccompfilter

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// BootstrapSentinel is the first argument (argv[1], right after the
// executable path) the re-exec'd bootstrap process is started with, the
// way runc/lxd's nsenter re-exec recognizes itself (see
// canonical-lxd's main_forkexec.go, kornnellio-runc-Go's nsenter package).
// Pure Go's os/exec has no pre-exec hook and this repo avoids cgo, so a
// filter can't be installed "just before" an ordinary exec.Cmd's exec --
// instead the parent re-execs its own executable with this argument, and that
// fresh, single-threaded process installs the filter itself before
// exec'ing into the real target.
const BootstrapSentinel = "repltest-seccomp-bootstrap"

// bootstrapSocketFd is the fd the child-side socketpair half lands on
// after exec.Cmd.ExtraFiles places it first in line (fd 3 is the first
// slot after stdin/stdout/stderr).
const bootstrapSocketFd = 3

// IsBootstrapInvocation reports whether the current process was re-exec'd
// as the seccomp-installing bootstrap. argv is the argument list without
// the executable path (os.Args[1:]); its first element is checked against
// BootstrapSentinel.
func IsBootstrapInvocation(argv []string) bool {
	return len(argv) > 0 && argv[0] == BootstrapSentinel
}

// PrepareReexec builds the argv for a PTY-spawned bootstrap process (to be
// used as the Child's Path/Args, see internal/ptyproc) and returns the
// parent-held socketpair end to receive the notify fd from, plus the
// child-held end to attach as ExtraFiles[0].
func PrepareReexec(targetArgv []string) (bootstrapArgv []string, parentSock, childSock *os.File, err error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("seccomp bootstrap: socketpair: %w", err)
	}
	parentSock = os.NewFile(uintptr(fds[0]), "seccomp-notify-parent")
	childSock = os.NewFile(uintptr(fds[1]), "seccomp-notify-child")

	self, err := os.Executable()
	if err != nil {
		parentSock.Close()
		childSock.Close()
		return nil, nil, nil, fmt.Errorf("seccomp bootstrap: resolve self: %w", err)
	}

	bootstrapArgv = append([]string{self, BootstrapSentinel}, targetArgv...)
	return bootstrapArgv, parentSock, childSock, nil
}

// RunBootstrap is the re-exec'd process's entrypoint: install the filter,
// hand the notify fd to the parent over the inherited socketpair fd, then
// become the real target via execve. It never returns on success.
func RunBootstrap(targetArgv []string) error {
	flt, err := Install(MonitoredSyscalls)
	if err != nil {
		return fmt.Errorf("seccomp bootstrap: install filter: %w", err)
	}

	if err := SendNotifyFd(bootstrapSocketFd, flt.NotifyFd()); err != nil {
		return fmt.Errorf("seccomp bootstrap: send notify fd: %w", err)
	}
	unix.Close(bootstrapSocketFd)

	path, err := exec.LookPath(targetArgv[0])
	if err != nil {
		return fmt.Errorf("seccomp bootstrap: resolve target: %w", err)
	}

	return unix.Exec(path, targetArgv, os.Environ())
}
