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

// Package ptyproc implements section 4.A: fork a child under a fresh
// pseudoterminal, plumb SIGCHLD to a readable channel, and reap it exactly
// once, with graceful TERM/KILL escalation on shutdown.
package ptyproc

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"

	"repltest/internal/seccompfilter"
)

// Child is a process forked under a PTY the driver owns the manager end
// of. Per section 3: exit_code is unset until the sole SIGCHLD for this
// pid is processed, then final and immutable.
type Child struct {
	cmd *exec.Cmd
	ptm *os.File
	pid int

	mu       sync.Mutex
	exited   bool
	exitCode int

	waitOnce sync.Once
	waitDone chan syscall.WaitStatus
}

// Spawn forks argv under a new PTY. env == nil inherits the parent's
// environment, per section 4.A's spawn contract.
func Spawn(argv []string, env []string) (*Child, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("ptyproc: empty argv")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if env != nil {
		cmd.Env = env
	}
	ptm, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("ptyproc: start: %w", err)
	}
	return &Child{cmd: cmd, ptm: ptm, pid: cmd.Process.Pid}, nil
}

// SpawnInstrumented forks argv the same way as Spawn, but under the
// seccomp re-exec bootstrap (section 4.B/4.C's PER-COMPONENT ADDITIONS),
// returning the notify fd the parent should register with a Filter.
func SpawnInstrumented(argv []string, env []string) (child *Child, notifyFd int, err error) {
	bootstrapArgv, parentSock, childSock, err := seccompfilter.PrepareReexec(argv)
	if err != nil {
		return nil, 0, err
	}
	defer childSock.Close()

	cmd := exec.Command(bootstrapArgv[0], bootstrapArgv[1:]...)
	if env != nil {
		cmd.Env = env
	}
	cmd.ExtraFiles = []*os.File{childSock}

	ptm, err := pty.Start(cmd)
	if err != nil {
		parentSock.Close()
		return nil, 0, fmt.Errorf("ptyproc: start instrumented: %w", err)
	}

	fd, err := seccompfilter.RecvNotifyFd(int(parentSock.Fd()))
	parentSock.Close()
	if err != nil {
		cmd.Process.Kill()
		return nil, 0, fmt.Errorf("ptyproc: receive notify fd: %w", err)
	}

	return &Child{cmd: cmd, ptm: ptm, pid: cmd.Process.Pid}, fd, nil
}

// Pid returns the child's process id.
func (c *Child) Pid() int { return c.pid }

// Read reads from the manager fd.
func (c *Child) Read(p []byte) (int, error) { return c.ptm.Read(p) }

// Write writes to the manager fd.
func (c *Child) Write(p []byte) (int, error) { return c.ptm.Write(p) }

// SubsidiaryPath derives the /dev/pts/<n> path for this PTY pair's
// subsidiary side, via TIOCGPTN on the manager fd. pty.Start doesn't keep
// the subsidiary file open in the parent, so the drain procedure (section
// 4.E) needs to reopen it by path to write its NUL-byte sentinel.
func (c *Child) SubsidiaryPath() (string, error) {
	n, err := unix.IoctlGetInt(int(c.ptm.Fd()), unix.TIOCGPTN)
	if err != nil {
		return "", fmt.Errorf("ptyproc: tiocgptn: %w", err)
	}
	return fmt.Sprintf("/dev/pts/%d", n), nil
}

// Termios returns the subsidiary side's terminal attributes, for reading
// the c_cc special-character table (section 4.E's input injection rules).
func (c *Child) Termios() (*unix.Termios, error) {
	path, err := c.SubsidiaryPath()
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("ptyproc: open subsidiary: %w", err)
	}
	defer f.Close()
	return unix.IoctlGetTermios(int(f.Fd()), unix.TCGETS)
}

// Signal delivers sig to the child.
func (c *Child) Signal(sig syscall.Signal) error {
	return c.cmd.Process.Signal(sig)
}

// Exited reports whether the child's exit has already been recorded.
func (c *Child) Exited() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exited
}

// ExitCode returns the recorded exit code. Only valid once Exited is true.
func (c *Child) ExitCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitCode
}

// TryReap performs a non-blocking wait for this child's pid, per section
// 4.A: "On each wake, perform a non-blocking wait... If it exited, record
// the exit code exactly once; further reap attempts must not occur."
// Returns true iff the child was (already, or just now) reaped.
func (c *Child) TryReap() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exited {
		return true, nil
	}
	var status syscall.WaitStatus
	wpid, err := syscall.Wait4(c.pid, &status, syscall.WNOHANG, nil)
	if err != nil {
		return false, fmt.Errorf("ptyproc: wait4: %w", err)
	}
	if wpid == 0 {
		return false, nil
	}
	c.exited = true
	c.exitCode = exitCodeFromStatus(status)
	return true, nil
}

// GracefulShutdown implements section 4.A's three-phase escalation:
// wait termAfter for natural exit, SIGTERM + wait killAfter, then SIGKILL
// and wait unbounded. A nil duration waits forever before escalating.
// Idempotent against a child that already exited.
func (c *Child) GracefulShutdown(termAfter, killAfter *time.Duration) (int, error) {
	if reaped, code := c.waitUpTo(termAfter); reaped {
		return code, nil
	}

	if err := c.Signal(syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		return 0, fmt.Errorf("ptyproc: sigterm: %w", err)
	}
	if reaped, code := c.waitUpTo(killAfter); reaped {
		return code, nil
	}

	if err := c.Signal(syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		return 0, fmt.Errorf("ptyproc: sigkill: %w", err)
	}
	_, code := c.waitUpTo(nil)
	return code, nil
}

// waitUpTo blocks for the child's exit, bounded by d (nil = unbounded),
// recording the exit code exactly once if it observes one. One blocking
// wait is shared by all calls, so a call that timed out leaves no extra
// waiter behind to reap the child unseen.
func (c *Child) waitUpTo(d *time.Duration) (reaped bool, code int) {
	if c.Exited() {
		return true, c.ExitCode()
	}

	c.waitOnce.Do(func() {
		c.waitDone = make(chan syscall.WaitStatus, 1)
		go func() {
			var status syscall.WaitStatus
			if _, err := syscall.Wait4(c.pid, &status, 0, nil); err == nil {
				c.waitDone <- status
			}
		}()
	})
	done := c.waitDone

	if d == nil {
		status := <-done
		return true, c.recordExit(status)
	}
	select {
	case status := <-done:
		return true, c.recordExit(status)
	case <-time.After(*d):
		return false, 0
	}
}

func (c *Child) recordExit(status syscall.WaitStatus) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.exited {
		c.exited = true
		c.exitCode = exitCodeFromStatus(status)
	}
	return c.exitCode
}

func exitCodeFromStatus(status syscall.WaitStatus) int {
	switch {
	case status.Exited():
		return status.ExitStatus()
	case status.Signaled():
		return 128 + int(status.Signal())
	default:
		return -1
	}
}
