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

// Command repltest drives an interactive terminal program through a
// transcript and verifies the rendered screen matches it at every prompt
// and at exit, per spec.md section 6.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"repltest/internal/driver"
	"repltest/internal/durationx"
	"repltest/internal/ptyproc"
	"repltest/internal/rterrors"
	"repltest/internal/seccompfilter"
	"repltest/internal/transcript"
	"repltest/internal/vt"
)

const usageDriverSyscall = "syscall"
const usageDriverScrape = "scrape"

func main() {
	// A process re-exec'd as the seccomp bootstrap never reaches flag
	// parsing -- it installs the filter, hands off the notify fd, and
	// execve's into the real entrypoint (internal/seccompfilter).
	if seccompfilter.IsBootstrapInvocation(os.Args[1:]) {
		if err := seccompfilter.RunBootstrap(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		return
	}

	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	flags := pflag.NewFlagSet("repltest", pflag.ContinueOnError)

	var entrypoint string
	var checkExitCode bool
	var timeout time.Duration
	var termAfter time.Duration
	var killAfter time.Duration
	var driverKind string
	var verbosity int
	var termAfterPresent, killAfterPresent bool

	flags.StringVar(&entrypoint, "entrypoint", "", "command line to run under the PTY")
	flags.Bool("check-exit-code", true, "fail if the child exits nonzero")
	flags.Bool("no-check-exit-code", false, "ignore the child's exit code")
	flags.Var(&durationx.Value{D: &timeout, Present: false}, "timeout", "DUR wall-clock timeout for the whole drive")
	flags.Var(&durationx.Value{D: &termAfter, Present: false}, "cleanup-term-after", "DUR to wait before SIGTERM on shutdown")
	flags.Var(&durationx.Value{D: &killAfter, Present: false}, "cleanup-kill-after", "DUR to wait after SIGTERM before SIGKILL")
	flags.StringVar(&driverKind, "driver", usageDriverSyscall, "driving strategy: \"syscall\" or \"scrape\"")
	flags.CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")

	if err := flags.Parse(argv); err != nil {
		return 2
	}

	termAfterPresent = flags.Changed("cleanup-term-after")
	killAfterPresent = flags.Changed("cleanup-kill-after")

	checkExitCode = true
	if flags.Changed("no-check-exit-code") {
		noCheck, _ := flags.GetBool("no-check-exit-code")
		checkExitCode = !noCheck
	} else if flags.Changed("check-exit-code") {
		checkExitCode, _ = flags.GetBool("check-exit-code")
	}

	configureLogging(verbosity)

	if entrypoint == "" || flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: repltest [--verbose ...] --entrypoint CMD "+
			"[--check-exit-code|--no-check-exit-code] [--timeout DUR] "+
			"[--cleanup-term-after DUR] [--cleanup-kill-after DUR] TRANSCRIPT")
		return 2
	}
	transcriptPath := flags.Arg(0)

	if driverKind != usageDriverSyscall && driverKind != usageDriverScrape {
		fmt.Fprintf(os.Stderr, "repltest: unknown --driver %q\n", driverKind)
		return 2
	}

	raw, err := os.ReadFile(transcriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "repltest: %v\n", err)
		return 2
	}
	tr := transcript.Parse(string(raw))
	if !tr.Valid() {
		fmt.Fprintf(os.Stderr, "repltest: transcript %s has fewer than %d lines\n", transcriptPath, transcript.MinHeight)
		return 2
	}

	if timeout == 0 {
		timeout = 30 * time.Second
	}
	var termAfterPtr, killAfterPtr *time.Duration
	if termAfterPresent {
		termAfterPtr = &termAfter
	}
	if killAfterPresent {
		killAfterPtr = &killAfter
	}

	argvSplit := strings.Fields(entrypoint)
	if len(argvSplit) == 0 {
		fmt.Fprintln(os.Stderr, "repltest: empty --entrypoint")
		return 2
	}

	issues, code, screen := drive(argvSplit, tr, driverKind, timeout, termAfterPtr, killAfterPtr, checkExitCode)
	if len(issues) == 0 {
		fmt.Println("Success!")
		return 0
	}
	for _, issue := range issues {
		fmt.Printf("Error: %s\n", issue)
	}
	fmt.Println("Final state of screen:")
	fmt.Print(transcript.Render(tr, screen, nil, transcript.FullScreen))
	return code
}

// drive runs one child under the chosen strategy, verifying against tr at
// every prompt (UntilCursor) and once more at exit (FullScreen), returning
// the CLI's "issues" list, the exit code to use if any were found, and the
// screen as last rendered (for the "Final state of screen" dump).
func drive(argv []string, tr *transcript.Transcript, driverKind string, timeout time.Duration,
	termAfter, killAfter *time.Duration, checkExitCode bool) (issues []string, code int, screen *vt.Screen) {

	screen = vt.NewGrowing(80, 24)

	input := func(s *vt.Screen) ([]byte, bool, error) {
		ok, diff := transcript.Verify(tr, s, transcript.UntilCursor)
		if !ok {
			return nil, false, &rterrors.MismatchError{Diff: diff}
		}
		line, more := transcript.NextLine(tr, s)
		return line, more, nil
	}

	var driveErr error
	var child *ptyproc.Child

	switch driverKind {
	case usageDriverScrape:
		c, err := ptyproc.Spawn(argv, nil)
		if err != nil {
			return []string{err.Error()}, 1, screen
		}
		child = c
		logrus.Debugf("spawned pid %d under screen-scraping driver", child.Pid())
		driveErr = driver.DriveScreenScrape(child, screen, timeout, input)

	default:
		c, notifyFd, err := ptyproc.SpawnInstrumented(argv, nil)
		if err != nil {
			return []string{err.Error()}, 1, screen
		}
		child = c
		logrus.Debugf("spawned pid %d under syscall-aware driver", child.Pid())
		flt := seccompfilter.AttachNotifyFd(notifyFd)
		defer flt.Close()
		driveErr = driver.DriveSyscallAware(child, flt, screen, timeout, input)
	}

	exitCode, shutdownErr := child.GracefulShutdown(termAfter, killAfter)
	if shutdownErr != nil {
		issues = append(issues, shutdownErr.Error())
	}

	switch e := driveErr.(type) {
	case nil:
		// fall through to exit code check below
	case *rterrors.MismatchError:
		issues = append(issues, e.Error())
	default:
		issues = append(issues, driveErr.Error())
	}

	if checkExitCode && exitCode != 0 && driveErr == nil {
		issues = append(issues, (&rterrors.ProcessFailureError{Argv: argv, Code: exitCode}).Error())
	}

	if driveErr == nil && len(issues) == 0 {
		if ok, diff := transcript.Verify(tr, screen, transcript.FullScreen); !ok {
			issues = append(issues, (&rterrors.MismatchError{Diff: diff}).Error())
		}
	}

	if len(issues) == 0 {
		return nil, 0, screen
	}
	return issues, 1, screen
}

// configureLogging maps repeated -v flags to logrus levels, mirroring the
// Python prototype's "log_level -= 10 * verbose" (warn -> info -> debug).
func configureLogging(verbosity int) {
	level := logrus.WarnLevel
	switch {
	case verbosity >= 2:
		level = logrus.DebugLevel
	case verbosity == 1:
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
