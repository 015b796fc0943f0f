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

// Command repltest-examples is the integration-test harness from section 6:
// it extracts test-file/test-entrypoint fences from Markdown documents,
// stages each example into a scratch directory, and runs the repltest
// binary against it, the way examples_test.py drives README.md and
// examples/*.md in the Python prototype.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"repltest/internal/mdexample"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	flags := pflag.NewFlagSet("repltest-examples", pflag.ContinueOnError)
	binary := flags.String("repltest-bin", "repltest", "path to the repltest binary under test")
	verbosity := flags.CountP("verbose", "v", "increase log verbosity (repeatable)")
	if err := flags.Parse(argv); err != nil {
		return 2
	}
	level := logrus.WarnLevel
	if *verbosity >= 2 {
		level = logrus.DebugLevel
	} else if *verbosity == 1 {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if flags.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: repltest-examples [--repltest-bin PATH] MARKDOWN...")
		return 2
	}

	failures := 0
	for _, path := range flags.Args() {
		n, err := runFile(*binary, path)
		failures += n
		if err != nil {
			fmt.Fprintf(os.Stderr, "repltest-examples: %s: %v\n", path, err)
			failures++
		}
	}

	if failures > 0 {
		fmt.Printf("%d example case(s) failed\n", failures)
		return 1
	}
	fmt.Println("All example cases passed.")
	return 0
}

// runFile parses one Markdown document and runs every test-entrypoint case
// it contains, returning how many of them failed.
func runFile(binary, path string) (failures int, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	ex := mdexample.Parse(string(raw))

	for i, c := range ex.Cases {
		label := fmt.Sprintf("%s#%d (%s)", path, i, c.Entrypoint)
		if err := runCase(binary, ex, c); err != nil {
			fmt.Printf("FAIL %s: %v\n", label, err)
			failures++
			continue
		}
		fmt.Printf("ok   %s\n", label)
	}
	return failures, nil
}

func runCase(binary string, ex *mdexample.Example, c mdexample.Case) error {
	tmp, err := os.MkdirTemp("", "repltest-examples-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	sessionDir := filepath.Join(tmp, "session")
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return err
	}
	if err := ex.Stage(sessionDir); err != nil {
		return err
	}

	transcriptPath := filepath.Join(tmp, "transcript.txt")
	if err := os.WriteFile(transcriptPath, []byte(c.Transcript), 0o644); err != nil {
		return err
	}

	argv := append([]string{"--entrypoint", c.Entrypoint}, transcriptPath)
	cmd := exec.Command(binary, argv...)
	cmd.Dir = sessionDir
	cmd.Env = append(os.Environ(), "PS1=$ ")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w\n%s", err, out)
	}
	logrus.Debugf("%s output:\n%s", binary, out)
	return nil
}
