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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"repltest/internal/mdexample"
)

const exampleDoc = "```text test-file=greeting.txt\n" +
	"hello\n" +
	"```\n\n" +
	"```text test-entrypoint=\"sh\"\n" +
	"$ cat greeting.txt\n" +
	"hello\n" +
	"$ exit\n" +
	"exit\n" +
	"```\n"

// Exercises the staging step runCase performs (Parse, then Stage into a
// real temp directory) and checks the staged file lands where the case
// expects it to. runCase itself is not called, since it runs a built
// repltest binary.
func TestRunCaseStagesFiles(t *testing.T) {
	ex := mdexample.Parse(exampleDoc)
	require.Len(t, ex.Files, 1)
	require.Len(t, ex.Cases, 1)

	dir := t.TempDir()
	require.NoError(t, ex.Stage(dir))

	data, err := os.ReadFile(filepath.Join(dir, "greeting.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}
