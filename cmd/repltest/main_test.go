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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repltest/internal/transcript"
)

// writeTranscript is a small helper so each scenario reads like the spec's
// own numbered scenarios (section 8).
func writeTranscript(t *testing.T, body string) *transcript.Transcript {
	t.Helper()
	tr := transcript.Parse(body)
	require.True(t, tr.Valid())
	return tr
}

// Scenario 3: shell transcript match, screen-scraping driver.
func TestDriveShellTranscriptMatch(t *testing.T) {
	tr := writeTranscript(t, "$ echo hiya\nhiya\n$ exit\nexit\n")
	issues, code, _ := drive([]string{"sh"}, tr, usageDriverScrape, 5*time.Second, nil, nil, true)
	assert.Empty(t, issues)
	assert.Equal(t, 0, code)
}

// Scenario 4: shell transcript mismatch surfaces a rendered diff.
func TestDriveShellTranscriptMismatch(t *testing.T) {
	tr := writeTranscript(t, "$ echo hiya\nthis is wrong\n$ exit\nexit\n")
	issues, code, _ := drive([]string{"sh"}, tr, usageDriverScrape, 5*time.Second, nil, nil, true)
	require.NotEmpty(t, issues)
	assert.Equal(t, 1, code)
	assert.Contains(t, issues[0], "Found a discrepancy")
}

// Scenario 6: nonzero child exit is reported when exit-code checking is on.
func TestDriveNonzeroExit(t *testing.T) {
	tr := writeTranscript(t, "$ exit 42\nexit 42\n")
	issues, code, _ := drive([]string{"sh"}, tr, usageDriverScrape, 5*time.Second, nil, nil, true)
	require.NotEmpty(t, issues)
	assert.Equal(t, 1, code)
}
