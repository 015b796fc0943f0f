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

// Package transcript holds the expected-screen model from section 3/4.F: an
// ordered list of lines, checked against a live vt.Screen either up to the
// screen's current cursor (at each prompt) or over the full rendered screen
// (once the child has exited).
package transcript

import "strings"

// CursorMarker is the glyph painted over the actual screen's cursor cell
// when rendering a diff (section 4.F: "the cursor is overlaid as █ on the
// actual panel"). Transcript text itself carries no cursor marker -- the
// cursor comes from the live screen being checked, not from the file.
const CursorMarker = '█'

// MinHeight is the smallest a parsed transcript may be (cli.py's
// `assert len(transcript) > 1`).
const MinHeight = 2

// Transcript is a parsed expected-screen rectangle: width = max line
// length, height = line count, per section 3.
type Transcript struct {
	lines []string
	width int
}

// Parse splits transcript text into rows. Trailing whitespace within a row
// is significant up to the transcript's width; short rows are padded with
// spaces by CharAt, not by Parse.
func Parse(text string) *Transcript {
	raw := strings.Split(strings.TrimRight(text, "\n"), "\n")
	t := &Transcript{lines: raw}
	for _, line := range raw {
		if w := len([]rune(line)); w > t.width {
			t.width = w
		}
	}
	return t
}

// Height returns the number of rows in the transcript.
func (t *Transcript) Height() int { return len(t.lines) }

// Width returns the longest row's length, in runes.
func (t *Transcript) Width() int { return t.width }

// Valid reports whether the transcript meets the minimum-length invariant.
func (t *Transcript) Valid() bool { return t.Height() >= MinHeight }

// CharAt returns the expected rune at (row, col) and whether that position
// is recorded by the transcript: ok=false past end of file (row >= Height,
// per section 3's "char_at returns None past the end"); a space, ok=true
// for columns beyond a short row but within width.
func (t *Transcript) CharAt(row, col int) (ch rune, ok bool) {
	if row < 0 || row >= len(t.lines) {
		return 0, false
	}
	if col < 0 || col >= t.width {
		return 0, false
	}
	runes := []rune(t.lines[row])
	if col >= len(runes) {
		return ' ', true
	}
	return runes[col], true
}
