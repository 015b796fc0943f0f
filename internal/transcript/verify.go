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

package transcript

import (
	"strings"

	"repltest/internal/vt"
)

// Mode selects how much of the screen Check compares.
type Mode int

const (
	// UntilCursor compares every (row, col) that sorts before the
	// screen's current cursor in row-major order -- the per-prompt check
	// from section 4.F step 1.
	UntilCursor Mode = iota
	// FullScreen compares the whole columns x lines rectangle, used once
	// the child has exited (section 4.F "Final check").
	FullScreen
)

// mismatch is one cell where the transcript and the live screen disagree.
type mismatch struct {
	row, col  int
	want, got rune
}

// Check compares a transcript against a live screen under the given mode.
func Check(t *Transcript, screen *vt.Screen, mode Mode) (mismatches []mismatch) {
	curCol, curRow := screen.Cursor()
	rows := screen.Lines()
	if mode == UntilCursor {
		rows = curRow + 1
	}

	for row := 0; row < rows; row++ {
		cols := screen.Columns()
		if mode == UntilCursor && row == curRow {
			cols = curCol
		}
		for col := 0; col < cols; col++ {
			want, ok := t.CharAt(row, col)
			if !ok {
				want = ' '
			}
			got := screen.CellAt(row, col)
			if want != got {
				mismatches = append(mismatches, mismatch{row: row, col: col, want: want, got: got})
			}
		}
	}
	return mismatches
}

// Verify runs Check and, if anything disagreed, renders a side-by-side diff.
func Verify(t *Transcript, screen *vt.Screen, mode Mode) (ok bool, diff string) {
	mismatches := Check(t, screen, mode)
	if len(mismatches) == 0 {
		return true, ""
	}
	return false, Render(t, screen, mismatches, mode)
}

// NextLine implements the per-prompt input-production rule from section
// 4.F step 2-3: read the expected remainder of the cursor's row, stop (end
// the session) once the transcript has nothing left at the cursor's
// position, otherwise strip trailing whitespace and terminate with "\n".
func NextLine(t *Transcript, screen *vt.Screen) (line []byte, more bool) {
	curCol, curRow := screen.Cursor()
	if _, ok := t.CharAt(curRow, curCol); !ok {
		return nil, false
	}

	var b strings.Builder
	for col := curCol; col < t.Width(); col++ {
		ch, ok := t.CharAt(curRow, col)
		if !ok {
			break
		}
		b.WriteRune(ch)
	}
	return []byte(strings.TrimRight(b.String(), " \t") + "\n"), true
}
