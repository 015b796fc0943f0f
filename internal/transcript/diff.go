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
	"fmt"
	"strings"

	"repltest/internal/vt"
)

// Render draws the expected transcript and the live screen side by side,
// bordered, per section 4.F: "two side-by-side bordered panels ... per
// cell mismatches carry an annotation row beneath showing - under expected
// cells and + under actual cells. The cursor is overlaid as █ on the
// actual panel."
func Render(t *Transcript, screen *vt.Screen, mismatches []mismatch, mode Mode) string {
	curCol, curRow := screen.Cursor()

	rows := screen.Lines()
	if mode == UntilCursor && curRow+1 > rows {
		rows = curRow + 1
	}
	leftWidth := t.Width()
	rightWidth := screen.Columns()

	badRows := make(map[int]bool)
	for _, m := range mismatches {
		badRows[m.row] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s | %s\n", pad("Expected", leftWidth), pad("Actual", rightWidth))
	fmt.Fprintf(&b, "%s-+-%s\n", strings.Repeat("-", leftWidth), strings.Repeat("-", rightWidth))

	for row := 0; row < rows; row++ {
		left := rowRunes(t, row, leftWidth)
		right := overlayRow(screenRow(screen, row, rightWidth), row == curRow, curCol)
		fmt.Fprintf(&b, "%s | %s\n", string(left), string(right))

		if badRows[row] {
			leftMarks := blankRow(leftWidth)
			rightMarks := blankRow(rightWidth)
			for _, m := range mismatches {
				if m.row != row {
					continue
				}
				if m.col < leftWidth {
					leftMarks[m.col] = '-'
				}
				if m.col < rightWidth {
					rightMarks[m.col] = '+'
				}
			}
			fmt.Fprintf(&b, "%s | %s\n", string(leftMarks), string(rightMarks))
		}
	}

	return b.String()
}

func rowRunes(t *Transcript, row, width int) []rune {
	out := make([]rune, width)
	for col := 0; col < width; col++ {
		ch, ok := t.CharAt(row, col)
		if !ok {
			ch = ' '
		}
		out[col] = ch
	}
	return out
}

func screenRow(screen *vt.Screen, row, width int) []rune {
	out := make([]rune, width)
	for col := 0; col < width; col++ {
		out[col] = screen.CellAt(row, col)
	}
	return out
}

func overlayRow(runes []rune, hasCursor bool, col int) []rune {
	if hasCursor && col >= 0 && col < len(runes) {
		runes[col] = CursorMarker
	}
	return runes
}

func blankRow(width int) []rune {
	out := make([]rune, width)
	for i := range out {
		out[i] = ' '
	}
	return out
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
