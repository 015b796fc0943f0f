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

// Package vt binds a black-box VT100 emulator (github.com/vito/midterm) to
// the Screen model in spec.md section 3: a columns x lines grid of cells
// with a cursor, fed exclusively by bytes read from a PTY. Everything
// outside this file treats *Screen as the whole of the emulator contract --
// no other package imports midterm directly, the way dcosson-h2's VT type
// keeps its *midterm.Terminal private to one file.
package vt

import "github.com/vito/midterm"

// Screen wraps a midterm terminal, optionally growing vertically the way
// transcript mode requires (section 4.D): "if index() would scroll past
// the bottom of the scroll region, the screen is resized lines += 1 first".
// midterm has no hook for that (it is a black box, per section 1), so when
// growing is enabled, Feed walks the input one byte at a time and grows the
// terminal just before a linefeed that would otherwise scroll off the
// cursor's row -- the same net effect as the Python prototype's
// GrowingScreen.index() override, without needing to subclass the emulator.
type Screen struct {
	term    *midterm.Terminal
	cols    int
	lines   int
	growing bool
}

// New creates a fixed-size screen of the given dimensions.
func New(cols, lines int) *Screen {
	return &Screen{
		term:  midterm.NewTerminal(lines, cols),
		cols:  cols,
		lines: lines,
	}
}

// NewGrowing creates a screen that grows vertically on scroll, for
// transcript-driving mode (section 4.D, 4.F).
func NewGrowing(cols, lines int) *Screen {
	s := New(cols, lines)
	s.growing = true
	return s
}

// Feed advances the emulator by the given output bytes, as read from the
// PTY's manager fd.
func (s *Screen) Feed(data []byte) {
	if !s.growing {
		_, _ = s.term.Write(data)
		return
	}
	for _, b := range data {
		if b == '\n' {
			_, y := s.cursorXY()
			if y == s.lines-1 {
				s.growBy(1)
			}
		}
		_, _ = s.term.Write([]byte{b})
	}
}

func (s *Screen) growBy(n int) {
	s.lines += n
	s.term.Resize(s.lines, s.cols)
}

func (s *Screen) cursorXY() (x, y int) {
	c := s.term.Cursor()
	return c.X, c.Y
}

// Columns returns the screen width.
func (s *Screen) Columns() int { return s.cols }

// Lines returns the current screen height (may exceed the value passed to
// New/NewGrowing if growing is enabled and the child has scrolled).
func (s *Screen) Lines() int { return s.lines }

// Cursor returns the zero-based (x, y) cursor position.
func (s *Screen) Cursor() (x, y int) { return s.cursorXY() }

// CellAt returns the visible rune at the given row/column. Positions
// outside the current grid return a space.
func (s *Screen) CellAt(y, x int) rune {
	if y < 0 || y >= s.lines || x < 0 || x >= s.cols {
		return ' '
	}
	cell := s.term.Cell(x, y)
	if cell.Rune == 0 {
		return ' '
	}
	return cell.Rune
}

// RowPrefix returns the runes in row y from column 0 up to (not including)
// column x, used by the screen-scraping driver to recover prompt text.
func (s *Screen) RowPrefix(y, x int) string {
	out := make([]rune, 0, x)
	for col := 0; col < x; col++ {
		out = append(out, s.CellAt(y, col))
	}
	return string(out)
}
