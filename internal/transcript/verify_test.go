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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repltest/internal/vt"
)

func TestParseDimensions(t *testing.T) {
	tr := Parse("$ echo hiya\nhiya\n")
	require.True(t, tr.Valid())
	assert.Equal(t, 2, tr.Height())
	assert.Equal(t, len("$ echo hiya"), tr.Width())
}

func TestCharAtPastEndIsNotOk(t *testing.T) {
	tr := Parse("ab\n")
	ch, ok := tr.CharAt(0, 0)
	assert.True(t, ok)
	assert.Equal(t, 'a', ch)

	_, ok = tr.CharAt(5, 0)
	assert.False(t, ok)
}

func TestCheckUntilCursorExactMatch(t *testing.T) {
	tr := Parse("hi")
	screen := vt.New(10, 1)
	screen.Feed([]byte("hi"))

	assert.Empty(t, Check(tr, screen, UntilCursor))
}

func TestCheckDetectsMismatch(t *testing.T) {
	tr := Parse("hi")
	screen := vt.New(10, 1)
	screen.Feed([]byte("ho"))

	ok, diff := Verify(tr, screen, UntilCursor)
	assert.False(t, ok)
	assert.Contains(t, diff, "Expected")
	assert.Contains(t, diff, "Actual")
}

func TestNextLineEndsSessionPastTranscript(t *testing.T) {
	tr := Parse("$ ")
	screen := vt.New(10, 1)
	screen.Feed([]byte("$ "))

	line, more := NextLine(tr, screen)
	assert.False(t, more)
	assert.Nil(t, line)
}

func TestNextLineStripsTrailingWhitespace(t *testing.T) {
	tr := Parse("$ echo hi   \nhi\n")
	screen := vt.New(20, 2)
	screen.Feed([]byte("$ "))

	line, more := NextLine(tr, screen)
	require.True(t, more)
	assert.Equal(t, "echo hi\n", string(line))
}
