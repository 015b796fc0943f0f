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

package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"repltest/internal/rterrors"
)

func assertPanicsProtocol(t *testing.T, f func()) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		_, ok := r.(*rterrors.ProtocolError)
		assert.True(t, ok, "expected *rterrors.ProtocolError, got %T", r)
	}()
	f()
}

func TestValidateInputAcceptsNewlineTerminated(t *testing.T) {
	special := map[byte]bool{3: true} // Ctrl-C
	assert.NotPanics(t, func() {
		validateInput([]byte("hello\n"), special)
	})
}

func TestValidateInputAcceptsLoneSpecialByte(t *testing.T) {
	special := map[byte]bool{4: true} // Ctrl-D
	assert.NotPanics(t, func() {
		validateInput([]byte{4}, special)
	})
}

func TestValidateInputRejectsMixedSpecial(t *testing.T) {
	special := map[byte]bool{4: true}
	assertPanicsProtocol(t, func() {
		validateInput([]byte{'a', 4}, special)
	})
}

func TestValidateInputRejectsMissingNewline(t *testing.T) {
	special := map[byte]bool{}
	assertPanicsProtocol(t, func() {
		validateInput([]byte("no newline"), special)
	})
}

func TestEndsInCRLF(t *testing.T) {
	assert.True(t, endsInCRLF([]byte("foo\r\n")))
	assert.False(t, endsInCRLF([]byte("foo\r\nbar")))
}

func TestContainsCRLF(t *testing.T) {
	assert.True(t, containsCRLF([]byte("foo\r\nbar")))
	assert.False(t, containsCRLF([]byte("foo bar")))
}
