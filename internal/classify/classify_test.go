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

package classify

import (
	"os"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameFileIdentical(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	pid := os.Getpid()
	same, err := SameFile(pid, int(r.Fd()), pid, int(r.Fd()))
	require.NoError(t, err)
	assert.True(t, same)
}

func TestSameFileDistinctPipes(t *testing.T) {
	r1, w1, err := os.Pipe()
	require.NoError(t, err)
	defer r1.Close()
	defer w1.Close()

	r2, w2, err := os.Pipe()
	require.NoError(t, err)
	defer r2.Close()
	defer w2.Close()

	pid := os.Getpid()
	same, err := SameFile(pid, int(r1.Fd()), pid, int(r2.Fd()))
	require.NoError(t, err)
	assert.False(t, same)
}

func TestReadIndicatesDesireToReadFd(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	pid := os.Getpid()
	s := Read{Pid: pid, Fd: int(r.Fd())}
	yes, err := s.IndicatesDesireToReadFd(pid, int(r.Fd()), nil)
	require.NoError(t, err)
	assert.True(t, yes)
}

func TestPollIndicatesDesireToReadFd(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	type pollfd struct {
		fd      int32
		events  int16
		revents int16
	}
	entries := []pollfd{{fd: int32(r.Fd()), events: 1}}

	pid := os.Getpid()
	mem, err := OpenProcMem(pid)
	require.NoError(t, err)
	defer mem.Close()

	s := Poll{
		Pid:    pid,
		FdsPtr: uint64(uintptr(unsafe.Pointer(&entries[0]))),
		Nfds:   uint32(len(entries)),
	}
	yes, err := s.IndicatesDesireToReadFd(pid, int(r.Fd()), mem)
	require.NoError(t, err)
	assert.True(t, yes)
}
