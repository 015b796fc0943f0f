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
	"fmt"
	"os"
)

// ProcMem reads a blocked process's address space via /proc/<pid>/mem.
// Callers must only use this while the target pid is known to be stopped
// inside the intercepted syscall (section 4.C: "must be performed while
// the child is blocked ... so its memory and fd table are stable").
type ProcMem struct {
	f *os.File
}

// OpenProcMem opens the memory file for reading. Close when done.
func OpenProcMem(pid int) (*ProcMem, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/mem", pid))
	if err != nil {
		return nil, err
	}
	return &ProcMem{f: f}, nil
}

// ReadAt fills buf with len(buf) bytes starting at the child's virtual
// address addr.
func (m *ProcMem) ReadAt(addr uint64, buf []byte) error {
	n, err := m.f.ReadAt(buf, int64(addr))
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("short read from child memory: got %d, want %d", n, len(buf))
	}
	return nil
}

// Close releases the underlying /proc/<pid>/mem handle.
func (m *ProcMem) Close() error { return m.f.Close() }
