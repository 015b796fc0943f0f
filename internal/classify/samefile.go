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

// Package classify implements the syscall classifier from section 4.C:
// given a decoded Syscall, decide whether it expresses intent to read from
// a specific file descriptor in the parent.
package classify

import "golang.org/x/sys/unix"

// kcmpFileType is Linux's KCMP_FILE resource type, not exposed as a named
// constant by golang.org/x/sys/unix (kcmp itself isn't wrapped there
// either -- see kkpan11-kdigger's plugin, which calls it the same raw way).
const kcmpFileType = 0

// SameFile reports whether (pidA, fdA) and (pidB, fdB) refer to the same
// open file description, per section 4.C: "the same TTY may appear as
// different paths" so inode/path comparison is wrong; kcmp is the only
// correct check.
func SameFile(pidA, fdA, pidB, fdB int) (bool, error) {
	r1, _, errno := unix.Syscall6(
		unix.SYS_KCMP,
		uintptr(pidA),
		uintptr(pidB),
		uintptr(kcmpFileType),
		uintptr(fdA),
		uintptr(fdB),
		0,
	)
	if errno != 0 {
		return false, errno
	}
	return r1 == 0, nil
}
