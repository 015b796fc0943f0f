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

import "repltest/internal/vt"

// InputFunc is the callback component E invokes once it believes the
// child is waiting for a line of input (section 2: "F is one concrete
// user of E, providing callbacks that compare against a transcript").
// Returning more=false ends the session cleanly; a non-nil err aborts the
// drive immediately (e.g. a transcript mismatch).
type InputFunc func(screen *vt.Screen) (line []byte, more bool, err error)
