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

// Package shellquote renders an argv slice the way Python's shlex.join
// does, for error messages that echo the entrypoint back to the user
// (see ProcessFailureError). No example repo in the retrieval pack ships
// a shell-quoting library, so this is a small stdlib-only implementation.
package shellquote

import "strings"

var safeChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_@%+=:,-./"

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if !strings.ContainsRune(safeChars, r) {
			return true
		}
	}
	return false
}

func quoteOne(s string) string {
	if !needsQuote(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// Join quotes each argument as needed and joins them with spaces.
func Join(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = quoteOne(a)
	}
	return strings.Join(quoted, " ")
}
