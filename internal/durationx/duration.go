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

// Package durationx parses the DUR grammar used by the repltest CLI:
// a decimal count followed by a unit suffix (us|ms|s|m|h|d|w). This is a
// thin, out-of-scope collaborator per spec.md section 6 -- no example repo
// in the retrieval pack ships a timedelta-style parser, so this is a small
// hand-rolled stdlib-only implementation.
package durationx

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var durPattern = regexp.MustCompile(`^(?P<value>.*?)(?P<unit>[a-zA-Z]*)$`)

var unitScale = map[string]time.Duration{
	"us": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  24 * time.Hour,
	"w":  7 * 24 * time.Hour,
}

// Parse converts a DUR string (e.g. "100ms", "5s", "2w") into a time.Duration.
func Parse(s string) (time.Duration, error) {
	match := durPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("%q is not a valid duration", s)
	}
	valueStr, unitSuffix := match[1], match[2]

	count, countErr := strconv.ParseFloat(valueStr, 64)
	scale, unitOk := unitScale[unitSuffix]

	if countErr != nil || !unitOk {
		var reasons []string
		if countErr != nil {
			reasons = append(reasons, fmt.Sprintf("bad count: %q", valueStr))
		}
		if !unitOk {
			reasons = append(reasons, fmt.Sprintf("bad unit: %q", unitSuffix))
		}
		return 0, fmt.Errorf("%q is not a valid duration: %s", s, joinReasons(reasons))
	}

	return time.Duration(count * float64(scale)), nil
}

func joinReasons(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += ", "
		}
		out += r
	}
	return out
}

// Value implements pflag.Value so *time.Duration-shaped flags can use the
// DUR grammar directly instead of Go's native duration syntax.
type Value struct {
	D       *time.Duration
	Present bool
}

func (v *Value) String() string {
	if v.D == nil || !v.Present {
		return ""
	}
	return v.D.String()
}

func (v *Value) Set(s string) error {
	d, err := Parse(s)
	if err != nil {
		return err
	}
	*v.D = d
	v.Present = true
	return nil
}

func (v *Value) Type() string {
	return "duration"
}
