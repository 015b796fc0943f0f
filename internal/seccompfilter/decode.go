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

package seccompfilter

import (
	"fmt"

	libseccomp "github.com/seccomp/libseccomp-golang"

	"repltest/internal/classify"
	"repltest/internal/rterrors"
)

// Decode turns a raw notification into the Syscall variant the classifier
// understands (section 4.B step 2). Only the names in MonitoredSyscalls
// are recognized; anything else is a protocol error (a panic via
// rterrors.Protocol) -- the filter should never have forwarded it.
func Decode(req *libseccomp.ScmpNotifReq) (classify.Syscall, error) {
	name, err := req.Data.Syscall.GetName()
	if err != nil {
		return nil, fmt.Errorf("decode notif: %w", err)
	}
	pid := int(req.Pid)

	switch name {
	case "read":
		return classify.Read{
			Pid: pid,
			Fd:  int(req.Data.Args[0]),
		}, nil
	case "poll", "ppoll":
		return classify.Poll{
			Pid:    pid,
			FdsPtr: req.Data.Args[0],
			Nfds:   uint32(req.Data.Args[1]),
		}, nil
	case "select":
		return classify.Pselect{
			Pid:        pid,
			Nfds:       int(req.Data.Args[0]),
			ReadFdsPtr: req.Data.Args[1],
		}, nil
	case "pselect6":
		return classify.Pselect{
			Pid:        pid,
			Nfds:       int(req.Data.Args[0]),
			ReadFdsPtr: req.Data.Args[1],
		}, nil
	default:
		rterrors.Protocol("decode notif: unmonitored syscall %q", name)
		return nil, nil
	}
}
