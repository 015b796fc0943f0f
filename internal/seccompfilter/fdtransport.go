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

	"golang.org/x/sys/unix"
)

// notifyFdPayload is the literal payload section 4.B / 6 specifies: "the
// child sends the literal payload notify_fd carrying exactly one ancillary
// fd". Anything else received is a protocol error.
const notifyFdPayload = "notify_fd"

// SendNotifyFd ships fd to the other end of sockFd as ancillary data, the
// one-shot handoff from section 9's "Cyclic lifecycles" note.
func SendNotifyFd(sockFd, fd int) error {
	rights := unix.UnixRights(fd)
	return unix.Sendmsg(sockFd, []byte(notifyFdPayload), rights, nil, 0)
}

// RecvNotifyFd reads the handoff message sent by SendNotifyFd and returns
// the ancillary fd it carried.
func RecvNotifyFd(sockFd int) (int, error) {
	buf := make([]byte, len(notifyFdPayload))
	oob := make([]byte, unix.CmsgSpace(4))

	n, oobn, _, _, err := unix.Recvmsg(sockFd, buf, oob, 0)
	if err != nil {
		return 0, fmt.Errorf("recv notify fd: %w", err)
	}
	if string(buf[:n]) != notifyFdPayload {
		return 0, fmt.Errorf("recv notify fd: unexpected payload %q", buf[:n])
	}

	msgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return 0, fmt.Errorf("recv notify fd: parse control message: %w", err)
	}
	if len(msgs) != 1 {
		return 0, fmt.Errorf("recv notify fd: expected 1 control message, got %d", len(msgs))
	}

	fds, err := unix.ParseUnixRights(&msgs[0])
	if err != nil {
		return 0, fmt.Errorf("recv notify fd: parse rights: %w", err)
	}
	if len(fds) != 1 {
		return 0, fmt.Errorf("recv notify fd: expected 1 fd, got %d", len(fds))
	}
	return fds[0], nil
}
