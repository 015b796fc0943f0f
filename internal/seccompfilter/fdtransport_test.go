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
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSendRecvNotifyFdRoundTrip(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	sender := fds[0]
	receiver := fds[1]
	defer unix.Close(sender)
	defer unix.Close(receiver)

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	require.NoError(t, SendNotifyFd(sender, int(r.Fd())))

	got, err := RecvNotifyFd(receiver)
	require.NoError(t, err)
	defer unix.Close(got)

	assert.NotEqual(t, int(r.Fd()), got)

	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	buf := make([]byte, 1)
	n, err := unix.Read(got, buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte('x'), buf[0])
}

func TestIsBootstrapInvocation(t *testing.T) {
	assert.True(t, IsBootstrapInvocation([]string{BootstrapSentinel, "bash"}))
	assert.False(t, IsBootstrapInvocation([]string{"bash"}))
	assert.False(t, IsBootstrapInvocation(nil))
}
