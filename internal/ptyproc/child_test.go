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

package ptyproc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnAndReapExitCode(t *testing.T) {
	child, err := Spawn([]string{"/bin/sh", "-c", "exit 7"}, nil)
	require.NoError(t, err)

	sig := NewSignalChannel()
	defer sig.Close()

	select {
	case <-sig.C():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for SIGCHLD")
	}

	reaped, err := child.TryReap()
	require.NoError(t, err)
	require.True(t, reaped)
	assert.Equal(t, 7, child.ExitCode())

	reapedAgain, err := child.TryReap()
	require.NoError(t, err)
	assert.True(t, reapedAgain)
	assert.Equal(t, 7, child.ExitCode())
}

func TestGracefulShutdownAlreadyExitedIsIdempotent(t *testing.T) {
	child, err := Spawn([]string{"/bin/sh", "-c", "exit 0"}, nil)
	require.NoError(t, err)

	sig := NewSignalChannel()
	defer sig.Close()
	<-sig.C()

	reaped, err := child.TryReap()
	require.NoError(t, err)
	require.True(t, reaped)

	termAfter := 10 * time.Millisecond
	code, err := child.GracefulShutdown(&termAfter, &termAfter)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestGracefulShutdownEscalatesToKill(t *testing.T) {
	child, err := Spawn([]string{"/bin/sh", "-c", "trap '' TERM; sleep 30"}, nil)
	require.NoError(t, err)

	termAfter := 20 * time.Millisecond
	killAfter := 200 * time.Millisecond
	code, err := child.GracefulShutdown(&termAfter, &killAfter)
	require.NoError(t, err)
	assert.True(t, code >= 128)
}
