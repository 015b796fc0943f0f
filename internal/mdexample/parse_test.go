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

package mdexample

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = "# example\n\n" +
	"```text test-file=greeting.txt\n" +
	"hello\n" +
	"```\n\n" +
	"```text test-entrypoint=\"sh\"\n" +
	"$ echo hiya\n" +
	"hiya\n" +
	"```\n"

func TestParseExtractsFilesAndCases(t *testing.T) {
	ex := Parse(sampleDoc)
	require.Len(t, ex.Files, 1)
	assert.Equal(t, "greeting.txt", ex.Files[0].Name)
	assert.Equal(t, "hello", ex.Files[0].Content)

	require.Len(t, ex.Cases, 1)
	assert.Equal(t, "sh", ex.Cases[0].Entrypoint)
	assert.Equal(t, "$ echo hiya\nhiya", ex.Cases[0].Transcript)
}

func TestStageWritesFiles(t *testing.T) {
	ex := Parse(sampleDoc)
	dir := t.TempDir()
	require.NoError(t, ex.Stage(dir))

	data, err := os.ReadFile(filepath.Join(dir, "greeting.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
