// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package annotate

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linuxboot/psploader/cmds/psptool/commands"
	"github.com/linuxboot/psploader/pkg/amd/psp"
)

func writeFiles(t *testing.T, entryType psp.EntryType) commands.Input {
	dir := t.TempDir()

	h := psp.Header{Magic: psp.MagicGeneric, EntryType: entryType}
	code := make([]byte, 8)
	binary.LittleEndian.PutUint32(code, 0xef000005)
	binary.LittleEndian.PutUint32(code[4:], 0xe12fff1e)
	input := filepath.Join(dir, "psp.bin")
	require.NoError(t, os.WriteFile(input, append(h.Bytes(), code...), 0644))

	db := `{"5": {"name": "SvcFoo", "args": [{"type": "int", "name": "a"}]}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "syscalls.json"), []byte(db), 0644))
	return commands.Input{Path: input}
}

func TestExecute(t *testing.T) {
	in := writeFiles(t, psp.EntryTypeABL0+2)
	for _, format := range []string{"text", "json"} {
		format := format
		cmd := &Command{
			Input:        in,
			FormatOption: commands.FormatOption{Format: &format},
			DatabasePath: filepath.Join(filepath.Dir(in.Path), "syscalls.json"),
		}
		require.NoError(t, cmd.Execute(nil), format)
	}
}

func TestExecuteBootloader(t *testing.T) {
	in := writeFiles(t, psp.EntryTypeBootLoader)
	cmd := &Command{
		Input:        in,
		DatabasePath: filepath.Join(filepath.Dir(in.Path), "syscalls.json"),
	}
	require.Error(t, cmd.Execute(nil))
}

func TestExecuteMissingDatabase(t *testing.T) {
	in := writeFiles(t, psp.EntryTypeABL0)
	cmd := &Command{
		Input:        in,
		DatabasePath: filepath.Join(filepath.Dir(in.Path), "missing.json"),
	}
	require.ErrorIs(t, cmd.Execute(nil), os.ErrNotExist)
}
