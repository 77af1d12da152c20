// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linuxboot/psploader/cmds/psptool/commands"
	"github.com/linuxboot/psploader/pkg/amd/psp"
)

func writeBinary(t *testing.T, entryType psp.EntryType, words ...uint32) commands.Input {
	h := psp.Header{Magic: psp.MagicGeneric, EntryType: entryType}
	code := make([]byte, 4*len(words))
	for idx, w := range words {
		binary.LittleEndian.PutUint32(code[4*idx:], w)
	}
	path := filepath.Join(t.TempDir(), "psp.bin")
	require.NoError(t, os.WriteFile(path, append(h.Bytes(), code...), 0644))
	return commands.Input{Path: path}
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	f, err := os.CreateTemp(t.TempDir(), "stdout")
	require.NoError(t, err)
	defer f.Close()

	stdout := os.Stdout
	os.Stdout = f
	err = fn()
	os.Stdout = stdout

	out, readErr := os.ReadFile(f.Name())
	require.NoError(t, readErr)
	return string(out), err
}

func TestExecute(t *testing.T) {
	// bl .+8; bx lr; svc #5; bx lr
	in := writeBinary(t, psp.EntryTypeABL0+1, 0xeb000000, 0xe12fff1e, 0xef000005, 0xe12fff1e)
	cmd := &Command{Input: in}
	out, err := captureStdout(t, func() error { return cmd.Execute(nil) })
	require.NoError(t, err)

	require.Contains(t, out, "00016300 <_start>:\n")
	require.Contains(t, out, "  00016300:  bl sub_16308\n")
	require.Contains(t, out, "00016308 <sub_16308>:\n")
	require.Contains(t, out, "  00016308:  svc #0x5\n")
	require.NotContains(t, out, "> ")
}

func TestExecuteBootloader(t *testing.T) {
	in := writeBinary(t, psp.EntryTypeBootLoader, 0xe12fff1e)
	cmd := &Command{Input: in}
	out, err := captureStdout(t, func() error { return cmd.Execute(nil) })
	require.NoError(t, err)
	require.Contains(t, out, "00000100 <_start>:\n")
	require.Contains(t, out, "  00000100:  bx lr\n")
}

func TestExecuteUnsupported(t *testing.T) {
	in := writeBinary(t, psp.EntryTypeBootTimeTrustlets, 0xe12fff1e)
	cmd := &Command{Input: in}
	require.Error(t, cmd.Execute(nil))
	require.Error(t, (&Command{Input: in}).Execute([]string{"extra"}))
}
