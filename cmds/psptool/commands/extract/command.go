// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package extract

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/linuxboot/psploader/cmds/psptool/commands"
	"github.com/linuxboot/psploader/pkg/amd/psp"
	"github.com/linuxboot/psploader/pkg/log"
)

var _ commands.Command = (*Command)(nil)

type Command struct {
	commands.Input
	Output string `short:"o" long:"output" description:"path of the file to write the body to" required:"true"`
}

// ShortDescription explains what this command does in one line
func (cmd *Command) ShortDescription() string {
	return "writes the body of a PSP binary, inflated if compressed"
}

// LongDescription explains what this verb does (without limitation in amount of lines)
func (cmd *Command) LongDescription() string {
	return "Encrypted binaries are not supported."
}

// Execute is the main function here. It is responsible to
// start the execution of the command.
//
// `args` are the arguments left unused by verb itself and options.
func (cmd *Command) Execute(args []string) error {
	if err := commands.CheckNoArgs(args); err != nil {
		return err
	}

	data, err := cmd.Input.Read()
	if err != nil {
		return err
	}
	src := psp.BytesSource(data)
	h, err := psp.ParseHeader(src, src.Len())
	if err != nil {
		return fmt.Errorf("unable to parse the PSP header: %w", err)
	}
	body, err := psp.ExtractPayload(src, h, src.Len())
	if err != nil {
		return fmt.Errorf("unable to extract the body of '%s': %w", cmd.Input.Path, err)
	}
	if err := os.WriteFile(cmd.Output, body, 0644); err != nil {
		return fmt.Errorf("unable to write '%s': %w", cmd.Output, err)
	}
	log.Infof("wrote %s (%s)", cmd.Output, humanize.IBytes(uint64(len(body))))
	return nil
}
