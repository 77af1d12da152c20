// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"os"

	"github.com/linuxboot/psploader/cmds/psptool/commands"
	"github.com/linuxboot/psploader/pkg/amd/layout"
	"github.com/linuxboot/psploader/pkg/amd/svc"
	"github.com/linuxboot/psploader/pkg/amd/view"
)

var _ commands.Command = (*Command)(nil)

type Command struct {
	commands.Input
}

// ShortDescription explains what this command does in one line
func (cmd *Command) ShortDescription() string {
	return "prints an ARM listing of the code region"
}

// LongDescription explains what this verb does (without limitation in amount of lines)
func (cmd *Command) LongDescription() string {
	return ""
}

// Execute is the main function here. It is responsible to
// start the execution of the command.
//
// `args` are the arguments left unused by verb itself and options.
func (cmd *Command) Execute(args []string) error {
	if err := commands.CheckNoArgs(args); err != nil {
		return err
	}

	v, data, err := cmd.Input.View(view.Options{})
	if err != nil {
		return err
	}
	if err := v.Load(&layout.Recorder{}); err != nil {
		return err
	}
	return svc.WriteListing(os.Stdout, commands.Sweep(v, data), nil)
}
