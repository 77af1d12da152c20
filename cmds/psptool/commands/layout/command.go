// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"fmt"

	"github.com/linuxboot/psploader/cmds/psptool/commands"
	amdlayout "github.com/linuxboot/psploader/pkg/amd/layout"
	"github.com/linuxboot/psploader/pkg/amd/view"
)

var _ commands.Command = (*Command)(nil)

type Command struct {
	commands.Input
}

// ShortDescription explains what this command does in one line
func (cmd *Command) ShortDescription() string {
	return "prints the memory layout of a bootloader or ABL binary"
}

// LongDescription explains what this verb does (without limitation in amount of lines)
func (cmd *Command) LongDescription() string {
	return "Loads the binary and prints the header region, the code region and the entry point."
}

// Execute is the main function here. It is responsible to
// start the execution of the command.
//
// `args` are the arguments left unused by verb itself and options.
func (cmd *Command) Execute(args []string) error {
	if err := commands.CheckNoArgs(args); err != nil {
		return err
	}

	v, _, err := cmd.Input.View(view.Options{})
	if err != nil {
		return err
	}
	var rec amdlayout.Recorder
	if err := v.Load(&rec); err != nil {
		return err
	}
	fmt.Printf("%s\n", v.Plan().Table().Render())
	fmt.Printf("%s at 0x%x\n", rec.Entry.Signature(), rec.Entry.Address)
	return nil
}
