// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exportelf

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/linuxboot/psploader/cmds/psptool/commands"
	"github.com/linuxboot/psploader/pkg/amd/view"
	"github.com/linuxboot/psploader/pkg/elfexport"
	"github.com/linuxboot/psploader/pkg/log"
)

var _ commands.Command = (*Command)(nil)

type Command struct {
	commands.Input
	Output string `short:"o" long:"output" description:"path of the ELF file to write" required:"true"`
}

// ShortDescription explains what this command does in one line
func (cmd *Command) ShortDescription() string {
	return "converts a bootloader or ABL binary into an ELF32 ARM executable"
}

// LongDescription explains what this verb does (without limitation in amount of lines)
func (cmd *Command) LongDescription() string {
	return "The header and the code are mapped at their load address, " +
		"_start, psp_file_header and the discovered functions are exported as symbols."
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

	w := elfexport.NewWriter(data)
	if err := v.Load(w); err != nil {
		return err
	}
	funcs := commands.Sweep(v, data)
	if _, err := v.OnAnalysisComplete(funcs, w, nil); err != nil {
		return err
	}
	w.DeclareFunctions(funcs)

	b, err := w.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(cmd.Output, b, 0644); err != nil {
		return fmt.Errorf("unable to write '%s': %w", cmd.Output, err)
	}
	log.Infof("wrote %s (%s, %d functions)", cmd.Output, humanize.IBytes(uint64(len(b))), len(funcs))
	return nil
}
