// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package annotate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/linuxboot/psploader/cmds/psptool/commands"
	"github.com/linuxboot/psploader/pkg/amd/layout"
	"github.com/linuxboot/psploader/pkg/amd/svc"
	"github.com/linuxboot/psploader/pkg/amd/view"
)

var _ commands.Command = (*Command)(nil)

type Command struct {
	commands.Input
	commands.FormatOption
	DatabasePath string `long:"db" description:"path to the JSON syscall database" required:"true"`
}

// ShortDescription explains what this command does in one line
func (cmd *Command) ShortDescription() string {
	return "annotates the syscalls of an ABL binary"
}

// LongDescription explains what this verb does (without limitation in amount of lines)
func (cmd *Command) LongDescription() string {
	return `Disassembles the code region and marks every "svc" instruction. Syscalls
found in the database are commented with their signature; unknown syscall
numbers in the range (0, 255) are reported as warnings.

The database maps decimal syscall numbers to records:
    {"5": {"name": "SvcFoo", "args": [{"type": "int", "name": "a"}]}}

The text output is a listing, the JSON output holds the decisions and warnings.`
}

// Execute is the main function here. It is responsible to
// start the execution of the command.
//
// `args` are the arguments left unused by verb itself and options.
func (cmd *Command) Execute(args []string) error {
	if err := commands.CheckNoArgs(args); err != nil {
		return err
	}
	format, err := cmd.FormatOption.Get()
	if err != nil {
		return err
	}

	db, err := svc.LoadDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}

	v, data, err := cmd.Input.View(view.Options{Annotate: true, Database: db})
	if err != nil {
		return err
	}
	if v.Type() != view.TypeABL {
		return fmt.Errorf("'%s' is a %s binary, syscalls are only annotated in ABL stages", cmd.Input.Path, v.Classification())
	}
	if err := v.Load(&layout.Recorder{}); err != nil {
		return err
	}

	funcs := commands.Sweep(v, data)
	result, err := v.OnAnalysisComplete(funcs, nil, nil)
	if err != nil {
		return err
	}

	switch format {
	case commands.FormatText:
		return svc.WriteListing(os.Stdout, funcs, result)
	case commands.FormatJSON:
		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", b)
	}
	return nil
}
