// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package info

import (
	"encoding/json"
	"fmt"

	"github.com/linuxboot/psploader/cmds/psptool/commands"
	"github.com/linuxboot/psploader/pkg/amd/layout"
	"github.com/linuxboot/psploader/pkg/amd/psp"
	"github.com/linuxboot/psploader/pkg/log"
)

var _ commands.Command = (*Command)(nil)

type Command struct {
	commands.Input
	commands.FormatOption
}

// Info is the JSON output of the command.
type Info struct {
	Header         *psp.Header
	Classification string
	Stage          *int64       `json:",omitempty"`
	Plan           *layout.Plan `json:",omitempty"`
}

// ShortDescription explains what this command does in one line
func (cmd *Command) ShortDescription() string {
	return "prints the PSP header and the classification"
}

// LongDescription explains what this verb does (without limitation in amount of lines)
func (cmd *Command) LongDescription() string {
	return "Prints all known header fields, the classification and, for loadable binaries, the memory layout."
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

	data, err := cmd.Input.Read()
	if err != nil {
		return err
	}
	h, err := psp.ParseHeader(psp.BytesSource(data), uint64(len(data)))
	if err != nil {
		return fmt.Errorf("unable to parse the PSP header: %w", err)
	}
	c := psp.Classify(h)

	info := Info{Header: h, Classification: c.String()}
	if stage, ok := c.ABLNum(); ok {
		info.Stage = &stage
	}
	plan, err := cmd.Input.Bases().Plan(c, uint64(len(data)))
	if err != nil {
		log.Debugf("no layout: %v", err)
	} else {
		info.Plan = plan
	}

	switch format {
	case commands.FormatText:
		fmt.Printf("%s\n", h.Table().Render())
		fmt.Printf("Classification: %s\n", c)
		if info.Plan != nil {
			fmt.Printf("%s\n", info.Plan.Table().Render())
		}
	case commands.FormatJSON:
		b, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", b)
	}
	return nil
}
