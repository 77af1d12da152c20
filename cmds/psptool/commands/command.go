// Copyright 2017-2018 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"sort"

	"github.com/jessevdk/go-flags"
)

// Command is an interface of implementations of verbs
// (like "info", "annotate" etc of "psptool info"/"psptool annotate")
type Command interface {
	flags.Commander

	// ShortDescription explains what this command does in one line
	ShortDescription() string

	// LongDescription explains what this verb does (without limitation in amount of lines)
	LongDescription() string
}

// Register adds the commands to the parser, in name order.
func Register(parser *flags.Parser, commands map[string]Command) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		command := commands[name]
		if _, err := parser.AddCommand(name, command.ShortDescription(), command.LongDescription(), command); err != nil {
			return fmt.Errorf("unable to register command '%s': %w", name, err)
		}
	}
	return nil
}
