// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// psptool loads AMD-SP/PSP binaries the way a disassembler host would:
// it classifies them, maps them at their SRAM load address and annotates
// the syscalls of ABL stages.
//
// Synopsis:
//
//	psptool info -f PSP_FILE [--format text|json]
//	psptool layout -f PSP_FILE [--abl0-base ADDR] [--abln-base ADDR]
//	psptool disasm -f PSP_FILE
//	psptool annotate -f PSP_FILE --db SYSCALLS_JSON [--format text|json]
//	psptool export-elf -f PSP_FILE -o ELF_FILE
//	psptool extract -f PSP_FILE -o OUT_FILE
//
// An example:
//
//	psptool info -f AblStage1.bin
//	psptool annotate -f AblStage1.bin.xz --db syscalls.json
//	psptool export-elf -f AblStage1.bin -o abl1.elf && readelf -s abl1.elf
//
// Description:
//
//	info:       Print the header and the classification
//	layout:     Print the memory layout a host would create
//	disasm:     Print an ARM listing of the code region
//	annotate:   Print the listing with the syscalls commented
//	export-elf: Convert the binary into an ELF32 ARM executable
//	extract:    Write the (decompressed) body of the binary
//
// The log level is taken from --log-level or $PSPLOADER_LOG_LEVEL.
package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/linuxboot/psploader/cmds/psptool/commands"
	"github.com/linuxboot/psploader/cmds/psptool/commands/annotate"
	"github.com/linuxboot/psploader/cmds/psptool/commands/disasm"
	"github.com/linuxboot/psploader/cmds/psptool/commands/exportelf"
	"github.com/linuxboot/psploader/cmds/psptool/commands/extract"
	"github.com/linuxboot/psploader/cmds/psptool/commands/info"
	"github.com/linuxboot/psploader/cmds/psptool/commands/layout"
	"github.com/linuxboot/psploader/pkg/log"
)

var (
	knownCommands = map[string]commands.Command{
		"info":       &info.Command{},
		"layout":     &layout.Command{},
		"disasm":     &disasm.Command{},
		"annotate":   &annotate.Command{},
		"export-elf": &exportelf.Command{},
		"extract":    &extract.Command{},
	}
)

type globalOptions struct {
	LogLevel string `long:"log-level" description:"log level [debug, info, warn, error]"`
}

func main() {
	var opts globalOptions
	flagsParser := flags.NewParser(&opts, flags.Default)
	if err := commands.Register(flagsParser, knownCommands); err != nil {
		panic(err)
	}

	flagsParser.CommandHandler = func(command flags.Commander, args []string) error {
		level, err := log.ParseLevel(opts.LogLevel)
		if err != nil {
			return commands.ErrArgs{Err: err}
		}
		log.DefaultLogger = log.NewCharmLogger(os.Stderr, level, "psptool")
		if command == nil {
			return nil
		}
		return command.Execute(args)
	}

	// parse arguments and execute the appropriate command
	if _, err := flagsParser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.Fatalf("%v", err)
	}
}
