// Copyright 2018-2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// pspinfo prints the header and the classification of PSP binaries.
//
// Synopsis:
//
//	pspinfo [-j] [-l LEVEL] FILE...
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/linuxboot/psploader/pkg/amd/layout"
	"github.com/linuxboot/psploader/pkg/amd/psp"
	"github.com/linuxboot/psploader/pkg/compression"
	"github.com/linuxboot/psploader/pkg/log"
)

var (
	jsonOutput = flag.BoolP("json", "j", false, "print JSON instead of tables")
	logLevel   = flag.StringP("log-level", "l", "", "log level [debug, info, warn, error]")
)

type fileInfo struct {
	Path           string
	Classification string
	Version        string
	EntryType      string
	LoadBase       *uint64 `json:",omitempty"`
	Header         *psp.Header
}

func inspect(path string) (*fileInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if data, err = compression.DecodeFile(path, data); err != nil {
		return nil, err
	}
	h, err := psp.ParseHeaderBytes(data)
	if err != nil {
		return nil, err
	}
	c := psp.Classify(h)
	info := &fileInfo{
		Path:           path,
		Classification: c.String(),
		Version:        h.VersionString(),
		EntryType:      h.EntryType.String(),
		Header:         h,
	}
	if base, err := layout.DefaultBases.LoadBase(c); err == nil {
		info.LoadBase = &base
	}
	return info, nil
}

func printText(w io.Writer, info *fileInfo) {
	fmt.Fprintf(w, "%s: %s, entry type %s, version %s", info.Path, info.Classification, info.EntryType, info.Version)
	if info.LoadBase != nil {
		fmt.Fprintf(w, ", loaded at 0x%x", *info.LoadBase)
	}
	fmt.Fprintf(w, "\n%s\n", info.Header.Table().Render())
}

func main() {
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.DefaultLogger = log.NewCharmLogger(os.Stderr, level, "pspinfo")

	a := flag.Args()
	if len(a) == 0 {
		log.Fatalf("usage: pspinfo [-j] FILE...")
	}

	var infos []*fileInfo
	failed := false
	for _, path := range a {
		info, err := inspect(path)
		if err != nil {
			log.Errorf("%s: %v", path, err)
			failed = true
			continue
		}
		infos = append(infos, info)
	}

	if *jsonOutput {
		j, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Printf("%s\n", j)
	} else {
		for _, info := range infos {
			printText(os.Stdout, info)
		}
	}
	if failed {
		os.Exit(1)
	}
}
