// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package view drives the loading of a PSP binary into a host: it parses
// and classifies the binary once, declares its layout and, once the host
// finished its analysis, annotates the syscalls.
package view

import (
	"errors"
	"fmt"

	"github.com/linuxboot/psploader/pkg/amd/layout"
	"github.com/linuxboot/psploader/pkg/amd/psp"
	"github.com/linuxboot/psploader/pkg/amd/svc"
	"github.com/linuxboot/psploader/pkg/disasm"
	"github.com/linuxboot/psploader/pkg/log"
)

// HeaderSymbol is the name of the data variable covering the header.
const HeaderSymbol = "psp_file_header"

// Type is the kind of view built for a binary.
type Type uint8

const (
	// TypeBootloader is the view of the PSP bootloader
	TypeBootloader Type = iota
	// TypeABL is the view of an ABL stage
	TypeABL
)

func (t Type) String() string {
	switch t {
	case TypeBootloader:
		return "AMD-SP Bootloader"
	case TypeABL:
		return "AMD-SP ABL"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Options configure a View.
type Options struct {
	// Annotate enables syscall annotation in OnAnalysisComplete
	Annotate bool
	// Database is required if Annotate is set. It must not change during a pass.
	Database *svc.Database
	// Bases override the load addresses, layout.DefaultBases if nil
	Bases *layout.Bases
}

// ErrUnsupported is returned by Probe for binaries no view exists for.
type ErrUnsupported struct {
	Classification psp.Classification
}

// Error implements error.
func (err *ErrUnsupported) Error() string {
	return fmt.Sprintf("no view for %s binaries", err.Classification)
}

// ErrAlreadyCompleted is returned if OnAnalysisComplete is called twice.
var ErrAlreadyCompleted = errors.New("analysis completion was already handled")

// HeaderSink receives the declaration of the header structure.
type HeaderSink interface {
	DeclareHeaderStruct(name string, addr uint64, fields []psp.Field) error
}

// View is a PSP binary prepared for loading.
type View struct {
	typ            Type
	header         *psp.Header
	classification psp.Classification
	fileLength     uint64
	options        Options
	plan           *layout.Plan
	completed      bool
}

// Probe parses and classifies the binary. Only the bootloader and ABL stages
// with a non-negative stage number are supported.
func Probe(src psp.ByteSource, fileLength uint64, opts Options) (*View, error) {
	header, err := psp.ParseHeader(src, fileLength)
	if err != nil {
		return nil, err
	}
	return FromHeader(header, fileLength, opts)
}

// FromHeader builds a view of an already parsed header.
func FromHeader(header *psp.Header, fileLength uint64, opts Options) (*View, error) {
	if opts.Annotate && opts.Database == nil {
		return nil, errors.New("syscall annotation requires a syscall database")
	}

	c := psp.Classify(header)
	v := &View{
		header:         header,
		classification: c,
		fileLength:     fileLength,
		options:        opts,
	}
	switch {
	case c.IsBootloader():
		v.typ = TypeBootloader
	case c.IsABL() && c.Stage >= 0:
		v.typ = TypeABL
	default:
		return nil, &ErrUnsupported{Classification: c}
	}

	bases := layout.DefaultBases
	if opts.Bases != nil {
		bases = *opts.Bases
	}
	plan, err := bases.Plan(c, fileLength)
	if err != nil {
		return nil, err
	}
	v.plan = plan
	return v, nil
}

// Type returns the type of the view.
func (v *View) Type() Type { return v.typ }

// Header returns the parsed header.
func (v *View) Header() *psp.Header { return v.header }

// Classification returns the classification of the binary.
func (v *View) Classification() psp.Classification { return v.classification }

// Plan returns the layout of the binary.
func (v *View) Plan() *layout.Plan { return v.plan }

func (v *View) logf(format string, args ...interface{}) {
	log.Infof("[%s Loader] "+format, append([]interface{}{v.typ}, args...)...)
}

// Load declares the layout of the binary.
func (v *View) Load(sink layout.LoaderSink) error {
	switch v.typ {
	case TypeABL:
		v.logf("Detected AMD-SP/PSP ABL binary (abl=%d)", v.classification.Stage)
	case TypeBootloader:
		v.logf("Detected AMD-SP/PSP Bootloader binary")
	}
	return layout.Apply(v.plan, sink)
}

// OnAnalysisComplete must be called once, after the host finished the
// analysis yielding funcs. It declares the header structure and annotates
// the syscalls of ABL stages if enabled. The result is nil if no
// annotation took place. A failed header declaration may be retried.
func (v *View) OnAnalysisComplete(funcs []disasm.Function, headers HeaderSink, annotations svc.AnnotationSink) (*svc.Result, error) {
	if v.completed {
		return nil, ErrAlreadyCompleted
	}

	if headers != nil {
		if err := headers.DeclareHeaderStruct(HeaderSymbol, v.plan.HeaderOffset, psp.HeaderFields()); err != nil {
			return nil, fmt.Errorf("unable to declare header structure: %w", err)
		}
	}
	v.completed = true

	if v.typ != TypeABL {
		return nil, nil
	}
	if !v.options.Annotate {
		v.logf("Skipping syscall annotation")
		return nil, nil
	}

	v.logf("Annotating syscalls...")
	result := svc.Annotate(funcs, v.options.Database)
	for _, w := range result.Warnings {
		log.Warnf("[%s Loader] %s", v.typ, w)
	}
	if annotations != nil {
		if err := result.Apply(annotations); err != nil {
			return result, err
		}
	}
	return result, nil
}
