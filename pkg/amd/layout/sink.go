// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"fmt"
)

// LoaderSink receives the layout decisions. Binding them into an address
// space is up to the implementation.
type LoaderSink interface {
	DeclareHeaderRegion(r Region) error
	DeclareCodeRegion(r Region) error
	DeclareEntrySymbol(sym EntrySymbol) error
}

// Apply declares the header region, the code region and the entry symbol
// of the plan, in this order.
func Apply(p *Plan, sink LoaderSink) error {
	if err := sink.DeclareHeaderRegion(p.Header()); err != nil {
		return fmt.Errorf("unable to declare header region: %w", err)
	}
	if err := sink.DeclareCodeRegion(p.Code()); err != nil {
		return fmt.Errorf("unable to declare code region: %w", err)
	}
	if err := sink.DeclareEntrySymbol(p.Entry()); err != nil {
		return fmt.Errorf("unable to declare entry symbol: %w", err)
	}
	return nil
}

// Recorder is a LoaderSink which keeps the declarations in memory.
type Recorder struct {
	HeaderRegion *Region
	CodeRegion   *Region
	Entry        *EntrySymbol
}

var _ LoaderSink = (*Recorder)(nil)

// DeclareHeaderRegion implements LoaderSink.
func (r *Recorder) DeclareHeaderRegion(region Region) error {
	r.HeaderRegion = &region
	return nil
}

// DeclareCodeRegion implements LoaderSink.
func (r *Recorder) DeclareCodeRegion(region Region) error {
	if r.HeaderRegion != nil && r.HeaderRegion.Memory().Intersect(region.Memory()) {
		return fmt.Errorf("code region %s overlaps header region %s", region.Memory(), r.HeaderRegion.Memory())
	}
	r.CodeRegion = &region
	return nil
}

// DeclareEntrySymbol implements LoaderSink.
func (r *Recorder) DeclareEntrySymbol(sym EntrySymbol) error {
	r.Entry = &sym
	return nil
}
