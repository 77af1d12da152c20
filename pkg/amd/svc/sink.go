// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svc

import (
	"fmt"
	"io"
	"strings"

	"github.com/linuxboot/psploader/pkg/disasm"
)

// AnnotationSink receives per-address highlights and comments.
type AnnotationSink interface {
	SetHighlight(addr uint64, color HighlightColor) error
	SetComment(addr uint64, comment string) error
}

// Apply hands the decisions over to sink.
func (r *Result) Apply(sink AnnotationSink) error {
	for _, d := range r.Decisions {
		if d.Highlight {
			if err := sink.SetHighlight(d.Address, d.Color); err != nil {
				return fmt.Errorf("unable to highlight 0x%x: %w", d.Address, err)
			}
		}
		if d.Comment != "" {
			if err := sink.SetComment(d.Address, d.Comment); err != nil {
				return fmt.Errorf("unable to comment 0x%x: %w", d.Address, err)
			}
		}
	}
	return nil
}

// WriteListing prints the disassembly of funcs with the comments of r.
// Highlighted lines are marked with '>'. A nil r prints the bare listing.
func WriteListing(w io.Writer, funcs []disasm.Function, r *Result) error {
	if r == nil {
		r = &Result{}
	}
	highlighted := make(map[uint64]struct{}, len(r.Decisions))
	for _, d := range r.Decisions {
		if d.Highlight {
			highlighted[d.Address] = struct{}{}
		}
	}

	var s strings.Builder
	for _, fn := range funcs {
		fmt.Fprintf(&s, "\n%08x <%s>:\n", fn.Start, fn.Name)
		for _, bb := range fn.Blocks {
			for _, line := range bb.Lines {
				mark := ' '
				if _, ok := highlighted[line.Address]; ok {
					mark = '>'
				}
				text := line.String()
				if comment, ok := r.Comment(line.Address); ok {
					text = fmt.Sprintf("%-32s ; %s", text, comment)
				}
				fmt.Fprintf(&s, "%c %08x:  %s\n", mark, line.Address, text)
			}
		}
	}
	_, err := io.WriteString(w, s.String())
	return err
}
