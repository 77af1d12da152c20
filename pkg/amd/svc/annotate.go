// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package svc annotates the supervisor calls of disassembled PSP code with
// the signatures of the invoked syscalls.
package svc

import (
	"fmt"
	"sort"

	"github.com/linuxboot/psploader/pkg/disasm"
)

// Mnemonic is the text of the first token of a supervisor call line.
const Mnemonic = "svc"

// HighlightColor is an RGB color.
type HighlightColor struct {
	R, G, B uint8
}

func (c HighlightColor) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Highlight is the color of svc lines.
var Highlight = HighlightColor{R: 0, G: 115, B: 255}

// Decision is the annotation of a single svc instruction. Comment is empty
// if the syscall is not in the database.
type Decision struct {
	Address   uint64         `json:"address"`
	Number    uint64         `json:"svc"`
	Highlight bool           `json:"highlight"`
	Color     HighlightColor `json:"color"`
	Comment   string         `json:"comment,omitempty"`
}

// Warning reports an svc whose number looks valid but is not in the database.
type Warning struct {
	Address uint64 `json:"address"`
	Number  uint64 `json:"svc"`
}

func (w Warning) String() string {
	return fmt.Sprintf("Don't have SVC #%d defined in dictionary (addr=0x%08x).", w.Number, w.Address)
}

// Result holds the decisions and warnings of an annotation pass, both
// sorted by address with at most one entry per address.
type Result struct {
	Decisions []Decision `json:"decisions"`
	Warnings  []Warning  `json:"warnings"`
}

// Comment returns the comment at addr, if any.
func (r *Result) Comment(addr uint64) (string, bool) {
	idx := sort.Search(len(r.Decisions), func(i int) bool { return r.Decisions[i].Address >= addr })
	if idx == len(r.Decisions) || r.Decisions[idx].Address != addr || r.Decisions[idx].Comment == "" {
		return "", false
	}
	return r.Decisions[idx].Comment, true
}

// plausible returns true for numbers that are expected to have a record.
func plausible(n uint64) bool {
	return n > 0 && n < 255
}

type addressState struct {
	decision Decision
	warning  *Warning
}

// Annotate scans all lines of funcs in one forward pass. Every svc line is
// highlighted and, if its number is in db, commented with the syscall
// signature. An unknown number in (0, 255) yields a warning.
//
// State is keyed by address and later lines overwrite earlier ones, so
// running Annotate again on the same input gives the same Result.
func Annotate(funcs []disasm.Function, db *Database) *Result {
	states := map[uint64]*addressState{}
	for _, fn := range funcs {
		for _, bb := range fn.Blocks {
			for _, line := range bb.Lines {
				if line.Mnemonic() != Mnemonic {
					continue
				}
				states[line.Address] = annotateLine(line, db)
			}
		}
	}

	addrs := make([]uint64, 0, len(states))
	for addr := range states {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	result := &Result{
		Decisions: make([]Decision, 0, len(addrs)),
		Warnings:  []Warning{},
	}
	for _, addr := range addrs {
		state := states[addr]
		result.Decisions = append(result.Decisions, state.decision)
		if state.warning != nil {
			result.Warnings = append(result.Warnings, *state.warning)
		}
	}
	return result
}

func annotateLine(line disasm.Line, db *Database) *addressState {
	number := line.Tokens[len(line.Tokens)-1].Value
	state := &addressState{
		decision: Decision{
			Address:   line.Address,
			Number:    number,
			Highlight: true,
			Color:     Highlight,
		},
	}

	record, ok := db.Lookup(number)
	switch {
	case ok:
		state.decision.Comment = record.Signature()
	case plausible(number):
		state.warning = &Warning{Address: line.Address, Number: number}
	}
	return state
}
