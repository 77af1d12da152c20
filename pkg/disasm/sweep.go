// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/arch/arm/armasm"
)

const armInstLen = 4

// Sweep disassembles code, mapped at base, in ARM mode from the first to
// the last word. Words which do not decode are emitted as ".word".
//
// Functions start at base (named after the entry symbol) and at every
// in-range BL target. Blocks end after branches.
func Sweep(code []byte, base uint64, entryName string) []Function {
	lines, calls := decodeAll(code, base)
	if len(lines) == 0 {
		return nil
	}

	starts := []uint64{base}
	end := base + uint64(len(code))
	for target := range calls {
		if target > base && target < end && target%armInstLen == 0 {
			starts = append(starts, target)
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	funcs := make([]Function, 0, len(starts))
	for idx, start := range starts {
		name := entryName
		if idx > 0 || name == "" {
			name = fmt.Sprintf("sub_%x", start)
		}
		funcs = append(funcs, Function{Name: name, Start: start})
	}
	names := make(map[uint64]string, len(funcs))
	for _, fn := range funcs {
		names[fn.Start] = fn.Name
	}

	fnIdx := 0
	newBlock := true
	for _, dl := range lines {
		for fnIdx+1 < len(funcs) && dl.line.Address >= funcs[fnIdx+1].Start {
			fnIdx++
			newBlock = true
		}
		fn := &funcs[fnIdx]
		if newBlock {
			fn.Blocks = append(fn.Blocks, BasicBlock{Start: dl.line.Address})
			newBlock = false
		}
		for idx, tok := range dl.line.Tokens {
			if name, ok := names[tok.Value]; ok && tok.Kind == TokenCodeAddress {
				dl.line.Tokens[idx].Text = name
			}
		}
		block := &fn.Blocks[len(fn.Blocks)-1]
		block.Lines = append(block.Lines, dl.line)
		newBlock = dl.endsBlock
	}
	return funcs
}

type decodedLine struct {
	line      Line
	endsBlock bool
}

func decodeAll(code []byte, base uint64) ([]decodedLine, map[uint64]struct{}) {
	lines := make([]decodedLine, 0, len(code)/armInstLen+1)
	calls := map[uint64]struct{}{}

	var off int
	for ; off+armInstLen <= len(code); off += armInstLen {
		addr := base + uint64(off)
		inst, err := armasm.Decode(code[off:off+armInstLen], armasm.ModeARM)
		if err != nil {
			raw := binary.LittleEndian.Uint32(code[off:])
			lines = append(lines, decodedLine{line: dataLine(addr, ".word", uint64(raw), fmt.Sprintf("0x%08x", raw))})
			continue
		}

		dl := decodedLine{line: instLine(addr, inst)}
		switch baseOp(inst.Op) {
		case "B", "BX":
			dl.endsBlock = true
		case "BL":
			if rel, ok := inst.Args[0].(armasm.PCRel); ok {
				calls[branchTarget(addr, rel)] = struct{}{}
			}
		}
		lines = append(lines, dl)
	}

	if off < len(code) {
		var raw uint64
		for idx, b := range code[off:] {
			raw |= uint64(b) << (8 * idx)
		}
		lines = append(lines, decodedLine{line: dataLine(base+uint64(off), ".byte", raw, fmt.Sprintf("% x", code[off:]))})
	}
	return lines, calls
}

// branchTarget resolves a PC-relative operand. PC reads as the instruction
// address + 8 in ARM mode.
func branchTarget(addr uint64, rel armasm.PCRel) uint64 {
	return uint64(int64(addr) + 8 + int64(rel))
}

// baseOp strips the condition code from an opcode name, "SVC.EQ" -> "SVC".
func baseOp(op armasm.Op) string {
	name := op.String()
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		return name[:idx]
	}
	return name
}

func instLine(addr uint64, inst armasm.Inst) Line {
	mnemonic := strings.ToLower(strings.ReplaceAll(inst.Op.String(), ".", ""))
	tokens := []Token{{Kind: TokenMnemonic, Text: mnemonic}}
	for _, arg := range inst.Args {
		if arg == nil {
			break
		}
		switch a := arg.(type) {
		case armasm.Imm:
			tokens = append(tokens, Token{Kind: TokenInteger, Text: fmt.Sprintf("#%#x", uint32(a)), Value: uint64(a)})
		case armasm.PCRel:
			target := branchTarget(addr, a)
			tokens = append(tokens, Token{Kind: TokenCodeAddress, Text: fmt.Sprintf("%#x", target), Value: target})
		default:
			tokens = append(tokens, Token{Kind: TokenText, Text: strings.ToLower(arg.String())})
		}
	}
	return Line{Address: addr, Tokens: tokens}
}

func dataLine(addr uint64, directive string, value uint64, text string) Line {
	return Line{
		Address: addr,
		Tokens: []Token{
			{Kind: TokenMnemonic, Text: directive},
			{Kind: TokenInteger, Text: text, Value: value},
		},
	}
}
