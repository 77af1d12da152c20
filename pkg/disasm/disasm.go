// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm defines the disassembly representation consumed by the
// syscall annotator, and a linear-sweep ARM disassembler producing it.
package disasm

import (
	"strings"
)

// TokenKind classifies a token of a disassembly line.
type TokenKind uint8

const (
	// TokenMnemonic is the instruction mnemonic, always the first token
	TokenMnemonic TokenKind = iota
	// TokenText is operand text without a numeric value
	TokenText
	// TokenInteger is an immediate operand; Value holds the number
	TokenInteger
	// TokenCodeAddress is a branch target; Value holds the absolute address
	TokenCodeAddress
)

// Token is a piece of a disassembly line.
type Token struct {
	Kind  TokenKind
	Text  string
	Value uint64
}

// Line is one disassembled instruction.
type Line struct {
	Address uint64
	Tokens  []Token
}

// Mnemonic returns the text of the first token.
func (l Line) Mnemonic() string {
	if len(l.Tokens) == 0 {
		return ""
	}
	return l.Tokens[0].Text
}

func (l Line) String() string {
	var s strings.Builder
	for idx, tok := range l.Tokens {
		switch {
		case idx == 1:
			s.WriteByte(' ')
		case idx > 1:
			s.WriteString(", ")
		}
		s.WriteString(tok.Text)
	}
	return s.String()
}

// BasicBlock is a straight-line sequence of instructions.
type BasicBlock struct {
	Start uint64
	Lines []Line
}

// Function is a named group of basic blocks.
type Function struct {
	Name   string
	Start  uint64
	Blocks []BasicBlock
}
