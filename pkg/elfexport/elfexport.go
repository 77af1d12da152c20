// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package elfexport converts a loaded PSP binary into an ELF32 ARM
// executable, so that it can be inspected with standard ELF tooling.
package elfexport

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/linuxboot/psploader/pkg/amd/layout"
	"github.com/linuxboot/psploader/pkg/amd/psp"
	"github.com/linuxboot/psploader/pkg/disasm"
)

const (
	ehdrSize  = 0x34
	phdrSize  = 0x20
	shdrSize  = 0x28
	symSize   = 0x10
	dataAlign = 0x10

	// efARMEABIVer5 is EF_ARM_EABI_VER5.
	efARMEABIVer5 = 0x05000000
)

// Section indexes of the output.
const (
	sectionNull = iota
	sectionHeader
	sectionCode
	sectionSymtab
	sectionStrtab
	sectionShstrtab
	sectionCount
)

// ErrIncomplete is returned if the header or code region was not declared.
var ErrIncomplete = errors.New("both the header and the code region must be declared")

type symbol struct {
	name    string
	value   uint64
	size    uint64
	typ     elf.SymType
	section uint16
}

// Writer collects the declarations of a view and serializes them as an ELF
// file. It implements layout.LoaderSink and the header structure sink of
// package view.
type Writer struct {
	image   []byte
	header  *layout.Region
	code    *layout.Region
	symbols map[string]symbol
}

var _ layout.LoaderSink = (*Writer)(nil)

// NewWriter returns a Writer for the given file contents.
func NewWriter(image []byte) *Writer {
	return &Writer{
		image:   image,
		symbols: map[string]symbol{},
	}
}

func checkRegion(r layout.Region, image []byte) error {
	if err := r.File().CheckBounds(uint64(len(image))); err != nil {
		return fmt.Errorf("%s region: %w", r.Name, err)
	}
	if r.Memory().End() > math.MaxUint32 {
		return fmt.Errorf("%s region %s does not fit a 32-bit address space", r.Name, r.Memory())
	}
	return nil
}

// DeclareHeaderRegion implements layout.LoaderSink.
func (w *Writer) DeclareHeaderRegion(r layout.Region) error {
	if err := checkRegion(r, w.image); err != nil {
		return err
	}
	w.header = &r
	return nil
}

// DeclareCodeRegion implements layout.LoaderSink.
func (w *Writer) DeclareCodeRegion(r layout.Region) error {
	if err := checkRegion(r, w.image); err != nil {
		return err
	}
	w.code = &r
	return nil
}

// DeclareEntrySymbol implements layout.LoaderSink.
func (w *Writer) DeclareEntrySymbol(sym layout.EntrySymbol) error {
	w.symbols[sym.Name] = symbol{name: sym.Name, value: sym.Address, typ: elf.STT_FUNC, section: sectionCode}
	return nil
}

// DeclareHeaderStruct adds a data symbol covering the header structure.
func (w *Writer) DeclareHeaderStruct(name string, addr uint64, fields []psp.Field) error {
	var size uint64
	for _, f := range fields {
		if end := f.Offset + f.Size; end > size {
			size = end
		}
	}
	w.symbols[name] = symbol{name: name, value: addr, size: size, typ: elf.STT_OBJECT, section: sectionHeader}
	return nil
}

// DeclareFunctions adds a function symbol for each of funcs. Functions
// already known by name are left untouched.
func (w *Writer) DeclareFunctions(funcs []disasm.Function) {
	for _, fn := range funcs {
		if _, ok := w.symbols[fn.Name]; ok {
			continue
		}
		w.symbols[fn.Name] = symbol{name: fn.Name, value: fn.Start, typ: elf.STT_FUNC, section: sectionCode}
	}
}

type stringTable struct {
	buf bytes.Buffer
}

func newStringTable() *stringTable {
	t := &stringTable{}
	t.buf.WriteByte(0)
	return t
}

func (t *stringTable) add(s string) uint32 {
	off := uint32(t.buf.Len())
	t.buf.WriteString(s)
	t.buf.WriteByte(0)
	return off
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

func progFlags(p layout.Permission) elf.ProgFlag {
	var flags elf.ProgFlag
	if p&layout.PermRead != 0 {
		flags |= elf.PF_R
	}
	if p&layout.PermWrite != 0 {
		flags |= elf.PF_W
	}
	if p&layout.PermExecute != 0 {
		flags |= elf.PF_X
	}
	return flags
}

func sectionFlags(p layout.Permission) elf.SectionFlag {
	flags := elf.SHF_ALLOC
	if p&layout.PermWrite != 0 {
		flags |= elf.SHF_WRITE
	}
	if p&layout.PermExecute != 0 {
		flags |= elf.SHF_EXECINSTR
	}
	return flags
}

func (w *Writer) sortedSymbols() []symbol {
	result := make([]symbol, 0, len(w.symbols))
	for _, sym := range w.symbols {
		result = append(result, sym)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].value != result[j].value {
			return result[i].value < result[j].value
		}
		return result[i].name < result[j].name
	})
	return result
}

// Bytes returns the ELF file.
func (w *Writer) Bytes() ([]byte, error) {
	if w.header == nil || w.code == nil {
		return nil, ErrIncomplete
	}
	headerData, err := w.header.File().Slice(w.image)
	if err != nil {
		return nil, fmt.Errorf("header region: %w", err)
	}
	codeData, err := w.code.File().Slice(w.image)
	if err != nil {
		return nil, fmt.Errorf("code region: %w", err)
	}

	var entry uint64
	if sym, ok := w.symbols[layout.StartSymbol]; ok {
		entry = sym.value
	} else {
		entry = w.code.Start
	}

	// File layout: ELF header, program headers, .header, .code, .symtab,
	// .strtab, .shstrtab, section headers.
	headerOff := alignUp(ehdrSize+2*phdrSize, dataAlign)
	codeOff := alignUp(headerOff+uint64(len(headerData)), dataAlign)

	strtab := newStringTable()
	symtab := []elf.Sym32{{}}
	for _, sym := range w.sortedSymbols() {
		symtab = append(symtab, elf.Sym32{
			Name:  strtab.add(sym.name),
			Value: uint32(sym.value),
			Size:  uint32(sym.size),
			Info:  elf.ST_INFO(elf.STB_GLOBAL, sym.typ),
			Shndx: sym.section,
		})
	}
	symtabOff := alignUp(codeOff+uint64(len(codeData)), 4)
	symtabSize := uint64(len(symtab)) * symSize
	strtabOff := symtabOff + symtabSize

	shstrtab := newStringTable()
	names := map[int]uint32{
		sectionHeader:   shstrtab.add(".header"),
		sectionCode:     shstrtab.add(".code"),
		sectionSymtab:   shstrtab.add(".symtab"),
		sectionStrtab:   shstrtab.add(".strtab"),
		sectionShstrtab: shstrtab.add(".shstrtab"),
	}
	shstrtabOff := strtabOff + uint64(strtab.buf.Len())
	shOff := alignUp(shstrtabOff+uint64(shstrtab.buf.Len()), 4)

	if shOff+sectionCount*shdrSize > math.MaxUint32 {
		return nil, fmt.Errorf("binary of %d bytes is too large for ELF32", len(w.image))
	}

	ehdr := elf.Header32{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_ARM),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     uint32(entry),
		Phoff:     ehdrSize,
		Shoff:     uint32(shOff),
		Flags:     efARMEABIVer5,
		Ehsize:    ehdrSize,
		Phentsize: phdrSize,
		Phnum:     2,
		Shentsize: shdrSize,
		Shnum:     sectionCount,
		Shstrndx:  sectionShstrtab,
	}
	copy(ehdr.Ident[:], elf.ELFMAG)
	ehdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	ehdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	ehdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	progs := []elf.Prog32{
		{
			Type:   uint32(elf.PT_LOAD),
			Off:    uint32(headerOff),
			Vaddr:  uint32(w.header.Start),
			Paddr:  uint32(w.header.Start),
			Filesz: uint32(len(headerData)),
			Memsz:  uint32(w.header.Size),
			Flags:  uint32(progFlags(w.header.Perm)),
			Align:  4,
		},
		{
			Type:   uint32(elf.PT_LOAD),
			Off:    uint32(codeOff),
			Vaddr:  uint32(w.code.Start),
			Paddr:  uint32(w.code.Start),
			Filesz: uint32(len(codeData)),
			Memsz:  uint32(w.code.Size),
			Flags:  uint32(progFlags(w.code.Perm)),
			Align:  4,
		},
	}

	sections := [sectionCount]elf.Section32{
		sectionHeader: {
			Name:      names[sectionHeader],
			Type:      uint32(elf.SHT_PROGBITS),
			Flags:     uint32(sectionFlags(w.header.Perm)),
			Addr:      uint32(w.header.Start),
			Off:       uint32(headerOff),
			Size:      uint32(len(headerData)),
			Addralign: 4,
		},
		sectionCode: {
			Name:      names[sectionCode],
			Type:      uint32(elf.SHT_PROGBITS),
			Flags:     uint32(sectionFlags(w.code.Perm)),
			Addr:      uint32(w.code.Start),
			Off:       uint32(codeOff),
			Size:      uint32(len(codeData)),
			Addralign: 4,
		},
		sectionSymtab: {
			Name:      names[sectionSymtab],
			Type:      uint32(elf.SHT_SYMTAB),
			Off:       uint32(symtabOff),
			Size:      uint32(symtabSize),
			Link:      sectionStrtab,
			Info:      1,
			Addralign: 4,
			Entsize:   symSize,
		},
		sectionStrtab: {
			Name:      names[sectionStrtab],
			Type:      uint32(elf.SHT_STRTAB),
			Off:       uint32(strtabOff),
			Size:      uint32(strtab.buf.Len()),
			Addralign: 1,
		},
		sectionShstrtab: {
			Name:      names[sectionShstrtab],
			Type:      uint32(elf.SHT_STRTAB),
			Off:       uint32(shstrtabOff),
			Size:      uint32(shstrtab.buf.Len()),
			Addralign: 1,
		},
	}

	out := &bytes.Buffer{}
	pad := func(off uint64) {
		for uint64(out.Len()) < off {
			out.WriteByte(0)
		}
	}
	_ = binary.Write(out, binary.LittleEndian, ehdr)
	_ = binary.Write(out, binary.LittleEndian, progs)
	pad(headerOff)
	out.Write(headerData)
	pad(codeOff)
	out.Write(codeData)
	pad(symtabOff)
	_ = binary.Write(out, binary.LittleEndian, symtab)
	out.Write(strtab.buf.Bytes())
	out.Write(shstrtab.buf.Bytes())
	pad(shOff)
	_ = binary.Write(out, binary.LittleEndian, sections)
	return out.Bytes(), nil
}

// WriteTo writes the ELF file to out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	b, err := w.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := out.Write(b)
	return int64(n), err
}
