// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package view

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linuxboot/psploader/pkg/amd/layout"
	"github.com/linuxboot/psploader/pkg/amd/psp"
	"github.com/linuxboot/psploader/pkg/amd/svc"
	"github.com/linuxboot/psploader/pkg/disasm"
	"github.com/linuxboot/psploader/pkg/log"
)

type capturingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *capturingLogger) add(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *capturingLogger) Debugf(format string, args ...interface{}) { l.add("DEBUG", format, args...) }
func (l *capturingLogger) Infof(format string, args ...interface{})  { l.add("INFO", format, args...) }
func (l *capturingLogger) Warnf(format string, args ...interface{})  { l.add("WARN", format, args...) }
func (l *capturingLogger) Errorf(format string, args ...interface{}) { l.add("ERROR", format, args...) }
func (l *capturingLogger) Fatalf(format string, args ...interface{}) { l.add("FATAL", format, args...) }

func captureLog(t *testing.T) *capturingLogger {
	l := &capturingLogger{}
	old := log.DefaultLogger
	log.DefaultLogger = l
	t.Cleanup(func() { log.DefaultLogger = old })
	return l
}

func code(words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for idx, w := range words {
		binary.LittleEndian.PutUint32(b[idx*4:], w)
	}
	return b
}

// svc #5, svc #7, svc #300, bx lr
var ablCode = code(0xef000005, 0xef000007, 0xef00012c, 0xe12fff1e)

func image(h psp.Header, body []byte) psp.BytesSource {
	return psp.BytesSource(append(h.Bytes(), body...))
}

func testDatabase(t *testing.T) *svc.Database {
	db, err := svc.NewDatabase(map[string]svc.Record{
		"5": {Name: "SvcFoo", Args: []svc.Arg{{Type: "int", Name: "a"}}},
	})
	require.NoError(t, err)
	return db
}

type headerRecorder struct {
	name   string
	addr   uint64
	fields []psp.Field
	err    error
}

func (r *headerRecorder) DeclareHeaderStruct(name string, addr uint64, fields []psp.Field) error {
	if r.err != nil {
		return r.err
	}
	r.name, r.addr, r.fields = name, addr, fields
	return nil
}

type annotationRecorder struct {
	highlights map[uint64]svc.HighlightColor
	comments   map[uint64]string
}

func newAnnotationRecorder() *annotationRecorder {
	return &annotationRecorder{
		highlights: map[uint64]svc.HighlightColor{},
		comments:   map[uint64]string{},
	}
}

func (r *annotationRecorder) SetHighlight(addr uint64, color svc.HighlightColor) error {
	r.highlights[addr] = color
	return nil
}

func (r *annotationRecorder) SetComment(addr uint64, comment string) error {
	r.comments[addr] = comment
	return nil
}

func TestProbe(t *testing.T) {
	for _, tc := range []struct {
		name     string
		header   psp.Header
		wantType Type
		wantBase uint64
	}{
		{
			name:     "bootloader",
			header:   psp.Header{Magic: psp.MagicGeneric, EntryType: psp.EntryTypeBootLoader},
			wantType: TypeBootloader,
			wantBase: 0,
		},
		{
			name:     "abl0",
			header:   psp.Header{Magic: 0x00424157, EntryType: psp.EntryTypeABL0},
			wantType: TypeABL,
			wantBase: 0x15100,
		},
		{
			name:     "abl3",
			header:   psp.Header{Magic: psp.MagicGeneric, EntryType: psp.EntryTypeABL0 + 3},
			wantType: TypeABL,
			wantBase: 0x16200,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := image(tc.header, ablCode)
			v, err := Probe(src, src.Len(), Options{})
			require.NoError(t, err)
			require.Equal(t, tc.wantType, v.Type())
			require.Equal(t, tc.wantBase, v.Plan().LoadBase)
			require.Equal(t, tc.header.EntryType, v.Header().EntryType)
		})
	}
}

func TestProbeUnsupported(t *testing.T) {
	for _, tc := range []struct {
		name   string
		header psp.Header
	}{
		{"trusted_os", psp.Header{Magic: psp.MagicGeneric, EntryType: psp.EntryTypeTrustedOS}},
		{"trustlets", psp.Header{Magic: psp.MagicGeneric, EntryType: psp.EntryTypeBootTimeTrustlets}},
		{"unknown", psp.Header{Magic: 0xdeadbeef, EntryType: 0x99}},
		{"negative_abl_stage", psp.Header{Magic: psp.MagicGeneric, EntryType: psp.EntryTypeBootLoader, Metadata: 1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := image(tc.header, ablCode)
			_, err := Probe(src, src.Len(), Options{})
			var errUnsupported *ErrUnsupported
			require.ErrorAs(t, err, &errUnsupported)
			require.Equal(t, psp.Classify(&tc.header), errUnsupported.Classification)
		})
	}
}

func TestProbeTruncated(t *testing.T) {
	src := psp.BytesSource(make([]byte, 0x80))
	_, err := Probe(src, src.Len(), Options{})
	var errTruncated *psp.ErrTruncatedInput
	require.ErrorAs(t, err, &errTruncated)
}

func TestProbeAnnotateRequiresDatabase(t *testing.T) {
	src := image(psp.Header{Magic: psp.MagicGeneric, EntryType: psp.EntryTypeABL0}, ablCode)
	_, err := Probe(src, src.Len(), Options{Annotate: true})
	require.Error(t, err)
}

func TestProbeCustomBases(t *testing.T) {
	src := image(psp.Header{Magic: psp.MagicGeneric, EntryType: psp.EntryTypeABL0 + 1}, ablCode)
	v, err := Probe(src, src.Len(), Options{Bases: &layout.Bases{ABLN: 0x20000}})
	require.NoError(t, err)
	require.Equal(t, uint64(0x20000), v.Plan().LoadBase)
	require.Equal(t, uint64(0x20100), v.Plan().EntryPoint)
}

func TestLoad(t *testing.T) {
	logger := captureLog(t)

	src := image(psp.Header{Magic: psp.MagicGeneric, EntryType: psp.EntryTypeABL0 + 2}, ablCode)
	v, err := Probe(src, src.Len(), Options{})
	require.NoError(t, err)

	var rec layout.Recorder
	require.NoError(t, v.Load(&rec))
	require.Equal(t, uint64(0x16200), rec.HeaderRegion.Start)
	require.Equal(t, uint64(psp.HeaderSize), rec.HeaderRegion.Size)
	require.Equal(t, uint64(0x16300), rec.CodeRegion.Start)
	require.Equal(t, uint64(len(ablCode)), rec.CodeRegion.Size)
	require.Equal(t, layout.EntrySymbol{Name: layout.StartSymbol, Address: 0x16300}, *rec.Entry)

	require.Contains(t, logger.lines, "INFO [AMD-SP ABL Loader] Detected AMD-SP/PSP ABL binary (abl=2)")
}

func TestLoadBootloader(t *testing.T) {
	logger := captureLog(t)

	src := image(psp.Header{Magic: psp.MagicGeneric, EntryType: psp.EntryTypeRecoveryBootLoader}, ablCode)
	v, err := Probe(src, src.Len(), Options{})
	require.NoError(t, err)

	var rec layout.Recorder
	require.NoError(t, v.Load(&rec))
	require.Equal(t, uint64(0x100), rec.Entry.Address)
	require.Contains(t, logger.lines, "INFO [AMD-SP Bootloader Loader] Detected AMD-SP/PSP Bootloader binary")
}

func TestOnAnalysisComplete(t *testing.T) {
	logger := captureLog(t)

	src := image(psp.Header{Magic: psp.MagicGeneric, EntryType: psp.EntryTypeABL0 + 1}, ablCode)
	v, err := Probe(src, src.Len(), Options{Annotate: true, Database: testDatabase(t)})
	require.NoError(t, err)

	funcs := disasm.Sweep(ablCode, v.Plan().CodeOffset, layout.StartSymbol)
	headers := &headerRecorder{}
	annotations := newAnnotationRecorder()

	result, err := v.OnAnalysisComplete(funcs, headers, annotations)
	require.NoError(t, err)

	require.Equal(t, HeaderSymbol, headers.name)
	require.Equal(t, uint64(0x16200), headers.addr)
	require.Equal(t, psp.HeaderFields(), headers.fields)

	require.Len(t, result.Decisions, 3)
	require.Equal(t, []svc.Warning{{Address: 0x16304, Number: 7}}, result.Warnings)
	require.Equal(t, map[uint64]string{0x16300: "SvcFoo(int a)"}, annotations.comments)
	require.Len(t, annotations.highlights, 3)
	require.Equal(t, svc.Highlight, annotations.highlights[0x16308])

	require.Contains(t, logger.lines, "INFO [AMD-SP ABL Loader] Annotating syscalls...")
	var warned bool
	for _, line := range logger.lines {
		if strings.HasPrefix(line, "WARN ") && strings.Contains(line, "Don't have SVC #7 defined in dictionary (addr=0x00016304).") {
			warned = true
		}
	}
	require.True(t, warned, logger.lines)

	_, err = v.OnAnalysisComplete(funcs, headers, annotations)
	require.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestOnAnalysisCompleteSkipsAnnotation(t *testing.T) {
	logger := captureLog(t)

	src := image(psp.Header{Magic: psp.MagicGeneric, EntryType: psp.EntryTypeABL0}, ablCode)
	v, err := Probe(src, src.Len(), Options{})
	require.NoError(t, err)

	annotations := newAnnotationRecorder()
	result, err := v.OnAnalysisComplete(disasm.Sweep(ablCode, v.Plan().CodeOffset, layout.StartSymbol), nil, annotations)
	require.NoError(t, err)
	require.Nil(t, result)
	require.Empty(t, annotations.highlights)
	require.Contains(t, logger.lines, "INFO [AMD-SP ABL Loader] Skipping syscall annotation")
}

func TestOnAnalysisCompleteBootloader(t *testing.T) {
	src := image(psp.Header{Magic: psp.MagicGeneric, EntryType: psp.EntryTypeBootLoader}, ablCode)
	v, err := Probe(src, src.Len(), Options{Annotate: true, Database: testDatabase(t)})
	require.NoError(t, err)

	headers := &headerRecorder{}
	result, err := v.OnAnalysisComplete(nil, headers, nil)
	require.NoError(t, err)
	require.Nil(t, result)
	require.Equal(t, uint64(0), headers.addr)
	require.Equal(t, HeaderSymbol, headers.name)
}

func TestOnAnalysisCompleteRetryAfterHeaderFailure(t *testing.T) {
	src := image(psp.Header{Magic: psp.MagicGeneric, EntryType: psp.EntryTypeABL0 + 1}, ablCode)
	v, err := Probe(src, src.Len(), Options{Annotate: true, Database: testDatabase(t)})
	require.NoError(t, err)

	funcs := disasm.Sweep(ablCode, v.Plan().CodeOffset, layout.StartSymbol)
	errSink := errors.New("struct type already defined")
	headers := &headerRecorder{err: errSink}
	annotations := newAnnotationRecorder()

	result, err := v.OnAnalysisComplete(funcs, headers, annotations)
	require.ErrorIs(t, err, errSink)
	require.Nil(t, result)
	require.Empty(t, annotations.highlights)

	headers.err = nil
	result, err = v.OnAnalysisComplete(funcs, headers, annotations)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, HeaderSymbol, headers.name)
	require.Equal(t, map[uint64]string{0x16300: "SvcFoo(int a)"}, annotations.comments)

	_, err = v.OnAnalysisComplete(funcs, headers, annotations)
	require.ErrorIs(t, err, ErrAlreadyCompleted)
}
