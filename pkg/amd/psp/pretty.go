// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package psp

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/camelcase"
	"github.com/jedib0t/go-pretty/v6/table"
)

// FieldLabel returns a human readable label of a Header field name,
// e.g. "Size Uncompressed" for "SizeUncompressed".
func FieldLabel(name string) string {
	return strings.Join(camelcase.Split(name), " ")
}

func (h *Header) formatField(name string, v reflect.Value) string {
	switch name {
	case "Magic":
		return fmt.Sprintf("0x%08x (%q)", h.Magic, h.MagicString())
	case "Version":
		return fmt.Sprintf("0x%08x (%s)", h.Version, h.VersionString())
	case "EntryType":
		return fmt.Sprintf("0x%x (%s)", uint32(h.EntryType), h.EntryType)
	case "SizeSigned", "SizeUncompressed", "SizeZlib", "ROMSize":
		size := v.Uint()
		return fmt.Sprintf("0x%x (%s)", size, humanize.IBytes(size))
	}

	switch v.Kind() {
	case reflect.Array:
		b := make([]byte, v.Len())
		reflect.Copy(reflect.ValueOf(b), v)
		return fmt.Sprintf("%x", b)
	case reflect.Uint32:
		return fmt.Sprintf("0x%x", v.Uint())
	}
	return fmt.Sprintf("%v", v.Interface())
}

// Table returns a table of the known header fields.
func (h *Header) Table() table.Writer {
	t := table.NewWriter()
	t.SetTitle("PSP Header")
	t.AppendHeader(table.Row{"Offset", "Field", "Value"})

	v := reflect.ValueOf(h).Elem()
	for idx, f := range headerFields {
		if f.Unknown {
			continue
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("0x%02x", f.Offset),
			FieldLabel(f.Name),
			h.formatField(f.Name, v.Field(idx)),
		})
	}
	return t
}

func (h *Header) String() string {
	return h.Table().Render()
}
