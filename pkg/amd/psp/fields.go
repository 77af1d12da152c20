// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package psp

import (
	"encoding/binary"
	"reflect"
	"strings"
)

// Field describes one member of the header structure.
type Field struct {
	// Name is the name of the Header field
	Name string
	// CName is the member name of the psp_file_header type declared for hosts
	CName string
	// Offset and Size are in bytes
	Offset uint64
	Size   uint64
	// Unknown is set for gaps which have not been reverse engineered yet
	Unknown bool
}

var headerFields = func() []Field {
	t := reflect.TypeOf(Header{})
	fields := make([]Field, 0, t.NumField())
	var offset uint64
	for idx := 0; idx < t.NumField(); idx++ {
		f := t.Field(idx)
		size := uint64(binary.Size(reflect.Zero(f.Type).Interface()))
		fields = append(fields, Field{
			Name:    f.Name,
			CName:   f.Tag.Get("psp"),
			Offset:  offset,
			Size:    size,
			Unknown: strings.HasPrefix(f.Name, "Unknown"),
		})
		offset += size
	}
	return fields
}()

// HeaderFields returns the layout of the whole header, including the
// unknown gaps, in offset order.
func HeaderFields() []Field {
	result := make([]Field, len(headerFields))
	copy(result, headerFields)
	return result
}

// FieldByName returns the layout of the Header field with the given name.
func FieldByName(name string) (Field, bool) {
	for _, f := range headerFields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
