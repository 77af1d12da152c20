// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"strings"
)

// Format is an output format.
type Format int

const (
	FormatUndefined = Format(iota)
	FormatText
	FormatJSON
)

// ParseFormat converts "text" or "json" into a Format.
func ParseFormat(s string) Format {
	switch strings.Trim(strings.ToLower(s), " ") {
	case "text":
		return FormatText
	case "json":
		return FormatJSON
	}
	return FormatUndefined
}

// FormatOption is the --format flag, text by default.
type FormatOption struct {
	Format *string `long:"format" description:"output format [text, json]"`
}

// Get returns the chosen format.
func (opt FormatOption) Get() (Format, error) {
	if opt.Format == nil {
		return FormatText, nil
	}
	format := ParseFormat(*opt.Format)
	if format == FormatUndefined {
		return FormatUndefined, ErrArgs{Err: fmt.Errorf("unknown format '%s'", *opt.Format)}
	}
	return format, nil
}
