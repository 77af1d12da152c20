// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svc

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Arg is a syscall parameter.
type Arg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Record describes a syscall.
type Record struct {
	Name string `json:"name"`
	Args []Arg  `json:"args"`
}

// Signature renders the record as a prototype, e.g. "SvcFoo(int a, void *b)".
func (r Record) Signature() string {
	args := make([]string, 0, len(r.Args))
	for _, arg := range r.Args {
		args = append(args, arg.Type+" "+arg.Name)
	}
	return r.Name + "(" + strings.Join(args, ", ") + ")"
}

func (r Record) clone() Record {
	args := make([]Arg, len(r.Args))
	copy(args, r.Args)
	return Record{Name: r.Name, Args: args}
}

// Database maps syscall numbers to their descriptions. It is immutable once
// loaded, so it may be shared by concurrent annotation passes.
type Database struct {
	records map[string]Record
}

// ErrInvalidDatabase is returned when a syscall database cannot be loaded.
type ErrInvalidDatabase struct {
	Path string
	Err  error
}

// Error implements error.
func (err *ErrInvalidDatabase) Error() string {
	if err.Path == "" {
		return fmt.Sprintf("invalid syscall database: %v", err.Err)
	}
	return fmt.Sprintf("invalid syscall database '%s': %v", err.Path, err.Err)
}

// Unwrap returns the underlying error.
func (err *ErrInvalidDatabase) Unwrap() error {
	return err.Err
}

// LoadDatabase reads a JSON syscall database from a file.
func LoadDatabase(path string) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ErrInvalidDatabase{Path: path, Err: err}
	}
	defer f.Close()

	db, err := ParseDatabase(f)
	if err != nil {
		if dbErr, ok := err.(*ErrInvalidDatabase); ok {
			dbErr.Path = path
		}
		return nil, err
	}
	return db, nil
}

// ParseDatabase decodes a JSON object mapping decimal syscall numbers to
// records:
//
//	{"5": {"name": "SvcFoo", "args": [{"type": "int", "name": "a"}]}}
func ParseDatabase(r io.Reader) (*Database, error) {
	var records map[string]Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, &ErrInvalidDatabase{Err: fmt.Errorf("unable to decode JSON: %w", err)}
	}
	if records == nil {
		return nil, &ErrInvalidDatabase{Err: fmt.Errorf("expected a JSON object")}
	}
	return NewDatabase(records)
}

// NewDatabase validates records and returns a Database holding a copy of them.
// All malformed records are reported at once.
func NewDatabase(records map[string]Record) (*Database, error) {
	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var result *multierror.Error
	db := &Database{records: make(map[string]Record, len(records))}
	for _, key := range keys {
		record := records[key]
		if err := validateRecord(key, record); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		db.records[key] = record.clone()
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, &ErrInvalidDatabase{Err: err}
	}
	return db, nil
}

func validateRecord(key string, record Record) error {
	n, err := strconv.ParseUint(key, 10, 64)
	if err != nil {
		return fmt.Errorf("key '%s' is not a decimal syscall number", key)
	}
	// lookups are done by the canonical form, "05" would never match
	if strconv.FormatUint(n, 10) != key {
		return fmt.Errorf("key '%s' is not in canonical form '%d'", key, n)
	}
	if record.Name == "" {
		return fmt.Errorf("syscall %s: empty name", key)
	}
	for idx, arg := range record.Args {
		if arg.Type == "" || arg.Name == "" {
			return fmt.Errorf("syscall %s (%s): argument #%d needs both a type and a name", key, record.Name, idx)
		}
	}
	return nil
}

// Lookup returns a copy of the record of syscall number n.
func (db *Database) Lookup(n uint64) (Record, bool) {
	if db == nil {
		return Record{}, false
	}
	record, ok := db.records[strconv.FormatUint(n, 10)]
	if !ok {
		return Record{}, false
	}
	return record.clone(), true
}

// Len returns the number of records.
func (db *Database) Len() int {
	if db == nil {
		return 0
	}
	return len(db.records)
}
