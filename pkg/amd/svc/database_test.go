// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svc

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"
)

func TestLoadDatabase(t *testing.T) {
	db, err := LoadDatabase("testdata/syscalls.json")
	require.NoError(t, err)
	require.Equal(t, 4, db.Len())

	record, ok := db.Lookup(5)
	require.True(t, ok)
	require.Equal(t, "SvcFoo", record.Name)
	require.Equal(t, "SvcFoo(int a)", record.Signature())

	record, ok = db.Lookup(6)
	require.True(t, ok)
	require.Equal(t, "SvcMapSmn(uint32_t addr, void ** mapped)", record.Signature())

	record, ok = db.Lookup(1)
	require.True(t, ok)
	require.Equal(t, "SvcAppInit()", record.Signature())

	_, ok = db.Lookup(2)
	require.False(t, ok)
}

func TestLoadDatabaseMissingFile(t *testing.T) {
	_, err := LoadDatabase("testdata/no_such_file.json")
	var errDB *ErrInvalidDatabase
	require.ErrorAs(t, err, &errDB)
	require.Equal(t, "testdata/no_such_file.json", errDB.Path)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadDatabaseMalformed(t *testing.T) {
	_, err := LoadDatabase("testdata/malformed.json")
	var errDB *ErrInvalidDatabase
	require.ErrorAs(t, err, &errDB)
	require.Equal(t, "testdata/malformed.json", errDB.Path)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 4)
	require.Contains(t, err.Error(), "'05'")
	require.Contains(t, err.Error(), "'seven'")
	require.Contains(t, err.Error(), "syscall 8: empty name")
	require.Contains(t, err.Error(), "SvcNoArgType")
}

func TestParseDatabaseUnparsable(t *testing.T) {
	for name, input := range map[string]string{
		"not_json": `{"5": `,
		"array":    `[{"name": "SvcFoo"}]`,
		"null":     `null`,
		"bad_args": `{"5": {"name": "SvcFoo", "args": "int a"}}`,
		"bad_name": `{"5": {"name": 5}}`,
	} {
		t.Run(name, func(t *testing.T) {
			db, err := ParseDatabase(strings.NewReader(input))
			require.Nil(t, db)
			var errDB *ErrInvalidDatabase
			require.ErrorAs(t, err, &errDB)
		})
	}
}

func TestNewDatabaseCopies(t *testing.T) {
	records := map[string]Record{
		"5": {Name: "SvcFoo", Args: []Arg{{Type: "int", Name: "a"}}},
	}
	db, err := NewDatabase(records)
	require.NoError(t, err)

	records["5"].Args[0].Name = "changed"
	records["6"] = Record{Name: "SvcBar"}

	record, ok := db.Lookup(5)
	require.True(t, ok)
	require.Equal(t, "SvcFoo(int a)", record.Signature())
	require.Equal(t, 1, db.Len())
}

func TestNilDatabase(t *testing.T) {
	var db *Database
	_, ok := db.Lookup(5)
	require.False(t, ok)
	require.Equal(t, 0, db.Len())
}

func TestLookupReturnsCopy(t *testing.T) {
	db, err := LoadDatabase("testdata/syscalls.json")
	require.NoError(t, err)

	record, ok := db.Lookup(5)
	require.True(t, ok)
	record.Args[0].Name = "changed"
	record.Name = "SvcBar"

	record, ok = db.Lookup(5)
	require.True(t, ok)
	require.Equal(t, "SvcFoo(int a)", record.Signature())
}
