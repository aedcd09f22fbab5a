// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package main

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/mediarec/internal/database"
)

// run executes the CLI with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "admin.duckdb")
}

func seeded(t *testing.T) string {
	t.Helper()
	path := tempDB(t)
	_, err := run(t, "seed", "--db", path, "--bcrypt-cost", "4")
	require.NoError(t, err)
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "mediarec-admin version dev\n", out)

	out, err = run(t, "version", "--json")
	require.NoError(t, err)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "dev", v["version"])
}

func TestSeed_Idempotent(t *testing.T) {
	path := tempDB(t)

	out, err := run(t, "seed", "--db", path, "--bcrypt-cost", "4", "--json")
	require.NoError(t, err)
	var first database.SeedResult
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.Equal(t, 2, first.Users)
	assert.Equal(t, 15, first.Content)

	out, err = run(t, "seed", "--db", path, "--bcrypt-cost", "4")
	require.NoError(t, err)
	assert.Equal(t, "Seeded 0 users and 0 content items\n", out)
}

func TestSeed_RejectsBadCost(t *testing.T) {
	_, err := run(t, "seed", "--db", tempDB(t), "--bcrypt-cost", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--bcrypt-cost")
}

func TestUsersList(t *testing.T) {
	path := seeded(t)

	out, err := run(t, "users", "list", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "admin")
	assert.Contains(t, out, "testuser")
	assert.True(t, strings.HasSuffix(out, "2 of 2 users\n"), "unexpected footer in %q", out)

	out, err = run(t, "users", "list", "--db", path, "--json", "--limit", "1")
	require.NoError(t, err)
	var list userList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Len(t, list.Users, 1)
	assert.EqualValues(t, 2, list.Total)

	_, err = run(t, "users", "list", "--db", path, "--limit", "0")
	assert.Error(t, err)
}

func TestUsersBlockUnblock(t *testing.T) {
	path := seeded(t)

	out, err := run(t, "users", "list", "--db", path, "--json")
	require.NoError(t, err)
	var list userList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	var id int64
	for _, u := range list.Users {
		if u.Username == "testuser" {
			id = u.ID
		}
	}
	require.NotZero(t, id, "testuser not listed")
	idArg := strconv.FormatInt(id, 10)

	out, err = run(t, "users", "block", idArg, "--db", path)
	require.NoError(t, err)
	assert.Equal(t, "User testuser has been blocked\n", out)

	out, err = run(t, "users", "unblock", idArg, "--db", path, "--json")
	require.NoError(t, err)
	var change activeChange
	require.NoError(t, json.Unmarshal([]byte(out), &change))
	assert.False(t, change.Previous)
	assert.True(t, change.IsActive)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing user", []string{"users", "block", "9999"}, "not found"},
		{"bad id", []string{"users", "block", "abc"}, "invalid user id"},
		{"zero id", []string{"users", "unblock", "0"}, "invalid user id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(tt.args, "--db", path)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
