/*
 * clipshare fetches media shared on Discord into a Plex library.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package flight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{"plain", NewKey("DOWNLOAD", "msg1", "userA"), "DOWNLOAD/msg1/userA"},
		{"slash in subject", NewKey("k", "a/b", "c"), "k/a%2Fb/c"},
		{"empty fields", NewKey("", "", ""), "//"},
		{"percent escaped", NewKey("k", "50%", "c"), "k/50%25/c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
		})
	}
}

func TestKey_StringIsInjective(t *testing.T) {
	a := NewKey("AB", "C", "x")
	b := NewKey("A", "BC", "x")
	c := NewKey("A/B", "C", "x")
	d := NewKey("A", "B/C", "x")
	assert.NotEqual(t, a.String(), b.String())
	assert.NotEqual(t, c.String(), d.String())
	assert.NotEqual(t, a, b)
}

func TestParseKey(t *testing.T) {
	for _, k := range []Key{
		NewKey("DOWNLOAD", "msg1", "userA"),
		NewKey("k", "a/b", "c%d"),
		NewKey("", "", ""),
	} {
		got, err := ParseKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKey("only/two")
	var ke *KeyError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, "only/two", ke.Raw)

	_, err = ParseKey("a/%zz/c")
	require.ErrorAs(t, err, &ke)
	assert.NotNil(t, ke.Unwrap())
}
