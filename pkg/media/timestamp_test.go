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

package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"0", 0, false},
		{"42", 42 * time.Second, false},
		{"90", 90 * time.Second, false},
		{"1:30", 90 * time.Second, false},
		{"01:02:03", time.Hour + 2*time.Minute + 3*time.Second, false},
		{"1:02.5", 62*time.Second + 500*time.Millisecond, false},
		{" 2:00 ", 2 * time.Minute, false},
		{"1m30s", 90 * time.Second, false},
		{"2h", 2 * time.Hour, false},
		{"", 0, true},
		{"-5", 0, true},
		{"1:60", 0, true},
		{"1:2:3:4", 0, true},
		{"abc", 0, true},
		{"1:x", 0, true},
		{"1.5:00", 0, true},
		{"5q", 0, true},
		{"1e3", 0, true},
		{"1:1e1", 0, true},
		{"+5", 0, true},
		{"1:+5", 0, true},
		{".5", 0, true},
		{"99999999999", 0, true},
		{"99999999999:00", 0, true},
		{"24:00:00", 24 * time.Hour, false},
		{"24:00:01", 0, true},
		{"25h", 0, true},
		{"9999999h", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimestampEmpty(t *testing.T) {
	_, err := ParseTimestamp("   ")
	assert.ErrorIs(t, err, ErrEmptyTimestamp)
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "0:00", FormatTimestamp(0))
	assert.Equal(t, "1:05", FormatTimestamp(65*time.Second))
	assert.Equal(t, "1:00:05", FormatTimestamp(time.Hour+5*time.Second))
}

func TestClipRange(t *testing.T) {
	c, err := ParseClipRange("1:00", "1:30.5")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second+500*time.Millisecond, c.Length())
	assert.Equal(t, "*60-90.5", c.Section())
	assert.Equal(t, "1:00-1:31", c.String())
	assert.NoError(t, c.Validate(time.Minute))
	assert.Error(t, c.Validate(10*time.Second))

	backwards := ClipRange{Start: time.Minute, End: 30 * time.Second}
	assert.Error(t, backwards.Validate(time.Hour))

	empty := ClipRange{Start: time.Minute, End: time.Minute}
	assert.Error(t, empty.Validate(0))

	negative := ClipRange{Start: -time.Second, End: 10 * time.Second}
	assert.Error(t, negative.Validate(time.Hour))

	_, err = ParseClipRange("99999999999", "10")
	assert.ErrorContains(t, err, "out of range")

	_, err = ParseClipRange("", "1:00")
	assert.ErrorContains(t, err, "start")
	_, err = ParseClipRange("0", "nope")
	assert.ErrorContains(t, err, "end")
}
