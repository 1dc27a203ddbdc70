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
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Plain Title", "Plain Title"},
		{"../../etc/passwd", "_.._etc_passwd"},
		{`a\b:c*d?e"f<g>h|i`, "a_b_c_d_e_f_g_h_i"},
		{"tabs\tand\n\nnewlines", "tabs and newlines"},
		{"  ..hidden.. ", "hidden"},
		{"bell\a char", "bell char"},
		{"", "untitled"},
		{"...", "untitled"},
		{"日本語のタイトル", "日本語のタイトル"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilenameLength(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("é", 300))
	assert.Equal(t, maxFilenameRunes, utf8.RuneCountInString(got))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `\*\*bold\*\* \_x\_ \`+"`"+`code\`+"`", EscapeMarkdown("**bold** _x_ `code`"))
	assert.Equal(t, `a \| b \> c \[d\]`, EscapeMarkdown("a | b > c [d]"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "…", Truncate("abc", 1))
	assert.Equal(t, "abc", Truncate("abc", 0))
}
