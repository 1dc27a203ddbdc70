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

package utils

import (
	"os"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in    string
		debug bool
		want  LogLevel
	}{
		{"debug", false, LevelDebug},
		{"INFO", false, LevelInfo},
		{"warning", false, LevelWarn},
		{" error ", false, LevelError},
		{"", false, LevelInfo},
		{"", true, LevelDebug},
		{"bogus", true, LevelDebug},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in, tt.debug); got != tt.want {
			t.Errorf("ParseLogLevel(%q, %v) = %v, want %v", tt.in, tt.debug, got, tt.want)
		}
	}
}

func TestFormatLine(t *testing.T) {
	got := formatLine("2025-01-01 00:00:00.000", LevelWarn, "bot.go:12", "hello")
	want := "2025-01-01 00:00:00.000 [WARN] (bot.go:12) hello"
	if got != want {
		t.Errorf("formatLine() = %q, want %q", got, want)
	}
	if LogLevel(42).String() != "UNKNOWN" {
		t.Errorf("unknown level should render as UNKNOWN")
	}
}

func TestMaskString(t *testing.T) {
	tests := map[string]string{
		"":                   "[empty]",
		"abc":                "a******",
		"abcdefgh":           "a******",
		"abcdefghijklmnopqr": "abcd...opqr",
	}
	for in, want := range tests {
		if got := MaskString(in); got != want {
			t.Errorf("MaskString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := HumanBytes(tt.in); got != tt.want {
			t.Errorf("HumanBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CLIPSHARE_TEST_STR", "value")
	t.Setenv("CLIPSHARE_TEST_INT", "42")
	t.Setenv("CLIPSHARE_TEST_BAD", "forty")

	if got := GetEnvOrDefault("CLIPSHARE_TEST_STR", "x"); got != "value" {
		t.Errorf("GetEnvOrDefault = %q", got)
	}
	if got := GetEnvOrDefault("CLIPSHARE_TEST_MISSING", "x"); got != "x" {
		t.Errorf("GetEnvOrDefault default = %q", got)
	}
	if got := GetEnvInt("CLIPSHARE_TEST_INT", 1); got != 42 {
		t.Errorf("GetEnvInt = %d", got)
	}
	if got := GetEnvInt("CLIPSHARE_TEST_BAD", 7); got != 7 {
		t.Errorf("GetEnvInt malformed = %d", got)
	}
}

func TestConfigureLoggingWritesFile(t *testing.T) {
	path := t.TempDir() + "/logs/clipshare.log"
	ConfigureLogging(LogOptions{Level: LevelInfo, FilePath: path, MaxSizeMB: 1, MaxBackups: 1})
	defer ConfigureLogging(LogOptions{Level: LevelInfo})

	InfoLog("file logging %s", "works")
	Close()

	data, err := readFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(data, "[INFO]") || !strings.Contains(data, "file logging works") {
		t.Errorf("log file content = %q", data)
	}
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}
