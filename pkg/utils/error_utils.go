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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrorDetailLevel represents the level of error detail to display
type ErrorDetailLevel int

const (
	// ErrorDetailNone keeps the location prefix but never prints to stderr
	ErrorDetailNone ErrorDetailLevel = iota
	// ErrorDetailSimple prefixes file, line and function (default)
	ErrorDetailSimple
	// ErrorDetailFull adds the goroutine stack
	ErrorDetailFull
)

// getErrorDetailLevel reads ERROR_DETAIL_LEVEL.
func getErrorDetailLevel() ErrorDetailLevel {
	switch strings.ToLower(GetEnvOrDefault("ERROR_DETAIL_LEVEL", "simple")) {
	case "none":
		return ErrorDetailNone
	case "full":
		return ErrorDetailFull
	default:
		return ErrorDetailSimple
	}
}

// LocatedError carries the place an error was reported from. It unwraps to
// the original error so errors.Is and errors.As keep working.
type LocatedError struct {
	Err      error
	File     string
	Line     int
	Function string
	Stack    string
}

func (e *LocatedError) Error() string {
	if e.Stack != "" {
		return fmt.Sprintf(`
Error Location:
  File: %s
  Line: %d
  Function: %s
Error Details:
  %v
Stack Trace:
%s`, e.File, e.Line, e.Function, e.Err, e.Stack)
	}
	return fmt.Sprintf("%s:%d [%s]: %v", e.File, e.Line, e.Function, e.Err)
}

func (e *LocatedError) Unwrap() error { return e.Err }

// locate builds a LocatedError for the caller skip frames above it.
func locate(err error, skip int) error {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return fmt.Errorf("error occurred: %w", err)
	}
	fnName := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		fnName = filepath.Base(fn.Name())
	}
	le := &LocatedError{Err: err, File: filepath.Base(file), Line: line, Function: fnName}
	if getErrorDetailLevel() == ErrorDetailFull {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		lines := strings.Split(string(buf[:n]), "\n")
		if len(lines) > 0 {
			lines = lines[1:]
		}
		le.Stack = strings.Join(lines, "\n")
	}
	return le
}

// ErrorWithLocation wraps err with the caller's location.
func ErrorWithLocation(err error) error {
	if err == nil {
		return nil
	}
	return locate(err, 2)
}

// PrintErrorAndReturn wraps err with the caller's location and writes it to
// stderr unless ERROR_DETAIL_LEVEL=none.
func PrintErrorAndReturn(err error) error {
	if err == nil {
		return nil
	}
	wrapped := locate(err, 2)
	if getErrorDetailLevel() != ErrorDetailNone {
		fmt.Fprintln(os.Stderr, wrapped)
	}
	return wrapped
}
