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
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents logging levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// LogOptions controls where and how much we log.
type LogOptions struct {
	Level      LogLevel
	Debug      bool
	FilePath   string // empty keeps stdout only
	MaxSizeMB  int
	MaxBackups int
}

var (
	logMu   sync.RWMutex
	logOpts = LogOptions{Level: LevelInfo}
	logFile *lumberjack.Logger
)

func init() {
	opts := LogOptions{
		Debug:      os.Getenv("DEBUG_LOGGING") == "true",
		Level:      ParseLogLevel(os.Getenv("LOG_LEVEL"), os.Getenv("DEBUG_LOGGING") == "true"),
		FilePath:   os.Getenv("LOG_FILE"),
		MaxSizeMB:  GetEnvInt("LOG_MAX_SIZE_MB", 50),
		MaxBackups: GetEnvInt("LOG_MAX_BACKUPS", 3),
	}
	ConfigureLogging(opts)
}

// ParseLogLevel maps a LOG_LEVEL value to a LogLevel. Unknown values fall back
// to debug when debug logging is on, info otherwise.
func ParseLogLevel(s string, debug bool) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	if debug {
		return LevelDebug
	}
	return LevelInfo
}

// ConfigureLogging replaces the current logging setup. When a file path is
// set, output goes to both stdout and a size-rotated file.
func ConfigureLogging(opts LogOptions) {
	logMu.Lock()
	defer logMu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	logOpts = opts

	if opts.FilePath == "" {
		log.SetOutput(os.Stdout)
		return
	}
	if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
		log.Printf("Error creating log directory: %v", err)
	}
	logFile = &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, logFile))
}

// Close closes any open log files
func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	log.SetOutput(os.Stdout)
}

// InfoLog logs an info message
func InfoLog(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		logWithCaller(LevelInfo, format, v...)
	}
}

// WarnLog logs a warning message
func WarnLog(format string, v ...interface{}) {
	if enabled(LevelWarn) {
		logWithCaller(LevelWarn, format, v...)
	}
}

// DebugLog logs a debug message if debug logging is enabled
func DebugLog(format string, v ...interface{}) {
	logMu.RLock()
	on := logOpts.Debug || logOpts.Level == LevelDebug
	logMu.RUnlock()
	if on {
		logWithCaller(LevelDebug, format, v...)
	}
}

// ErrorLog logs an error message
func ErrorLog(format string, v ...interface{}) {
	if enabled(LevelError) {
		logWithCaller(LevelError, format, v...)
	}
}

func enabled(level LogLevel) bool {
	logMu.RLock()
	defer logMu.RUnlock()
	return logOpts.Level <= level
}

// logWithCaller logs a message with caller information
func logWithCaller(level LogLevel, format string, v ...interface{}) {
	_, file, line, ok := runtime.Caller(2)
	caller := "unknown"
	if ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	log.Println(formatLine(timestamp, level, caller, fmt.Sprintf(format, v...)))
}

func formatLine(timestamp string, level LogLevel, caller, message string) string {
	return fmt.Sprintf("%s [%s] (%s) %s", timestamp, level, caller, message)
}

// String converts a LogLevel to its upper-case name
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
