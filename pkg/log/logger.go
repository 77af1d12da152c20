// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package log is the logging facade of psploader. Libraries log through
// the package-level functions, executables pick the implementation by
// replacing DefaultLogger.
package log

import (
	"io"
	"log"
	"os"
)

// Logger describes a logger to be used in psploader.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	// Fatalf logs a fatal message and immediately exits the application
	// with os.Exit.
	Fatalf(format string, args ...interface{})
}

// DefaultLogger is the logger used by default everywhere within psploader.
// Libraries do not print anything below the level from $PSPLOADER_LOG_LEVEL.
var DefaultLogger Logger

func init() {
	level, err := ParseLevel("")
	DefaultLogger = NewStdLogger(os.Stderr, level)
	if err != nil {
		DefaultLogger.Warnf("%v, using info", err)
	}
}

type stdLogger struct {
	logger *log.Logger
	level  Level
}

// NewStdLogger returns a Logger based on the standard library logger. Each
// record is tagged with "[psploader][LEVEL]".
func NewStdLogger(w io.Writer, level Level) Logger {
	return stdLogger{logger: log.New(w, "", log.LstdFlags), level: level}
}

func (l stdLogger) logf(level Level, tag, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.logger.Printf("[psploader]["+tag+"] "+format, args...)
}

// Debugf implements Logger.
func (l stdLogger) Debugf(format string, args ...interface{}) {
	l.logf(LevelDebug, "DEBUG", format, args...)
}

// Infof implements Logger.
func (l stdLogger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, "INFO", format, args...)
}

// Warnf implements Logger.
func (l stdLogger) Warnf(format string, args ...interface{}) {
	l.logf(LevelWarn, "WARN", format, args...)
}

// Errorf implements Logger.
func (l stdLogger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, "ERROR", format, args...)
}

// Fatalf implements Logger. It is never filtered.
func (l stdLogger) Fatalf(format string, args ...interface{}) {
	l.logger.Fatalf("[psploader][FATAL] "+format, args...)
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) {
	DefaultLogger.Debugf(format, args...)
}

// Infof logs an informational message.
func Infof(format string, args ...interface{}) {
	DefaultLogger.Infof(format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	DefaultLogger.Warnf(format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	DefaultLogger.Errorf(format, args...)
}

// Fatalf logs a fatal message and exits with os.Exit(1).
func Fatalf(format string, args ...interface{}) {
	DefaultLogger.Fatalf(format, args...)
}
