// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LevelEnv is the environment variable consulted by ParseLevel when no
// explicit level is given.
const LevelEnv = "PSPLOADER_LOG_LEVEL"

// Level is a verbosity threshold for NewCharmLogger.
type Level = log.Level

// Supported levels.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
)

// ParseLevel converts "debug", "info", "warn" or "error" into a Level.
// An empty string falls back to $PSPLOADER_LOG_LEVEL and then to info.
func ParseLevel(s string) (Level, error) {
	if s == "" {
		s = os.Getenv(LevelEnv)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level '%s'", s)
}

type charmLogger struct {
	logger *log.Logger
}

// NewCharmLogger returns a Logger printing levelled, prefixed records to w.
func NewCharmLogger(w io.Writer, level Level, prefix string) Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           level,
		Prefix:          prefix,
	})
	return charmLogger{logger: l}
}

// Debugf implements Logger.
func (c charmLogger) Debugf(format string, args ...interface{}) {
	c.logger.Debugf(format, args...)
}

// Infof implements Logger.
func (c charmLogger) Infof(format string, args ...interface{}) {
	c.logger.Infof(format, args...)
}

// Warnf implements Logger.
func (c charmLogger) Warnf(format string, args ...interface{}) {
	c.logger.Warnf(format, args...)
}

// Errorf implements Logger.
func (c charmLogger) Errorf(format string, args ...interface{}) {
	c.logger.Errorf(format, args...)
}

// Fatalf implements Logger.
func (c charmLogger) Fatalf(format string, args ...interface{}) {
	c.logger.Fatalf(format, args...)
}
