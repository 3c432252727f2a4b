// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-script-analyzer/internal/funcutil"
	"github.com/sirupsen/logrus"
)

// LogLevel is the verbosity of a LogGroup, as set by the log-level option
type LogLevel int

const (
	// ErrLevel=1 - the minimum level of logging.
	ErrLevel LogLevel = iota + 1

	// WarnLevel=2 - the level for logging warnings, and errors
	WarnLevel

	// InfoLevel=3 - the level for logging high-level information, results
	InfoLevel

	// DebugLevel=4 - the level for debugging information. The tool will run properly on large programs with
	// that level of debug information.
	DebugLevel

	// TraceLevel=5 - the level for tracing. Every worklist step is logged; only use on small programs.
	TraceLevel
)

func (l LogLevel) logrusLevel() logrus.Level {
	switch {
	case l <= ErrLevel:
		return logrus.ErrorLevel
	case l == WarnLevel:
		return logrus.WarnLevel
	case l == InfoLevel:
		return logrus.InfoLevel
	case l == DebugLevel:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

// prefixFormatter prints entries as "[LEVEL] message", one per line, with the optional fields appended.
type prefixFormatter struct {
	timestamps bool
}

func (f prefixFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	if f.timestamps {
		b.WriteString(entry.Time.Format("2006/01/02 15:04:05 "))
	}
	b.WriteString("[")
	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteString("] ")
	b.WriteString(strings.TrimSuffix(entry.Message, "\n"))
	for _, k := range funcutil.SortedKeys(map[string]interface{}(entry.Data)) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteString("\n")
	return b.Bytes(), nil
}

// LogGroup is a group of loggers at the different levels used by the analyses. A message is printed when the group's
// level is at least the level of the message.
type LogGroup struct {
	level       LogLevel
	silenceWarn bool
	logger      *logrus.Logger
}

// NewLogGroup returns a log group with the log level of config, printing to stderr.
func NewLogGroup(config *Config) *LogGroup {
	level := InfoLevel
	silenceWarn := false
	if config != nil {
		if config.LogLevel > 0 {
			level = LogLevel(config.LogLevel)
		}
		silenceWarn = config.SilenceWarn
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level.logrusLevel())
	logger.SetFormatter(prefixFormatter{timestamps: true})
	return &LogGroup{level: level, silenceWarn: silenceWarn, logger: logger}
}

// SetAllOutput redirects all the levels to w
func (l *LogGroup) SetAllOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// SetTimestamps enables or disables the timestamp printed before each message
func (l *LogGroup) SetTimestamps(on bool) {
	l.logger.SetFormatter(prefixFormatter{timestamps: on})
}

// Level returns the level of the group
func (l *LogGroup) Level() LogLevel {
	return l.level
}

// LogsDebug returns true when debug messages are printed
func (l *LogGroup) LogsDebug() bool {
	return l.level >= DebugLevel
}

// LogsTrace returns true when trace messages are printed
func (l *LogGroup) LogsTrace() bool {
	return l.level >= TraceLevel
}

// Logger returns the underlying logrus logger
func (l *LogGroup) Logger() *logrus.Logger {
	return l.logger
}

// Tracef logs a message at the trace level
func (l *LogGroup) Tracef(format string, v ...any) {
	if l.level >= TraceLevel {
		l.logger.Tracef(format, v...)
	}
}

// Debugf logs a message at the debug level
func (l *LogGroup) Debugf(format string, v ...any) {
	if l.level >= DebugLevel {
		l.logger.Debugf(format, v...)
	}
}

// Infof logs a message at the info level
func (l *LogGroup) Infof(format string, v ...any) {
	if l.level >= InfoLevel {
		l.logger.Infof(format, v...)
	}
}

// Warnf logs a message at the warning level, unless the warnings are silenced
func (l *LogGroup) Warnf(format string, v ...any) {
	if l.level >= WarnLevel && !l.silenceWarn {
		l.logger.Warnf(format, v...)
	}
}

// Errorf logs a message at the error level
func (l *LogGroup) Errorf(format string, v ...any) {
	if l.level >= ErrLevel {
		l.logger.Errorf(format, v...)
	}
}
