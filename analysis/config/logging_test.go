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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogGroupLevels(t *testing.T) {
	cfg := NewDefault()
	cfg.LogLevel = int(WarnLevel)
	logger := NewLogGroup(cfg)
	var buf bytes.Buffer
	logger.SetAllOutput(&buf)
	logger.SetTimestamps(false)

	logger.Infof("hidden %d", 1)
	logger.Debugf("hidden %d", 2)
	logger.Warnf("shown %d", 3)
	logger.Errorf("shown %d", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"[WARNING] shown 3", "[ERROR] shown 4"}, lines)
	assert.False(t, logger.LogsDebug())
	assert.Equal(t, WarnLevel, logger.Level())
}

func TestLogGroupTrace(t *testing.T) {
	cfg := NewDefault()
	cfg.LogLevel = int(TraceLevel)
	logger := NewLogGroup(cfg)
	var buf bytes.Buffer
	logger.SetAllOutput(&buf)
	logger.SetTimestamps(false)
	logger.Tracef("step")
	assert.Equal(t, "[TRACE] step\n", buf.String())
	assert.True(t, logger.LogsTrace())
}

func TestLogGroupNilConfig(t *testing.T) {
	assert.Equal(t, InfoLevel, NewLogGroup(nil).Level())
}

func TestLogGroupSilenceWarn(t *testing.T) {
	cfg := NewDefault()
	cfg.SilenceWarn = true
	logger := NewLogGroup(cfg)
	var buf bytes.Buffer
	logger.SetAllOutput(&buf)
	logger.SetTimestamps(false)
	logger.Warnf("hidden")
	logger.Errorf("shown")
	assert.Equal(t, "[ERROR] shown\n", buf.String())
}
