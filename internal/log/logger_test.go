/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestInitAndStructuredLoggingToFile verifies that Init with a file sink writes JSON logs
// carrying the static and contextual attributes.
func TestInitAndStructuredLoggingToFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "gocollage.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "json", File: fpath, Console: &console})
	t.Cleanup(func() { Init(Options{Console: &bytes.Buffer{}}) })

	l := WithOperation(WithComponent("testcomp"), "op1")
	l.Info("hello world", slog.String("k", "v"))

	// lumberjack writes synchronously, but give slow filesystems a moment
	time.Sleep(20 * time.Millisecond)

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if m["app"] != "gocollage" {
		t.Fatalf("missing app attr: %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "testcomp" || m["op"] != "op1" || m["k"] != "v" {
		t.Fatalf("context attrs mismatch: %v", m)
	}
	if m["msg"] != "hello world" {
		t.Fatalf("msg mismatch: %v", m["msg"])
	}
	if !strings.Contains(console.String(), `"msg":"hello world"`) {
		t.Fatalf("console json sink missing record: %q", console.String())
	}
}

func TestConsoleLineFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Console: &buf})
	t.Cleanup(func() { Init(Options{Console: &bytes.Buffer{}}) })

	WithComponent("surface").Info("layout applied", slog.Int("slots", 4), slog.Float64("spacing", 0.05), slog.String("name", "two words"))
	line := buf.String()
	for _, want := range []string{" INF layout applied", "component=surface", "slots=4", "spacing=0.05", `name="two words"`, "app=gocollage"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q lacks %q", line, want)
		}
	}
}

func TestLevelFilteringAndSetLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Console: &buf})
	t.Cleanup(func() { Init(Options{Console: &bytes.Buffer{}}) })

	L().Info("dropped")
	L().Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "WRN kept") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
	SetLevel("debug")
	L().Debug("now visible")
	if !strings.Contains(buf.String(), "DBG now visible") {
		t.Fatalf("SetLevel did not lower the threshold: %q", buf.String())
	}
}

func TestGroupsPrefixKeys(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Console: &buf})
	t.Cleanup(func() { Init(Options{Console: &bytes.Buffer{}}) })

	L().WithGroup("slot").Info("hovered", slog.Int("index", 2))
	if !strings.Contains(buf.String(), "slot.index=2") {
		t.Fatalf("expected grouped key, got %q", buf.String())
	}
}

func TestParseLevelAndFromEnv(t *testing.T) {
	if ParseLevel("WARNING") != slog.LevelWarn || ParseLevel("bogus") != slog.LevelInfo {
		t.Fatalf("unexpected level parsing")
	}
	t.Setenv("GCL_LOG_LEVEL", "error")
	t.Setenv("GCL_LOG_FORMAT", "json")
	t.Setenv("GCL_LOG_SOURCE", "TRUE")
	t.Setenv("GCL_LOG_FILE", "/tmp/x.log")
	o := FromEnv()
	if o.Level != "error" || o.Format != "json" || !o.AddSource || o.File != "/tmp/x.log" {
		t.Fatalf("unexpected options: %+v", o)
	}
}
