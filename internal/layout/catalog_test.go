/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltinCatalog(t *testing.T) {
	c := Builtin()
	e, ok := c.Lookup("2x2")
	if !ok {
		t.Fatalf("builtin catalog lacks 2x2")
	}
	u, ok := e.Layout().(Uniform)
	if !ok || u.Columns != 2 || u.Rows != 2 {
		t.Fatalf("unexpected 2x2 layout: %#v", e.Layout())
	}
	if e3, _ := c.Lookup("3x2"); e3.Columns != 3 || e3.Rows != 2 {
		t.Fatalf("3x2 should be 3 columns by 2 rows: %+v", e3)
	}
}

func TestParseCatalog_ValidAndCustom(t *testing.T) {
	data := []byte(`{
		"version": 1,
		"layouts": [
			{"name": "2x2", "thumbnail": "assets/images/2x2-Layout.webp", "columns": 2, "rows": 2},
			{"name": "hero", "custom": [{"x": 0.1, "y": 0.1, "width": 0.8, "height": 0.5}]}
		]
	}`)
	c, err := ParseCatalog(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	hero, _ := c.Lookup("hero")
	if hero.Layout().Kind() != KindCustom {
		t.Fatalf("entry with custom rects should be a custom layout")
	}
}

func TestParseCatalog_SchemaViolation(t *testing.T) {
	_, err := ParseCatalog([]byte(`{"layouts": [{"name": "bad", "columns": "two"}]}`))
	if err == nil || !strings.Contains(err.Error(), "schema") {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestParseCatalog_DuplicateNames(t *testing.T) {
	_, err := ParseCatalog([]byte(`{"layouts": [{"name": "a", "columns": 1, "rows": 1}, {"name": "a", "columns": 2, "rows": 1}]}`))
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestLoadCatalog_FileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal(Builtin())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(dir, "layouts.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Len() != Builtin().Len() {
		t.Fatalf("expected %d entries, got %d", Builtin().Len(), c.Len())
	}
	if _, err := LoadCatalog(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if c, err := LoadCatalog(""); err != nil || c.Len() == 0 {
		t.Fatalf("empty path should give builtin catalog: %v", err)
	}
}
