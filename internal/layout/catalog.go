/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"gocollage/internal/geometry"
	applog "gocollage/internal/log"
)

//go:embed catalog.schema.json
var catalogSchemaJSON []byte

// CatalogVersion is written into catalogs produced by this package.
const CatalogVersion = 1

// CustomRect is the on-disk form of a hand-placed slot.
type CustomRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Entry is one selectable layout: a named grid plus an optional thumbnail reference.
// A non-empty Custom list turns the entry into a Custom layout.
type Entry struct {
	Name      string       `json:"name"`
	Thumbnail string       `json:"thumbnail,omitempty"`
	Columns   int          `json:"columns"`
	Rows      int          `json:"rows"`
	Custom    []CustomRect `json:"custom,omitempty"`
}

// Layout returns the variant the surface consumes.
func (e Entry) Layout() Layout {
	if len(e.Custom) > 0 {
		rects := make([]geometry.Rect, len(e.Custom))
		for i, c := range e.Custom {
			rects[i] = geometry.Rect{X: c.X, Y: c.Y, W: c.Width, H: c.Height}
		}
		return Custom{Rects: rects}
	}
	return Uniform{Columns: e.Columns, Rows: e.Rows}
}

type catalogFile struct {
	Version int     `json:"version"`
	Layouts []Entry `json:"layouts"`
}

// Catalog is an ordered, name-indexed list of layouts.
type Catalog struct {
	entries []Entry
	byName  map[string]int
}

// NewCatalog builds a catalog, rejecting empty or duplicate names.
func NewCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{entries: make([]Entry, 0, len(entries)), byName: make(map[string]int, len(entries))}
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, errors.New("layout name is required")
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("duplicate layout name %q", name)
		}
		e.Name = name
		c.byName[name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// Builtin returns the grids shipped with the application.
func Builtin() *Catalog {
	grids := [][2]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}, {3, 2}, {2, 3}, {3, 3}, {4, 3}}
	entries := make([]Entry, 0, len(grids))
	for _, g := range grids {
		entries = append(entries, Entry{Name: fmt.Sprintf("%dx%d", g[0], g[1]), Columns: g[0], Rows: g[1]})
	}
	c, err := NewCatalog(entries)
	if err != nil {
		panic(err) // static data
	}
	return c
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Lookup finds an entry by name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	i, ok := c.byName[strings.TrimSpace(name)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Names returns the entry names sorted alphabetically.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON writes the catalog in the same format LoadCatalog reads.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(catalogFile{Version: CatalogVersion, Layouts: c.entries})
}

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func catalogSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(catalogSchemaJSON))
	})
	return schema, schemaErr
}

// ParseCatalog validates data against the catalog schema and decodes it.
func ParseCatalog(data []byte) (*Catalog, error) {
	s, err := catalogSchema()
	if err != nil {
		return nil, fmt.Errorf("load catalog schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("catalog does not match schema: %s", strings.Join(msgs, "; "))
	}
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewCatalog(f.Layouts)
}

// LoadCatalog reads a catalog file. An empty path yields the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin(), nil
	}
	l := applog.WithOperation(applog.WithComponent("layout"), "load_catalog").With(slog.String("path", path))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		l.Error("catalog rejected", slog.Any("err", err))
		return nil, err
	}
	l.Debug("catalog loaded", slog.Int("layouts", c.Len()))
	return c, nil
}
