/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strings"

	"gocollage/internal/collage"
	"gocollage/internal/config"
	"gocollage/internal/export"
	"gocollage/internal/imageload"
	"gocollage/internal/layout"
	applog "gocollage/internal/log"
	"gocollage/internal/render"
	"gocollage/internal/thumbcache"
)

// ThumbSize is the pixel size of layout picker buttons.
const ThumbSize = 96

// Session holds everything a collage window edits: the surface, its raster,
// the image loader, the layout catalog and an optional thumbnail cache.
// Methods are not safe for concurrent use and belong to the UI goroutine;
// only the loader's decode runs elsewhere.
type Session struct {
	Surface *collage.Surface

	cfg     config.AppConfig
	raster  *render.Raster
	loader  *imageload.Loader
	catalog *layout.Catalog
	thumbs  *thumbcache.Cache
	log     *slog.Logger
}

// NewSession builds a session from the user config. A catalog that fails to
// load falls back to the built-in grids; a cache that fails to open is
// disabled. Both problems are logged, not returned.
func NewSession(cfg config.AppConfig) *Session {
	l := applog.WithComponent("ui")
	s := &Session{
		cfg:    cfg,
		raster: render.NewRaster(),
		loader: imageload.New(imageload.WithLogger(l)),
		log:    l,
	}
	s.Surface = collage.NewSurface(s.raster,
		collage.WithLogger(l),
		collage.WithConfig(cfg.Canvas),
		collage.WithFrameRate(cfg.Animation.FPS),
	)

	s.catalog = layout.Builtin()
	if p := strings.TrimSpace(cfg.Catalog.Path); p != "" {
		if c, err := layout.LoadCatalog(p); err != nil {
			l.Warn("catalog load failed, using built-in layouts", slog.String("path", p), slog.Any("err", err))
		} else {
			s.catalog = c
		}
	}

	if !cfg.Cache.Disabled {
		if c, err := thumbcache.Open(cfg.CacheDir(), cfg.Cache.MaxBytes); err != nil {
			l.Warn("thumbnail cache disabled", slog.Any("err", err))
		} else {
			s.thumbs = c
		}
	}
	return s
}

// Close releases the thumbnail cache.
func (s *Session) Close() error {
	if s.thumbs == nil {
		return nil
	}
	err := s.thumbs.Close()
	s.thumbs = nil
	return err
}

// Catalog returns the layouts offered in the picker.
func (s *Session) Catalog() *layout.Catalog { return s.catalog }

// Frame returns a copy of the last drawn frame.
func (s *Session) Frame() image.Image { return s.raster.Snapshot() }

// ApplyLayoutName looks up a catalog entry and applies it.
func (s *Session) ApplyLayoutName(name string) error {
	e, ok := s.catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown layout %q", name)
	}
	return s.Surface.ApplyLayout(e.Layout())
}

// Thumbnail returns PNG bytes for a catalog entry, through the cache when
// one is open.
func (s *Session) Thumbnail(ctx context.Context, name string) ([]byte, error) {
	e, ok := s.catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown layout %q", name)
	}
	gen := func(context.Context) ([]byte, error) {
		img, err := render.Thumbnail(e.Layout(), ThumbSize, ThumbSize, collage.WithConfig(s.cfg.Canvas))
		if err != nil {
			return nil, err
		}
		return export.PNGBytes(img)
	}
	if s.thumbs == nil {
		return gen(ctx)
	}
	k := thumbcache.Key{Layout: e.Name + ":" + e.Layout().String(), W: ThumbSize, H: ThumbSize, Style: thumbcache.StyleKey(s.cfg.Canvas)}
	data, _, err := s.thumbs.GetOrCreate(ctx, k, gen)
	return data, err
}

// Load starts decoding rc off the UI goroutine. The returned channel yields
// the outcome once; pass it to Finish on the UI goroutine.
func (s *Session) Load(ctx context.Context, name string, rc io.ReadCloser) <-chan imageload.Result {
	return s.loader.LoadReader(ctx, name, rc)
}

// Finish places a decoded image into the slot named by the ticket. A stale
// ticket is not an error for the user; it is logged and dropped.
func (s *Session) Finish(t collage.UploadTicket, res imageload.Result) error {
	if res.Err != nil {
		return fmt.Errorf("load %s: %w", res.Name, res.Err)
	}
	if err := s.Surface.CompleteUpload(t, res.Image); err != nil {
		if errors.Is(err, collage.ErrStaleSlot) {
			return nil
		}
		return err
	}
	return nil
}

// Export writes the current frame as PNG or PDF, chosen by extension.
func (s *Session) Export(path string) error {
	return export.Write(path, s.Frame(), export.PDFOptions{Title: "Collage"})
}

// DataURI returns the current frame as a PNG data URI.
func (s *Session) DataURI() (string, error) { return export.DataURI(s.Frame()) }

// Describe summarises the session for crash reports and the status bar.
func (s *Session) Describe() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "state=%s size=%dx%d", s.Surface.State(), s.Surface.Width(), s.Surface.Height())
	if l := s.Surface.Layout(); l != nil {
		fmt.Fprintf(&b, " layout=%s", l)
	}
	filled := 0
	for _, sl := range s.Surface.Slots() {
		if sl.HasImage() {
			filled++
		}
	}
	fmt.Fprintf(&b, " slots=%d/%d bg=%s", filled, s.Surface.Len(), collage.HexColor(s.Surface.Background()))
	return b.String()
}
