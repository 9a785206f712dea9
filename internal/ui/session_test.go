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
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocollage/internal/collage"
	"gocollage/internal/config"
)

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	cfg := config.Defaults()
	cfg.Cache.Dir = t.TempDir()
	return cfg
}

func pngReader(t *testing.T, c color.Color) io.ReadCloser {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return io.NopCloser(&buf)
}

func newSession(t *testing.T, cfg config.AppConfig) *Session {
	t.Helper()
	s := NewSession(cfg)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSession_ApplyLayoutName(t *testing.T) {
	s := newSession(t, testConfig(t))
	if err := s.ApplyLayoutName("2x2"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.Surface.Len() != 4 || s.Surface.State() != collage.StateLayoutApplied {
		t.Fatalf("unexpected surface: len=%d state=%s", s.Surface.Len(), s.Surface.State())
	}
	if err := s.ApplyLayoutName("nope"); err == nil {
		t.Fatalf("expected error for unknown layout")
	}
	if s.Surface.Len() != 4 {
		t.Fatalf("failed lookup must not touch the surface")
	}
}

func TestSession_UploadFlow(t *testing.T) {
	s := newSession(t, testConfig(t))
	if err := s.ApplyLayoutName("2x2"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if r := s.Surface.HandleClick(336, 189); r.Action != collage.ClickSelected {
		t.Fatalf("first click = %s", r.Action)
	}
	r := s.Surface.HandleClick(336, 189)
	if r.Action != collage.ClickUpload {
		t.Fatalf("second click = %s", r.Action)
	}
	res := <-s.Load(context.Background(), "red.png", pngReader(t, color.RGBA{R: 255, A: 255}))
	if err := s.Finish(r.Ticket, res); err != nil {
		t.Fatalf("finish: %v", err)
	}
	sl, _ := s.Surface.Slot(0)
	if !sl.HasImage() {
		t.Fatalf("slot 0 has no image")
	}
	got := color.RGBAModel.Convert(s.Frame().At(336, 189)).(color.RGBA)
	if got.R < 200 || got.G > 40 || got.B > 40 {
		t.Fatalf("expected red pixel at slot center, got %v", got)
	}
	if d := s.Describe(); !strings.Contains(d, "slots=1/4") || !strings.Contains(d, "layout=2x2") || !strings.Contains(d, "bg=#FEFEFE") {
		t.Fatalf("describe = %q", d)
	}
}

func TestSession_FinishStaleAndFailed(t *testing.T) {
	s := newSession(t, testConfig(t))
	_ = s.ApplyLayoutName("2x2")
	tk, ok := s.Surface.UploadTicketFor(1)
	if !ok {
		t.Fatalf("no ticket for slot 1")
	}
	_ = s.ApplyLayoutName("3x2")
	res := <-s.Load(context.Background(), "late.png", pngReader(t, color.White))
	if err := s.Finish(tk, res); err != nil {
		t.Fatalf("stale upload should be dropped silently, got %v", err)
	}
	bad := <-s.Load(context.Background(), "junk.bin", io.NopCloser(strings.NewReader("not an image")))
	tk, _ = s.Surface.UploadTicketFor(0)
	if err := s.Finish(tk, bad); err == nil || !strings.Contains(err.Error(), "junk.bin") {
		t.Fatalf("expected decode error naming the file, got %v", err)
	}
}

func TestSession_ThumbnailCached(t *testing.T) {
	s := newSession(t, testConfig(t))
	ctx := context.Background()
	a, err := s.Thumbnail(ctx, "3x3")
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}
	if !bytes.HasPrefix(a, []byte("\x89PNG")) {
		t.Fatalf("thumbnail is not a PNG")
	}
	b, err := s.Thumbnail(ctx, "3x3")
	if err != nil || !bytes.Equal(a, b) {
		t.Fatalf("second thumbnail differs: %v", err)
	}
	n, err := s.thumbs.Len(ctx)
	if err != nil || n != 1 {
		t.Fatalf("cache rows = %d, %v", n, err)
	}
	if _, err := s.Thumbnail(ctx, "missing"); err == nil {
		t.Fatalf("expected error for unknown layout")
	}
}

func TestSession_NoCacheAndBadCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Disabled = true
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.json")
	s := newSession(t, cfg)
	if s.thumbs != nil {
		t.Fatalf("cache should be disabled")
	}
	if s.Catalog().Len() == 0 {
		t.Fatalf("expected built-in catalog fallback")
	}
	if _, err := s.Thumbnail(context.Background(), "1x1"); err != nil {
		t.Fatalf("uncached thumbnail: %v", err)
	}
}

func TestSession_Export(t *testing.T) {
	s := newSession(t, testConfig(t))
	_ = s.ApplyLayoutName("1x1")
	dir := t.TempDir()
	for _, name := range []string{"out.png", "out.pdf"} {
		p := filepath.Join(dir, name)
		if err := s.Export(p); err != nil {
			t.Fatalf("export %s: %v", name, err)
		}
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Fatalf("export %s produced nothing: %v", name, err)
		}
	}
	if err := s.Export(filepath.Join(dir, "out.gif")); err == nil {
		t.Fatalf("expected unsupported format error")
	}
	uri, err := s.DataURI()
	if err != nil || !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("data uri: %q %v", uri[:min(len(uri), 30)], err)
	}
}
