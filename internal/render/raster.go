/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render paints collage surfaces into in-memory RGBA buffers.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"reflect"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"gocollage/internal/collage"
	"gocollage/internal/geometry"
	"gocollage/internal/layout"
)

// DefaultLabelSize is the placeholder label size in points at 72 DPI.
const DefaultLabelSize = 14

const scaledCacheSize = 16

var (
	fontOnce sync.Once
	fontTTF  *truetype.Font
	fontErr  error
)

func labelFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		fontTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	return fontTTF, fontErr
}

type scaledKey struct {
	img    image.Image
	src    image.Rectangle
	dw, dh int
}

// Raster is a collage.RenderTarget backed by a gg context. The buffer is
// reused between frames of the same size.
type Raster struct {
	dc   *gg.Context
	w, h int
	face font.Face

	// resampled slot images, most recent last
	scaled []scaledEntry
}

type scaledEntry struct {
	key scaledKey
	img *image.RGBA
}

var _ collage.RenderTarget = (*Raster)(nil)

func NewRaster() *Raster { return &Raster{} }

func (r *Raster) Begin(w, h int) {
	if r.dc == nil || w != r.w || h != r.h {
		r.dc = gg.NewContext(w, h)
		r.w, r.h = w, h
	} else {
		r.dc.Identity()
		r.dc.ResetClip()
		r.dc.ClearPath()
	}
	r.dc.SetColor(color.Transparent)
	r.dc.Clear()
}

func (r *Raster) FillRect(rc geometry.Rect, c color.Color) {
	r.dc.DrawRectangle(rc.X, rc.Y, rc.W, rc.H)
	r.dc.SetColor(c)
	r.dc.Fill()
}

func (r *Raster) StrokeRect(rc geometry.Rect, radius, lineWidth float64, c color.Color) {
	if lineWidth <= 0 {
		return
	}
	r.path(rc, radius)
	r.dc.SetLineWidth(lineWidth)
	r.dc.SetColor(c)
	r.dc.Stroke()
}

func (r *Raster) Push() { r.dc.Push() }
func (r *Raster) Pop()  { r.dc.Pop() }

func (r *Raster) ScaleAbout(s float64, center geometry.Pt) {
	r.dc.ScaleAbout(s, s, center.X, center.Y)
}

func (r *Raster) ClipRect(rc geometry.Rect, radius float64) {
	r.path(rc, radius)
	r.dc.Clip()
}

func (r *Raster) path(rc geometry.Rect, radius float64) {
	if radius > 0 {
		radius = math.Min(radius, math.Min(rc.W, rc.H)/2)
		r.dc.DrawRoundedRectangle(rc.X, rc.Y, rc.W, rc.H, radius)
		return
	}
	r.dc.DrawRectangle(rc.X, rc.Y, rc.W, rc.H)
}

// DrawImage resamples the src region of img to the size of dst with
// Catmull-Rom and draws it through the current transform and clip.
func (r *Raster) DrawImage(img image.Image, src, dst geometry.Rect) {
	if img == nil || src.Empty() {
		return
	}
	dw, dh := int(math.Round(dst.W)), int(math.Round(dst.H))
	if dw <= 0 || dh <= 0 {
		return
	}
	sr := image.Rect(
		int(math.Round(src.X)), int(math.Round(src.Y)),
		int(math.Round(src.X+src.W)), int(math.Round(src.Y+src.H)),
	).Intersect(img.Bounds())
	if sr.Empty() {
		return
	}
	scaled := r.resample(img, sr, dw, dh)
	r.dc.DrawImage(scaled, int(math.Round(dst.X)), int(math.Round(dst.Y)))
}

func (r *Raster) resample(img image.Image, sr image.Rectangle, dw, dh int) *image.RGBA {
	cacheable := reflect.TypeOf(img).Comparable()
	key := scaledKey{src: sr, dw: dw, dh: dh}
	if cacheable {
		key.img = img
		for i, e := range r.scaled {
			if e.key == key {
				// move to the back
				r.scaled = append(append(r.scaled[:i:i], r.scaled[i+1:]...), e)
				return e.img
			}
		}
	}
	out := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, sr, xdraw.Src, nil)
	if cacheable {
		if len(r.scaled) >= scaledCacheSize {
			r.scaled = r.scaled[1:]
		}
		r.scaled = append(r.scaled, scaledEntry{key: key, img: out})
	}
	return out
}

// DrawLabel centers text on center using Go Regular.
func (r *Raster) DrawLabel(text string, center geometry.Pt, c color.Color) {
	if text == "" {
		return
	}
	if r.face == nil {
		f, err := labelFont()
		if err != nil {
			return
		}
		r.face = truetype.NewFace(f, &truetype.Options{Size: DefaultLabelSize, DPI: 72, Hinting: font.HintingFull})
	}
	r.dc.SetFontFace(r.face)
	r.dc.SetColor(c)
	r.dc.DrawStringAnchored(text, center.X, center.Y, 0.5, 0.5)
}

// Image returns the live frame buffer. It changes with the next Begin.
func (r *Raster) Image() image.Image {
	if r.dc == nil {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	return r.dc.Image()
}

// Snapshot returns a copy of the current frame.
func (r *Raster) Snapshot() *image.RGBA {
	src := r.Image()
	out := image.NewRGBA(src.Bounds())
	xdraw.Draw(out, out.Bounds(), src, src.Bounds().Min, xdraw.Src)
	return out
}

// Thumbnail renders an empty collage of l at w x h pixels. The size wins
// over any size carried by opts.
func Thumbnail(l layout.Layout, w, h int, opts ...collage.Option) (*image.RGBA, error) {
	r := NewRaster()
	opts = append(opts[:len(opts):len(opts)], collage.WithSize(w, h), collage.WithPlaceholder(""))
	s := collage.NewSurface(r, opts...)
	if err := s.ApplyLayout(l); err != nil {
		return nil, fmt.Errorf("thumbnail %s: %w", l, err)
	}
	return r.Snapshot(), nil
}
