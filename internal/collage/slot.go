/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package collage

import (
	"image"
	"math"

	"gocollage/internal/geometry"
)

const (
	NormalScale  = 1.0
	HoveredScale = 1.1

	easing      = 0.1
	snapEpsilon = 0.001
)

// AnimationStep is the outcome of one animation tick for a slot.
type AnimationStep struct {
	NeedsRedraw    bool
	StillAnimating bool
}

// Slot is one rectangular image placeholder. Its rectangle is stored in
// normalized canvas fractions; the pixel rectangle is derived from it.
type Slot struct {
	norm geometry.Rect
	px   geometry.Rect
	img  image.Image

	hovered  bool
	selected bool

	currentScale float64
	targetScale  float64
}

func newSlot(r geometry.Rect) *Slot {
	return &Slot{norm: r, currentScale: NormalScale, targetScale: NormalScale}
}

// Rect returns the normalized rectangle.
func (s *Slot) Rect() geometry.Rect { return s.norm }

// Pixels returns the pixel rectangle from the last CalculatePixels call.
func (s *Slot) Pixels() geometry.Rect { return s.px }

func (s *Slot) Image() image.Image   { return s.img }
func (s *Slot) HasImage() bool       { return s.img != nil }
func (s *Slot) Hovered() bool        { return s.hovered }
func (s *Slot) Selected() bool       { return s.selected }
func (s *Slot) Scale() float64       { return s.currentScale }
func (s *Slot) TargetScale() float64 { return s.targetScale }

// CalculatePixels derives the pixel rectangle for a canvas of w x h pixels.
func (s *Slot) CalculatePixels(w, h int) {
	s.px = s.norm.ScaleBy(float64(w), float64(h))
}

// ContainsPoint tests (x, y) against the pixel rectangle, edges included.
// The hover zoom does not enlarge the hit area.
func (s *Slot) ContainsPoint(x, y float64) bool {
	return s.px.Contains(geometry.Pt{X: x, Y: y})
}

// SetHovered updates the hover flag and the animation target.
// It reports whether the flag changed.
func (s *Slot) SetHovered(h bool) bool {
	if s.hovered == h {
		return false
	}
	s.hovered = h
	if h {
		s.targetScale = HoveredScale
	} else {
		s.targetScale = NormalScale
	}
	return true
}

// AdvanceAnimation moves the scale a tenth of the way to its target and
// snaps once the remaining distance is within 0.001.
func (s *Slot) AdvanceAnimation() AnimationStep {
	if s.currentScale == s.targetScale {
		return AnimationStep{}
	}
	next := s.currentScale + (s.targetScale-s.currentScale)*easing
	if math.Abs(s.targetScale-next) <= snapEpsilon {
		s.currentScale = s.targetScale
		return AnimationStep{NeedsRedraw: true}
	}
	s.currentScale = next
	return AnimationStep{NeedsRedraw: true, StillAnimating: true}
}

// CropRegion is the part of the image shown in the slot: the centered region
// matching the slot's aspect ratio, in the image's own coordinates.
func (s *Slot) CropRegion() geometry.Rect {
	if s.img == nil {
		return geometry.Rect{}
	}
	b := s.img.Bounds()
	aspect := s.px.Aspect()
	if aspect == 0 {
		aspect = s.norm.Aspect()
	}
	c := geometry.AspectFitCrop(float64(b.Dx()), float64(b.Dy()), aspect)
	c.X += float64(b.Min.X)
	c.Y += float64(b.Min.Y)
	return c
}

// Render draws the slot scaled about its center by the current animation scale.
func (s *Slot) Render(t RenderTarget, st SlotStyle) {
	r := s.px
	if r.Empty() {
		return
	}
	t.Push()
	defer t.Pop()
	if s.currentScale != NormalScale {
		t.ScaleAbout(s.currentScale, r.Center())
	}
	if s.img != nil || st.Placeholder != "" {
		t.Push()
		t.ClipRect(r, st.CornerRadius)
		if s.img != nil {
			t.DrawImage(s.img, s.CropRegion(), r)
		} else {
			t.DrawLabel(st.Placeholder, r.Center(), st.Label)
		}
		t.Pop()
	}
	frame, width := st.Frame, st.FrameWidth
	if s.selected {
		frame, width = st.Selection, st.SelectedWidth
	}
	t.StrokeRect(r, st.CornerRadius, width, frame)
}
