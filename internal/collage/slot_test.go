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
	"reflect"
	"testing"

	"gocollage/internal/geometry"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func approxRect(a, b geometry.Rect) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.W, b.W) && approx(a.H, b.H)
}

func TestSlotCalculatePixels(t *testing.T) {
	s := newSlot(geometry.R(0.05, 0.05, 0.425, 0.425))
	s.CalculatePixels(1000, 2000)
	want := geometry.R(50, 100, 425, 850)
	if !approxRect(s.Pixels(), want) {
		t.Fatalf("pixels = %+v, want %+v", s.Pixels(), want)
	}
	// same inputs, same output
	first := s.Pixels()
	s.CalculatePixels(1000, 2000)
	if s.Pixels() != first {
		t.Fatalf("CalculatePixels not deterministic")
	}
}

func TestSlotContainsPointBoundary(t *testing.T) {
	s := newSlot(geometry.R(0.1, 0.1, 0.5, 0.5))
	s.CalculatePixels(100, 100)
	cases := []struct {
		x, y float64
		want bool
	}{
		{10, 10, true},
		{60, 60, true},
		{10, 35, true},
		{35, 60, true},
		{9, 35, false},
		{61, 35, false},
		{35, 9, false},
		{35, 61, false},
	}
	for _, c := range cases {
		if got := s.ContainsPoint(c.x, c.y); got != c.want {
			t.Errorf("ContainsPoint(%v,%v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestSlotAnimationConverges(t *testing.T) {
	s := newSlot(geometry.R(0, 0, 1, 1))
	if !s.SetHovered(true) {
		t.Fatalf("SetHovered(true) reported no change")
	}
	if s.SetHovered(true) {
		t.Fatalf("repeated SetHovered reported a change")
	}
	if s.TargetScale() != HoveredScale {
		t.Fatalf("target = %v", s.TargetScale())
	}
	ticks := 0
	for {
		ticks++
		st := s.AdvanceAnimation()
		if !st.NeedsRedraw {
			t.Fatalf("tick %d: moving slot did not ask for redraw", ticks)
		}
		if !st.StillAnimating {
			break
		}
		if ticks > 60 {
			t.Fatalf("no convergence after 60 ticks, scale=%v", s.Scale())
		}
	}
	if s.Scale() != HoveredScale {
		t.Fatalf("scale = %v, want exactly %v", s.Scale(), HoveredScale)
	}
	if st := s.AdvanceAnimation(); st.NeedsRedraw || st.StillAnimating {
		t.Fatalf("converged slot still animating: %+v", st)
	}

	s.SetHovered(false)
	for i := 0; i < 60 && s.AdvanceAnimation().StillAnimating; i++ {
	}
	if s.Scale() != NormalScale {
		t.Fatalf("scale = %v, want %v after unhover", s.Scale(), NormalScale)
	}
}

func TestSlotAnimationFirstStep(t *testing.T) {
	s := newSlot(geometry.R(0, 0, 1, 1))
	s.SetHovered(true)
	s.AdvanceAnimation()
	if !approx(s.Scale(), 1.01) {
		t.Fatalf("first step scale = %v, want 1.01", s.Scale())
	}
}

func TestSlotCropRegion(t *testing.T) {
	s := newSlot(geometry.R(0, 0, 0.5, 0.5))
	s.CalculatePixels(200, 200)
	s.img = image.NewRGBA(image.Rect(0, 0, 200, 100))
	got := s.CropRegion()
	if !approxRect(got, geometry.R(50, 0, 100, 100)) {
		t.Fatalf("crop = %+v", got)
	}
	// bounds that do not start at the origin
	s.img = image.NewRGBA(image.Rect(10, 20, 210, 120))
	got = s.CropRegion()
	if !approxRect(got, geometry.R(60, 20, 100, 100)) {
		t.Fatalf("offset crop = %+v", got)
	}
	// tall image into a wide slot crops vertically
	s = newSlot(geometry.R(0, 0, 1, 0.5))
	s.CalculatePixels(100, 100)
	s.img = image.NewRGBA(image.Rect(0, 0, 100, 100))
	got = s.CropRegion()
	if !approxRect(got, geometry.R(0, 25, 100, 50)) {
		t.Fatalf("vertical crop = %+v", got)
	}
}

func TestSlotRenderEmptyDrawsPlaceholder(t *testing.T) {
	rec := &recorder{}
	s := newSlot(geometry.R(0.1, 0.1, 0.5, 0.5))
	s.CalculatePixels(100, 100)
	st := SlotStyle{Frame: mustColor(DefaultFrame), FrameWidth: 1, Placeholder: "Click to add image"}
	s.Render(rec, st)
	want := []string{"push", "push", "clip", "label", "pop", "stroke", "pop"}
	if !reflect.DeepEqual(rec.names(), want) {
		t.Fatalf("ops = %v, want %v", rec.names(), want)
	}
	lbl, _ := rec.last("label")
	if lbl.text != "Click to add image" || !approx(lbl.rect.X, 35) || !approx(lbl.rect.Y, 35) {
		t.Fatalf("label = %+v", lbl)
	}
}

func TestSlotRenderImageSelectedAndScaled(t *testing.T) {
	rec := &recorder{}
	s := newSlot(geometry.R(0, 0, 0.5, 0.5))
	s.CalculatePixels(200, 200)
	s.img = image.NewRGBA(image.Rect(0, 0, 300, 100))
	s.selected = true
	s.currentScale = 1.05
	st := SlotStyle{
		Frame:         mustColor(DefaultFrame),
		Selection:     mustColor(DefaultSelection),
		FrameWidth:    1,
		SelectedWidth: SelectedFrameWidth,
		CornerRadius:  8,
	}
	s.Render(rec, st)
	want := []string{"push", "scale", "push", "clip", "image", "pop", "stroke", "pop"}
	if !reflect.DeepEqual(rec.names(), want) {
		t.Fatalf("ops = %v, want %v", rec.names(), want)
	}
	sc, _ := rec.last("scale")
	if sc.scale != 1.05 || !approx(sc.rect.X, 50) || !approx(sc.rect.Y, 50) {
		t.Fatalf("scale op = %+v", sc)
	}
	img, _ := rec.last("image")
	if !approxRect(img.src, geometry.R(100, 0, 100, 100)) || !approxRect(img.rect, geometry.R(0, 0, 100, 100)) {
		t.Fatalf("image op = %+v", img)
	}
	stroke, _ := rec.last("stroke")
	if stroke.width != SelectedFrameWidth || HexColor(stroke.col) != DefaultSelection || stroke.scale != 8 {
		t.Fatalf("stroke op = %+v", stroke)
	}
}

func TestSlotRenderSkipsEmptyGeometry(t *testing.T) {
	rec := &recorder{}
	s := newSlot(geometry.R(0, 0, 0.5, 0.5))
	s.Render(rec, SlotStyle{})
	if len(rec.ops) != 0 {
		t.Fatalf("slot without pixel geometry drew %v", rec.names())
	}
}
