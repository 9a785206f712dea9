/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

// Resolution-independent rectangles. Slots keep their position as fractions of the
// canvas (0..1) and are mapped to pixels with ScaleBy whenever the canvas size changes.

import "math"

// unitTolerance absorbs float drift when checking that a normalized rect stays inside the unit square.
const unitTolerance = 1e-9

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

// Rect is an axis-aligned rectangle defined by its min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Center() Pt { return Pt{r.X + r.W/2, r.Y + r.H/2} }

// Contains is a closed test: points on any edge are inside.
func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// ScaleBy multiplies position and size per axis. Used to map normalized
// coordinates onto a canvas of sx by sy pixels.
func (r Rect) ScaleBy(sx, sy float64) Rect {
	return Rect{X: r.X * sx, Y: r.Y * sy, W: r.W * sx, H: r.H * sy}
}

// ScaleAbout grows or shrinks the rectangle uniformly around its center.
func (r Rect) ScaleAbout(s float64) Rect {
	c := r.Center()
	w, h := r.W*s, r.H*s
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// Aspect returns W/H, or 0 for a rectangle without height.
func (r Rect) Aspect() float64 {
	if r.H == 0 {
		return 0
	}
	return r.W / r.H
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// WithinUnit reports whether r lies inside [0,1]x[0,1].
func (r Rect) WithinUnit() bool {
	return r.X >= -unitTolerance && r.Y >= -unitTolerance &&
		r.X+r.W <= 1+unitTolerance && r.Y+r.H <= 1+unitTolerance
}

// AspectFitCrop returns the centered region of an imgW x imgH image whose aspect ratio
// equals targetAspect. The larger dimension is cropped; the image is never stretched.
func AspectFitCrop(imgW, imgH, targetAspect float64) Rect {
	if imgW <= 0 || imgH <= 0 || targetAspect <= 0 {
		return Rect{W: math.Max(imgW, 0), H: math.Max(imgH, 0)}
	}
	imgAspect := imgW / imgH
	if imgAspect > targetAspect {
		w := imgH * targetAspect
		return Rect{X: (imgW - w) / 2, Y: 0, W: w, H: imgH}
	}
	h := imgW / targetAspect
	return Rect{X: 0, Y: (imgH - h) / 2, W: imgW, H: h}
}
