/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package collage holds the collage editing core: slots, the canvas surface
// that owns them, and the hover animation driver. It draws only through the
// RenderTarget interface and never touches windows, files or decoders.
package collage

import (
	"image"
	"image/color"

	"gocollage/internal/geometry"
)

// RenderTarget is the drawing surface the collage core paints on.
// Coordinates are canvas pixels with the origin at the top left.
type RenderTarget interface {
	// Begin starts a frame of width x height pixels and resets all state.
	Begin(width, height int)
	FillRect(r geometry.Rect, c color.Color)
	// StrokeRect outlines r; radius > 0 rounds the corners.
	StrokeRect(r geometry.Rect, radius, lineWidth float64, c color.Color)
	// Push saves the transform and clip; Pop restores them.
	Push()
	Pop()
	ScaleAbout(s float64, center geometry.Pt)
	ClipRect(r geometry.Rect, radius float64)
	// DrawImage draws the src region of img (in img's own pixel space) into dst.
	DrawImage(img image.Image, src, dst geometry.Rect)
	DrawLabel(text string, center geometry.Pt, c color.Color)
}

// SlotStyle carries the surface-wide appearance a slot renders with.
type SlotStyle struct {
	Frame         color.Color
	Selection     color.Color
	Label         color.Color
	FrameWidth    float64
	SelectedWidth float64
	CornerRadius  float64
	Placeholder   string
}
