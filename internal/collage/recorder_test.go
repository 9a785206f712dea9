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
	"image/color"

	"gocollage/internal/geometry"
)

type op struct {
	name  string
	rect  geometry.Rect
	src   geometry.Rect
	col   color.Color
	width float64
	scale float64
	text  string
}

// recorder is a RenderTarget that remembers every call.
type recorder struct {
	ops    []op
	begins int
	w, h   int
}

func (r *recorder) Begin(w, h int) {
	r.begins++
	r.w, r.h = w, h
	r.ops = r.ops[:0]
}

func (r *recorder) FillRect(rc geometry.Rect, c color.Color) {
	r.ops = append(r.ops, op{name: "fill", rect: rc, col: c})
}

func (r *recorder) StrokeRect(rc geometry.Rect, radius, lw float64, c color.Color) {
	r.ops = append(r.ops, op{name: "stroke", rect: rc, col: c, width: lw, scale: radius})
}

func (r *recorder) Push() { r.ops = append(r.ops, op{name: "push"}) }
func (r *recorder) Pop()  { r.ops = append(r.ops, op{name: "pop"}) }

func (r *recorder) ScaleAbout(s float64, c geometry.Pt) {
	r.ops = append(r.ops, op{name: "scale", scale: s, rect: geometry.R(c.X, c.Y, 0, 0)})
}

func (r *recorder) ClipRect(rc geometry.Rect, radius float64) {
	r.ops = append(r.ops, op{name: "clip", rect: rc, scale: radius})
}

func (r *recorder) DrawImage(_ image.Image, src, dst geometry.Rect) {
	r.ops = append(r.ops, op{name: "image", rect: dst, src: src})
}

func (r *recorder) DrawLabel(text string, c geometry.Pt, col color.Color) {
	r.ops = append(r.ops, op{name: "label", text: text, rect: geometry.R(c.X, c.Y, 0, 0), col: col})
}

func (r *recorder) names() []string {
	out := make([]string, len(r.ops))
	for i, o := range r.ops {
		out[i] = o.name
	}
	return out
}

func (r *recorder) count(name string) int {
	n := 0
	for _, o := range r.ops {
		if o.name == name {
			n++
		}
	}
	return n
}

func (r *recorder) last(name string) (op, bool) {
	for i := len(r.ops) - 1; i >= 0; i-- {
		if r.ops[i].name == name {
			return r.ops[i], true
		}
	}
	return op{}, false
}
