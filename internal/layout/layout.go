/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout generates slot rectangles for grid layouts.
//
// Rectangles are normalized to the canvas (0..1 on both axes) so that a layout
// stays valid for any canvas size; the spacing fraction is applied both between
// slots and around the canvas edge.
package layout

import (
	"errors"
	"fmt"

	"gocollage/internal/geometry"
)

var (
	// ErrInvalidLayout is returned for grids with a non-positive column or row count.
	ErrInvalidLayout = errors.New("invalid layout")
	// ErrUnsupportedLayout is returned for custom (non-uniform) layouts.
	ErrUnsupportedLayout = errors.New("unsupported layout")
)

// Kind discriminates the Layout variants.
type Kind uint8

const (
	KindUniform Kind = iota
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindUniform:
		return "uniform"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Layout is either Uniform or Custom.
type Layout interface {
	Kind() Kind
	String() string
}

// Uniform is a columns x rows grid of equally sized slots.
type Uniform struct {
	Columns int
	Rows    int
}

func (Uniform) Kind() Kind { return KindUniform }

func (u Uniform) String() string { return fmt.Sprintf("%dx%d", u.Columns, u.Rows) }

// SlotCount is the number of slots the grid produces.
func (u Uniform) SlotCount() int {
	if u.Columns <= 0 || u.Rows <= 0 {
		return 0
	}
	return u.Columns * u.Rows
}

// Validate checks the grid dimensions.
func (u Uniform) Validate() error {
	if u.Columns <= 0 || u.Rows <= 0 {
		return fmt.Errorf("%w: columns=%d rows=%d", ErrInvalidLayout, u.Columns, u.Rows)
	}
	return nil
}

// Custom holds hand-placed rectangles. Generation is not implemented yet.
type Custom struct {
	Rects []geometry.Rect
}

func (Custom) Kind() Kind { return KindCustom }

func (c Custom) String() string { return fmt.Sprintf("custom(%d)", len(c.Rects)) }

// Generate produces the normalized slot rectangles for l.
func Generate(l Layout, spacing float64) ([]geometry.Rect, error) {
	switch v := l.(type) {
	case Uniform:
		return GenerateUniform(v.Columns, v.Rows, spacing)
	case *Uniform:
		if v == nil {
			return nil, fmt.Errorf("%w: nil layout", ErrInvalidLayout)
		}
		return GenerateUniform(v.Columns, v.Rows, spacing)
	case Custom, *Custom:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLayout, l)
	case nil:
		return nil, fmt.Errorf("%w: nil layout", ErrInvalidLayout)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedLayout, l)
	}
}

// GenerateUniform lays out columns x rows slots in column-major order
// (all rows of column 0 first). The spacing is used as given; callers clamp it.
//
//	slotWidth  = 1/columns - spacing - spacing/columns
//	slotHeight = 1/rows    - spacing - spacing/rows
func GenerateUniform(columns, rows int, spacing float64) ([]geometry.Rect, error) {
	if err := (Uniform{Columns: columns, Rows: rows}).Validate(); err != nil {
		return nil, err
	}
	cols := float64(columns)
	rws := float64(rows)
	slotW := (1.0 / cols) - spacing - (spacing / cols)
	slotH := (1.0 / rws) - spacing - (spacing / rws)

	out := make([]geometry.Rect, 0, columns*rows)
	for i := 0; i < columns; i++ {
		x := spacing + (spacing+slotW)*float64(i)
		y := 0.0
		for j := 0; j < rows; j++ {
			y += spacing
			out = append(out, geometry.Rect{X: x, Y: y, W: slotW, H: slotH})
			y += slotH
		}
	}
	return out, nil
}
