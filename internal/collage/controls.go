/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package collage

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	applog "gocollage/internal/log"
)

// ErrUnknownControl is returned by ApplyControl for names it does not handle.
var ErrUnknownControl = errors.New("unknown control")

// Control names accepted by ApplyControl.
const (
	ControlWidth        = "width"
	ControlHeight       = "height"
	ControlSpacing      = "spacing"
	ControlBackground   = "background"
	ControlFrame        = "frame"
	ControlSelection    = "selection"
	ControlCornerRadius = "radius"
)

// ApplyControl parses a raw input value and applies it. Numbers are read from
// the leading numeric part of raw; when there is none the default is used.
// Spacing is entered as a percentage of the canvas.
func (s *Surface) ApplyControl(name, raw string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ControlWidth:
		s.Resize(dimFromFloat(leadingNumber(raw, DefaultWidth)), s.height)
	case ControlHeight:
		s.Resize(s.width, dimFromFloat(leadingNumber(raw, DefaultHeight)))
	case ControlSpacing:
		s.SetSpacing(leadingNumber(raw, DefaultSpacing*100) / 100)
	case ControlCornerRadius:
		s.SetCornerRadius(leadingNumber(raw, 0))
	case ControlBackground, ControlFrame, ControlSelection:
		c, err := ParseColor(raw)
		if err != nil {
			return fmt.Errorf("control %s: %w", name, err)
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case ControlBackground:
			s.SetBackgroundColor(c)
		case ControlFrame:
			s.SetFrameColor(c)
		default:
			s.SetSelectionColor(c)
		}
	default:
		applog.WithOperation(s.log, "apply_control").Warn("unknown control", slog.String("name", name))
		return fmt.Errorf("%w: %q", ErrUnknownControl, name)
	}
	return nil
}

// leadingNumber parses the numeric prefix of raw ("12px" is 12). It returns
// def when raw has no numeric prefix.
func leadingNumber(raw string, def float64) float64 {
	raw = strings.TrimSpace(raw)
	end := 0
	dot := false
scan:
	for i, r := range raw {
		switch {
		case (r == '-' || r == '+') && i == 0:
		case r >= '0' && r <= '9':
		case r == '.' && !dot:
			dot = true
		default:
			break scan
		}
		end = i + 1
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw[:end], "."), 64)
	if err != nil {
		return def
	}
	return v
}

// ParseColor parses "#rrggbb" or "#rgb"; the leading '#' is optional.
func ParseColor(raw string) (color.Color, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, errors.New("empty color")
	}
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return nil, fmt.Errorf("parse color %q: %w", raw, err)
	}
	return color.NRGBAModel.Convert(c), nil
}

// HexColor formats c as "#rrggbb".
func HexColor(c color.Color) string {
	if c == nil {
		return ""
	}
	cf, _ := colorful.MakeColor(c)
	return strings.ToUpper(cf.Hex())
}

func mustColor(hex string) color.Color {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}
