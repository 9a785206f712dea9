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
	"image/color"
	"math"
	"testing"
)

func TestApplyControlNumbers(t *testing.T) {
	s, _ := newTestSurface(t)
	steps := []struct {
		name, raw string
		check     func() bool
	}{
		{"width", "800px", func() bool { return s.Width() == 800 }},
		{"height", " 600 ", func() bool { return s.Height() == 600 }},
		{"width", "abc", func() bool { return s.Width() == DefaultWidth }},
		{"width", "0", func() bool { return s.Width() == MinDimension }},
		{"height", "-40", func() bool { return s.Height() == MinDimension }},
		{"spacing", "10", func() bool { return approx(s.Spacing(), 0.1) }},
		{"spacing", "2.5%", func() bool { return approx(s.Spacing(), 0.025) }},
		{"spacing", "0", func() bool { return s.Spacing() == MinSpacing }},
		{"spacing", "", func() bool { return approx(s.Spacing(), DefaultSpacing) }},
		{"radius", "12", func() bool { return s.CornerRadius() == 12 }},
		{"Radius", "x", func() bool { return s.CornerRadius() == 0 }},
	}
	for _, st := range steps {
		if err := s.ApplyControl(st.name, st.raw); err != nil {
			t.Fatalf("ApplyControl(%q,%q): %v", st.name, st.raw, err)
		}
		if !st.check() {
			t.Fatalf("ApplyControl(%q,%q) not applied: %dx%d spacing=%v radius=%v",
				st.name, st.raw, s.Width(), s.Height(), s.Spacing(), s.CornerRadius())
		}
	}
}

func TestApplyControlDimensionRange(t *testing.T) {
	s, _ := newTestSurface(t)
	cases := []struct {
		name, raw string
		want      int
	}{
		{"width", "100000000000", MaxDimension},
		{"width", "99999999999999999999999", MaxDimension},
		{"height", "16384", MaxDimension},
		{"width", "16385", MaxDimension},
		{"width", "-99999999999999999999999", MinDimension},
	}
	for _, c := range cases {
		if err := s.ApplyControl(c.name, c.raw); err != nil {
			t.Fatalf("ApplyControl(%q,%q): %v", c.name, c.raw, err)
		}
		got := s.Width()
		if c.name == "height" {
			got = s.Height()
		}
		if got != c.want {
			t.Fatalf("ApplyControl(%q,%q) = %d, want %d", c.name, c.raw, got, c.want)
		}
	}
}

func TestDimFromFloat(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{1e300, MaxDimension},
		{math.Inf(1), MaxDimension},
		{math.Inf(-1), MinDimension},
		{math.NaN(), MinDimension},
		{0.5, MinDimension},
		{640.9, 640},
	}
	for _, c := range cases {
		if got := dimFromFloat(c.in); got != c.want {
			t.Fatalf("dimFromFloat(%v) = %d, want %d", c.in, got, c.want)
		}
	}
	if clampDim(1<<40) != MaxDimension || clampDim(-5) != MinDimension {
		t.Fatalf("clampDim does not honour the range")
	}
}

func TestApplyControlColors(t *testing.T) {
	s, _ := newTestSurface(t)
	if err := s.ApplyControl("background", "#000000"); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyControl("frame", "f00"); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyControl("selection", "#00FF00"); err != nil {
		t.Fatal(err)
	}
	if HexColor(s.Background()) != "#000000" || HexColor(s.FrameColor()) != "#FF0000" || HexColor(s.SelectionColor()) != "#00FF00" {
		t.Fatalf("colors = %s %s %s", HexColor(s.Background()), HexColor(s.FrameColor()), HexColor(s.SelectionColor()))
	}
	if err := s.ApplyControl("frame", "zzz"); err == nil {
		t.Fatalf("bad color accepted")
	}
	if HexColor(s.FrameColor()) != "#FF0000" {
		t.Fatalf("bad color changed state")
	}
}

func TestApplyControlUnknown(t *testing.T) {
	s, _ := newTestSurface(t)
	err := s.ApplyControl("opacity", "1")
	if !errors.Is(err, ErrUnknownControl) {
		t.Fatalf("err = %v, want ErrUnknownControl", err)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#FEFEFE")
	if err != nil {
		t.Fatal(err)
	}
	if got := color.NRGBAModel.Convert(c).(color.NRGBA); got != (color.NRGBA{R: 254, G: 254, B: 254, A: 255}) {
		t.Fatalf("ParseColor = %#v", got)
	}
	c, err = ParseColor("abc")
	if err != nil || HexColor(c) != "#AABBCC" {
		t.Fatalf("short hex = %s, %v", HexColor(c), err)
	}
	for _, bad := range []string{"", "#gggggg", "blue"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) accepted", bad)
		}
	}
	if HexColor(nil) != "" {
		t.Fatalf("HexColor(nil) not empty")
	}
}

func TestLeadingNumber(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"42", 42},
		{"42px", 42},
		{"-3", -3},
		{"1.5em", 1.5},
		{"7.", 7},
		{".5", 0.5},
		{"", 9},
		{"px", 9},
		{"-", 9},
	}
	for _, c := range cases {
		if got := leadingNumber(c.raw, 9); got != c.want {
			t.Errorf("leadingNumber(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}
