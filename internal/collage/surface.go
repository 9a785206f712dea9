/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package collage

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"time"

	"gocollage/internal/config"
	"gocollage/internal/geometry"
	"gocollage/internal/layout"
	applog "gocollage/internal/log"
)

const (
	DefaultWidth       = 1280
	DefaultHeight      = 720
	DefaultSpacing     = 0.05
	MinSpacing         = 0.01
	MinDimension       = 1
	MaxDimension       = 16384
	DefaultBackground  = "#FEFEFE"
	DefaultFrame       = "#0000FE"
	DefaultSelection   = "#FF8C00"
	DefaultPlaceholder = "Click to add image"

	SelectedFrameWidth = 3
	DefaultFrameRate   = 60
	maxFramesPerTick   = 4
)

// State is the coarse lifecycle state of a Surface.
type State uint8

const (
	StateEmpty State = iota
	StateLayoutApplied
)

func (s State) String() string {
	if s == StateLayoutApplied {
		return "layout_applied"
	}
	return "empty"
}

// SelectionMode decides what a click on a slot does.
type SelectionMode uint8

const (
	// SelectionTwoPhase selects on the first click and requests an upload on
	// a second click on the selected slot.
	SelectionTwoPhase SelectionMode = iota
	// SelectionDirect requests an upload on every click on a slot.
	SelectionDirect
)

// ParseSelectionMode maps the config names to a mode; unknown names give two-phase.
func ParseSelectionMode(s string) SelectionMode {
	if s == config.SelectionDirect {
		return SelectionDirect
	}
	return SelectionTwoPhase
}

// Surface is the collage canvas. It is not safe for concurrent use; callers
// funnel pointer events, control changes, ticks and upload completions
// through a single goroutine.
type Surface struct {
	target RenderTarget
	log    *slog.Logger

	initW, initH  int
	width, height int
	spacing       float64

	background   color.Color
	frame        color.Color
	selection    color.Color
	label        color.Color
	frameWidth   float64
	cornerRadius float64
	placeholder  string

	mode SelectionMode
	fps  int

	slots      []*Slot
	selected   int
	layout     layout.Layout
	generation uint64
	animating  bool
	state      State
}

// Option configures a Surface at construction.
type Option func(*Surface)

func WithLogger(l *slog.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.log = l
		}
	}
}

func WithSelectionMode(m SelectionMode) Option { return func(s *Surface) { s.mode = m } }

// WithSize sets the size Initialize restores.
func WithSize(w, h int) Option {
	return func(s *Surface) {
		s.initW, s.initH = clampDim(w), clampDim(h)
	}
}

func WithFrameRate(fps int) Option {
	return func(s *Surface) {
		if fps > 0 {
			s.fps = fps
		}
	}
}

func WithPlaceholder(text string) Option { return func(s *Surface) { s.placeholder = text } }

// WithConfig applies the canvas section of the user config. Unparsable
// colors keep their defaults and are logged.
func WithConfig(c config.CanvasConfig) Option {
	return func(s *Surface) {
		if c.Width > 0 && c.Height > 0 {
			s.initW, s.initH = clampDim(c.Width), clampDim(c.Height)
		}
		if c.Spacing > 0 {
			s.spacing = math.Max(c.Spacing, MinSpacing)
		}
		for _, p := range []struct {
			raw string
			dst *color.Color
		}{{c.Background, &s.background}, {c.FrameColor, &s.frame}, {c.SelectionColor, &s.selection}} {
			if p.raw == "" {
				continue
			}
			col, err := ParseColor(p.raw)
			if err != nil {
				s.log.Warn("ignoring config color", slog.String("value", p.raw), slog.Any("err", err))
				continue
			}
			*p.dst = col
		}
		if c.FrameWidth > 0 {
			s.frameWidth = c.FrameWidth
		}
		if c.CornerRadius > 0 {
			s.cornerRadius = c.CornerRadius
		}
		s.mode = ParseSelectionMode(c.SelectionMode)
	}
}

// NewSurface creates an initialized, empty surface drawing on target.
// A nil target is allowed for headless use; drawing is then skipped.
func NewSurface(target RenderTarget, opts ...Option) *Surface {
	s := &Surface{
		target:      target,
		log:         applog.WithComponent("surface"),
		initW:       DefaultWidth,
		initH:       DefaultHeight,
		spacing:     DefaultSpacing,
		background:  mustColor(DefaultBackground),
		frame:       mustColor(DefaultFrame),
		selection:   mustColor(DefaultSelection),
		label:       color.Gray{Y: 0x80},
		frameWidth:  1,
		placeholder: DefaultPlaceholder,
		fps:         DefaultFrameRate,
		selected:    -1,
	}
	for _, o := range opts {
		o(s)
	}
	s.Initialize()
	return s
}

// Initialize restores the initial size, drops all slots and paints the background.
func (s *Surface) Initialize() {
	s.width, s.height = s.initW, s.initH
	s.slots = nil
	s.selected = -1
	s.layout = nil
	s.generation++
	s.state = StateEmpty
	s.Redraw()
}

func (s *Surface) Width() int                  { return s.width }
func (s *Surface) Height() int                 { return s.height }
func (s *Surface) Spacing() float64            { return s.spacing }
func (s *Surface) Background() color.Color     { return s.background }
func (s *Surface) FrameColor() color.Color     { return s.frame }
func (s *Surface) SelectionColor() color.Color { return s.selection }
func (s *Surface) CornerRadius() float64       { return s.cornerRadius }
func (s *Surface) Mode() SelectionMode         { return s.mode }
func (s *Surface) State() State                { return s.state }
func (s *Surface) Layout() layout.Layout       { return s.layout }
func (s *Surface) Generation() uint64          { return s.generation }
func (s *Surface) Animating() bool             { return s.animating }
func (s *Surface) Selected() int               { return s.selected }
func (s *Surface) Len() int                    { return len(s.slots) }

// Slots returns the slots in generation order. The slice is a copy.
func (s *Surface) Slots() []*Slot {
	out := make([]*Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Slot returns the slot at index i.
func (s *Surface) Slot(i int) (*Slot, bool) {
	if i < 0 || i >= len(s.slots) {
		return nil, false
	}
	return s.slots[i], true
}

// Style returns the appearance slots are rendered with.
func (s *Surface) Style() SlotStyle {
	return SlotStyle{
		Frame:         s.frame,
		Selection:     s.selection,
		Label:         s.label,
		FrameWidth:    s.frameWidth,
		SelectedWidth: SelectedFrameWidth,
		CornerRadius:  s.cornerRadius,
		Placeholder:   s.placeholder,
	}
}

// ApplyLayout generates the slot rectangles for l and replaces all slots.
// On error nothing changes.
func (s *Surface) ApplyLayout(l layout.Layout) error {
	lg := applog.WithOperation(s.log, "apply_layout")
	rects, err := s.generate(l, s.spacing)
	if err != nil {
		lg.Warn("layout rejected", slog.String("layout", fmt.Sprint(l)), slog.Any("err", err))
		return fmt.Errorf("apply layout: %w", err)
	}
	slots := make([]*Slot, len(rects))
	for i, r := range rects {
		slots[i] = newSlot(r)
		slots[i].CalculatePixels(s.width, s.height)
	}
	s.slots = slots
	s.layout = l
	s.selected = -1
	s.generation++
	s.state = StateLayoutApplied
	lg.Debug("layout applied", slog.String("layout", fmt.Sprint(l)), slog.Int("slots", len(slots)))
	s.Redraw()
	return nil
}

// generate runs the layout generator and rejects slots that have no area or
// leave the unit square.
func (s *Surface) generate(l layout.Layout, spacing float64) ([]geometry.Rect, error) {
	rects, err := layout.Generate(l, spacing)
	if err != nil {
		return nil, err
	}
	for _, r := range rects {
		if r.Empty() {
			return nil, fmt.Errorf("%w: spacing %.3f leaves no room for %s", layout.ErrInvalidLayout, spacing, l)
		}
		if !r.WithinUnit() {
			return nil, fmt.Errorf("%w: slot %+v outside the canvas for %s", layout.ErrInvalidLayout, r, l)
		}
	}
	return rects, nil
}

// Resize sets the canvas size, clamping each side to [MinDimension, MaxDimension].
// Normalized slot rectangles are kept; only pixel geometry changes.
func (s *Surface) Resize(w, h int) bool {
	w, h = clampDim(w), clampDim(h)
	if w == s.width && h == s.height {
		return false
	}
	s.width, s.height = w, h
	for _, sl := range s.slots {
		sl.CalculatePixels(w, h)
	}
	s.Redraw()
	return true
}

// SetSpacing changes the spacing fraction (at least 0.01). With an active
// layout the slot rectangles are regenerated in place so images survive.
func (s *Surface) SetSpacing(v float64) bool {
	if math.IsNaN(v) || v < MinSpacing {
		v = MinSpacing
	}
	if v == s.spacing {
		return false
	}
	if s.layout == nil || len(s.slots) == 0 {
		s.spacing = v
		return true
	}
	rects, err := s.generate(s.layout, v)
	if err != nil || len(rects) != len(s.slots) {
		applog.WithOperation(s.log, "set_spacing").Warn("spacing rejected",
			slog.Float64("spacing", v), slog.Any("err", err))
		return false
	}
	s.spacing = v
	for i, sl := range s.slots {
		sl.norm = rects[i]
		sl.CalculatePixels(s.width, s.height)
	}
	s.Redraw()
	return true
}

func (s *Surface) SetBackgroundColor(c color.Color) {
	if c == nil {
		return
	}
	s.background = c
	s.Redraw()
}

func (s *Surface) SetFrameColor(c color.Color) {
	if c == nil {
		return
	}
	s.frame = c
	s.Redraw()
}

func (s *Surface) SetSelectionColor(c color.Color) {
	if c == nil {
		return
	}
	s.selection = c
	s.Redraw()
}

// SetCornerRadius sets the frame and clip corner radius in pixels (negative means 0).
func (s *Surface) SetCornerRadius(r float64) {
	if math.IsNaN(r) || r < 0 {
		r = 0
	}
	s.cornerRadius = r
	s.Redraw()
}

// Clear repaints the background. With deleteSlots it also drops every slot
// and returns to StateEmpty; the layout is kept but not regenerated.
func (s *Surface) Clear(deleteSlots bool) {
	if deleteSlots {
		s.slots = nil
		s.selected = -1
		s.generation++
		s.state = StateEmpty
	}
	s.paintBackground()
}

// Redraw paints the background and every slot. Slots that are zoomed are
// drawn last so they sit on top of their neighbours.
func (s *Surface) Redraw() {
	if s.target == nil {
		return
	}
	s.paintBackground()
	st := s.Style()
	var zoomed []*Slot
	for _, sl := range s.slots {
		sl.CalculatePixels(s.width, s.height)
		if sl.currentScale != NormalScale {
			zoomed = append(zoomed, sl)
			continue
		}
		sl.Render(s.target, st)
	}
	for _, sl := range zoomed {
		sl.Render(s.target, st)
	}
}

func (s *Surface) paintBackground() {
	if s.target == nil {
		return
	}
	s.target.Begin(s.width, s.height)
	s.target.FillRect(geometry.R(0, 0, float64(s.width), float64(s.height)), s.background)
}

// hitTest returns the index of the first slot containing (x, y), or -1.
func (s *Surface) hitTest(x, y float64) int {
	for i, sl := range s.slots {
		if sl.ContainsPoint(x, y) {
			return i
		}
	}
	return -1
}

// ClickAction is what a click resolved to.
type ClickAction uint8

const (
	ClickNone ClickAction = iota
	ClickSelected
	ClickDeselected
	// ClickUpload asks the caller to pick an image for ClickResult.Ticket.
	ClickUpload
)

func (a ClickAction) String() string {
	switch a {
	case ClickSelected:
		return "selected"
	case ClickDeselected:
		return "deselected"
	case ClickUpload:
		return "upload"
	default:
		return "none"
	}
}

type ClickResult struct {
	Action ClickAction
	Index  int
	Ticket UploadTicket
}

// HandleClick resolves a click at canvas pixel (x, y). Points outside every
// slot never fail; they only clear the selection.
func (s *Surface) HandleClick(x, y float64) ClickResult {
	idx := s.hitTest(x, y)
	if s.mode == SelectionDirect {
		if idx < 0 {
			return ClickResult{Action: ClickNone, Index: -1}
		}
		return ClickResult{Action: ClickUpload, Index: idx, Ticket: s.ticket(idx)}
	}
	switch {
	case idx < 0:
		if s.selected < 0 {
			return ClickResult{Action: ClickNone, Index: -1}
		}
		s.selectSlot(-1)
		s.Redraw()
		return ClickResult{Action: ClickDeselected, Index: -1}
	case idx == s.selected:
		return ClickResult{Action: ClickUpload, Index: idx, Ticket: s.ticket(idx)}
	default:
		s.selectSlot(idx)
		s.Redraw()
		return ClickResult{Action: ClickSelected, Index: idx}
	}
}

func (s *Surface) selectSlot(idx int) {
	if s.selected >= 0 && s.selected < len(s.slots) {
		s.slots[s.selected].selected = false
	}
	s.selected = idx
	if idx >= 0 {
		s.slots[idx].selected = true
	}
}

// HandlePointerMove updates hover flags. It reports whether it started the
// animation loop, in which case the caller schedules Tick until it stops.
func (s *Surface) HandlePointerMove(x, y float64) bool {
	changed := false
	for _, sl := range s.slots {
		if sl.SetHovered(sl.ContainsPoint(x, y)) {
			changed = true
		}
	}
	if !changed {
		return false
	}
	return s.StartAnimation()
}

// StartAnimation marks the loop as running. It is a no-op returning false
// when the loop already runs.
func (s *Surface) StartAnimation() bool {
	if s.animating {
		return false
	}
	s.animating = true
	return true
}

// TickResult reports what one animation frame did.
type TickResult struct {
	Redrawn  bool
	Continue bool
}

// Tick advances the animation by dt, at least one and at most four frames
// at the surface frame rate. It redraws when any slot moved and clears the
// running flag once every slot has converged.
func (s *Surface) Tick(dt time.Duration) TickResult {
	if !s.animating {
		return TickResult{}
	}
	frames := framesFor(dt, s.fps)
	redraw, still := false, false
	for f := 0; f < frames; f++ {
		still = false
		// s.slots is re-read every frame; a layout change may have replaced it.
		for _, sl := range s.slots {
			step := sl.AdvanceAnimation()
			redraw = redraw || step.NeedsRedraw
			still = still || step.StillAnimating
		}
		if !still {
			break
		}
	}
	if redraw {
		s.Redraw()
	}
	s.animating = still
	return TickResult{Redrawn: redraw, Continue: still}
}

func framesFor(dt time.Duration, fps int) int {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	n := int(math.Round(dt.Seconds() * float64(fps)))
	if n < 1 {
		return 1
	}
	if n > maxFramesPerTick {
		return maxFramesPerTick
	}
	return n
}

// FrameInterval is the wall time of one animation frame.
func (s *Surface) FrameInterval() time.Duration {
	return time.Second / time.Duration(s.fps)
}

func clampDim(v int) int {
	if v < MinDimension {
		return MinDimension
	}
	if v > MaxDimension {
		return MaxDimension
	}
	return v
}

// dimFromFloat clamps before converting so out-of-range input cannot wrap.
func dimFromFloat(v float64) int {
	switch {
	case math.IsNaN(v) || v < MinDimension:
		return MinDimension
	case v > MaxDimension:
		return MaxDimension
	}
	return int(v)
}
