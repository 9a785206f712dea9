//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"gocollage/internal/collage"
	"gocollage/internal/config"
	"gocollage/internal/crash"
	applog "gocollage/internal/log"
	"gocollage/internal/version"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Run starts the Fyne collage editor and blocks until the window closes.
func Run(cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))
	defer crash.Recover(cfg.CacheDir())

	sess := NewSession(cfg)
	defer func() {
		if err := sess.Close(); err != nil {
			l.Warn("close session", slog.Any("err", err))
		}
	}()
	crash.SetStateProvider(sess.Describe)
	defer crash.SetStateProvider(nil)

	fyneApp := app.NewWithID("gocollage")
	w := fyneApp.NewWindow("GoCollage")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1400)
	winH := prefs.IntWithFallback("window.height", 860)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Pick a layout to start")
	cw := newCollageCanvas(sess)
	setStatus := func() { status.SetText(sess.Describe()) }

	cw.onUpload = func(t collage.UploadTicket) {
		open := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if ur == nil {
				return
			}
			name := ur.URI().Name()
			status.SetText("Loading " + name + "…")
			ch := sess.Load(context.Background(), name, ur)
			go func() {
				res := <-ch
				fyne.Do(func() {
					if err := sess.Finish(t, res); err != nil {
						dialog.ShowError(err, w)
					}
					cw.refresh()
					setStatus()
				})
			}()
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter(imageExtensions))
		open.Show()
	}
	cw.onChange = setStatus

	// Size and spacing
	widthEntry := widget.NewEntry()
	heightEntry := widget.NewEntry()
	spacingEntry := widget.NewEntry()
	syncEntries := func() {
		widthEntry.SetText(strconv.Itoa(sess.Surface.Width()))
		heightEntry.SetText(strconv.Itoa(sess.Surface.Height()))
		spacingEntry.SetText(strconv.FormatFloat(sess.Surface.Spacing()*100, 'g', 4, 64))
	}
	applyControl := func(name string) func(string) {
		return func(raw string) {
			if err := sess.Surface.ApplyControl(name, raw); err != nil {
				dialog.ShowError(err, w)
			}
			syncEntries()
			cw.refresh()
			setStatus()
		}
	}
	widthEntry.OnSubmitted = applyControl(collage.ControlWidth)
	heightEntry.OnSubmitted = applyControl(collage.ControlHeight)
	spacingEntry.OnSubmitted = applyControl(collage.ControlSpacing)
	syncEntries()

	radius := widget.NewSlider(0, 100)
	radius.Step = 1
	radius.SetValue(sess.Surface.CornerRadius())
	radius.OnChanged = func(v float64) {
		sess.Surface.SetCornerRadius(v)
		cw.refresh()
	}

	// Colors
	colorButton := func(label string, current func() color.Color, set func(color.Color)) *widget.Button {
		return widget.NewButton(label, func() {
			picker := dialog.NewColorPicker(label, "Choose a color", func(c color.Color) {
				set(c)
				cw.refresh()
			}, w)
			picker.Advanced = true
			picker.SetColor(current())
			picker.Show()
		})
	}
	colors := container.NewVBox(
		colorButton("Background…", sess.Surface.Background, sess.Surface.SetBackgroundColor),
		colorButton("Frame…", sess.Surface.FrameColor, sess.Surface.SetFrameColor),
		colorButton("Selection…", sess.Surface.SelectionColor, sess.Surface.SetSelectionColor),
	)

	// Layout picker
	layouts := container.NewGridWrap(fyne.NewSize(ThumbSize+8, ThumbSize+36))
	for _, e := range sess.Catalog().Entries() {
		name := e.Name
		pick := func() {
			if err := sess.ApplyLayoutName(name); err != nil {
				dialog.ShowError(err, w)
				return
			}
			cw.refresh()
			setStatus()
		}
		data, err := sess.Thumbnail(context.Background(), name)
		if err != nil {
			l.Warn("thumbnail failed", slog.String("layout", name), slog.Any("err", err))
			layouts.Add(widget.NewButton(name, pick))
			continue
		}
		icon := canvas.NewImageFromResource(fyne.NewStaticResource(name+".png", data))
		icon.FillMode = canvas.ImageFillContain
		icon.SetMinSize(fyne.NewSize(ThumbSize, ThumbSize))
		layouts.Add(container.NewBorder(nil, widget.NewButton(name, pick), nil, nil, icon))
	}

	// Actions
	clearBtn := widget.NewButton("Clear", func() {
		sess.Surface.Clear(true)
		cw.refresh()
		setStatus()
	})
	exportBtn := widget.NewButton("Export…", func() {
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			if !strings.HasSuffix(strings.ToLower(outPath), ".pdf") && !strings.HasSuffix(strings.ToLower(outPath), ".png") {
				outPath += ".png"
			}
			if err := sess.Export(outPath); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("collage.png")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".pdf"}))
		save.Show()
	})
	copyBtn := widget.NewButton("Copy as data URI", func() {
		uri, err := sess.DataURI()
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		w.Clipboard().SetContent(uri)
		status.SetText(fmt.Sprintf("Copied %d characters", len(uri)))
	})

	form := widget.NewForm(
		widget.NewFormItem("Width", widthEntry),
		widget.NewFormItem("Height", heightEntry),
		widget.NewFormItem("Spacing %", spacingEntry),
		widget.NewFormItem("Corner radius", radius),
	)
	side := container.NewVBox(
		widget.NewLabel("Canvas"), form, widget.NewSeparator(),
		widget.NewLabel("Colors"), colors, widget.NewSeparator(),
		container.NewHBox(clearBtn, exportBtn, copyBtn),
	)
	layoutPane := container.NewBorder(widget.NewLabel("Layouts"), nil, nil, nil, container.NewVScroll(layouts))
	right := container.NewBorder(side, nil, nil, nil, layoutPane)
	split := container.NewHSplit(cw, right)
	split.Offset = 0.72

	w.SetContent(container.NewBorder(nil, status, nil, nil, split))
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})
	w.ShowAndRun()
	return nil
}

// collageCanvas shows the surface frame and forwards taps and pointer
// movement to it.
type collageCanvas struct {
	widget.BaseWidget

	sess     *Session
	img      *canvas.Image
	onUpload func(collage.UploadTicket)
	onChange func()

	// loop is closed when the most recently started animation loop exits.
	loop chan struct{}
}

var (
	_ fyne.Tappable     = (*collageCanvas)(nil)
	_ desktop.Hoverable = (*collageCanvas)(nil)
)

func newCollageCanvas(sess *Session) *collageCanvas {
	c := &collageCanvas{sess: sess}
	c.img = canvas.NewImageFromImage(sess.Frame())
	c.img.FillMode = canvas.ImageFillContain
	c.img.ScaleMode = canvas.ImageScaleSmooth
	c.ExtendBaseWidget(c)
	return c
}

func (c *collageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.img)
}

func (c *collageCanvas) MinSize() fyne.Size { return fyne.NewSize(480, 270) }

// refresh pushes the last surface frame to the screen.
func (c *collageCanvas) refresh() {
	c.img.Image = c.sess.Frame()
	c.img.Refresh()
}

func (c *collageCanvas) toSurface(pos fyne.Position) (float64, float64, bool) {
	sz := c.Size()
	return viewToSurface(pos.X, pos.Y, sz.Width, sz.Height, c.sess.Surface.Width(), c.sess.Surface.Height())
}

func (c *collageCanvas) Tapped(e *fyne.PointEvent) {
	x, y, ok := c.toSurface(e.Position)
	if !ok {
		x, y = -1, -1
	}
	res := c.sess.Surface.HandleClick(x, y)
	applog.WithComponent("ui").Debug("click", slog.String("action", res.Action.String()), slog.Int("slot", res.Index))
	c.refresh()
	if c.onChange != nil {
		c.onChange()
	}
	if res.Action == collage.ClickUpload && c.onUpload != nil {
		c.onUpload(res.Ticket)
	}
}

func (c *collageCanvas) MouseIn(e *desktop.MouseEvent) { c.MouseMoved(e) }

func (c *collageCanvas) MouseMoved(e *desktop.MouseEvent) {
	x, y, ok := c.toSurface(e.Position)
	if !ok {
		x, y = -1, -1
	}
	if c.sess.Surface.HandlePointerMove(x, y) {
		c.animate()
	}
}

func (c *collageCanvas) MouseOut() {
	if c.sess.Surface.HandlePointerMove(-1, -1) {
		c.animate()
	}
}

// animate drives Tick from a ticker until the surface reports rest. The
// surface guarantees at most one loop is started at a time.
func (c *collageCanvas) animate() {
	interval := c.sess.Surface.FrameInterval()
	done := make(chan struct{})
	c.loop = done
	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()
		last := time.Now()
		for now := range t.C {
			dt := now.Sub(last)
			last = now
			cont := make(chan bool, 1)
			fyne.Do(func() {
				res := c.sess.Surface.Tick(dt)
				if res.Redrawn {
					c.refresh()
				}
				cont <- res.Continue
			})
			if !<-cont {
				return
			}
		}
	}()
}
