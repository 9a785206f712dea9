/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gocollage/internal/collage"
	"gocollage/internal/export"
	"gocollage/internal/imageload"
	applog "gocollage/internal/log"
	"gocollage/internal/render"
)

type renderOpts struct {
	catalog string
	layout  string
	size    string
	width   string
	height  string
	spacing string
	bg      string
	frame   string
	radius  string
	images  []string
	out     string
	preset  string
	dpi     int
	dataURI bool
}

func newRenderCmd(a *app) *cobra.Command {
	var o renderOpts
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a collage without the UI",
		Long: `Render a collage headlessly. Images fill the slots in layout order
(column by column); control values are parsed like the editor's inputs.`,
		Example: `  gocollage render --layout 2x2 --image a.jpg --image b.png --out collage.png
  gocollage render --layout 3x2 --size fullhd --spacing 2 --preset print --out out/collage`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, a, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.catalog, "catalog", "", "layout catalog JSON (default: config catalog.path or built-in)")
	f.StringVarP(&o.layout, "layout", "l", "", "layout name from the catalog (required)")
	f.StringVar(&o.size, "size", "", "canvas size preset ("+sizePresetList()+")")
	f.StringVar(&o.width, "width", "", "canvas width in pixels")
	f.StringVar(&o.height, "height", "", "canvas height in pixels")
	f.StringVar(&o.spacing, "spacing", "", "slot spacing in percent")
	f.StringVar(&o.bg, "bg", "", "background color (#RRGGBB)")
	f.StringVar(&o.frame, "frame", "", "frame color (#RRGGBB)")
	f.StringVar(&o.radius, "radius", "", "corner radius in pixels")
	f.StringArrayVarP(&o.images, "image", "i", nil, "image file for the next empty slot (repeatable)")
	f.StringVarP(&o.out, "out", "o", "", "output file (.png or .pdf), or base path with --preset")
	f.StringVar(&o.preset, "preset", "", "export preset (web, print); writes every format of the preset")
	f.IntVar(&o.dpi, "dpi", 0, "PDF resolution in pixels per inch")
	f.BoolVar(&o.dataURI, "data-uri", false, "print the PNG as a data URI instead of writing a file")
	_ = cmd.MarkFlagRequired("layout")
	return cmd
}

func sizePresetList() string {
	var names []string
	for _, p := range export.SizePresets() {
		names = append(names, fmt.Sprintf("%s %dx%d", p.Name, p.Width, p.Height))
	}
	return strings.Join(names, ", ")
}

func runRender(cmd *cobra.Command, a *app, o renderOpts) error {
	out := cmd.OutOrStdout()
	if o.out == "" && !o.dataURI {
		return fmt.Errorf("--out or --data-uri is required")
	}
	cat, err := loadCatalog(o.catalog, a.cfg.Catalog.Path)
	if err != nil {
		return err
	}
	entry, ok := cat.Lookup(o.layout)
	if !ok {
		return fmt.Errorf("unknown layout %q (available: %s)", o.layout, strings.Join(cat.Names(), ", "))
	}

	l := applog.WithComponent("cli")
	r := render.NewRaster()
	s := collage.NewSurface(r,
		collage.WithLogger(l),
		collage.WithConfig(a.cfg.Canvas),
		collage.WithPlaceholder(""),
	)
	if o.size != "" {
		sp, ok := export.LookupSize(o.size)
		if !ok {
			return fmt.Errorf("unknown size preset %q", o.size)
		}
		s.Resize(sp.Width, sp.Height)
	}
	controls := []struct{ flag, name, raw string }{
		{"width", collage.ControlWidth, o.width},
		{"height", collage.ControlHeight, o.height},
		{"spacing", collage.ControlSpacing, o.spacing},
		{"bg", collage.ControlBackground, o.bg},
		{"frame", collage.ControlFrame, o.frame},
		{"radius", collage.ControlCornerRadius, o.radius},
	}
	for _, c := range controls {
		if c.raw == "" {
			continue
		}
		if err := s.ApplyControl(c.name, c.raw); err != nil {
			return fmt.Errorf("--%s: %w", c.flag, err)
		}
	}
	if err := s.ApplyLayout(entry.Layout()); err != nil {
		return err
	}

	if err := fillSlots(cmd.Context(), s, o.images, l); err != nil {
		return err
	}
	img := r.Snapshot()

	if o.dataURI {
		uri, err := export.DataURI(img)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, uri)
		return nil
	}
	return writeOutput(cmd, img, o)
}

// fillSlots decodes all images concurrently and places them in slot order.
func fillSlots(ctx context.Context, s *collage.Surface, paths []string, l *slog.Logger) error {
	if len(paths) > s.Len() {
		l.Warn("more images than slots, extra images ignored", slog.Int("images", len(paths)), slog.Int("slots", s.Len()))
		paths = paths[:s.Len()]
	}
	loader := imageload.New(imageload.WithLogger(l))
	pending := make([]<-chan imageload.Result, len(paths))
	for i, p := range paths {
		pending[i] = loader.Load(ctx, p)
	}
	for i, ch := range pending {
		res := <-ch
		if res.Err != nil {
			return fmt.Errorf("image %s: %w", res.Name, res.Err)
		}
		t, ok := s.UploadTicketFor(i)
		if !ok {
			return fmt.Errorf("slot %d missing", i)
		}
		if err := s.CompleteUpload(t, res.Image); err != nil {
			return err
		}
	}
	return nil
}

func writeOutput(cmd *cobra.Command, img image.Image, o renderOpts) error {
	out := cmd.OutOrStdout()
	if o.preset != "" {
		p, ok := export.LookupPreset(o.preset)
		if !ok {
			return fmt.Errorf("unknown export preset %q", o.preset)
		}
		if o.dpi > 0 {
			p.DPI = o.dpi
		}
		base := strings.TrimSuffix(filepath.Base(o.out), filepath.Ext(o.out))
		paths, err := export.BatchExport(img, filepath.Dir(o.out), base, p)
		if err != nil {
			return err
		}
		printSuccess(out, "exported %s preset", p.Name)
		for _, path := range paths {
			printFile(out, path, nil)
		}
		return nil
	}
	title := strings.TrimSuffix(filepath.Base(o.out), filepath.Ext(o.out))
	if err := export.Write(o.out, img, export.PDFOptions{DPI: o.dpi, Title: title}); err != nil {
		return err
	}
	b := img.Bounds()
	printSuccess(out, "wrote %s (%dx%d)", o.out, b.Dx(), b.Dy())
	return nil
}
