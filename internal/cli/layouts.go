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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gocollage/internal/collage"
	"gocollage/internal/export"
	"gocollage/internal/layout"
	applog "gocollage/internal/log"
	"gocollage/internal/render"
	"gocollage/internal/thumbcache"
)

type layoutsOpts struct {
	catalog string
	asJSON  bool
	thumbs  string
	size    int
}

func newLayoutsCmd(a *app) *cobra.Command {
	var o layoutsOpts
	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "List the layout catalog",
		Long:  "List the built-in layouts, or those of a catalog file, and optionally write a PNG thumbnail for each.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLayouts(cmd, a, o)
		},
	}
	cmd.Flags().StringVar(&o.catalog, "catalog", "", "layout catalog JSON (default: config catalog.path or built-in)")
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print the catalog as JSON")
	cmd.Flags().StringVar(&o.thumbs, "thumbs", "", "write <name>.png thumbnails into this directory")
	cmd.Flags().IntVar(&o.size, "size", 160, "thumbnail edge length in pixels")
	return cmd
}

// loadCatalog resolves the catalog from a flag, then config, then built-ins.
func loadCatalog(flag, configured string) (*layout.Catalog, error) {
	p := strings.TrimSpace(flag)
	if p == "" {
		p = strings.TrimSpace(configured)
	}
	if p == "" {
		return layout.Builtin(), nil
	}
	return layout.LoadCatalog(p)
}

func slotCount(l layout.Layout) int {
	switch v := l.(type) {
	case layout.Uniform:
		return v.SlotCount()
	case layout.Custom:
		return len(v.Rects)
	}
	return 0
}

func runLayouts(cmd *cobra.Command, a *app, o layoutsOpts) error {
	out := cmd.OutOrStdout()
	cat, err := loadCatalog(o.catalog, a.cfg.Catalog.Path)
	if err != nil {
		return err
	}

	if o.asJSON {
		b, err := json.MarshalIndent(cat, "", "  ")
		if err != nil {
			return fmt.Errorf("encode catalog: %w", err)
		}
		fmt.Fprintln(out, string(b))
	} else {
		fmt.Fprintln(out, styleTitle.Render(fmt.Sprintf("%d layouts", cat.Len())))
		for _, e := range cat.Entries() {
			l := e.Layout()
			fmt.Fprintf(out, "  %s %s\n", styleName.Render(e.Name), styleDim.Render(fmt.Sprintf("%s, %d slots", l.Kind(), slotCount(l))))
		}
	}

	if o.thumbs == "" {
		return nil
	}
	return writeThumbnails(cmd.Context(), cmd, a, cat, o)
}

func writeThumbnails(ctx context.Context, cmd *cobra.Command, a *app, cat *layout.Catalog, o layoutsOpts) error {
	out := cmd.OutOrStdout()
	l := applog.WithComponent("cli")
	if o.size < 8 {
		return fmt.Errorf("thumbnail size %d too small", o.size)
	}
	if err := os.MkdirAll(o.thumbs, 0o755); err != nil {
		return fmt.Errorf("create thumbnail dir: %w", err)
	}

	var cache *thumbcache.Cache
	if !a.cfg.Cache.Disabled {
		c, err := thumbcache.Open(a.cfg.CacheDir(), a.cfg.Cache.MaxBytes)
		if err != nil {
			l.Warn("thumbnail cache disabled", slog.Any("err", err))
		} else {
			cache = c
			defer func() { _ = cache.Close() }()
		}
	}

	style := thumbcache.StyleKey(a.cfg.Canvas)
	for _, e := range cat.Entries() {
		lay := e.Layout()
		gen := func(context.Context) ([]byte, error) {
			img, err := render.Thumbnail(lay, o.size, o.size, collage.WithConfig(a.cfg.Canvas))
			if err != nil {
				return nil, err
			}
			return export.PNGBytes(img)
		}
		var (
			data   []byte
			hit    bool
			cached *bool
			err    error
		)
		if cache != nil {
			data, hit, err = cache.GetOrCreate(ctx, thumbcache.Key{Layout: e.Name + ":" + lay.String(), W: o.size, H: o.size, Style: style}, gen)
			cached = &hit
		} else {
			data, err = gen(ctx)
		}
		if err != nil {
			printWarning(out, "%s: %v", e.Name, err)
			continue
		}
		path := filepath.Join(o.thumbs, safeFileName(e.Name)+".png")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write thumbnail: %w", err)
		}
		printFile(out, path, cached)
	}
	return nil
}

func safeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}
