/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package imageload decodes user images off the UI goroutine.
//
// Supported formats: PNG, JPEG, GIF (first frame), WebP, BMP and TIFF.
package imageload

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	applog "gocollage/internal/log"
)

// DefaultMaxPixels bounds width*height of an accepted image (100 MP).
const DefaultMaxPixels = 100_000_000

const headerPeek = 64 * 1024

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image too large")
)

// Result is delivered once per Load call.
type Result struct {
	Name   string
	Image  image.Image
	Format string
	Err    error
}

// Loader decodes images on background goroutines; WithWorkers caps how
// many decode at once (two by default).
type Loader struct {
	log       *slog.Logger
	maxPixels int
	sem       chan struct{}
}

type Option func(*Loader)

func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

func WithMaxPixels(n int) Option {
	return func(ld *Loader) {
		if n > 0 {
			ld.maxPixels = n
		}
	}
}

// WithWorkers caps concurrent decodes.
func WithWorkers(n int) Option {
	return func(ld *Loader) {
		if n > 0 {
			ld.sem = make(chan struct{}, n)
		}
	}
}

func New(opts ...Option) *Loader {
	l := &Loader{
		log:       applog.WithComponent("imageload"),
		maxPixels: DefaultMaxPixels,
		sem:       make(chan struct{}, 2),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load opens and decodes path in the background. The returned channel
// receives exactly one Result and is then closed.
func (l *Loader) Load(ctx context.Context, path string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		f, err := os.Open(path)
		if err != nil {
			out <- Result{Name: path, Err: fmt.Errorf("open image: %w", err)}
			return
		}
		defer f.Close()
		out <- l.decode(ctx, path, f)
	}()
	return out
}

// LoadReader is Load for an already opened stream; rc is closed when done.
func (l *Loader) LoadReader(ctx context.Context, name string, rc io.ReadCloser) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		defer rc.Close()
		out <- l.decode(ctx, name, rc)
	}()
	return out
}

func (l *Loader) decode(ctx context.Context, name string, r io.Reader) Result {
	select {
	case l.sem <- struct{}{}:
		defer func() { <-l.sem }()
	case <-ctx.Done():
		return Result{Name: name, Err: ctx.Err()}
	}
	lg := applog.WithOperation(l.log, "decode").With(slog.String("file", filepath.Base(name)))
	img, format, err := DecodeLimited(r, l.maxPixels)
	if err != nil {
		lg.Warn("decode failed", slog.Any("err", err))
		return Result{Name: name, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return Result{Name: name, Err: err}
	}
	b := img.Bounds()
	lg.Debug("decoded", slog.String("format", format), slog.Int("w", b.Dx()), slog.Int("h", b.Dy()))
	return Result{Name: name, Image: img, Format: format}
}

// DecodeLimited checks the header first and refuses images with more than
// maxPixels pixels (0 means no limit) before allocating them. A header that
// does not fit the peek window is looked up in the whole stream, which is
// read into memory up to a bound derived from maxPixels.
func DecodeLimited(r io.Reader, maxPixels int) (image.Image, string, error) {
	br := bufio.NewReaderSize(r, headerPeek)
	var src io.Reader = br
	if maxPixels > 0 {
		head, err := br.Peek(headerPeek)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, "", fmt.Errorf("read image: %w", err)
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(head))
		if err != nil {
			full, rerr := readBounded(br, encodedLimit(maxPixels))
			if rerr != nil {
				return nil, "", rerr
			}
			cfg, format, err = image.DecodeConfig(bytes.NewReader(full))
			if err != nil {
				if errors.Is(err, image.ErrFormat) {
					return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
				}
				return nil, format, fmt.Errorf("read image header: %w", err)
			}
			src = bytes.NewReader(full)
		}
		if cfg.Width*cfg.Height > maxPixels {
			return nil, format, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
		}
	}
	img, format, err := image.Decode(src)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, format, fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// encodedLimit bounds the encoded size of an image with maxPixels pixels.
func encodedLimit(maxPixels int) int64 {
	return int64(maxPixels)*8 + headerPeek
}

func readBounded(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d encoded bytes", ErrTooLarge, limit)
	}
	return data, nil
}
