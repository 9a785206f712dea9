/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// Format is an output file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "png":
		return FormatPNG, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown output format for %q (want .png or .pdf)", path)
	}
}

// Write stores img at path in the format its extension names.
func Write(path string, img image.Image, pdfOpt PDFOptions) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if f == FormatPDF {
		return WritePDF(path, img, pdfOpt)
	}
	return WritePNG(path, img)
}

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// Preset bundles the formats and PDF resolution of an export preset.
type Preset struct {
	Name    PresetName
	Formats []Format
	DPI     int
}

// LookupPreset returns the named preset; unknown names fall back to web.
func LookupPreset(name string) (Preset, bool) {
	switch PresetName(strings.ToLower(strings.TrimSpace(name))) {
	case PresetWeb:
		return Preset{Name: PresetWeb, Formats: []Format{FormatPNG}, DPI: defaultPDFDPI}, true
	case PresetPrint:
		return Preset{Name: PresetPrint, Formats: []Format{FormatPDF, FormatPNG}, DPI: 300}, true
	default:
		return Preset{Name: PresetWeb, Formats: []Format{FormatPNG}, DPI: defaultPDFDPI}, false
	}
}

// BatchExport writes img once per preset format as <outDir>/<base>.<ext>
// and returns the written paths.
func BatchExport(img image.Image, outDir, base string, p Preset) ([]string, error) {
	if base == "" {
		base = "collage"
	}
	var written []string
	for _, f := range p.Formats {
		path := filepath.Join(outDir, base+"."+string(f))
		if err := Write(path, img, PDFOptions{DPI: p.DPI}); err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// SizePreset is a named canvas size.
type SizePreset struct {
	Name          string
	Width, Height int
}

var sizePresets = []SizePreset{
	{"hd", 1280, 720},
	{"fullhd", 1920, 1080},
	{"square", 1080, 1080},
	{"story", 1080, 1920},
	{"a4-150dpi", 1240, 1754},
}

// SizePresets lists the built-in canvas sizes.
func SizePresets() []SizePreset {
	out := make([]SizePreset, len(sizePresets))
	copy(out, sizePresets)
	return out
}

// LookupSize finds a canvas size preset by name.
func LookupSize(name string) (SizePreset, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, s := range sizePresets {
		if s.Name == n {
			return s, true
		}
	}
	return SizePreset{}, false
}
