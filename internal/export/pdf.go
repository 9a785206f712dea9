/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions controls PDF export. The collage is embedded as a single
// lossless PNG image on a page sized to fit it.
//
// Units are points. The image is DPI pixels per inch (96 when zero) and
// Margin points of white space surround it.
type PDFOptions struct {
	DPI    int
	Margin float64
	Title  string
	Author string
}

const defaultPDFDPI = 96

func (o PDFOptions) pageSize(b image.Rectangle) (imgW, imgH float64) {
	dpi := o.DPI
	if dpi <= 0 {
		dpi = defaultPDFDPI
	}
	scale := 72.0 / float64(dpi)
	return float64(b.Dx()) * scale, float64(b.Dy()) * scale
}

func buildPDF(img image.Image, opt PDFOptions) (*gofpdf.Fpdf, error) {
	if img == nil {
		return nil, fmt.Errorf("image is nil")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("image is empty")
	}
	raw, err := PNGBytes(img)
	if err != nil {
		return nil, err
	}
	margin := opt.Margin
	if margin < 0 {
		margin = 0
	}
	w, h := opt.pageSize(b)
	size := gofpdf.SizeType{Wd: w + 2*margin, Ht: h + 2*margin}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	title := opt.Title
	if title == "" {
		title = "Collage"
	}
	pdf.SetTitle(title, true)
	author := opt.Author
	if author == "" {
		author = "GoCollage"
	}
	pdf.SetAuthor(author, true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", size)

	imgOpt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("collage", imgOpt, bytes.NewReader(raw))
	pdf.ImageOptions("collage", margin, margin, w, h, false, imgOpt, 0, "")
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	return pdf, nil
}

// EncodePDF writes img as a one-page PDF to w.
func EncodePDF(w io.Writer, img image.Image, opt PDFOptions) error {
	pdf, err := buildPDF(img, opt)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// WritePDF writes img as a one-page PDF at outPath.
func WritePDF(outPath string, img image.Image, opt PDFOptions) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := EncodePDF(f, img, opt); err != nil {
		f.Close()
		_ = os.Remove(outPath)
		return err
	}
	return f.Close()
}
