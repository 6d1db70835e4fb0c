package pdfrenderer

import (
	"fmt"
	"image"
)

// RenderDPI is the rasterization resolution. PDF user space is 72 DPI so
// this is a 2.0 scale factor.
const RenderDPI = 144

// Renderer defines the interface for PDF to image conversion
type Renderer interface {
	// RenderPages converts every page of a PDF document to an image, in
	// page order
	RenderPages(pdfBytes []byte) ([]image.Image, error)

	// PageCount reports the number of pages without rendering anything
	PageCount(pdfBytes []byte) (int, error)

	// Close cleans up any resources used by the renderer
	Close() error
}

// NewRenderer creates a renderer of the requested kind: "pdfium" (pure Go
// via WebAssembly) or "fitz" (CGo and MuPDF)
func NewRenderer(kind string) (Renderer, error) {
	switch kind {
	case "", "pdfium":
		return NewPDFiumRenderer()
	case "fitz":
		return NewFitzRenderer()
	default:
		return nil, fmt.Errorf("unknown PDF renderer %q (want pdfium or fitz)", kind)
	}
}
