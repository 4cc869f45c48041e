// Package extract provides file type classification and text extraction for
// uploaded documents.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileType classifies an uploaded file for extraction purposes.
type FileType string

const (
	TypePDF         FileType = "pdf"
	TypeImage       FileType = "image"
	TypeDOCX        FileType = "docx"
	TypeXLSX        FileType = "xlsx"
	TypeText        FileType = "text"
	TypeUnsupported FileType = "unsupported"
)

// DetectType classifies a file by its extension. Unknown extensions are
// unsupported; the pipeline treats unsupported files as empty text rather
// than failing.
func DetectType(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return TypePDF
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		return TypeImage
	case ".docx":
		return TypeDOCX
	case ".xlsx":
		return TypeXLSX
	case ".txt", ".md", ".rst", ".csv":
		return TypeText
	default:
		return TypeUnsupported
	}
}

// Engine converts a local file into plain text. Implementations may be
// wrapped with external deadlines; a failure is reported to the caller, which
// decides whether it is fatal.
type Engine interface {
	ExtractText(ctx context.Context, path string, ftype FileType) (string, error)
}

// OCRFunc recognizes text in an image file. Supplied by an external OCR
// collaborator; absent one, images yield empty text.
type OCRFunc func(ctx context.Context, path string) (string, error)

// Extractor is the default extraction engine: PDF, DOCX, XLSX, and plain text
// are handled in-process; images are delegated to an optional OCR function.
type Extractor struct {
	ocr OCRFunc
}

// NewExtractor returns an extraction engine. ocr may be nil.
func NewExtractor(ocr OCRFunc) *Extractor {
	return &Extractor{ocr: ocr}
}

// ExtractText reads the file at path and returns its text content according
// to ftype. Unsupported types, and images without an OCR collaborator, return
// empty text without error.
func (e *Extractor) ExtractText(ctx context.Context, path string, ftype FileType) (string, error) {
	switch ftype {
	case TypePDF, TypeDOCX, TypeXLSX, TypeText:
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		switch ftype {
		case TypePDF:
			return extractPDF(content)
		case TypeDOCX:
			return extractDOCX(content)
		case TypeXLSX:
			return extractExcel(content)
		default:
			return extractPlain(content)
		}
	case TypeImage:
		if e.ocr == nil {
			return "", nil
		}
		return e.ocr(ctx, path)
	default:
		return "", nil
	}
}
