package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDetectType(t *testing.T) {
	cases := []struct {
		filename string
		want     FileType
	}{
		{"report.pdf", TypePDF},
		{"REPORT.PDF", TypePDF},
		{"scan.png", TypeImage},
		{"photo.JPG", TypeImage},
		{"photo.jpeg", TypeImage},
		{"fax.tif", TypeImage},
		{"fax.tiff", TypeImage},
		{"letter.docx", TypeDOCX},
		{"sheet.xlsx", TypeXLSX},
		{"notes.txt", TypeText},
		{"readme.md", TypeText},
		{"guide.rst", TypeText},
		{"data.csv", TypeText},
		{"archive.zip", TypeUnsupported},
		{"program.exe", TypeUnsupported},
		{"noextension", TypeUnsupported},
		{"", TypeUnsupported},
	}
	for _, tc := range cases {
		if got := DetectType(tc.filename); got != tc.want {
			t.Errorf("DetectType(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, content, 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor(nil)
	p := writeTemp(t, "notes.txt", []byte("hello world\nsecond line"))

	text, err := e.ExtractText(context.Background(), p, TypeText)
	if err != nil {
		t.Fatal(err)
	}
	if text != "hello world\nsecond line" {
		t.Errorf("text=%q", text)
	}
}

func TestExtractPlainInvalidUTF8(t *testing.T) {
	e := NewExtractor(nil)
	p := writeTemp(t, "bad.txt", []byte{'o', 'k', 0xff, 0xfe})

	text, err := e.ExtractText(context.Background(), p, TypeText)
	if err != nil {
		t.Fatal(err)
	}
	if text == "" {
		t.Error("expected sanitized text, got empty")
	}
	if text[:2] != "ok" {
		t.Errorf("text=%q", text)
	}
}

func TestExtractImageWithoutOCR(t *testing.T) {
	e := NewExtractor(nil)
	p := writeTemp(t, "scan.png", []byte{0x89, 'P', 'N', 'G'})

	text, err := e.ExtractText(context.Background(), p, TypeImage)
	if err != nil {
		t.Fatal(err)
	}
	if text != "" {
		t.Errorf("expected empty text without an OCR collaborator, got %q", text)
	}
}

func TestExtractImageWithOCR(t *testing.T) {
	called := false
	e := NewExtractor(func(ctx context.Context, path string) (string, error) {
		called = true
		return "recognized text", nil
	})
	p := writeTemp(t, "scan.png", []byte{0x89, 'P', 'N', 'G'})

	text, err := e.ExtractText(context.Background(), p, TypeImage)
	if err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("OCR function not invoked")
	}
	if text != "recognized text" {
		t.Errorf("text=%q", text)
	}
}

func TestExtractImageOCRError(t *testing.T) {
	wantErr := errors.New("ocr backend down")
	e := NewExtractor(func(ctx context.Context, path string) (string, error) {
		return "", wantErr
	})
	p := writeTemp(t, "scan.png", []byte{0x89, 'P', 'N', 'G'})

	if _, err := e.ExtractText(context.Background(), p, TypeImage); !errors.Is(err, wantErr) {
		t.Errorf("expected OCR error to surface, got %v", err)
	}
}

func TestExtractUnsupported(t *testing.T) {
	e := NewExtractor(nil)
	p := writeTemp(t, "archive.zip", []byte("PK"))

	text, err := e.ExtractText(context.Background(), p, TypeUnsupported)
	if err != nil {
		t.Fatal(err)
	}
	if text != "" {
		t.Errorf("expected empty text for unsupported type, got %q", text)
	}
}

func TestExtractMissingFile(t *testing.T) {
	e := NewExtractor(nil)

	if _, err := e.ExtractText(context.Background(), filepath.Join(t.TempDir(), "gone.txt"), TypeText); err == nil {
		t.Error("expected error for missing file")
	}
}

func makeDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	e := NewExtractor(nil)
	docXML := `<?xml version="1.0"?><w:document><w:body>` +
		`<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve">world</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	p := writeTemp(t, "letter.docx", makeDOCX(t, docXML))

	text, err := e.ExtractText(context.Background(), p, TypeDOCX)
	if err != nil {
		t.Fatal(err)
	}
	if text != "Hello world" {
		t.Errorf("text=%q", text)
	}
}

func TestExtractXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title")
	f.SetCellValue("Sheet1", "A2", "Value 1")
	f.SetCellValue("Sheet1", "B2", "Value 2")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	p := writeTemp(t, "sheet.xlsx", buf.Bytes())

	e := NewExtractor(nil)
	text, err := e.ExtractText(context.Background(), p, TypeXLSX)
	if err != nil {
		t.Fatal(err)
	}
	if text != "Title\nValue 1\tValue 2" {
		t.Errorf("text=%q", text)
	}
}

func TestExtractDOCXNotAZip(t *testing.T) {
	e := NewExtractor(nil)
	p := writeTemp(t, "broken.docx", []byte("this is not a zip"))

	if _, err := e.ExtractText(context.Background(), p, TypeDOCX); err == nil {
		t.Error("expected error for corrupt docx")
	}
}
