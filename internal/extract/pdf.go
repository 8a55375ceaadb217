// Package extract reads handout text out of PDF files.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a PDF parses but yields no text (e.g. a scanned handout).
var ErrNoText = errors.New("no extractable text")

// Page is the plain text of one PDF page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Document is the text of a parsed PDF.
type Document struct {
	Pages      []Page
	TotalPages int
}

// Text joins the page texts with blank lines.
func (d *Document) Text() string {
	parts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

// ReadPDF reads and parses the PDF at path.
func ReadPDF(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return PDFPages(content)
}

// PDFPages parses content as a PDF and returns the text of every page that has
// any. Pages without a page object or with only whitespace are left out;
// TotalPages still counts them.
func PDFPages(content []byte) (doc *Document, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	numPages := r.NumPage()
	doc = &Document{TotalPages: numPages}
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		doc.Pages = append(doc.Pages, Page{Number: i, Text: text})
	}
	if len(doc.Pages) == 0 {
		return nil, ErrNoText
	}
	return doc, nil
}
