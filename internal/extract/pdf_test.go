package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayodejiades/ayodeji/internal/testutil"
)

func TestPDFPages(t *testing.T) {
	content := testutil.MinimalPDF(
		[]string{"CSC301 Software Engineering", "The assignment is due on Friday."},
		[]string{"Week 2: requirements (functional and non-functional)"},
	)
	doc, err := PDFPages(content)
	if err != nil {
		t.Fatal(err)
	}
	if doc.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", doc.TotalPages)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("got %d pages with text, want 2", len(doc.Pages))
	}
	if doc.Pages[0].Number != 1 || doc.Pages[1].Number != 2 {
		t.Errorf("page numbers = %d, %d", doc.Pages[0].Number, doc.Pages[1].Number)
	}
	if !strings.Contains(doc.Pages[0].Text, "due on Friday") {
		t.Errorf("page 1 text = %q", doc.Pages[0].Text)
	}
	if !strings.Contains(doc.Pages[1].Text, "(functional and non-functional)") {
		t.Errorf("escaped parentheses lost: %q", doc.Pages[1].Text)
	}

	text := doc.Text()
	if !strings.Contains(text, "\n\n") {
		t.Errorf("pages should be joined by a blank line: %q", text)
	}
	if strings.Index(text, "Friday") > strings.Index(text, "Week 2") {
		t.Error("pages out of order")
	}
}

func TestPDFPages_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("hello, this is plain text")},
		{"truncated", testutil.MinimalPDF([]string{"cut short"})[:40]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PDFPages(tt.content); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPDFPages_NoText(t *testing.T) {
	_, err := PDFPages(testutil.MinimalPDF([]string{"   "}))
	if !errors.Is(err, ErrNoText) {
		t.Errorf("expected ErrNoText, got %v", err)
	}
}

func TestReadPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "handout.pdf")
	if err := testutil.WritePDF(path, []string{"Lecture notes"}); err != nil {
		t.Fatal(err)
	}
	doc, err := ReadPDF(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.Text(), "Lecture notes") {
		t.Errorf("text = %q", doc.Text())
	}

	if _, err := ReadPDF(filepath.Join(dir, "missing.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
