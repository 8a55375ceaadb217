package ingest

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func mustSplitter(t *testing.T, size, overlap int) *Splitter {
	t.Helper()
	s, err := NewSplitter(size, overlap)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// sharedPrefix returns the length in runes of the longest prefix of next that
// prev ends with.
func sharedPrefix(prev, next string) int {
	best := 0
	for i := range next {
		if strings.HasSuffix(prev, next[:i]) {
			best = utf8.RuneCountInString(next[:i])
		}
	}
	if strings.HasSuffix(prev, next) {
		best = utf8.RuneCountInString(next)
	}
	return best
}

func TestNewSplitter(t *testing.T) {
	tests := []struct {
		size, overlap int
		wantErr       bool
	}{
		{1000, 100, false},
		{10, 0, false},
		{0, 0, true},
		{10, 10, true},
		{10, -1, true},
	}
	for _, tt := range tests {
		_, err := NewSplitter(tt.size, tt.overlap)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewSplitter(%d, %d) error = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
		}
	}
}

func TestSplitter_ShortText(t *testing.T) {
	s := mustSplitter(t, 1000, 100)
	text := "The CSC301 assignment is due on Friday."
	got := s.Split(text)
	if len(got) != 1 || got[0] != text {
		t.Errorf("Split() = %q", got)
	}
	if s.Split(" \n\n\t ") != nil {
		t.Error("whitespace-only text should produce no chunks")
	}
}

func TestSplitter_ChunkBound(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, "Sentence number %d talks about lecture %d. ", i, i%7)
		if i%9 == 8 {
			b.WriteString("\n\n")
		}
	}
	text := b.String()
	s := mustSplitter(t, 120, 20)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 120 {
			t.Errorf("chunk %d has %d runes", i, n)
		}
	}
	for i := 0; i < 60; i++ {
		needle := fmt.Sprintf("Sentence number %d talks", i)
		found := false
		for _, c := range chunks {
			if strings.Contains(c, needle) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%q lost", needle)
		}
	}
}

func TestSplitter_Overlap(t *testing.T) {
	var words []string
	for i := 0; i < 40; i++ {
		words = append(words, fmt.Sprintf("w%02d", i))
	}
	s := mustSplitter(t, 20, 8)
	chunks := s.Split(strings.Join(words, " "))
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if n := sharedPrefix(chunks[i-1], chunks[i]); n < 8 {
			t.Errorf("chunks %d and %d share %d runes (%q, %q)", i-1, i, n, chunks[i-1], chunks[i])
		}
	}
	if !strings.HasSuffix(chunks[len(chunks)-1], "w39") {
		t.Errorf("last chunk = %q", chunks[len(chunks)-1])
	}
}

func TestSplitter_ZeroOverlap(t *testing.T) {
	s := mustSplitter(t, 8, 0)
	got := s.Split("aaa bbb ccc ddd")
	want := []string{"aaa bbb ", "ccc ddd"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Split() = %q, want %q", got, want)
	}
}

func TestSplitter_PrefersParagraphs(t *testing.T) {
	first := strings.Repeat("alpha ", 6) + "\n\n"
	second := strings.Repeat("omega ", 6)
	s := mustSplitter(t, 50, 5)
	chunks := s.Split(first + second)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %q", chunks)
	}
	if chunks[0] != first {
		t.Errorf("first chunk should end at the paragraph break, got %q", chunks[0])
	}
	if !strings.HasSuffix(chunks[1], second) {
		t.Errorf("second chunk = %q", chunks[1])
	}
	if n := sharedPrefix(chunks[0], chunks[1]); n < 5 {
		t.Errorf("paragraphs share %d runes", n)
	}
}

func TestSplitter_OverlapBeforeLongSentence(t *testing.T) {
	short := "The lecturer moved the CSC301 class to the big hall. "
	long := "Every student must bring the signed attendance card and a pen. "
	s := mustSplitter(t, 80, 15)
	chunks := s.Split(short + long)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %q", chunks)
	}
	if chunks[0] != short {
		t.Errorf("first chunk = %q", chunks[0])
	}
	if n := sharedPrefix(chunks[0], chunks[1]); n < 15 {
		t.Errorf("chunks share %d runes (%q, %q)", n, chunks[0], chunks[1])
	}
	if !strings.HasPrefix(chunks[1], "to the big hall. Every") {
		t.Errorf("carried tail should start on a word, got %q", chunks[1])
	}
}

func TestSplitter_OverlapAcrossParagraphs(t *testing.T) {
	var b strings.Builder
	for p := 0; p < 12; p++ {
		for i := 0; i < 2+p%5; i++ {
			fmt.Fprintf(&b, "Topic %d point %d", p, i)
			b.WriteString(strings.Repeat(" covers heaps", (p*7+i*3)%11))
			b.WriteString(". ")
		}
		b.WriteString("\n\n")
	}
	for _, size := range []int{60, 120, 250} {
		overlap := size / 4
		s := mustSplitter(t, size, overlap)
		chunks := s.Split(b.String())
		if len(chunks) < 3 {
			t.Fatalf("size %d: expected several chunks, got %d", size, len(chunks))
		}
		for i, c := range chunks {
			if n := utf8.RuneCountInString(c); n > size {
				t.Errorf("size %d: chunk %d has %d runes", size, i, n)
			}
			if i > 0 {
				if n := sharedPrefix(chunks[i-1], c); n < overlap {
					t.Errorf("size %d: chunks %d and %d share %d runes", size, i-1, i, n)
				}
			}
		}
	}
}

func TestSplitter_LongWordFallsBackToRunes(t *testing.T) {
	s := mustSplitter(t, 10, 2)
	word := strings.Repeat("x", 35)
	chunks := s.Split(word)
	if len(chunks) < 4 {
		t.Fatalf("expected the word to be cut, got %q", chunks)
	}
	for _, c := range chunks {
		if utf8.RuneCountInString(c) > 10 {
			t.Errorf("chunk %q exceeds size", c)
		}
	}
}

func TestSplitter_MultibyteText(t *testing.T) {
	text := strings.Repeat("Ẹ kú àárọ̀ ọmọ ilé-ìwé. ", 30)
	s := mustSplitter(t, 40, 10)
	for _, c := range s.Split(text) {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk is not valid UTF-8: %q", c)
		}
		if n := utf8.RuneCountInString(c); n > 40 {
			t.Errorf("chunk has %d runes", n)
		}
	}
}
