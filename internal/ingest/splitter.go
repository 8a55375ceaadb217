package ingest

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultSeparators are tried in order: paragraph, line, sentence, word, character.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter cuts text into chunks of at most size runes, preferring the
// earliest separator in its list that occurs in the text. Consecutive chunks
// share at least overlap runes.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// NewSplitter returns a splitter using DefaultSeparators.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Splitter{size: size, overlap: overlap, separators: DefaultSeparators}, nil
}

// Split returns the chunks of text in order. Whitespace-only chunks are dropped.
func (s *Splitter) Split(text string) []string {
	var out []string
	for _, c := range s.merge(s.pieces(text, s.separators)) {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

// pieces cuts text after the first separator it contains and recurses with
// the finer separators into any piece too long to follow an overlap.
func (s *Splitter) pieces(text string, separators []string) []string {
	sep, rest := "", []string(nil)
	for i, c := range separators {
		if c == "" || strings.Contains(text, c) {
			sep, rest = c, separators[i+1:]
			break
		}
	}

	limit := s.size - s.overlap
	var out []string
	for _, piece := range splitKeep(text, sep) {
		if len(rest) == 0 || utf8.RuneCountInString(piece) <= limit {
			out = append(out, piece)
			continue
		}
		out = append(out, s.pieces(piece, rest)...)
	}
	return out
}

// merge packs pieces greedily into chunks. After each chunk it keeps the
// shortest tail of pieces reaching the overlap. When that tail and the next
// piece exceed size, the tail is cut down to a word-aligned suffix.
func (s *Splitter) merge(pieces []string) []string {
	var chunks, window []string
	total := 0
	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if total+n > s.size && len(window) > 0 {
			chunks = append(chunks, strings.Join(window, ""))
			for len(window) > 0 {
				head := utf8.RuneCountInString(window[0])
				if total-head < s.overlap {
					break
				}
				total -= head
				window = window[1:]
			}
			if total+n > s.size {
				t := s.tail(strings.Join(window, ""), s.size-n)
				window, total = nil, 0
				if t != "" {
					window, total = []string{t}, utf8.RuneCountInString(t)
				}
			}
		}
		window = append(window, p)
		total += n
	}
	if len(window) > 0 {
		chunks = append(chunks, strings.Join(window, ""))
	}
	return chunks
}

// tail returns the shortest suffix of text that starts after whitespace,
// holds at least overlap runes and fits in room. Without such a boundary it
// cuts exactly overlap runes.
func (s *Splitter) tail(text string, room int) string {
	r := []rune(text)
	keep := min(s.overlap, room, len(r))
	if keep <= 0 {
		return ""
	}
	for i := len(r) - keep; i > 0 && len(r)-i <= room; i-- {
		if unicode.IsSpace(r[i-1]) {
			return string(r[i:])
		}
	}
	return string(r[len(r)-keep:])
}

// splitKeep splits text after every sep, leaving sep on the preceding piece.
// An empty sep splits into runes.
func splitKeep(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.SplitAfter(text, sep)
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
