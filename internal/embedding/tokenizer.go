package embedding

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// SimpleTokenizer is a word-split tokenizer with hash-based token IDs.
type SimpleTokenizer struct{}

// Tokenize splits text into words and produces padded token IDs up to maxTokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 2 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = 101 // [CLS]
	attentionMask[0] = 1

	pos := 1
	for _, word := range Words(text) {
		if pos >= maxTokens-1 {
			break
		}
		// keep clear of the reserved low ids
		inputIDs[pos] = int64(HashString(word)%29000) + 1000
		attentionMask[pos] = 1
		pos++
	}
	inputIDs[pos] = 102 // [SEP]
	attentionMask[pos] = 1
	return inputIDs, attentionMask, tokenTypeIDs
}

// Words lowercases text and splits it on anything that is not a letter, digit
// or combining mark, so "CSC301's" yields "csc301" and "s", and Yoruba tone
// marks stay attached to their word.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
}

// HashString returns a deterministic 32-bit FNV-1a hash of s.
func HashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
