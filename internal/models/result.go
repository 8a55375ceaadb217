package models

// ScoredChunk is a retrieval hit. Score is cosine similarity.
type ScoredChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
}

// AnswerMode records which prompt produced an answer.
type AnswerMode string

const (
	// ModeRAG means the answer was grounded on retrieved handout context.
	ModeRAG AnswerMode = "rag"
	// ModeFallback means retrieval or grounded generation failed and the model answered without context.
	ModeFallback AnswerMode = "fallback"
)

// Answer is the generator's output for one question.
type Answer struct {
	Text    string         `json:"answer"`
	Mode    AnswerMode     `json:"mode"`
	Sources []*ScoredChunk `json:"sources,omitempty"`
}

// IngestReport summarises one ingestion.
type IngestReport struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
}
