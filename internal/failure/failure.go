// Package failure defines the typed failures components return at their boundaries.
// Components never produce user-facing text; the bot maps a Kind to a persona reply.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the outer boundary.
type Kind string

const (
	// KindIngest means a document could not be parsed, embedded or stored.
	KindIngest Kind = "ingest"
	// KindGeneration means neither the grounded nor the fallback prompt produced an answer.
	KindGeneration Kind = "generation"
	// KindTranscription means audio could not be decoded or transcribed.
	KindTranscription Kind = "transcription"
	// KindUnsupported means the input type is not accepted (e.g. a non-PDF document).
	KindUnsupported Kind = "unsupported"
	// KindUnknown is returned by KindOf for errors that carry no Kind.
	KindUnknown Kind = "unknown"
)

// Error is a failure with a Kind, the operation that failed and its cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failed", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err as a failure of the given kind. A nil err still yields a non-nil failure.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Ingest wraps err as an ingestion failure.
func Ingest(op string, err error) *Error { return New(KindIngest, op, err) }

// Generation wraps err as a generation failure.
func Generation(op string, err error) *Error { return New(KindGeneration, op, err) }

// Transcription wraps err as a transcription failure.
func Transcription(op string, err error) *Error { return New(KindTranscription, op, err) }

// KindOf returns the Kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
