package models

import (
	"fmt"
	"strings"
)

// AskRequest is a question posted to the operator API.
type AskRequest struct {
	Query string `json:"query"`
}

// Validate trims the query and rejects empty input.
func (q *AskRequest) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}
