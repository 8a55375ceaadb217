// Package cli formats command output for the ayodeji binary.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ayodejiades/ayodeji/internal/models"
	"github.com/ayodejiades/ayodeji/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text or json", s)
}

// Status is what `ayodeji status` prints.
type Status struct {
	Documents          int64             `json:"documents"`
	Chunks             int64             `json:"chunks"`
	VectorIndexSize    int               `json:"vector_index_size"`
	DiskUsageBytes     *int64            `json:"disk_usage_bytes,omitempty"`
	MissingCredentials []string          `json:"missing_credentials"`
	Config             map[string]string `json:"config,omitempty"`
}

// WriteAnswer writes an answer and, in text mode, the passages it was grounded on.
func WriteAnswer(w io.Writer, ans *models.Answer, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, ans)
	}
	fmt.Fprintln(w, ans.Text)
	if len(ans.Sources) == 0 {
		if ans.Mode == models.ModeFallback {
			fmt.Fprintln(w, "\n(answered without handout context)")
		}
		return nil
	}
	fmt.Fprintln(w, "\n--- Sources ---")
	for i, src := range ans.Sources {
		title := src.Chunk.Metadata[models.MetaTitle]
		if title == "" {
			title = src.Chunk.DocumentID
		}
		fmt.Fprintf(w, "[%d] %s #%d (score %.4f)\n", i+1, title, src.Chunk.ChunkIndex, src.Score)
		fmt.Fprintf(w, "    %s\n", utils.Truncate(strings.Join(strings.Fields(src.Chunk.Content), " "), 160))
	}
	return nil
}

// WriteIngestReports writes one line per ingested handout, then a total.
func WriteIngestReports(w io.Writer, reports []*models.IngestReport, format OutputFormat) error {
	if format == OutputJSON {
		if reports == nil {
			reports = []*models.IngestReport{}
		}
		return writeJSON(w, reports)
	}
	chunks := 0
	for _, r := range reports {
		fmt.Fprintf(w, "%s: %d page(s), %d chunk(s) [%s]\n", r.Title, r.Pages, r.Chunks, r.DocumentID)
		chunks += r.Chunks
	}
	fmt.Fprintf(w, "Ingested %d handout(s), %d chunk(s)\n", len(reports), chunks)
	return nil
}

// WriteStatus writes store counts and the configuration summary.
func WriteStatus(w io.Writer, s *Status, format OutputFormat) error {
	if format == OutputJSON {
		if s.MissingCredentials == nil {
			s.MissingCredentials = []string{}
		}
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "documents:          %d   # handouts ingested\n", s.Documents)
	fmt.Fprintf(w, "chunks:             %d   # searchable passages\n", s.Chunks)
	fmt.Fprintf(w, "vector_index_size:  %d\n", s.VectorIndexSize)
	if s.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d\n", *s.DiskUsageBytes)
	}
	if len(s.MissingCredentials) > 0 {
		fmt.Fprintf(w, "missing:            %s\n", strings.Join(s.MissingCredentials, ", "))
	}
	if len(s.Config) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		keys := make([]string, 0, len(s.Config))
		for k := range s.Config {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%-20s%s\n", k+":", s.Config[k])
		}
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
