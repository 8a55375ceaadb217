package bot

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/ayodejiades/ayodeji/internal/failure"
	"github.com/ayodejiades/ayodeji/internal/models"
)

type fakeAnswerer struct {
	text    string
	err     error
	queries []string
}

func (f *fakeAnswerer) Answer(_ context.Context, q string) (*models.Answer, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Answer{Text: f.text, Mode: models.ModeRAG}, nil
}

type fakeIngester struct {
	err      error
	gotPath  string
	gotName  string
	sawFile  bool
	contents []byte
}

func (f *fakeIngester) IngestUpload(_ context.Context, path, name string) (*models.IngestReport, error) {
	f.gotPath, f.gotName = path, name
	data, err := os.ReadFile(path)
	f.sawFile = err == nil
	f.contents = data
	if f.err != nil {
		return nil, f.err
	}
	return &models.IngestReport{Title: name, Chunks: 2, Pages: 1}, nil
}

type fakeTranscriber struct {
	text    string
	err     error
	gotPath string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, path string) (string, error) {
	f.gotPath = path
	return f.text, f.err
}

type sent struct {
	chatID int64
	text   string
}

// fakeMessenger records replies and serves downloads from an in-memory map.
type fakeMessenger struct {
	mu      sync.Mutex
	sent    []sent
	files   map[string][]byte
	sendErr error
}

func (m *fakeMessenger) Send(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.sent = append(m.sent, sent{chatID, text})
	return nil
}

func (m *fakeMessenger) Download(_ context.Context, fileID, dst string) error {
	data, ok := m.files[fileID]
	if !ok {
		return errors.New("file not found")
	}
	return os.WriteFile(dst, data, 0644)
}

func (m *fakeMessenger) replies() []sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sent(nil), m.sent...)
}

// stallingAnswerer blocks until the question's context is done.
type stallingAnswerer struct{}

func (stallingAnswerer) Answer(ctx context.Context, _ string) (*models.Answer, error) {
	<-ctx.Done()
	return nil, failure.Generation("answer", ctx.Err())
}

var errQuota = failure.Generation("answer", errors.New("quota exhausted"))
