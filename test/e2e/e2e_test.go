package e2e

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ayodejiades/ayodeji/internal/bot"
	"github.com/ayodejiades/ayodeji/internal/embedding"
	"github.com/ayodejiades/ayodeji/internal/ingest"
	"github.com/ayodejiades/ayodeji/internal/persona"
	"github.com/ayodejiades/ayodeji/internal/prompt"
	"github.com/ayodejiades/ayodeji/internal/rag"
	"github.com/ayodejiades/ayodeji/internal/storage"
	"github.com/ayodejiades/ayodeji/internal/testutil"
	"github.com/ayodejiades/ayodeji/internal/transcribe"
	"github.com/ayodejiades/ayodeji/internal/vectorstore"
)

const (
	e2eChatID     = 4242
	e2eDimensions = 512
	e2eChunkSize  = 200
	e2eOverlap    = 20
)

// handoutPages is a two page course handout. Only one sentence mentions the
// assignment; the rest shares few words with the questions asked below.
var handoutPages = [][]string{
	{
		"CSC301 Data Structures",
		"Lecturer: Dr. Okonkwo, office beside departmental library.",
		"Course outline covers arrays, linked lists, stacks, queues, heaps.",
		"The CSC301 assignment is due on Friday by 10am inside LT2.",
	},
	{
		"Grading breakdown",
		"Continuous assessment carries thirty marks overall.",
		"Final examination carries seventy marks overall.",
		"Practical sessions happen biweekly inside computer laboratory annex.",
		"Recommended textbook: Cormen, Leiserson, Rivest, Stein.",
	},
}

type env struct {
	router *bot.Router
	msgr   *Messenger
	model  *ContextEcho
	stt    *SpeechToText
	tmp    string
}

func newEnv(t *testing.T, model *ContextEcho) *env {
	t.Helper()
	return newEnvWith(t, model, embedding.NewHashEmbedder(e2eDimensions))
}

func newEnvWith(t *testing.T, model *ContextEcho, embedder embedding.Embedder) *env {
	t.Helper()
	dir := t.TempDir()
	st, err := storage.NewSQLiteStorage(filepath.Join(dir, "store", "ayodeji.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	store, err := vectorstore.Open(ctx, st, embedder)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	splitter, err := ingest.NewSplitter(e2eChunkSize, e2eOverlap)
	if err != nil {
		t.Fatal(err)
	}
	e := &env{
		msgr:  NewMessenger(),
		model: model,
		stt:   &SpeechToText{Text: "When is the CSC301 assignment due?"},
		tmp:   filepath.Join(dir, "tmp"),
	}
	if err := os.MkdirAll(e.tmp, 0755); err != nil {
		t.Fatal(err)
	}
	pipeline := ingest.NewPipeline(st, store, splitter)
	generator := rag.NewGenerator(store, model)
	transcriber := transcribe.New(transcribe.NewFFmpeg(""), e.stt, transcribe.WithTempDir(e.tmp))
	core := bot.NewCore(generator, pipeline, transcriber, nil)
	e.router = bot.NewRouter(core, e.msgr, bot.WithTempDir(e.tmp), bot.WithMaxUpload(1<<20))
	return e
}

func update(msg *tgbotapi.Message) tgbotapi.Update {
	msg.Chat = &tgbotapi.Chat{ID: e2eChatID, Type: "private"}
	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

func (e *env) send(t *testing.T, msg *tgbotapi.Message) string {
	t.Helper()
	before := len(e.msgr.Replies())
	if err := e.router.HandleUpdate(context.Background(), update(msg)); err != nil {
		t.Fatalf("HandleUpdate: %v", err)
	}
	replies := e.msgr.Replies()
	if len(replies) != before+1 {
		t.Fatalf("expected exactly one reply, got %d", len(replies)-before)
	}
	if replies[len(replies)-1].ChatID != e2eChatID {
		t.Errorf("reply went to chat %d", replies[len(replies)-1].ChatID)
	}
	return replies[len(replies)-1].Text
}

func (e *env) uploadHandout(t *testing.T) {
	t.Helper()
	e.upload(t, "handout-1", "csc301.pdf", handoutPages...)
}

func (e *env) upload(t *testing.T, fileID, name string, pages ...[]string) {
	t.Helper()
	src := filepath.Join(t.TempDir(), name)
	if err := testutil.WritePDF(src, pages...); err != nil {
		t.Fatal(err)
	}
	e.msgr.Serve(fileID, src)
	reply := e.send(t, &tgbotapi.Message{Document: &tgbotapi.Document{
		FileID:   fileID,
		FileName: name,
		MimeType: "application/pdf",
	}})
	if reply != persona.Ingested {
		t.Fatalf("upload reply = %q", reply)
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		t.Errorf("temp file left behind: %s", e.Name())
	}
}

func TestE2E_UploadThenAsk(t *testing.T) {
	e := newEnv(t, &ContextEcho{})
	if got := e.send(t, &tgbotapi.Message{Text: "/start", Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Length: 6}}}); got != persona.Greeting {
		t.Errorf("/start reply = %q", got)
	}
	e.uploadHandout(t)

	reply := e.send(t, &tgbotapi.Message{Text: "When is the CSC301 assignment due?"})
	if !strings.Contains(reply, "Friday") {
		t.Errorf("answer should be grounded on the handout, got %q", reply)
	}
	if strings.Contains(reply, prompt.NoContext) {
		t.Errorf("grounded answer used the no-context prompt: %q", reply)
	}
	if n := len(e.model.Prompts); n != 1 {
		t.Errorf("model called %d times, want 1", n)
	}
	if !strings.Contains(e.model.Prompts[0], "Question: When is the CSC301 assignment due?") {
		t.Errorf("prompt does not carry the question:\n%s", e.model.Prompts[0])
	}
	assertNoTempFiles(t, e.tmp)
}

func TestE2E_DeadlineNotice(t *testing.T) {
	const notice = "The deadline for CSC301 assignment is Friday."
	model := &ContextEcho{}
	e := newEnv(t, model)
	e.upload(t, "notice-1", "notice.pdf", []string{notice})

	reply := e.send(t, &tgbotapi.Message{Text: "When is the CSC301 assignment due?"})
	if !strings.Contains(reply, notice) || !strings.Contains(reply, "Friday") {
		t.Errorf("answer should carry the notice, got %q", reply)
	}
	if len(model.Prompts) != 1 || !strings.Contains(ContextOf(model.Prompts[0]), notice) {
		t.Errorf("prompts = %q", model.Prompts)
	}
}

func TestE2E_AskBeforeAnyUpload(t *testing.T) {
	model := &ContextEcho{}
	e := newEnv(t, model)
	reply := e.send(t, &tgbotapi.Message{Text: "Wetin be the CSC301 venue?"})
	if reply != NotInHandout {
		t.Errorf("empty store should render an empty context, got %q", reply)
	}
	if len(model.Prompts) != 1 || strings.Contains(model.Prompts[0], prompt.NoContext) {
		t.Errorf("empty store is not an outage, prompts = %q", model.Prompts)
	}
}

func TestE2E_QuotaFallback(t *testing.T) {
	model := &ContextEcho{FailFirst: 1}
	e := newEnv(t, model)
	e.uploadHandout(t)

	reply := e.send(t, &tgbotapi.Message{Text: "When is the CSC301 assignment due?"})
	if reply != prompt.NoContext {
		t.Errorf("fallback should answer without context, got %q", reply)
	}
	if len(model.Prompts) != 2 {
		t.Fatalf("model called %d times, want grounded then fallback", len(model.Prompts))
	}
	if !strings.Contains(ContextOf(model.Prompts[0]), "Friday") {
		t.Error("first call should have carried the retrieved context")
	}
}

func TestE2E_VectorStoreOutage(t *testing.T) {
	model := &ContextEcho{}
	e := newEnvWith(t, model, &DownEmbedder{Dims: e2eDimensions})
	reply := e.send(t, &tgbotapi.Message{Text: "When is the CSC301 assignment due?"})
	if reply != prompt.NoContext {
		t.Errorf("outage should answer without context, got %q", reply)
	}
	if len(model.Prompts) != 1 {
		t.Errorf("model called %d times, want only the fallback", len(model.Prompts))
	}
}

func TestE2E_TotalOutage(t *testing.T) {
	e := newEnv(t, &ContextEcho{Down: true})
	e.uploadHandout(t)
	if reply := e.send(t, &tgbotapi.Message{Text: "When is the CSC301 assignment due?"}); reply != persona.BrainFailure {
		t.Errorf("outage reply = %q, want %q", reply, persona.BrainFailure)
	}
}

func TestE2E_RejectsBadDocuments(t *testing.T) {
	e := newEnv(t, &ContextEcho{})

	docx := filepath.Join(t.TempDir(), "notes.docx")
	if err := os.WriteFile(docx, []byte("PK\x03\x04"), 0644); err != nil {
		t.Fatal(err)
	}
	e.msgr.Serve("docx-1", docx)
	reply := e.send(t, &tgbotapi.Message{Document: &tgbotapi.Document{
		FileID: "docx-1", FileName: "notes.docx",
		MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}})
	if reply != persona.PDFOnly {
		t.Errorf("non-pdf reply = %q", reply)
	}

	broken := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(broken, []byte("%PDF-1.4 truncated"), 0644); err != nil {
		t.Fatal(err)
	}
	e.msgr.Serve("broken-1", broken)
	reply = e.send(t, &tgbotapi.Message{Document: &tgbotapi.Document{
		FileID: "broken-1", FileName: "broken.pdf", MimeType: "application/pdf",
	}})
	if reply != persona.IngestFailed {
		t.Errorf("broken pdf reply = %q", reply)
	}
	assertNoTempFiles(t, e.tmp)
}

func TestE2E_VoiceNote(t *testing.T) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}
	e := newEnv(t, &ContextEcho{})
	e.uploadHandout(t)

	note := filepath.Join(t.TempDir(), "note.wav")
	gen := exec.Command(ffmpeg, "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=1",
		"-ac", "2", "-ar", "44100", note)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("ffmpeg cannot synthesize audio: %v: %s", err, out)
	}
	e.msgr.Serve("voice-1", note)

	reply := e.send(t, &tgbotapi.Message{Voice: &tgbotapi.Voice{FileID: "voice-1", Duration: 1}})
	if !strings.HasPrefix(reply, "🎤 When is the CSC301 assignment due?\n\n🤖 ") {
		t.Errorf("voice reply = %q", reply)
	}
	if !strings.Contains(reply, "Friday") {
		t.Errorf("voice answer should be grounded, got %q", reply)
	}
	if e.stt.GotWAVs != 1 {
		t.Errorf("speech API saw %d wav files", e.stt.GotWAVs)
	}
	assertNoTempFiles(t, e.tmp)
}

func TestE2E_VoiceNoteUnreadable(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	e := newEnv(t, &ContextEcho{})
	junk := filepath.Join(t.TempDir(), "junk.ogg")
	if err := os.WriteFile(junk, []byte("not audio at all"), 0644); err != nil {
		t.Fatal(err)
	}
	e.msgr.Serve("voice-2", junk)

	if reply := e.send(t, &tgbotapi.Message{Voice: &tgbotapi.Voice{FileID: "voice-2"}}); reply != persona.NotHeard {
		t.Errorf("unreadable voice reply = %q", reply)
	}
	if len(e.model.Prompts) != 0 {
		t.Error("model should not be asked when transcription fails")
	}
	assertNoTempFiles(t, e.tmp)
}
