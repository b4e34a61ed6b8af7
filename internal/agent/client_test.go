package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/csheth/portfolio-console/internal/agenttest"
)

func TestConverseSendsMessageAndSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload["message"] != "What did you build in 2025?" {
			t.Fatalf("unexpected message: %q", payload["message"])
		}
		if payload["session_id"] != "guest_browser" {
			t.Fatalf("unexpected session: %q", payload["session_id"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"A **forecast grid**.","action":"reply"}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL + "/", HTTPClient: server.Client()})
	reply, err := client.Converse(context.Background(), "What did you build in 2025?", "guest_browser")
	if err != nil {
		t.Fatalf("converse failed: %v", err)
	}
	if reply != "A **forecast grid**." {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestConverseNon2xxIsStatusError(t *testing.T) {
	backend := agenttest.New(t)
	backend.SetChat(http.StatusInternalServerError, "boom")

	client := New(Config{BaseURL: backend.URL})
	_, err := client.Converse(context.Background(), "hello", "guest")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected code: %d", statusErr.Code)
	}
	if len(backend.Chats()) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", len(backend.Chats()))
	}
}

func TestConverseRejectsMalformedBody(t *testing.T) {
	backend := agenttest.New(t)
	backend.SetChatRaw(http.StatusOK, "<html>gateway</html>")

	client := New(Config{BaseURL: backend.URL})
	if _, err := client.Converse(context.Background(), "hello", "guest"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestConverseRejectsMissingResponseField(t *testing.T) {
	backend := agenttest.New(t)
	for _, body := range []string{`{"other":"x"}`, `{"response":""}`, `{"response":"   "}`, `{}`} {
		backend.SetChatRaw(http.StatusOK, body)
		client := New(Config{BaseURL: backend.URL})
		reply, err := client.Converse(context.Background(), "hello", "guest")
		if !errors.Is(err, ErrEmptyResponse) {
			t.Fatalf("body %s: expected ErrEmptyResponse, got reply=%q err=%v", body, reply, err)
		}
	}
}

func TestAnalyzeDocumentRejectsEmptyReport(t *testing.T) {
	backend := agenttest.New(t)
	backend.SetAnalyze(http.StatusOK, "")
	path := filepath.Join(t.TempDir(), "jd.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o600); err != nil {
		t.Fatal(err)
	}

	client := New(Config{BaseURL: backend.URL})
	if _, err := client.AnalyzeDocument(context.Background(), path); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestConverseEmptyMessage(t *testing.T) {
	backend := agenttest.New(t)
	client := New(Config{BaseURL: backend.URL})
	if _, err := client.Converse(context.Background(), "  ", "guest"); err == nil {
		t.Fatal("expected error for empty message")
	}
	if got := len(backend.Chats()); got != 0 {
		t.Fatalf("no request should be issued, got %d", got)
	}
}

func TestSynthesizeSpeechReturnsClip(t *testing.T) {
	backend := agenttest.New(t)
	clip := agenttest.FakeClip(MinAudioBytes)
	backend.SetTTS(http.StatusOK, clip)

	client := New(Config{BaseURL: backend.URL})
	got, err := client.SynthesizeSpeech(context.Background(), "## Hello **there**")
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	if len(got) != len(clip) {
		t.Fatalf("unexpected clip size: %d", len(got))
	}
	speeches := backend.Speeches()
	if len(speeches) != 1 || speeches[0] != "Hello there" {
		t.Fatalf("markdown not stripped before synthesis: %#v", speeches)
	}
}

func TestSynthesizeSpeechRejectsUndersizedPayload(t *testing.T) {
	backend := agenttest.New(t)
	client := New(Config{BaseURL: backend.URL})

	for _, size := range []int{0, 1, 120, MinAudioBytes - 1} {
		backend.SetTTS(http.StatusOK, agenttest.FakeClip(size))
		clip, err := client.SynthesizeSpeech(context.Background(), "hello")
		if !errors.Is(err, ErrAudioPayloadTooSmall) {
			t.Fatalf("size %d: expected ErrAudioPayloadTooSmall, got %v", size, err)
		}
		if clip != nil {
			t.Fatalf("size %d: clip should be nil", size)
		}
	}
}

func TestSynthesizeSpeechServerError(t *testing.T) {
	backend := agenttest.New(t)
	backend.SetTTS(http.StatusInternalServerError, []byte("Error: quota exceeded"))

	client := New(Config{BaseURL: backend.URL})
	_, err := client.SynthesizeSpeech(context.Background(), "hello")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if !strings.Contains(statusErr.Error(), "quota exceeded") {
		t.Fatalf("error body missing: %v", statusErr)
	}
}

func TestAnalyzeDocumentUploadsMultipart(t *testing.T) {
	backend := agenttest.New(t)
	backend.SetAnalyze(http.StatusOK, "Match score: 9/10")

	path := filepath.Join(t.TempDir(), "role.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\nfixture"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	client := New(Config{BaseURL: backend.URL})
	reply, err := client.AnalyzeDocument(context.Background(), path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if reply != "Match score: 9/10" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	uploads := backend.Uploads()
	if len(uploads) != 1 || uploads[0].Filename != "role.pdf" || uploads[0].Size != 16 {
		t.Fatalf("unexpected uploads: %#v", uploads)
	}
}

func TestAnalyzeDocumentMissingFile(t *testing.T) {
	backend := agenttest.New(t)
	client := New(Config{BaseURL: backend.URL})
	if _, err := client.AnalyzeDocument(context.Background(), filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(backend.Uploads()) != 0 {
		t.Fatal("no upload should be attempted")
	}
}

func TestNewDefaultsBaseURL(t *testing.T) {
	if got := New(Config{}).BaseURL(); got != DefaultBaseURL {
		t.Fatalf("unexpected default base: %s", got)
	}
}
