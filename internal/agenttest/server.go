// Package agenttest provides an in-process stand-in for the agent backend
// (/chat, /analyze_jd, /tts) so clients can be exercised without the real
// service.
package agenttest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// ChatRequest mirrors the /chat request body.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// Upload records one /analyze_jd call.
type Upload struct {
	Filename string
	Size     int
}

type endpoint struct {
	status int
	body   []byte
}

// Server is a scripted backend. Responses can be changed between calls.
type Server struct {
	URL string

	srv *httptest.Server

	mu       sync.Mutex
	chat     endpoint
	analyze  endpoint
	tts      endpoint
	chats    []ChatRequest
	speeches []string
	uploads  []Upload
}

// DefaultReply is the /chat answer served until SetChat is called.
const DefaultReply = "**Satish** leads applied AI teams."

// New starts a backend that answers every endpoint successfully and stops it
// when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := &Server{
		chat:    endpoint{status: http.StatusOK, body: jsonReply(DefaultReply)},
		analyze: endpoint{status: http.StatusOK, body: jsonReply("Strong fit: 8/10.")},
		tts:     endpoint{status: http.StatusOK, body: FakeClip(2048)},
	}
	s.srv = httptest.NewServer(s.router())
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.POST("/chat", s.handleChat)
	r.POST("/analyze_jd", s.handleAnalyze)
	r.POST("/tts", s.handleTTS)
	return r
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	s.chats = append(s.chats, req)
	ep := s.chat
	s.mu.Unlock()
	c.Data(ep.status, "application/json", ep.body)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "file field required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	defer file.Close()
	data, _ := io.ReadAll(file)

	s.mu.Lock()
	s.uploads = append(s.uploads, Upload{Filename: header.Filename, Size: len(data)})
	ep := s.analyze
	s.mu.Unlock()
	c.Data(ep.status, "application/json", ep.body)
}

func (s *Server) handleTTS(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	s.speeches = append(s.speeches, req.Text)
	ep := s.tts
	s.mu.Unlock()
	contentType := "audio/wav"
	if ep.status >= http.StatusBadRequest {
		contentType = "text/plain"
	}
	c.Data(ep.status, contentType, ep.body)
}

// SetChat scripts the next /chat answers.
func (s *Server) SetChat(status int, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = endpoint{status: status, body: jsonReply(reply)}
}

// SetChatRaw scripts a raw /chat body, for malformed payloads.
func (s *Server) SetChatRaw(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = endpoint{status: status, body: []byte(body)}
}

// SetAnalyze scripts the next /analyze_jd answers.
func (s *Server) SetAnalyze(status int, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyze = endpoint{status: status, body: jsonReply(reply)}
}

// SetTTS scripts the next /tts answers.
func (s *Server) SetTTS(status int, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tts = endpoint{status: status, body: append([]byte(nil), body...)}
}

// Chats returns every /chat request received so far.
func (s *Server) Chats() []ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatRequest(nil), s.chats...)
}

// Speeches returns the text of every /tts request received so far.
func (s *Server) Speeches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.speeches...)
}

// Uploads returns every /analyze_jd upload received so far.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// FakeClip returns n bytes shaped like a WAV file.
func FakeClip(n int) []byte {
	clip := bytes.Repeat([]byte{0}, n)
	copy(clip, "RIFF")
	if n >= 12 {
		copy(clip[8:], "WAVE")
	}
	return clip
}

func jsonReply(text string) []byte {
	body, _ := json.Marshal(map[string]string{"response": text})
	return body
}
