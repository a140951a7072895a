// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docchat/docchat-go/internal/domain/entities"
	"github.com/docchat/docchat-go/internal/domain/ports"
	"github.com/docchat/docchat-go/internal/domain/usecases"
)

// maxUploadSize bounds multipart uploads (32MB).
const maxUploadSize = 32 << 20

// maxStoredTurns bounds per-session history kept server-side.
const maxStoredTurns = 20

// Server is the HTTP server for the docchat API and chat UI.
type Server struct {
	chatUseCase   *usecases.ChatUseCase
	ingestUseCase *usecases.IngestUseCase
	store         ports.KnowledgeStore
	addr          string

	sessionMu sync.Mutex
	sessions  map[string][]entities.ChatMessage
}

// NewServer creates a new HTTP server.
func NewServer(
	chatUC *usecases.ChatUseCase,
	ingestUC *usecases.IngestUseCase,
	store ports.KnowledgeStore,
	addr string,
) *Server {
	return &Server{
		chatUseCase:   chatUC,
		ingestUseCase: ingestUC,
		store:         store,
		addr:          addr,
		sessions:      make(map[string][]entities.ChatMessage),
	}
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      corsMiddleware(loggingMiddleware(s.Handler())),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second, // Longer for streaming
	}

	log.Printf("[INFO] docchat server starting on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	return server.ListenAndServe()
}

// Handler returns the route mux without middleware. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/chat/stream", s.handleChatStream)
	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/sources", s.handleSources)
	mux.HandleFunc("/api/reset", s.handleReset)
	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

type sourceRef struct {
	SourceName string `json:"source_name"`
	Position   int    `json:"position"`
}

type chatResponse struct {
	SessionID string      `json:"session_id"`
	Answer    string      `json:"answer"`
	Sources   []sourceRef `json:"sources"`
	Grounded  bool        `json:"grounded"`
}

// handleChat processes a non-streaming chat turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "Query required", http.StatusBadRequest)
		return
	}

	sessionID, history := s.sessionHistory(req.SessionID)

	resp, err := s.chatUseCase.Chat(r.Context(), &entities.ChatRequest{
		Query:   req.Query,
		History: history,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.recordTurn(sessionID, req.Query, resp.Answer)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chatResponse{
		SessionID: sessionID,
		Answer:    resp.Answer,
		Sources:   toSourceRefs(resp.Sources),
		Grounded:  len(resp.Sources) > 0,
	})
}

// handleChatStream handles SSE streaming chat turns.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Query required", http.StatusBadRequest)
		return
	}
	sessionID, history := s.sessionHistory(r.URL.Query().Get("session"))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	selected, tokens, err := s.chatUseCase.ChatStream(ctx, &entities.ChatRequest{
		Query:   query,
		History: history,
	})
	if err != nil {
		sendSSE(w, flusher, map[string]any{"error": err.Error(), "done": true})
		return
	}

	// Citations first so the UI can show them while tokens arrive. An empty
	// list tells the client the answer is ungrounded.
	sendSSE(w, flusher, map[string]any{
		"session": sessionID,
		"sources": toSourceRefs(selected),
	})

	var answer string
	for token := range tokens {
		if token.Error != nil {
			sendSSE(w, flusher, map[string]any{"error": token.Error.Error(), "done": true})
			return
		}
		answer += token.Content
		sendSSE(w, flusher, map[string]any{"content": token.Content, "done": token.Done})
	}

	s.recordTurn(sessionID, query, answer)
}

type uploadResponse struct {
	SourceName  string `json:"source_name"`
	ChunksAdded int    `json:"chunks_added"`
	Skipped     bool   `json:"skipped"`
}

// handleUpload ingests one uploaded file. A rejected format returns 422
// without inserting anything.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// The extractors work with paths, so stage the upload in a temp dir
	// under its original name (the base name becomes the source name).
	tmpDir, err := os.MkdirTemp("", "docchat-upload-*")
	if err != nil {
		http.Error(w, "Failed to stage upload", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filepath.Base(header.Filename))
	dst, err := os.Create(tmpPath)
	if err != nil {
		http.Error(w, "Failed to stage upload", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		http.Error(w, "Failed to stage upload", http.StatusInternalServerError)
		return
	}
	dst.Close()

	result, err := s.ingestUseCase.IngestPath(r.Context(), tmpPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("Upload rejected: %v", err), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(uploadResponse{
		SourceName:  result.SourceName,
		ChunksAdded: result.Chunks,
		Skipped:     result.Skipped,
	})
}

// handleSources lists ingested source names and the total chunk count.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.Sources(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	count, err := s.store.Count(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"sources": sources,
		"chunks":  count,
	})
}

// handleReset discards the knowledge base and all chat sessions.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.ingestUseCase.Reset(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.sessionMu.Lock()
	s.sessions = make(map[string][]entities.ChatMessage)
	s.sessionMu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// sessionHistory resolves or creates a session and returns its history.
func (s *Server) sessionHistory(sessionID string) (string, []entities.ChatMessage) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	history := s.sessions[sessionID]
	out := make([]entities.ChatMessage, len(history))
	copy(out, history)
	return sessionID, out
}

// recordTurn appends a user/assistant turn pair, keeping recent turns only.
func (s *Server) recordTurn(sessionID, query, answer string) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	history := append(s.sessions[sessionID],
		entities.ChatMessage{Role: "user", Content: query},
		entities.ChatMessage{Role: "assistant", Content: answer},
	)
	if len(history) > maxStoredTurns {
		history = history[len(history)-maxStoredTurns:]
	}
	s.sessions[sessionID] = history
}

func toSourceRefs(chunks []entities.Chunk) []sourceRef {
	refs := make([]sourceRef, len(chunks))
	for i, c := range chunks {
		refs[i] = sourceRef{SourceName: c.SourceName, Position: c.Position}
	}
	return refs
}

func sendSSE(w http.ResponseWriter, flusher http.Flusher, data map[string]any) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			return
		}
		next.ServeHTTP(w, r)
	})
}
