package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/maximotodev/portfolio-api/internal/chat"
)

// ChatRequest is the POST /api/v1/chat/stream body.
type ChatRequest struct {
	Question string         `json:"question"`
	History  []chat.Message `json:"history,omitempty"`
}

// ChunkData is the payload of "chunk" SSE events.
type ChunkData struct {
	Text string `json:"text"`
}

// ErrorData is the payload of "error" SSE events. When a stream's
// entire content is a single error event, the request failed even
// though the HTTP status was 200; the status line cannot change after
// the stream opens.
type ErrorData struct {
	Error string `json:"error"`
}

// handleChatStream serves the career assistant over SSE.
//
// Event types:
//   - chunk: partial answer text {"text": "..."}
//   - done:  stream completed normally (no payload)
//   - error: generation failed {"error": "..."}
//
// An empty question is rejected with 400 before the stream opens; that
// is the only failure that can still use an HTTP status code.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "empty_question", "question is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.cfg.Logger.Error("streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering

	ctx := r.Context()
	requestID := RequestID(ctx)
	s.cfg.Logger.Debug("chat stream started", "request_id", requestID)

	streamErr := s.cfg.Chat.Stream(ctx, req.Question, req.History, func(text string) error {
		// The request context is canceled when the client disconnects;
		// failing the callback stops generation promptly.
		if err := ctx.Err(); err != nil {
			return err
		}
		writeEvent(w, flusher, "chunk", ChunkData{Text: text})
		return nil
	})

	switch {
	case streamErr == nil:
		writeEvent(w, flusher, "done", nil)
		s.cfg.Logger.Debug("chat stream completed", "request_id", requestID)
	case ctx.Err() != nil:
		// Client went away mid-stream; nothing left to write.
		s.cfg.Logger.Debug("client disconnected", "request_id", requestID)
	case errors.Is(streamErr, chat.ErrGeneration):
		writeEvent(w, flusher, "error", ErrorData{Error: chat.FallbackErrorMessage})
		s.cfg.Logger.Warn("chat generation failed", "request_id", requestID, "error", streamErr)
	default:
		writeEvent(w, flusher, "error", ErrorData{Error: chat.FallbackErrorMessage})
		s.cfg.Logger.Error("chat stream failed", "request_id", requestID, "error", streamErr)
	}
}

// writeEvent writes one SSE event and flushes it immediately. A nil
// payload writes an empty JSON object.
func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, payload any) {
	if payload == nil {
		payload = struct{}{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode SSE payload", "event", event, "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
