package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"orunmila/internal/agent"
	"orunmila/internal/domain"
	"orunmila/internal/telex"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, "NotFound", "no such route", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "Orunmila - Yoruba History & Culture AI Agent",
		"version":     s.version,
		"description": "AI agent for Yoruba history and culture",
		"status":      "active",
		"endpoints": map[string]string{
			"health":    "/health",
			"webhook":   "/webhook/telex",
			"ask":       "/agent/ask",
			"send":      "/messages/send",
			"broadcast": "/messages/broadcast",
			"metrics":   "/metrics",
		},
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"version":   s.version,
		"timestamp": time.Now().UTC(),
	})
}

// handleWebhook receives platform events. It verifies the shared-secret
// signature when configured, validates the payload, and hands message
// events to the dispatcher. The acknowledgement goes out immediately;
// the eventual reply is delivered by a background worker.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "BadRequest", "cannot read request body", nil)
		return
	}
	defer r.Body.Close()

	if secret := s.cfg.Telex.WebhookSecret; secret != "" {
		sig := r.Header.Get(telex.SignatureHeader)
		if sig == "" || !telex.VerifySignature(body, secret, sig) {
			s.logger.Warn("webhook signature rejected", "remote", r.RemoteAddr)
			s.writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid webhook signature", nil)
			return
		}
	}

	var ev domain.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		s.writeError(w, http.StatusBadRequest, "BadRequest", "invalid JSON payload", nil)
		return
	}

	ack, err := s.dispatcher.Handle(r.Context(), &ev)
	if err != nil {
		s.writeValidationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ack)
}

type askRequest struct {
	Question string `json:"question" validate:"required"`
	UserName string `json:"user_name,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// handleAsk answers a question synchronously, bypassing the dispatcher.
// The generator degrades to fallback text internally, so this route
// returns 200 even when the completion service is down.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !s.decode(w, r, &req) {
		return
	}

	var requester *agent.Requester
	if req.UserName != "" || req.UserID != "" {
		requester = &agent.Requester{ID: req.UserID, Name: req.UserName}
	}

	answer := s.generator.Answer(r.Context(), req.Question, requester)

	writeJSON(w, http.StatusOK, domain.AnswerResult{
		Question:  req.Question,
		Answer:    answer,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleGreeting(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"greeting": s.generator.Greeting(),
		"agent":    "Orunmila - Yoruba History & Culture AI",
	})
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"help":  s.generator.Help(),
		"agent": "Orunmila - Yoruba History & Culture AI",
	})
}

// handleSend delivers one message directly via the platform API.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var reply domain.Reply
	if !s.decode(w, r, &reply) {
		return
	}

	result, err := s.messenger.Send(r.Context(), reply)
	if err != nil {
		s.logger.Error("direct send failed", "chat_id", reply.ChatID, "error", err)
		s.writeError(w, http.StatusBadGateway, "UpstreamError", "failed to deliver message", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, actionResponse{
		Success: true,
		Message: "message sent",
		Data:    result,
	})
}

type broadcastRequest struct {
	ChatIDs []string `json:"chat_ids" validate:"required,min=1,dive,required"`
	Text    string   `json:"text" validate:"required"`
}

// handleBroadcast sends identical text to many chats; per-target failures
// are reported in the aggregate, never as an HTTP error.
func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if !s.decode(w, r, &req) {
		return
	}

	result := s.messenger.Broadcast(r.Context(), req.ChatIDs, req.Text)

	writeJSON(w, http.StatusOK, actionResponse{
		Success: result.Failed == 0,
		Message: fmt.Sprintf("broadcast completed: %d successful, %d failed", result.Succeeded, result.Failed),
		Data:    result,
	})
}

// decode reads, unmarshals, and validates a JSON request body, writing the
// appropriate error response itself. Returns false when handling should stop.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "BadRequest", "cannot read request body", nil)
		return false
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, v); err != nil {
		s.writeError(w, http.StatusBadRequest, "BadRequest", "invalid JSON payload", nil)
		return false
	}

	if err := domain.ValidateStruct(v); err != nil {
		s.writeValidationError(w, err)
		return false
	}
	return true
}

// writeValidationError maps schema violations to 422 with field details.
// Anything else is an unexpected internal failure.
func (s *Server) writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) || errors.Is(err, domain.ErrInvalidEvent) {
		s.writeError(w, http.StatusUnprocessableEntity, "ValidationError", err.Error(), domain.FieldErrors(err))
		return
	}
	s.writeError(w, http.StatusInternalServerError, "InternalServerError", "an unexpected error occurred", err.Error())
}
