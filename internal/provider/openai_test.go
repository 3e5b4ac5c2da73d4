package provider

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"orunmila/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenAIComplete(t *testing.T) {
	var gotReq oaiRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(oaiResponse{
			Choices: []oaiChoice{{Message: oaiMessage{Role: "assistant", Content: "Ife is the cradle."}}},
		})
	}))
	defer srv.Close()

	o := NewOpenAI(OpenAIConfig{APIKey: "sk-test", APIBase: srv.URL, Model: "gpt-4o-mini", Logger: testLogger()})
	got, err := o.Complete(context.Background(), "You are Orunmila.", "Tell me about Ife")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "Ife is the cradle." {
		t.Errorf("answer = %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
	if gotReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", gotReq.Model)
	}
}

func TestOpenAIComplete_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			"http error",
			func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
			},
			"429",
		},
		{
			"empty choices",
			func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(oaiResponse{})
			},
			"empty response",
		},
		{
			"garbage body",
			func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			"decode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			o := NewOpenAI(OpenAIConfig{APIBase: srv.URL, Logger: testLogger()})
			_, err := o.Complete(context.Background(), "sys", "prompt")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestOpenAIHealthy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"bad key", http.StatusUnauthorized, true},
		{"server error", http.StatusInternalServerError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			o := NewOpenAI(OpenAIConfig{APIBase: srv.URL, Logger: testLogger()})
			err := o.Healthy(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Healthy() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProviderFactory(t *testing.T) {
	for _, name := range []string{"openai", "gemini"} {
		c, err := New(config.LLMConfig{Provider: name, TimeoutSeconds: 5}, testLogger())
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if c.Name() != name {
			t.Errorf("Name() = %q, want %q", c.Name(), name)
		}
	}

	if _, err := New(config.LLMConfig{Provider: "llama"}, testLogger()); err == nil {
		t.Error("unknown provider should fail")
	}
}
