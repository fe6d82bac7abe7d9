package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/maxwell142857/cs5500-group6/internal/db"
	"github.com/maxwell142857/cs5500-group6/internal/game"
	"github.com/maxwell142857/cs5500-group6/internal/history"
	"github.com/maxwell142857/cs5500-group6/internal/kv"
	"github.com/maxwell142857/cs5500-group6/internal/pattern"
	"github.com/maxwell142857/cs5500-group6/internal/questions"
	"github.com/maxwell142857/cs5500-group6/internal/quota"
	"github.com/maxwell142857/cs5500-group6/internal/sessions"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store, err := kv.Open(kv.InMemoryConfig())
	if err != nil {
		t.Fatalf("kv.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	qs := questions.NewStore(database)
	hs := history.NewStore(database, qs)
	engine := game.NewEngine(sessions.NewStore(store, time.Hour), qs, nil, pattern.New(hs, 0, 0), hs,
		game.WithMinQuestions(2))
	tracker := quota.New([]quota.Limit{{Model: "gemini-2.0-flash", RPM: 15, RPD: 1500}})
	return NewServer(engine, tracker)
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty result content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want mcp.TextContent", result.Content[0])
	}
	return tc.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"start_game", startGameTool, "start_game"},
		{"next_question", nextQuestionTool, "next_question"},
		{"answer_question", answerQuestionTool, "answer_question"},
		{"make_guess", makeGuessTool, "make_guess"},
		{"submit_result", submitResultTool, "submit_result"},
		{"quota_status", quotaStatusTool, "quota_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(t)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.engine == nil {
		t.Error("engine not set")
	}
}

func TestPlayGame(t *testing.T) {
	srv := newTestServer(t)

	result := call(t, srv.handleStartGame, map[string]any{"domain": "animal"})
	if result.IsError {
		t.Fatalf("start_game: %s", text(t, result))
	}
	var started struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal([]byte(text(t, result)), &started); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for i := 0; i < 2; i++ {
		result = call(t, srv.handleNextQuestion, map[string]any{"session_id": started.SessionID})
		if result.IsError {
			t.Fatalf("next_question: %s", text(t, result))
		}
		var q game.Question
		if err := json.Unmarshal([]byte(text(t, result)), &q); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		result = call(t, srv.handleAnswerQuestion, map[string]any{
			"session_id":  started.SessionID,
			"question_id": float64(q.ID),
			"answer":      "yes",
		})
		if result.IsError {
			t.Fatalf("answer_question: %s", text(t, result))
		}
	}

	result = call(t, srv.handleMakeGuess, map[string]any{"session_id": started.SessionID})
	if result.IsError {
		t.Fatalf("make_guess: %s", text(t, result))
	}
	var g game.Guess
	if err := json.Unmarshal([]byte(text(t, result)), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if g.Entity != "Dog" || !g.Emergency {
		t.Errorf("guess = %+v, want emergency Dog", g)
	}

	result = call(t, srv.handleSubmitResult, map[string]any{
		"session_id":    started.SessionID,
		"was_correct":   false,
		"actual_entity": "Cat",
	})
	if result.IsError {
		t.Fatalf("submit_result: %s", text(t, result))
	}
	if !strings.Contains(text(t, result), "completed after 2 questions") {
		t.Errorf("unexpected result text: %s", text(t, result))
	}
}

func TestToolErrors(t *testing.T) {
	srv := newTestServer(t)

	t.Run("missing domain", func(t *testing.T) {
		if !call(t, srv.handleStartGame, map[string]any{}).IsError {
			t.Error("expected error for missing domain")
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		result := call(t, srv.handleNextQuestion, map[string]any{"session_id": "nope"})
		if !result.IsError {
			t.Error("expected error for unknown session")
		}
	})

	t.Run("missing question id", func(t *testing.T) {
		result := call(t, srv.handleAnswerQuestion, map[string]any{"session_id": "x", "answer": "yes"})
		if !result.IsError {
			t.Error("expected error for missing question_id")
		}
	})

	t.Run("missing was_correct", func(t *testing.T) {
		result := call(t, srv.handleSubmitResult, map[string]any{"session_id": "x"})
		if !result.IsError {
			t.Error("expected error for missing was_correct")
		}
	})
}

func TestHandleQuotaStatus(t *testing.T) {
	srv := newTestServer(t)

	result := call(t, srv.handleQuotaStatus, map[string]any{})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", text(t, result))
	}
	out := text(t, result)
	if !strings.Contains(out, "gemini-2.0-flash: 0/15 this minute, 0/1500 today") {
		t.Errorf("unexpected quota text: %s", out)
	}

	empty := NewServer(srv.engine, nil)
	result = call(t, empty.handleQuotaStatus, map[string]any{})
	if text(t, result) != "No models configured." {
		t.Errorf("unexpected text: %s", text(t, result))
	}
}
