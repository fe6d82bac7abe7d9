package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/maxwell142857/cs5500-group6/internal/quota"
)

// handleStartGame opens a new session.
func (s *Server) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	domain, err := request.RequireString("domain")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: domain"), nil
	}

	sess, err := s.engine.StartGame(ctx, domain)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("start game failed: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"session_id": sess.ID,
		"domain":     sess.Domain,
		"status":     sess.Status,
	})
}

// handleNextQuestion returns the pending or a new question.
func (s *Server) handleNextQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}

	q, err := s.engine.NextQuestion(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("next question failed: %v", err)), nil
	}
	return jsonResult(q)
}

// handleAnswerQuestion records an answer.
func (s *Server) handleAnswerQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	qid, err := request.RequireInt("question_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question_id"), nil
	}
	answer, err := request.RequireString("answer")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: answer"), nil
	}

	res, err := s.engine.SubmitAnswer(ctx, id, int64(qid), answer)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answer failed: %v", err)), nil
	}
	return jsonResult(res)
}

// handleMakeGuess returns the engine's guess.
func (s *Server) handleMakeGuess(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}

	g, err := s.engine.MakeGuess(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("guess failed: %v", err)), nil
	}
	return jsonResult(g)
}

// handleSubmitResult closes the game and triggers learning.
func (s *Server) handleSubmitResult(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: session_id"), nil
	}
	correct, err := request.RequireBool("was_correct")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: was_correct"), nil
	}
	actual := request.GetString("actual_entity", "")

	sess, err := s.engine.SubmitResult(ctx, id, correct, actual)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("submit result failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Game %s completed after %d questions. Thanks, I'll remember that.",
		sess.ID, sess.QuestionsAsked())), nil
}

// handleQuotaStatus renders model usage as a table.
func (s *Server) handleQuotaStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status []quota.Status
	if s.tracker != nil {
		status = s.tracker.Status()
	}
	if len(status) == 0 {
		return mcp.NewToolResultText("No models configured."), nil
	}
	return mcp.NewToolResultText(formatQuota(status)), nil
}

func formatQuota(status []quota.Status) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d model(s):\n", len(status)))
	for _, st := range status {
		sb.WriteString(fmt.Sprintf("- %s: %d/%d this minute, %d/%d today\n",
			st.Model, st.MinuteUsed, st.RPM, st.DayUsed, st.RPD))
	}
	return sb.String()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
