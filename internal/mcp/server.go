package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/maxwell142857/cs5500-group6/internal/game"
	"github.com/maxwell142857/cs5500-group6/internal/quota"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that lets an agent play guessing games.
type Server struct {
	engine  *game.Engine
	tracker *quota.Tracker
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server. tracker may be nil, in which case
// quota_status reports no models.
func NewServer(engine *game.Engine, tracker *quota.Tracker) *Server {
	s := &Server{
		engine:  engine,
		tracker: tracker,
	}

	s.mcp = server.NewMCPServer(
		"akinator",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(startGameTool, s.handleStartGame)
	s.mcp.AddTool(nextQuestionTool, s.handleNextQuestion)
	s.mcp.AddTool(answerQuestionTool, s.handleAnswerQuestion)
	s.mcp.AddTool(makeGuessTool, s.handleMakeGuess)
	s.mcp.AddTool(submitResultTool, s.handleSubmitResult)
	s.mcp.AddTool(quotaStatusTool, s.handleQuotaStatus)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
