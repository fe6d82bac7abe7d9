package mcp

import "github.com/mark3labs/mcp-go/mcp"

// startGameTool defines the start_game MCP tool.
var startGameTool = mcp.NewTool("start_game",
	mcp.WithDescription("Start a new guessing game. The user thinks of something in the domain and answers yes/no questions until a guess is made."),
	mcp.WithString("domain",
		mcp.Required(),
		mcp.Description("Category of the thing to guess, e.g. animal, food, movie"),
	),
)

// nextQuestionTool defines the next_question MCP tool.
var nextQuestionTool = mcp.NewTool("next_question",
	mcp.WithDescription("Get the next yes/no question for a game. Asking again before answering returns the same question."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session id returned by start_game"),
	),
)

// answerQuestionTool defines the answer_question MCP tool.
var answerQuestionTool = mcp.NewTool("answer_question",
	mcp.WithDescription("Answer the pending question with yes, no or unknown. Free-form answers like 'yeah' or 'not sure' are accepted."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session id returned by start_game"),
	),
	mcp.WithNumber("question_id",
		mcp.Required(),
		mcp.Description("Id of the question being answered"),
	),
	mcp.WithString("answer",
		mcp.Required(),
		mcp.Description("The user's answer"),
	),
)

// makeGuessTool defines the make_guess MCP tool.
var makeGuessTool = mcp.NewTool("make_guess",
	mcp.WithDescription("Ask the engine for its guess once enough questions have been answered."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session id returned by start_game"),
	),
)

// submitResultTool defines the submit_result MCP tool.
var submitResultTool = mcp.NewTool("submit_result",
	mcp.WithDescription("Tell the engine whether its guess was right so it can learn. A wrong guess needs the actual answer."),
	mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session id returned by start_game"),
	),
	mcp.WithBoolean("was_correct",
		mcp.Required(),
		mcp.Description("Whether the guess was right"),
	),
	mcp.WithString("actual_entity",
		mcp.Description("What the user was thinking of, required when the guess was wrong"),
	),
)

// quotaStatusTool defines the quota_status MCP tool.
var quotaStatusTool = mcp.NewTool("quota_status",
	mcp.WithDescription("Show per-model request usage against the configured per-minute and per-day limits."),
)
