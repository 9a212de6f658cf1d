// Package mcp implements the Model Context Protocol (MCP) server for the
// matcher. It bridges AI clients (Claude Code, Cursor) with the analysis
// pipeline so an assistant can identify integer sequences mid-conversation.
package mcp

import (
	"errors"
	"fmt"

	matcherrors "github.com/rahidz/oeismatcher/internal/errors"
)

// Custom MCP error codes for the matcher.
const (
	// ErrCodeIndexNotFound indicates no sequence index has been built.
	ErrCodeIndexNotFound = -32001

	// ErrCodeQueryParse indicates the query text was rejected by the parser.
	ErrCodeQueryParse = -32002

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
)

// MCPError is a structured error with an MCP error code.
type MCPError struct {
	Code    int
	Message string
	Data    any
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError creates an invalid-params error.
func NewInvalidParamsError(message string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: message}
}

// NewMethodNotFoundError creates a method-not-found error.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("unknown tool: %s", name)}
}

// NewIndexNotFoundError creates an index-not-found error.
func NewIndexNotFoundError() *MCPError {
	return &MCPError{
		Code:    ErrCodeIndexNotFound,
		Message: "no sequence index found. Run 'oeismatch build-index' first",
	}
}

// MapError converts internal errors to MCP errors, preserving codes where
// a mapping exists.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var matchErr *matcherrors.MatchError
	if errors.As(err, &matchErr) {
		switch matchErr.Code {
		case matcherrors.CodeQueryParse:
			return &MCPError{Code: ErrCodeQueryParse, Message: matchErr.Message}
		case matcherrors.CodeIndexMissing:
			return NewIndexNotFoundError()
		}
	}

	return &MCPError{Code: ErrCodeInternal, Message: err.Error()}
}
