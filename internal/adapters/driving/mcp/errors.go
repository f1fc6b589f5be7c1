// Package mcp provides an MCP (Model Context Protocol) server adapter for pagelens.
// It lets AI assistants ask questions over indexed PDF pages and add documents.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")
