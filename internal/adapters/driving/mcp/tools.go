package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/upload"
	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed PDF pages"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of evidence pages to retrieve (default 3, max 10)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string           `json:"answer"`
	Evidence []EvidenceOutput `json:"evidence"`
}

// EvidenceOutput is one retrieved page.
type EvidenceOutput struct {
	DocID string  `json:"doc_id"`
	Page  int     `json:"page"`
	Score float64 `json:"score"`
	URI   string  `json:"uri"`
}

// IngestFileInput is the input schema for the ingest_file tool.
type IngestFileInput struct {
	Path string `json:"path" jsonschema:"absolute path of a local PDF file"`
}

// IngestFileOutput is the output schema for the ingest_file tool.
type IngestFileOutput struct {
	DocID    string `json:"doc_id"`
	NumPages int    `json:"num_pages"`
	IsNew    bool   `json:"is_new"`
}

// StatsInput is the (empty) input schema for the stats tool.
type StatsInput struct{}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the most relevant indexed PDF pages",
	}, s.handleAsk)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_file",
			Description: "Index a local PDF file so its pages can be searched",
		}, s.handleIngestFile)
	}

	if s.ports.Stats != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "stats",
			Description: "Report indexed documents, pages and model configuration",
		}, s.handleStats)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	answer, err := s.ports.Answer.Answer(ctx, input.Question, topK)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:   answer.Text,
		Evidence: make([]EvidenceOutput, len(answer.Evidence)),
	}
	for i, ev := range answer.Evidence {
		output.Evidence[i] = EvidenceOutput{
			DocID: ev.DocID,
			Page:  ev.Page,
			Score: ev.RoundedScore(),
			URI:   pageURI(ev.DocID, ev.Page),
		}
	}

	return nil, output, nil
}

// handleIngestFile handles the ingest_file tool invocation.
func (s *Server) handleIngestFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestFileInput,
) (*mcp.CallToolResult, IngestFileOutput, error) {
	if !filepath.IsAbs(input.Path) {
		return nil, IngestFileOutput{}, fmt.Errorf("%w: path must be absolute", domain.ErrInvalidInput)
	}
	data, err := upload.ReadFile(input.Path, s.ports.Ingest.Limits().MaxUploadBytes)
	if err != nil {
		return nil, IngestFileOutput{}, err
	}

	res, err := s.ports.Ingest.Ingest(ctx, data, filepath.Base(input.Path))
	if err != nil {
		return nil, IngestFileOutput{}, err
	}

	return nil, IngestFileOutput{DocID: res.DocID, NumPages: res.NumPages, IsNew: res.IsNew}, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, domain.Stats, error) {
	st, err := s.ports.Stats.Stats(ctx)
	if err != nil {
		return nil, domain.Stats{}, err
	}
	return nil, *st, nil
}
