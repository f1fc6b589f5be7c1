package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for pagelens resources.
	uriScheme = "pagelens://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Document == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Manifests of all stored documents",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{docId}/pages/{page}",
		Name:        "page-image",
		Description: "Rendered PNG image of one document page",
		MIMEType:    "image/png",
	}, s.handlePageResource)
}

// documentInfo is the JSON shape of one listed document.
type documentInfo struct {
	DocID    string `json:"doc_id"`
	Filename string `json:"filename"`
	NumPages int    `json:"num_pages"`
	Indexed  bool   `json:"indexed"`
}

// handleDocumentsResource returns every stored manifest.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	manifests, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	infos := make([]documentInfo, len(manifests))
	for i, m := range manifests {
		infos[i] = documentInfo{
			DocID:    m.DocID,
			Filename: m.Filename,
			NumPages: m.NumPages,
			Indexed:  m.Indexed,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handlePageResource returns the PNG bytes of one page.
func (s *Server) handlePageResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID, page, ok := parsePageURI(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	path, err := s.ports.Document.PageImage(ctx, docID, page)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading page image: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "image/png",
			Blob:     data,
		}},
	}, nil
}

// pageURI builds pagelens://documents/{docId}/pages/{page}.
func pageURI(docID string, page int) string {
	return uriScheme + "documents/" + docID + "/pages/" + strconv.Itoa(page)
}

// parsePageURI extracts the document ID and page from a page URI.
func parsePageURI(uri string) (string, int, bool) {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return "", 0, false
	}
	docID, pageStr, ok := strings.Cut(strings.TrimPrefix(uri, prefix), "/pages/")
	if !ok || docID == "" {
		return "", 0, false
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		return "", 0, false
	}
	return docID, page, true
}
