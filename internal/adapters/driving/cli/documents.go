package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

var documentsJSON bool

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Inspect stored documents",
	Long:    `List stored documents, show their manifests and locate rendered pages.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show a document manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var documentsPageCmd = &cobra.Command{
	Use:   "page [doc-id] [page]",
	Short: "Print the image path of a rendered page",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentsPage,
}

func init() {
	documentsCmd.PersistentFlags().BoolVar(&documentsJSON, "json", false, "output as JSON")
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsShowCmd)
	documentsCmd.AddCommand(documentsPageCmd)
	rootCmd.AddCommand(documentsCmd)
}

// documentView is the JSON shape of a manifest.
type documentView struct {
	DocID        string     `json:"doc_id"`
	Filename     string     `json:"filename"`
	NumPages     int        `json:"num_pages"`
	Indexed      bool       `json:"indexed"`
	CreatedAt    time.Time  `json:"created_at"`
	IndexedAt    *time.Time `json:"indexed_at,omitempty"`
	SHA256       string     `json:"sha256"`
	IndexBackend string     `json:"index_backend,omitempty"`
	Embedder     string     `json:"embedder,omitempty"`
}

func toDocumentView(m *domain.Manifest) documentView {
	return documentView{
		DocID:        m.DocID,
		Filename:     m.Filename,
		NumPages:     m.NumPages,
		Indexed:      m.Indexed,
		CreatedAt:    m.CreatedAt,
		IndexedAt:    m.IndexedAt,
		SHA256:       m.SHA256,
		IndexBackend: m.IndexBackend,
		Embedder:     m.Embedder,
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentsJSON {
		views := make([]documentView, len(docs))
		for i, d := range docs {
			views[i] = toDocumentView(d)
		}
		return printJSON(cmd, views)
	}

	if len(docs) == 0 {
		cmd.Println("No documents stored. Run 'pagelens ingest file.pdf' to add one.")
		return nil
	}

	pages := 0
	for _, d := range docs {
		status := "indexed"
		if !d.Indexed {
			status = "pending"
		}
		cmd.Printf("  %s  %4d pages  %-8s %s\n", d.DocID, d.NumPages, status, d.Filename)
		pages += d.NumPages
	}
	cmd.Println()
	cmd.Printf("Total: %d documents, %s pages\n", len(docs), humanize.Comma(int64(pages)))
	return nil
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if documentsJSON {
		return printJSON(cmd, toDocumentView(doc))
	}

	indexedAt := "never"
	if doc.IndexedAt != nil {
		indexedAt = fmt.Sprintf("%s (%s)", doc.IndexedAt.Format(time.DateTime), humanize.Time(*doc.IndexedAt))
	}

	cmd.Printf("Document: %s\n\n", doc.DocID)
	cmd.Printf("  File:      %s\n", doc.Filename)
	cmd.Printf("  Pages:     %d\n", doc.NumPages)
	cmd.Printf("  Indexed:   %t\n", doc.Indexed)
	cmd.Printf("  Created:   %s\n", doc.CreatedAt.Format(time.DateTime))
	cmd.Printf("  Reindexed: %s\n", indexedAt)
	cmd.Printf("  SHA-256:   %s\n", doc.SHA256)
	if doc.Embedder != "" {
		cmd.Printf("  Embedder:  %s\n", doc.Embedder)
	}
	if doc.IndexBackend != "" {
		cmd.Printf("  Index:     %s\n", doc.IndexBackend)
	}
	return nil
}

func runDocumentsPage(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	page, err := strconv.Atoi(args[1])
	if err != nil || page < 1 {
		return fmt.Errorf("invalid page number %q", args[1])
	}

	path, err := documentService.PageImage(cmd.Context(), args[0], page)
	if err != nil {
		return fmt.Errorf("failed to locate page: %w", err)
	}
	cmd.Println(path)
	return nil
}
