package gateway

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// uploadFields are the multipart field names accepted by /ingest, in order.
var uploadFields = []string{"file", "pdf"}

// chatRequest is the /chat body.
type chatRequest struct {
	Question string `json:"question" binding:"required"`
	TopK     *int   `json:"top_k"`
}

// evidenceResponse is one evidence page in a /chat response.
type evidenceResponse struct {
	DocID    string  `json:"doc_id"`
	Page     int     `json:"page"`
	Score    float64 `json:"score"`
	ImageURL string  `json:"image_url,omitempty"`
}

// chatResponse is the /chat response.
type chatResponse struct {
	Answer   string             `json:"answer"`
	Evidence []evidenceResponse `json:"evidence"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.ports.Stats.Health(c.Request.Context()))
}

func (s *Server) handleStats(c *gin.Context) {
	st, err := s.ports.Stats.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, "stats", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleIngest(c *gin.Context) {
	file, header, err := formFile(c.Request)
	if isBodyTooLarge(err) {
		respondBodyTooLarge(c, err)
		return
	}
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidInput,
			"missing PDF upload: send multipart field \"file\"")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		respondError(c, http.StatusBadRequest, codeInvalidInput,
			"Only PDF files are supported. Please upload a .pdf file.")
		return
	}

	data, err := io.ReadAll(file)
	if isBodyTooLarge(err) {
		respondBodyTooLarge(c, err)
		return
	}
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidInput, fmt.Sprintf("reading upload: %v", err))
		return
	}
	if len(data) == 0 {
		respondError(c, http.StatusBadRequest, codeInvalidInput,
			"Empty file uploaded. Please select a valid PDF.")
		return
	}

	res, err := s.ports.Ingest.Ingest(c.Request.Context(), data, header.Filename)
	if err != nil {
		respondServiceError(c, "ingest", err)
		return
	}

	logger.Infow("ingest completed",
		"request_id", requestID(c), "doc_id", res.DocID, "pages", res.NumPages, "is_new", res.IsNew)
	c.JSON(http.StatusOK, res)
}

// formFile returns the first upload found under uploadFields.
func formFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	var lastErr error
	for _, field := range uploadFields {
		f, h, err := r.FormFile(field)
		if err == nil {
			return f, h, nil
		}
		if isBodyTooLarge(err) {
			return nil, nil, err
		}
		lastErr = err
	}
	return nil, nil, lastErr
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidInput, "body must be JSON with a non-empty \"question\"")
		return
	}

	topK := domain.DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if topK < 1 || topK > domain.MaxTopK {
		respondError(c, http.StatusBadRequest, codeInvalidInput,
			fmt.Sprintf("top_k must be between 1 and %d", domain.MaxTopK))
		return
	}

	answer, err := s.ports.Answer.Answer(c.Request.Context(), req.Question, topK)
	if err != nil {
		respondServiceError(c, "chat", err)
		return
	}

	resp := chatResponse{
		Answer:   answer.Text,
		Evidence: make([]evidenceResponse, len(answer.Evidence)),
	}
	for i, ev := range answer.Evidence {
		resp.Evidence[i] = evidenceResponse{
			DocID: ev.DocID,
			Page:  ev.Page,
			Score: ev.RoundedScore(),
		}
		if s.ports.Document != nil {
			resp.Evidence[i].ImageURL = pagePath(ev.DocID, ev.Page)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleClear(c *gin.Context) {
	if err := s.ports.Maintenance.ClearIndex(c.Request.Context()); err != nil {
		respondServiceError(c, "clear", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleReindex(c *gin.Context) {
	res, err := s.ports.Maintenance.ReindexAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, "reindex", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"documents":  res.Documents,
		"pages":      res.Pages,
		"skipped":    res.Skipped,
		"elapsed_ms": res.Elapsed.Milliseconds(),
	})
}

func (s *Server) handlePage(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidInput, "page must be a number")
		return
	}

	path, err := s.ports.Document.PageImage(c.Request.Context(), c.Param("doc"), page)
	if err != nil {
		respondServiceError(c, "page", err)
		return
	}
	c.Header("Content-Type", "image/png")
	c.File(path)
}

// pagePath is the gateway route serving one page image.
func pagePath(docID string, page int) string {
	return "/pages/" + docID + "/" + strconv.Itoa(page)
}

// isBodyTooLarge reports whether err came from the body limit, which
// requests without a Content-Length only hit while the form is parsed.
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func respondBodyTooLarge(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	errors.As(err, &maxErr)
	respondError(c, http.StatusRequestEntityTooLarge, codeTooLarge,
		"request body exceeds "+strconv.FormatInt(maxErr.Limit, 10)+" bytes")
}
