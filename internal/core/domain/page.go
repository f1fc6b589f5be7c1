package domain

import (
	"fmt"
	"time"
)

// PageFileName returns the image file name of a 1-based page number.
func PageFileName(page int) string {
	return fmt.Sprintf("page_%04d.png", page)
}

// PageRef identifies the rendered page behind one index entry.
type PageRef struct {
	// DocID is the owning document.
	DocID string `json:"doc_id"`

	// PageNum is 1-based.
	PageNum int `json:"page_num"`

	// ImagePath is the rendered image on disk.
	ImagePath string `json:"image_path"`
}

// Hit is a single search match.
type Hit struct {
	Ref   PageRef
	Score float32
}

// Evidence is a page that supports an answer.
type Evidence struct {
	DocID     string  `json:"doc_id"`
	Page      int     `json:"page"`
	ImagePath string  `json:"image_path"`
	Score     float32 `json:"score"`
}

// RoundedScore returns the score rounded to four decimals for display.
func (e Evidence) RoundedScore() float64 {
	return RoundScore(e.Score)
}

// RoundScore rounds a similarity score to four decimals.
func RoundScore(s float32) float64 {
	v := float64(s) * 10000
	if v < 0 {
		return float64(int64(v-0.5)) / 10000
	}
	return float64(int64(v+0.5)) / 10000
}

// Answer is the orchestrator output.
type Answer struct {
	Text     string     `json:"answer"`
	Evidence []Evidence `json:"evidence"`
}

// NoDocumentsAnswer is returned verbatim when the index holds nothing.
const NoDocumentsAnswer = "No documents indexed yet. Please upload a PDF first."

// Default and maximum number of evidence pages per question.
const (
	DefaultTopK = 3
	MaxTopK     = 10
)

// IngestResult describes a completed ingest.
type IngestResult struct {
	DocID    string `json:"doc_id"`
	NumPages int    `json:"num_pages"`
	IsNew    bool   `json:"is_new"`
}

// ReindexResult summarizes a full rebuild of the index.
type ReindexResult struct {
	Documents int           `json:"documents"`
	Pages     int           `json:"pages"`
	Skipped   []string      `json:"skipped"`
	Elapsed   time.Duration `json:"elapsed"`
}
