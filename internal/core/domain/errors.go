package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates vectors disagree on dimensionality.
	ErrDimensionMismatch = fmt.Errorf("%w: dimension mismatch", ErrInvalidInput)

	// ErrCountMismatch indicates the number of vectors and references differ.
	ErrCountMismatch = fmt.Errorf("%w: vector and reference counts differ", ErrInvalidInput)

	// ErrEmptyIndex indicates a search against an index with no entries.
	ErrEmptyIndex = fmt.Errorf("%w: index is empty", ErrNotFound)

	// ErrPolicyRejected indicates an upload violated a configured limit.
	ErrPolicyRejected = errors.New("policy rejected")

	// ErrUnsupportedType indicates an unknown provider or backend name.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the page embedder is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrAnswererUnavailable indicates the answering model is not configured or unreachable.
	ErrAnswererUnavailable = errors.New("answering model unavailable")

	// ErrRasterizerUnavailable indicates the PDF rasterizer cannot be executed.
	ErrRasterizerUnavailable = errors.New("rasterizer unavailable")
)

// PolicyError reports an upload rejected by a limit. It carries a
// human-readable reason and matches ErrPolicyRejected.
type PolicyError struct {
	Reason string
}

// NewPolicyError formats a PolicyError.
func NewPolicyError(format string, args ...any) *PolicyError {
	return &PolicyError{Reason: fmt.Sprintf(format, args...)}
}

// NewTooLargeError rejects an upload of size bytes against a max byte limit.
func NewTooLargeError(size, max int64) *PolicyError {
	return NewPolicyError("file too large (%d bytes, max %d)", size, max)
}

func (e *PolicyError) Error() string {
	return "policy rejected: " + e.Reason
}

// Unwrap returns ErrPolicyRejected so callers can use errors.Is.
func (e *PolicyError) Unwrap() error {
	return ErrPolicyRejected
}

// IngestStage names the pipeline step an ingest failed in.
type IngestStage string

// Ingest stages in execution order.
const (
	StageIdentify IngestStage = "identify"
	StagePersist  IngestStage = "persist"
	StageCount    IngestStage = "count"
	StageRender   IngestStage = "render"
	StageEmbed    IngestStage = "embed"
	StageIndex    IngestStage = "index"
	StageManifest IngestStage = "manifest"
)

// IngestError wraps a non-policy failure with the document and stage it occurred in.
type IngestError struct {
	DocID string
	Stage IngestStage
	Err   error
}

func (e *IngestError) Error() string {
	if e.DocID == "" {
		return fmt.Sprintf("ingest %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("ingest %s (%s): %v", e.DocID, e.Stage, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}
