package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrCountMismatch", ErrCountMismatch},
		{"ErrEmptyIndex", ErrEmptyIndex},
		{"ErrPolicyRejected", ErrPolicyRejected},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrAnswererUnavailable", ErrAnswererUnavailable},
		{"ErrRasterizerUnavailable", ErrRasterizerUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestValidationErrors_WrapInvalidInput(t *testing.T) {
	assert.ErrorIs(t, ErrDimensionMismatch, ErrInvalidInput)
	assert.ErrorIs(t, ErrCountMismatch, ErrInvalidInput)
	assert.NotErrorIs(t, ErrDimensionMismatch, ErrCountMismatch)
}

func TestErrEmptyIndex_IsNotFound(t *testing.T) {
	assert.ErrorIs(t, ErrEmptyIndex, ErrNotFound)
	assert.ErrorIs(t, fmt.Errorf("search: %w", ErrEmptyIndex), ErrNotFound)
}

func TestPolicyError(t *testing.T) {
	err := NewPolicyError("PDF has %d pages (max %d)", 101, 100)

	assert.Equal(t, "policy rejected: PDF has 101 pages (max 100)", err.Error())
	assert.ErrorIs(t, err, ErrPolicyRejected)

	var pe *PolicyError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &pe))
	assert.Equal(t, "PDF has 101 pages (max 100)", pe.Reason)
}

func TestNewTooLargeError(t *testing.T) {
	err := NewTooLargeError(2048, 1024)

	assert.Equal(t, "policy rejected: file too large (2048 bytes, max 1024)", err.Error())
	assert.ErrorIs(t, err, ErrPolicyRejected)
}

func TestIngestError(t *testing.T) {
	cause := errors.New("disk full")
	err := &IngestError{DocID: "0123456789abcdef", Stage: StageIndex, Err: cause}

	assert.Equal(t, "ingest 0123456789abcdef (index): disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrPolicyRejected)

	noID := &IngestError{Stage: StageIdentify, Err: ErrInvalidInput}
	assert.Equal(t, "ingest identify: invalid input", noID.Error())
	assert.ErrorIs(t, noID, ErrInvalidInput)
}
