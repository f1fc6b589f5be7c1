package gateway

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Error codes carried in the error_code field of error responses.
const (
	codePolicyRejected     = "policy_rejected"
	codeInvalidInput       = "invalid_input"
	codeNotFound           = "not_found"
	codeServiceUnavailable = "service_unavailable"
	codeInternal           = "internal_error"
	codeRateLimited        = "rate_limit_exceeded"
	codeTooLarge           = "request_too_large"
)

// statusFor maps a service error to an HTTP status and error code.
func statusFor(err error) (int, string) {
	var policy *domain.PolicyError
	switch {
	case errors.As(err, &policy):
		return http.StatusBadRequest, codePolicyRejected
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, codeInvalidInput
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrAnswererUnavailable),
		errors.Is(err, domain.ErrRasterizerUnavailable):
		return http.StatusServiceUnavailable, codeServiceUnavailable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// respondError writes a JSON error body and aborts the chain.
func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error_code": code,
		"message":    message,
		"request_id": requestID(c),
	})
}

// respondServiceError maps err and writes it.
func respondServiceError(c *gin.Context, op string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("%s failed [%s]: %v", op, requestID(c), err)
	} else {
		logger.Warnw(op+" rejected", "request_id", requestID(c), "error", err)
	}
	respondError(c, status, code, err.Error())
}
