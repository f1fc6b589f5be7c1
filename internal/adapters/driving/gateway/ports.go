package gateway

import (
	"errors"

	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// Errors returned by Ports.Validate.
var (
	ErrMissingAnswerService = errors.New("gateway: answer service is required")
	ErrMissingIngestService = errors.New("gateway: ingest service is required")
	ErrMissingStatsService  = errors.New("gateway: stats service is required")
)

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	Answer driving.AnswerService
	Ingest driving.IngestService
	Stats  driving.StatsService

	// Maintenance enables /clear and /reindex.
	Maintenance driving.MaintenanceService

	// Document enables /pages/:doc/:page.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Answer == nil:
		return ErrMissingAnswerService
	case p.Ingest == nil:
		return ErrMissingIngestService
	case p.Stats == nil:
		return ErrMissingStatsService
	}
	return nil
}
