package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/imcoderdev/emergency-backend/internal/geo"
)

// Report - входящее сообщение об инциденте, живет только на время обработки
type Report struct {
	Category    Category
	Description string
	Location    geo.Point
	ReporterID  string
	MediaURL    string
	// Severity приходит от внешнего классификатора; пустое значение означает Medium
	Severity   Severity
	AIAnalysis json.RawMessage
	ReceivedAt time.Time
}

// Validate отклоняет сообщение до запуска любой логики сопоставления
func (r *Report) Validate() error {
	if !r.Category.Valid() {
		return fmt.Errorf("%w: unrecognized category %q", ErrInvalidReport, r.Category)
	}
	if err := r.Location.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	if r.Severity != "" && !r.Severity.Valid() {
		return fmt.Errorf("%w: unrecognized severity %q", ErrInvalidReport, r.Severity)
	}
	return nil
}
