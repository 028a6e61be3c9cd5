package v1

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateReportRequest DTO входящего сообщения об инциденте
// @Description DTO входящего сообщения об инциденте
type CreateReportRequest struct {
	Category    string          `json:"category" validate:"required,incident_category"`
	Description string          `json:"description" validate:"max=4000"`
	Latitude    *float64        `json:"latitude" validate:"required,latitude"`
	Longitude   *float64        `json:"longitude" validate:"required,longitude"`
	ReporterID  string          `json:"reporter_id,omitempty" validate:"max=128"`
	MediaURL    string          `json:"media_url,omitempty" validate:"omitempty,url"`
	Severity    string          `json:"severity,omitempty" validate:"omitempty,incident_severity"`
	ReportedAt  *time.Time      `json:"reported_at,omitempty"`
	AIAnalysis  json.RawMessage `json:"ai_analysis,omitempty" swaggertype:"object"`
}

// UpdateStatusRequest DTO для смены статуса инцидента
// @Description DTO для смены статуса инцидента
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,incident_status"`
}

// QueueQuery параметры запроса очереди реагирования
type QueueQuery struct {
	Latitude  *float64 `form:"lat" validate:"omitempty,latitude"`
	Longitude *float64 `form:"lon" validate:"omitempty,longitude"`
	Limit     int      `form:"limit" validate:"min=0"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Category           string          `json:"category"`
	Description        string          `json:"description"`
	Latitude           *float64        `json:"latitude,omitempty"`
	Longitude          *float64        `json:"longitude,omitempty"`
	Severity           string          `json:"severity"`
	SeverityTag        string          `json:"severity_tag"`
	Status             string          `json:"status"`
	CorroborationCount int             `json:"corroboration_count"`
	Verified           bool            `json:"verified"`
	ReporterID         string          `json:"reporter_id,omitempty"`
	MediaURL           string          `json:"media_url,omitempty"`
	AIAnalysis         json.RawMessage `json:"ai_analysis,omitempty" swaggertype:"object"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// DuplicateResponse DTO предупреждения о возможном дубликате
// @Description DTO предупреждения о возможном дубликате
type DuplicateResponse struct {
	IncidentID          uuid.UUID `json:"incident_id"`
	Category            string    `json:"category"`
	Description         string    `json:"description"`
	DistanceMeters      float64   `json:"distance_meters"`
	MinutesApart        float64   `json:"minutes_apart"`
	HeuristicConfidence int       `json:"heuristic_confidence"`
	SemanticConfidence  *int      `json:"semantic_confidence,omitempty"`
	Confidence          int       `json:"confidence"`
	Rationale           string    `json:"rationale,omitempty"`
}

// ReportResponse DTO с результатом обработки сообщения
// @Description DTO с результатом обработки сообщения
type ReportResponse struct {
	Outcome    string              `json:"outcome"`
	Incident   IncidentResponse    `json:"incident"`
	Duplicates []DuplicateResponse `json:"duplicates,omitempty"`
}

// QueueEntryResponse DTO позиции в очереди реагирования
// @Description DTO позиции в очереди реагирования
type QueueEntryResponse struct {
	IncidentResponse
	PriorityScore  int      `json:"priority_score"`
	PriorityLabel  string   `json:"priority_label"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}
