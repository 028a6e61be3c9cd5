package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/imcoderdev/emergency-backend/internal/geo"
)

// Category - фиксированная классификация инцидента
type Category string

const (
	CategoryFire           Category = "Fire"
	CategoryAccident       Category = "Accident"
	CategoryMedical        Category = "Medical"
	CategoryCrime          Category = "Crime"
	CategoryInfrastructure Category = "Infrastructure"
	CategoryNaturalHazard  Category = "Natural Hazard"
	CategoryOther          Category = "Other"
)

// Categories перечисляет все допустимые категории
var Categories = []Category{
	CategoryFire,
	CategoryAccident,
	CategoryMedical,
	CategoryCrime,
	CategoryInfrastructure,
	CategoryNaturalHazard,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Severity - порядковая срочность: Critical > High > Medium > Low
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Tag возвращает производный тег серьезности для хранения рядом с записью
func (s Severity) Tag() string {
	return strings.ToLower(string(s))
}

// Status - состояние жизненного цикла инцидента.
// Переходы выполняются внешними действиями ответственных лиц.
type Status string

const (
	StatusReported   Status = "Reported"
	StatusPending    Status = "Pending"
	StatusVerified   Status = "Verified"
	StatusInProgress Status = "In Progress"
	StatusDispatched Status = "Dispatched"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusReported, StatusPending, StatusVerified, StatusInProgress,
		StatusDispatched, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Terminal сообщает, исключается ли инцидент из очереди реагирования
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// Incident - персистентная запись об инциденте
type Incident struct {
	ID                 uuid.UUID       `json:"id"`
	Category           Category        `json:"category"`
	Description        string          `json:"description"`
	Location           *geo.Point      `json:"location,omitempty"`
	Severity           Severity        `json:"severity"`
	SeverityTag        string          `json:"severity_tag"`
	Status             Status          `json:"status"`
	CorroborationCount int             `json:"corroboration_count"`
	Verified           bool            `json:"verified"`
	ReporterID         string          `json:"reporter_id,omitempty"`
	MediaURL           string          `json:"media_url,omitempty"`
	AIAnalysis         json.RawMessage `json:"ai_analysis,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
