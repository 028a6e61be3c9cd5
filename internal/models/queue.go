package models

// PriorityLabel - текстовая метка для значения приоритета
type PriorityLabel string

const (
	PriorityCritical PriorityLabel = "CRITICAL"
	PriorityHigh     PriorityLabel = "HIGH"
	PriorityMedium   PriorityLabel = "MEDIUM"
	PriorityLow      PriorityLabel = "LOW"
)

// QueueEntry - инцидент с вычисленным приоритетом. Не сохраняется.
type QueueEntry struct {
	Incident       *Incident     `json:"incident"`
	Score          int           `json:"priority_score"`
	Label          PriorityLabel `json:"priority_label"`
	DistanceMeters *float64      `json:"distance_meters,omitempty"`
}
