package models

import "time"

// EventKind - тип события для рассылки
type EventKind string

const (
	EventIncidentCreated EventKind = "incident.created"
	EventIncidentMerged  EventKind = "incident.merged"
	EventIncidentUpdated EventKind = "incident.updated"
)

// Event рассылается подписчикам после решения о слиянии/создании или изменения статуса
type Event struct {
	Kind       EventKind            `json:"kind"`
	Incident   *Incident            `json:"incident"`
	Duplicates []DuplicateCandidate `json:"duplicates,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
}
